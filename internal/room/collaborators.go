package room

import "github.com/lox/landlordd/internal/game"

// Messenger delivers structured events to connected clients.
// Fire-and-forget: delivery failure must never block room progression.
type Messenger interface {
	SendToSeat(roomID string, seat int, event any)
	// Broadcast delivers event to every seat; excludeSeat skips one
	// seat, -1 for none.
	Broadcast(roomID string, event any, excludeSeat int)
}

// Ledger is the external account collaborator. CheckAndDebit is
// fallible and must be checked before a round start proceeds.
type Ledger interface {
	CheckAndDebit(playerID, kind string, amount int) bool
	Credit(playerID, kind string, amount int)
}

// HistoryStore persists round and match records at natural checkpoints.
// The storage format is owned by the collaborator, not this package.
type HistoryStore interface {
	SaveRoundHistory(roomID string, record RoundRecord) error
	SaveMatchSummary(roomID string, summary MatchSummary) error
}

// RoundRecord is the per-round score record kept in room history.
type RoundRecord struct {
	Seq      int
	Landlord int
	Result   game.ScoreResult
	Bids     []game.BidRecord
	Plays    []game.PlayRecord
}

// MatchSummary aggregates a finished (or truncated) match.
type MatchSummary struct {
	RoomID       string
	RoundsPlayed int
	Totals       [game.NumSeats]int
	Players      [game.NumSeats]string
	Dismissed    bool
}

// NopMessenger drops every event.
type NopMessenger struct{}

func (NopMessenger) SendToSeat(string, int, any) {}
func (NopMessenger) Broadcast(string, any, int)  {}

// FreeLedger approves every debit, for rooms with no entry cost and tests.
type FreeLedger struct{}

func (FreeLedger) CheckAndDebit(string, string, int) bool { return true }
func (FreeLedger) Credit(string, string, int)             {}

// DiscardHistory drops every record.
type DiscardHistory struct{}

func (DiscardHistory) SaveRoundHistory(string, RoundRecord) error  { return nil }
func (DiscardHistory) SaveMatchSummary(string, MatchSummary) error { return nil }
