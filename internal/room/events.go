package room

import (
	"time"

	"github.com/lox/landlordd/internal/deck"
	"github.com/lox/landlordd/internal/game"
)

// Room-level events delivered through the Messenger, alongside the
// round events from the game package. Consumers dispatch with a type
// switch over this closed set.

// SeatUpdateEvent is broadcast when seat occupancy or readiness changes.
type SeatUpdateEvent struct {
	Seat     int
	PlayerID string // empty when the seat was vacated
	Ready    bool
	Online   bool
}

// HandDealtEvent is sent to exactly one seat with its own cards; other
// seats only learn hand sizes.
type HandDealtEvent struct {
	Seq       int
	Seat      int
	Cards     []deck.Card
	HandSizes [game.NumSeats]int
	FirstCall int
}

// RoundRestartEvent is broadcast when a round is discarded (no
// landlord, or a defensive abort) and a fresh deal follows.
type RoundRestartEvent struct {
	Seq    int
	Reason string
}

// RoundSettledEvent is broadcast after each settlement with the match
// running totals.
type RoundSettledEvent struct {
	Record RoundRecord
	Totals [game.NumSeats]int
}

// MatchEndEvent is broadcast once per room when the round budget is
// exhausted or a dismissal vote completes.
type MatchEndEvent struct {
	Summary MatchSummary
}

// VoteStateEvent is broadcast on every change to a dismissal vote.
type VoteStateEvent struct {
	Proposer int                       `json:"proposer"`
	Choices  [game.NumSeats]VoteChoice `json:"choices"`
	Deadline time.Time                 `json:"deadline"`
}

// VoteClearedEvent is broadcast when a vote is abandoned (disagreement
// or deadline) and normal play resumes.
type VoteClearedEvent struct {
	Reason string
}
