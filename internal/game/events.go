package game

import (
	"github.com/lox/landlordd/internal/deck"
	"github.com/lox/landlordd/internal/pattern"
)

// EventType identifies a round event
type EventType string

const (
	EventTypeDealt      EventType = "dealt"
	EventTypeBid        EventType = "bid"
	EventTypeLandlord   EventType = "landlord"
	EventTypeRedeal     EventType = "redeal"
	EventTypePlay       EventType = "play"
	EventTypePass       EventType = "pass"
	EventTypeRoundEnd   EventType = "round_end"
	EventTypeRoundAbort EventType = "round_abort"
)

// Event is the closed set of round events. Consumers dispatch with a
// type switch over the concrete types below.
type Event interface {
	EventType() EventType
}

// DealtEvent is published once hands are dealt. Hands are indexed by
// seat; the consumer must only reveal each hand to its own seat.
type DealtEvent struct {
	Seq   int
	Hands [NumSeats][]deck.Card
}

func (DealtEvent) EventType() EventType { return EventTypeDealt }

// BidEvent is published after each accepted call.
type BidEvent struct {
	Seat     int
	Call     int // 0 = pass
	NextTurn int
}

func (BidEvent) EventType() EventType { return EventTypeBid }

// LandlordEvent is published when bidding resolves. The bottom cards
// are shown face-up to all seats.
type LandlordEvent struct {
	Seat   int
	Stake  int
	Bottom []deck.Card
}

func (LandlordEvent) EventType() EventType { return EventTypeLandlord }

// RedealEvent is published when every seat passed and the round must be
// discarded without consuming the room's round budget.
type RedealEvent struct {
	Seq int
}

func (RedealEvent) EventType() EventType { return EventTypeRedeal }

// PlayEvent is published after each accepted play.
type PlayEvent struct {
	Seat       int
	Play       pattern.Play
	Remaining  int // cards left in the seat's hand
	Multiplier int // running multiplier after any bomb escalation
	NextTurn   int
}

func (PlayEvent) EventType() EventType { return EventTypePlay }

// PassEvent is published after each accepted pass. TrickCleared marks
// the standing play wrapping back to its owner.
type PassEvent struct {
	Seat         int
	NextTurn     int
	TrickCleared bool
}

func (PassEvent) EventType() EventType { return EventTypePass }

// RoundEndEvent is published exactly once when a hand empties.
type RoundEndEvent struct {
	Seq    int
	Winner int
	Result ScoreResult
}

func (RoundEndEvent) EventType() EventType { return EventTypeRoundEnd }

// RoundAbortEvent is published when an invariant violation forces the
// round to be discarded and redealt.
type RoundAbortEvent struct {
	Seq    int
	Reason string
}

func (RoundAbortEvent) EventType() EventType { return EventTypeRoundAbort }
