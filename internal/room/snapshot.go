package room

import (
	"time"

	"github.com/lox/landlordd/internal/deck"
	"github.com/lox/landlordd/internal/game"
	"github.com/lox/landlordd/internal/pattern"
)

// SeatSnapshot is the public view of one seat.
type SeatSnapshot struct {
	PlayerID string `json:"playerId"`
	Ready    bool   `json:"ready"`
	Online   bool   `json:"online"`
	HandSize int    `json:"handSize"`
	Total    int    `json:"total"` // cumulative match score
}

// StandingPlay is the last accepted play not yet superseded.
type StandingPlay struct {
	Seat  int          `json:"seat"`
	Type  pattern.Type `json:"type"`
	Cards []deck.Card  `json:"cards"`
}

// Snapshot is a full resynchronization view of a room, taken
// atomically under the room's serialization point. Hand carries the
// requesting seat's exact cards and is empty for spectators.
type Snapshot struct {
	RoomID     string                      `json:"roomId"`
	State      State                       `json:"state"`
	RoundSeq   int                         `json:"roundSeq"`
	RoundsDone int                         `json:"roundsDone"`
	RoundLimit int                         `json:"roundLimit"`
	Seats      [game.NumSeats]SeatSnapshot `json:"seats"`
	Turn       int                         `json:"turn"`     // -1 when no round is active
	Landlord   int                         `json:"landlord"` // -1 before bidding resolves
	BaseStake  int                         `json:"baseStake"`
	Multiplier int                         `json:"multiplier"`
	Bottom     []deck.Card                 `json:"bottom,omitempty"` // revealed once bidding resolved
	Standing   *StandingPlay               `json:"standing,omitempty"`
	Hand       []deck.Card                 `json:"hand,omitempty"`
	Vote       *VoteStateEvent             `json:"vote,omitempty"`
	TakenAt    time.Time                   `json:"takenAt"`
}
