package game

import (
	"github.com/lox/landlordd/internal/deck"
	"github.com/lox/landlordd/internal/pattern"
)

// TurnSequencer tracks whose turn it is and the last standing play.
// All rejections leave the sequencer unchanged.
type TurnSequencer struct {
	turn         int
	standing     *pattern.Play
	standingSeat int
	passes       int
}

// NewTurnSequencer starts play with the landlord leading.
func NewTurnSequencer(landlord int) *TurnSequencer {
	return &TurnSequencer{turn: landlord, standingSeat: -1}
}

// Turn returns the seat expected to act.
func (ts *TurnSequencer) Turn() int {
	return ts.turn
}

// Standing returns the standing play and its owner, if any.
func (ts *TurnSequencer) Standing() (pattern.Play, int, bool) {
	if ts.standing == nil {
		return pattern.Play{}, -1, false
	}
	return *ts.standing, ts.standingSeat, true
}

// Play classifies and validates a play from seat against the standing
// play, then advances the turn. The caller is responsible for checking
// card ownership and removing the cards from the hand on success.
func (ts *TurnSequencer) Play(seat int, cards []deck.Card) (pattern.Play, error) {
	if seat != ts.turn {
		return pattern.Play{}, rejectf(RejectNotYourTurn, "seat %d played out of turn (expected %d)", seat, ts.turn)
	}

	play, err := pattern.Classify(cards)
	if err != nil {
		return pattern.Play{}, rejectErr(RejectBadPattern, err)
	}

	if ts.standing != nil && !play.Beats(*ts.standing) {
		return pattern.Play{}, rejectf(RejectTooWeak, "%s does not beat standing %s", play.Type, ts.standing.Type)
	}

	ts.standing = &play
	ts.standingSeat = seat
	ts.passes = 0
	ts.turn = (ts.turn + 1) % NumSeats
	return play, nil
}

// Pass advances the turn without a play. The first play of a trick
// cannot be a pass. Returns true when the trick wrapped back to the
// standing play's owner, clearing it so the owner may lead freely.
func (ts *TurnSequencer) Pass(seat int) (trickWon bool, err error) {
	if seat != ts.turn {
		return false, rejectf(RejectNotYourTurn, "seat %d passed out of turn (expected %d)", seat, ts.turn)
	}
	if ts.standing == nil {
		return false, rejectf(RejectPassNotAllowed, "cannot pass with no standing play")
	}

	ts.passes++
	ts.turn = (ts.turn + 1) % NumSeats

	if ts.turn == ts.standingSeat {
		ts.standing = nil
		ts.standingSeat = -1
		ts.passes = 0
		return true, nil
	}
	return false, nil
}
