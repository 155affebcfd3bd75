package room

import (
	"time"

	"github.com/lox/landlordd/internal/game"
)

// VoteChoice is one seat's position on a dismissal proposal.
type VoteChoice int

const (
	VoteUndecided VoteChoice = iota
	VoteAgree
	VoteDisagree
)

// String returns the string representation of a vote choice
func (v VoteChoice) String() string {
	switch v {
	case VoteAgree:
		return "agree"
	case VoteDisagree:
		return "disagree"
	default:
		return "undecided"
	}
}

// dismissVote is an in-flight unanimous dismissal proposal. It is
// cleared whenever voting completes, a seat disagrees, or the deadline
// elapses.
type dismissVote struct {
	proposer int
	choices  [game.NumSeats]VoteChoice
	deadline time.Time
}

func newDismissVote(proposer int, deadline time.Time) *dismissVote {
	v := &dismissVote{proposer: proposer, deadline: deadline}
	v.choices[proposer] = VoteAgree
	return v
}

// unanimous reports whether every seat has recorded agree.
func (v *dismissVote) unanimous() bool {
	for _, c := range v.choices {
		if c != VoteAgree {
			return false
		}
	}
	return true
}

// expired reports whether the voting deadline has elapsed.
func (v *dismissVote) expired(now time.Time) bool {
	return !now.Before(v.deadline)
}
