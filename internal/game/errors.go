package game

import (
	"errors"
	"fmt"
)

// RejectCode identifies why an action was refused. Codes are stable and
// intended for user-facing display by the session layer.
type RejectCode string

const (
	RejectNotYourTurn    RejectCode = "not_your_turn"
	RejectBadPattern     RejectCode = "bad_pattern"
	RejectTooWeak        RejectCode = "too_weak"
	RejectPassNotAllowed RejectCode = "pass_not_allowed"
	RejectCardsNotHeld   RejectCode = "cards_not_held"
	RejectBidTooLow      RejectCode = "bid_too_low"
	RejectBidOutOfRange  RejectCode = "bid_out_of_range"
	RejectBiddingOver    RejectCode = "bidding_over"
	RejectWrongPhase     RejectCode = "wrong_phase"
)

// Rejection is a recoverable illegal-action or precondition error. The
// round state is guaranteed unchanged when one is returned.
type Rejection struct {
	Code RejectCode
	err  error
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("%s: %v", r.Code, r.err)
}

func (r *Rejection) Unwrap() error {
	return r.err
}

func rejectf(code RejectCode, format string, args ...any) *Rejection {
	return &Rejection{Code: code, err: fmt.Errorf(format, args...)}
}

func rejectErr(code RejectCode, err error) *Rejection {
	return &Rejection{Code: code, err: err}
}

// RejectionCode extracts the reject code from an error, if it carries one.
func RejectionCode(err error) (RejectCode, bool) {
	var r *Rejection
	if errors.As(err, &r) {
		return r.Code, true
	}
	return "", false
}

// InvariantError marks corrupted round state: deck exhaustion, card
// conservation failure, a missing seat mid-round. The round must be
// aborted and redealt, never continued.
type InvariantError struct {
	err error
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant violation: %v", e.err)
}

func (e *InvariantError) Unwrap() error {
	return e.err
}

func invariantf(format string, args ...any) *InvariantError {
	return &InvariantError{err: fmt.Errorf(format, args...)}
}

// IsInvariant reports whether err marks an invariant violation.
func IsInvariant(err error) bool {
	var ie *InvariantError
	return errors.As(err, &ie)
}
