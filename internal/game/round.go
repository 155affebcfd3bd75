package game

import (
	rand "math/rand/v2"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lox/landlordd/internal/deck"
	"github.com/lox/landlordd/internal/pattern"
)

// Phase is the round lifecycle position.
type Phase int

const (
	PhaseBidding Phase = iota
	PhasePlaying
	PhaseSettled
	PhaseRedeal // every seat passed bidding; discard and redeal
)

// String returns the string representation of a phase
func (p Phase) String() string {
	switch p {
	case PhaseBidding:
		return "bidding"
	case PhasePlaying:
		return "playing"
	case PhaseSettled:
		return "settled"
	case PhaseRedeal:
		return "redeal"
	default:
		return "unknown"
	}
}

const (
	handSize   = 17
	bottomSize = deck.Size - NumSeats*handSize
)

// RoundOptions is the per-round policy slice of the room configuration.
type RoundOptions struct {
	BidMode     BidMode
	MaxCall     int
	LastChance  bool
	Cap         int // maximum settled multiple, 0 = uncapped
	FirstCaller int // seat that opens the bidding
}

// PlayRecord is one entry in the round's play history.
type PlayRecord struct {
	Seat int
	Pass bool
	Play pattern.Play
}

// PlayOutcome reports what an accepted play did.
type PlayOutcome struct {
	Play      pattern.Play
	Remaining int
	Finished  bool
	Result    *ScoreResult
}

// Round is a single deal-bid-play-settle cycle. It owns the mutable
// hands and history for one match instance; callers must serialize all
// mutating calls (the room controller holds the lock).
type Round struct {
	seq  int
	opts RoundOptions

	hands  [NumSeats]*Hand
	bottom []deck.Card

	bidding *Bidding
	turns   *TurnSequencer

	landlord   int
	baseStake  int
	multiplier int
	bombs      int
	playCounts [NumSeats]int
	played     int // total cards played, for conservation checks
	history    []PlayRecord
	phase      Phase
	result     *ScoreResult

	emit   func(Event)
	logger *log.Logger
}

// NewRound shuffles a fresh deck and deals three hands plus the bottom.
// emit may be nil.
func NewRound(seq int, opts RoundOptions, rng *rand.Rand, logger *log.Logger, emit func(Event)) (*Round, error) {
	if emit == nil {
		emit = func(Event) {}
	}

	r := &Round{
		seq:        seq,
		opts:       opts,
		landlord:   -1,
		multiplier: 1,
		emit:       emit,
		logger:     logger.With("round", seq),
	}

	d := deck.NewShuffled(rng)
	var dealt DealtEvent
	dealt.Seq = seq
	for seat := 0; seat < NumSeats; seat++ {
		cards, err := d.Deal(handSize)
		if err != nil {
			return nil, invariantf("dealing seat %d: %v", seat, err)
		}
		r.hands[seat] = NewHand(cards)
		dealt.Hands[seat] = r.hands[seat].Cards()
	}
	bottom, err := d.Deal(bottomSize)
	if err != nil {
		return nil, invariantf("dealing bottom: %v", err)
	}
	r.bottom = bottom

	r.bidding = NewBidding(opts.BidMode, opts.FirstCaller, opts.MaxCall, opts.LastChance)
	r.logger.Debug("dealt round", "firstCaller", opts.FirstCaller, "bidMode", opts.BidMode)
	r.emit(dealt)
	return r, nil
}

// Seq returns the round's sequence number within the match.
func (r *Round) Seq() int { return r.seq }

// Phase returns the round lifecycle phase.
func (r *Round) Phase() Phase { return r.phase }

// Landlord returns the landlord seat, or -1 before bidding resolves.
func (r *Round) Landlord() int { return r.landlord }

// BaseStake returns the stake fixed by bidding.
func (r *Round) BaseStake() int { return r.baseStake }

// Multiplier returns the running multiplier. It only ever increases.
func (r *Round) Multiplier() int { return r.multiplier }

// Bottom returns the bottom cards. Face-up to all seats once bidding
// has resolved.
func (r *Round) Bottom() []deck.Card {
	out := make([]deck.Card, len(r.bottom))
	copy(out, r.bottom)
	return out
}

// HandSize returns the number of cards seat still holds.
func (r *Round) HandSize(seat int) int {
	return r.hands[seat].Len()
}

// HandOf returns a copy of seat's current hand, for resynchronization.
func (r *Round) HandOf(seat int) []deck.Card {
	return r.hands[seat].Cards()
}

// Turn returns the seat expected to act in the current phase.
func (r *Round) Turn() int {
	switch r.phase {
	case PhaseBidding:
		return r.bidding.Turn()
	case PhasePlaying:
		return r.turns.Turn()
	default:
		return -1
	}
}

// Standing returns the standing play and owner during the play phase.
func (r *Round) Standing() (pattern.Play, int, bool) {
	if r.phase != PhasePlaying {
		return pattern.Play{}, -1, false
	}
	return r.turns.Standing()
}

// BidRecords returns the bidding history.
func (r *Round) BidRecords() []BidRecord {
	return r.bidding.Records()
}

// History returns the play history.
func (r *Round) History() []PlayRecord {
	out := make([]PlayRecord, len(r.history))
	copy(out, r.history)
	return out
}

// Result returns the settlement once the round is settled.
func (r *Round) Result() (ScoreResult, bool) {
	if r.result == nil {
		return ScoreResult{}, false
	}
	return *r.result, true
}

// Bid applies one bidding call. When the call resolves bidding, the
// landlord receives the bottom and play begins with the landlord.
func (r *Round) Bid(seat, value int, now time.Time) error {
	if r.phase != PhaseBidding {
		return rejectf(RejectWrongPhase, "round is %s, not bidding", r.phase)
	}
	if seat < 0 || seat >= NumSeats {
		return rejectf(RejectWrongPhase, "seat %d out of range", seat)
	}

	if err := r.bidding.Call(seat, value, now); err != nil {
		return err
	}

	switch r.bidding.Phase() {
	case LandlordFixed:
		landlord, stake := r.bidding.Landlord()
		r.landlord = landlord
		r.baseStake = stake
		r.hands[landlord].Add(r.bottom)
		r.turns = NewTurnSequencer(landlord)
		r.phase = PhasePlaying
		r.logger.Info("landlord fixed", "seat", landlord, "stake", stake)
		r.emit(BidEvent{Seat: seat, Call: value, NextTurn: -1})
		r.emit(LandlordEvent{Seat: landlord, Stake: stake, Bottom: r.Bottom()})

	case NoLandlord:
		r.phase = PhaseRedeal
		r.logger.Info("no landlord, round discarded")
		r.emit(BidEvent{Seat: seat, Call: value, NextTurn: -1})
		r.emit(RedealEvent{Seq: r.seq})

	default:
		r.emit(BidEvent{Seat: seat, Call: value, NextTurn: r.bidding.Turn()})
	}
	return nil
}

// Play applies one play from seat: classified, checked against the
// standing play, and removed from the seat's hand atomically with turn
// advancement. Bombs and the rocket double the running multiplier. The
// round settles the moment the seat's hand empties.
func (r *Round) Play(seat int, cards []deck.Card) (*PlayOutcome, error) {
	if r.phase != PhasePlaying {
		return nil, rejectf(RejectWrongPhase, "round is %s, not playing", r.phase)
	}
	if seat < 0 || seat >= NumSeats {
		return nil, rejectf(RejectWrongPhase, "seat %d out of range", seat)
	}
	if !r.hands[seat].Holds(cards) {
		return nil, rejectf(RejectCardsNotHeld, "seat %d does not hold all of %s", seat, deck.FormatCards(cards))
	}

	play, err := r.turns.Play(seat, cards)
	if err != nil {
		return nil, err
	}

	if !r.hands[seat].Remove(cards) {
		err := invariantf("cards vanished from seat %d between check and removal", seat)
		r.emit(RoundAbortEvent{Seq: r.seq, Reason: err.Error()})
		return nil, err
	}
	r.played += len(cards)
	r.playCounts[seat]++
	r.history = append(r.history, PlayRecord{Seat: seat, Play: play})

	if play.IsBomb() {
		r.multiplier *= 2
		r.bombs++
		r.logger.Debug("multiplier escalated", "play", play.Type, "multiplier", r.multiplier)
	}

	outcome := &PlayOutcome{
		Play:      play,
		Remaining: r.hands[seat].Len(),
	}
	r.emit(PlayEvent{
		Seat:       seat,
		Play:       play,
		Remaining:  outcome.Remaining,
		Multiplier: r.multiplier,
		NextTurn:   r.turns.Turn(),
	})

	if outcome.Remaining == 0 {
		result, err := r.settle(seat)
		if err != nil {
			return nil, err
		}
		outcome.Finished = true
		outcome.Result = &result
	}
	return outcome, nil
}

// Pass applies one pass from seat.
func (r *Round) Pass(seat int) (trickCleared bool, err error) {
	if r.phase != PhasePlaying {
		return false, rejectf(RejectWrongPhase, "round is %s, not playing", r.phase)
	}
	if seat < 0 || seat >= NumSeats {
		return false, rejectf(RejectWrongPhase, "seat %d out of range", seat)
	}

	cleared, err := r.turns.Pass(seat)
	if err != nil {
		return false, err
	}
	r.history = append(r.history, PlayRecord{Seat: seat, Pass: true})
	r.emit(PassEvent{Seat: seat, NextTurn: r.turns.Turn(), TrickCleared: cleared})
	return cleared, nil
}

// settle computes the round result exactly once.
func (r *Round) settle(winner int) (ScoreResult, error) {
	if err := r.checkConservation(); err != nil {
		r.emit(RoundAbortEvent{Seq: r.seq, Reason: err.Error()})
		return ScoreResult{}, err
	}

	result := Score(ScoreInput{
		Landlord:   r.landlord,
		Winner:     winner,
		BaseStake:  r.baseStake,
		Multiplier: r.multiplier,
		PlayCounts: r.playCounts,
		Cap:        r.opts.Cap,
	})
	r.result = &result
	r.phase = PhaseSettled
	r.logger.Info("round settled",
		"winner", winner,
		"landlordWon", result.LandlordWon,
		"multiplier", result.Multiplier,
		"spring", result.Spring)
	r.emit(RoundEndEvent{Seq: r.seq, Winner: winner, Result: result})
	return result, nil
}

// checkConservation verifies cards were removed from exactly one hand
// each, never duplicated or lost.
func (r *Round) checkConservation() error {
	held := 0
	for _, h := range r.hands {
		held += h.Len()
	}
	if held+r.played != deck.Size {
		return invariantf("card conservation broken: %d held + %d played != %d", held, r.played, deck.Size)
	}
	return nil
}

// AutoAction suggests a takeover action for an offline seat holding the
// turn: pass when a standing play exists, otherwise lead the lowest
// single. The surrounding takeover policy decides whether to apply it.
func (r *Round) AutoAction(seat int) (cards []deck.Card, pass bool) {
	if r.phase != PhasePlaying || seat != r.turns.Turn() {
		return nil, false
	}
	if _, owner, ok := r.turns.Standing(); ok && owner != seat {
		return nil, true
	}
	if card, ok := r.hands[seat].LowestSingle(); ok {
		return []deck.Card{card}, false
	}
	return nil, false
}
