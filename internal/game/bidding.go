package game

import "time"

// NumSeats is fixed: one landlord against two farmers.
const NumSeats = 3

// BidMode selects how the landlord seat is determined.
type BidMode int

const (
	// BidModeCall gives each seat one call in turn, escalating 1..3.
	// A call of the maximum resolves bidding immediately.
	BidModeCall BidMode = iota
	// BidModeScore runs an open auction: each live seat in turn either
	// passes out or raises above every prior stake.
	BidModeScore
)

// String returns the string representation of a bid mode
func (m BidMode) String() string {
	if m == BidModeScore {
		return "score"
	}
	return "call"
}

// BidPhase is the bidding state machine's position.
type BidPhase int

const (
	AwaitingCalls BidPhase = iota
	LandlordFixed
	NoLandlord
)

// BidRecord is one call in the bidding history. Call 0 is a pass.
type BidRecord struct {
	Seat int
	Call int
	At   time.Time
}

// Bidding sequences the landlord-selection phase. It owns no cards;
// the round hands the bottom to the landlord once the phase resolves.
type Bidding struct {
	mode       BidMode
	maxCall    int
	lastChance bool

	phase    BidPhase
	turn     int
	records  []BidRecord
	highSeat int
	highCall int

	// call mode bookkeeping
	acted     int
	lap       int
	secondLap []int

	// score mode bookkeeping
	passed [NumSeats]bool
}

// NewBidding starts a bidding phase with the given first caller.
// maxCall caps bids (3 in call mode); lastChance grants earlier callers
// one extra lap in call mode when more than one seat called.
func NewBidding(mode BidMode, firstSeat, maxCall int, lastChance bool) *Bidding {
	if maxCall <= 0 {
		maxCall = 3
	}
	return &Bidding{
		mode:       mode,
		maxCall:    maxCall,
		lastChance: lastChance,
		turn:       firstSeat,
		highSeat:   -1,
	}
}

// Phase returns the current bidding phase.
func (b *Bidding) Phase() BidPhase {
	return b.phase
}

// Turn returns the seat expected to call next.
func (b *Bidding) Turn() int {
	return b.turn
}

// Records returns the bidding history.
func (b *Bidding) Records() []BidRecord {
	out := make([]BidRecord, len(b.records))
	copy(out, b.records)
	return out
}

// Landlord returns the winning seat and stake once the phase resolved.
func (b *Bidding) Landlord() (seat, stake int) {
	return b.highSeat, b.highCall
}

// Call applies one bid or pass (value 0) from seat. Illegal calls are
// rejected without mutation.
func (b *Bidding) Call(seat, value int, now time.Time) error {
	if b.phase != AwaitingCalls {
		return rejectf(RejectBiddingOver, "bidding already resolved")
	}
	if seat != b.turn {
		return rejectf(RejectNotYourTurn, "seat %d called out of turn (expected %d)", seat, b.turn)
	}
	if value != 0 {
		if value < 0 || value > b.maxCall {
			return rejectf(RejectBidOutOfRange, "call %d outside 1..%d", value, b.maxCall)
		}
		if value <= b.highCall {
			return rejectf(RejectBidTooLow, "call %d does not exceed standing %d", value, b.highCall)
		}
	}

	b.records = append(b.records, BidRecord{Seat: seat, Call: value, At: now})
	if value > 0 {
		b.highSeat, b.highCall = seat, value
		if value == b.maxCall {
			b.phase = LandlordFixed
			return nil
		}
	}

	if b.mode == BidModeScore {
		b.advanceScore(seat, value)
	} else {
		b.advanceCall()
	}
	return nil
}

// advanceCall handles call-mode turn order: one lap of three calls,
// then optionally a last-chance lap for the non-leading callers.
func (b *Bidding) advanceCall() {
	if b.lap == 2 {
		b.secondLap = b.secondLap[1:]
		if len(b.secondLap) == 0 {
			b.phase = LandlordFixed
			return
		}
		b.turn = b.secondLap[0]
		return
	}

	b.acted++
	if b.acted < NumSeats {
		b.turn = (b.turn + 1) % NumSeats
		return
	}

	// Every seat has had its call.
	if b.highCall == 0 {
		b.phase = NoLandlord
		return
	}
	if b.lap2Pending() {
		b.buildSecondLap()
		if len(b.secondLap) > 0 {
			b.lap = 2
			b.turn = b.secondLap[0]
			return
		}
	}
	b.phase = LandlordFixed
}

// lap2Pending reports whether call mode owes earlier callers an extra lap.
func (b *Bidding) lap2Pending() bool {
	if !b.lastChance || b.highCall == 0 {
		return false
	}
	callers := 0
	seen := make(map[int]bool)
	for _, r := range b.records {
		if r.Call > 0 && !seen[r.Seat] {
			seen[r.Seat] = true
			callers++
		}
	}
	return callers >= 2
}

func (b *Bidding) buildSecondLap() {
	for off := 1; off < NumSeats; off++ {
		seat := (b.highSeat + off) % NumSeats
		for _, r := range b.records {
			if r.Seat == seat && r.Call > 0 {
				b.secondLap = append(b.secondLap, seat)
				break
			}
		}
	}
}

// advanceScore handles auction-mode turn order: passing removes a seat
// from the auction; the last live bidder wins.
func (b *Bidding) advanceScore(seat, value int) {
	if value == 0 {
		b.passed[seat] = true
	}

	live := 0
	for s := 0; s < NumSeats; s++ {
		if !b.passed[s] {
			live++
		}
	}

	if live == 0 {
		b.phase = NoLandlord
		return
	}
	if b.highCall > 0 {
		othersLive := false
		for s := 0; s < NumSeats; s++ {
			if s != b.highSeat && !b.passed[s] {
				othersLive = true
			}
		}
		if !othersLive {
			b.phase = LandlordFixed
			return
		}
	}

	// Next live seat that is not already holding the high bid.
	for off := 1; off <= NumSeats; off++ {
		next := (seat + off) % NumSeats
		if !b.passed[next] && next != b.highSeat {
			b.turn = next
			return
		}
	}
}
