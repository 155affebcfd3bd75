package room

import (
	"errors"
	"fmt"
	rand "math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/landlordd/internal/deck"
	"github.com/lox/landlordd/internal/game"
	"github.com/lox/landlordd/internal/randutil"
)

// Precondition errors, rejected before any mutation.
var (
	ErrRoomNotFound  = errors.New("room not found")
	ErrRoomFull      = errors.New("room is full")
	ErrRoomClosed    = errors.New("room is closed")
	ErrAlreadySeated = errors.New("player already seated")
	ErrNotSeated     = errors.New("player not seated in room")
	ErrRoundActive   = errors.New("round in progress")
	ErrNoActiveRound = errors.New("no active round")
	ErrNotAllReady   = errors.New("not all seats ready")
	ErrEntryCost     = errors.New("entry cost check failed")
	ErrVoteActive    = errors.New("dismissal vote already active")
	ErrNoVote        = errors.New("no dismissal vote active")
)

// State is the room lifecycle position.
type State int

const (
	StateOpen State = iota
	StateDealing
	StateBidding
	StatePlaying
	StateSettling
	StateMatchOver
	StateDismissed
)

// String returns the string representation of a room state
func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateDealing:
		return "dealing"
	case StateBidding:
		return "bidding"
	case StatePlaying:
		return "playing"
	case StateSettling:
		return "settling"
	case StateMatchOver:
		return "match_over"
	case StateDismissed:
		return "dismissed"
	default:
		return "unknown"
	}
}

// Seat is one of the three fixed slots. The room exclusively owns seat
// assignment; rounds only ever read seat identity.
type Seat struct {
	PlayerID string
	Ready    bool
	Online   bool
	Total    int // cumulative match score
}

func (s *Seat) occupied() bool {
	return s.PlayerID != ""
}

// Room hosts a sequence of rounds up to the configured limit. All
// mutating entry points serialize through a single mutex; snapshot
// queries take a consistent copy under the same lock.
type Room struct {
	id        string
	opts      Options
	logger    *log.Logger
	clock     quartz.Clock
	messenger Messenger
	ledger    Ledger
	store     HistoryStore

	mu          sync.Mutex
	state       State
	seats       [game.NumSeats]Seat
	round       *game.Round
	roundsDone  int
	firstCaller int
	history     []RoundRecord
	vote        *dismissVote
	emptySince  time.Time
	rng         *rand.Rand
}

// NewRoom creates a room with the given policy. Collaborator arguments
// may be nil, in which case no-op implementations are used.
func NewRoom(id string, opts Options, logger *log.Logger, clock quartz.Clock, messenger Messenger, ledger Ledger, store HistoryStore) *Room {
	opts = opts.withDefaults()
	if messenger == nil {
		messenger = NopMessenger{}
	}
	if ledger == nil {
		ledger = FreeLedger{}
	}
	if store == nil {
		store = DiscardHistory{}
	}
	if clock == nil {
		clock = quartz.NewReal()
	}

	seed := opts.Seed
	if seed == 0 {
		seed = clock.Now().UnixNano()
	}
	rng := randutil.New(seed)

	return &Room{
		id:          id,
		opts:        opts,
		logger:      logger.With("room", id),
		clock:       clock,
		messenger:   messenger,
		ledger:      ledger,
		store:       store,
		firstCaller: rng.IntN(game.NumSeats),
		emptySince:  clock.Now(),
		rng:         rng,
	}
}

// ID returns the room identifier.
func (r *Room) ID() string { return r.id }

// State returns the current lifecycle state.
func (r *Room) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Closed reports whether the room has finished or been dismissed.
func (r *Room) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closedLocked()
}

func (r *Room) closedLocked() bool {
	return r.state == StateMatchOver || r.state == StateDismissed
}

// Empty reports whether no seats are occupied.
func (r *Room) Empty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.occupiedLocked() == 0
}

func (r *Room) occupiedLocked() int {
	n := 0
	for i := range r.seats {
		if r.seats[i].occupied() {
			n++
		}
	}
	return n
}

func (r *Room) seatOf(playerID string) int {
	for i := range r.seats {
		if r.seats[i].PlayerID == playerID {
			return i
		}
	}
	return -1
}

// Join assigns the player to the first free seat.
func (r *Room) Join(playerID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closedLocked() {
		return -1, ErrRoomClosed
	}
	if r.seatOf(playerID) >= 0 {
		return -1, ErrAlreadySeated
	}
	for i := range r.seats {
		if !r.seats[i].occupied() {
			r.seats[i] = Seat{PlayerID: playerID, Online: true}
			r.emptySince = time.Time{}
			r.logger.Info("player joined", "player", playerID, "seat", i)
			r.broadcastSeat(i)
			return i, nil
		}
	}
	return -1, ErrRoomFull
}

// Leave vacates the player's seat. Rejected while a round is running:
// the seat identity is owned by the active round until settlement.
func (r *Room) Leave(playerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	seat := r.seatOf(playerID)
	if seat < 0 {
		return ErrNotSeated
	}
	if r.round != nil {
		return ErrRoundActive
	}

	total := r.seats[seat].Total
	r.seats[seat] = Seat{Total: total}
	r.logger.Info("player left", "player", playerID, "seat", seat)
	r.broadcastSeat(seat)

	if r.occupiedLocked() == 0 {
		r.emptySince = r.clock.Now()
	}
	return nil
}

// SetReady records a seat's readiness. When all three seats are
// occupied and ready, the next round starts.
func (r *Room) SetReady(playerID string, ready bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closedLocked() {
		return ErrRoomClosed
	}
	seat := r.seatOf(playerID)
	if seat < 0 {
		return ErrNotSeated
	}
	if r.round != nil {
		return ErrRoundActive
	}

	r.seats[seat].Ready = ready
	r.broadcastSeat(seat)

	if ready && r.allReadyLocked() {
		return r.startRoundLocked()
	}
	return nil
}

func (r *Room) allReadyLocked() bool {
	for i := range r.seats {
		if !r.seats[i].occupied() || !r.seats[i].Ready {
			return false
		}
	}
	return true
}

// startRoundLocked consumes the entry cost atomically across all seats
// and deals a fresh round. A failed cost check refunds any debits
// already taken and aborts the start for everyone.
func (r *Room) startRoundLocked() error {
	r.state = StateDealing

	if r.opts.EntryCost > 0 {
		var debited []string
		for i := range r.seats {
			if !r.ledger.CheckAndDebit(r.seats[i].PlayerID, r.opts.EntryKind, r.opts.EntryCost) {
				for _, id := range debited {
					r.ledger.Credit(id, r.opts.EntryKind, r.opts.EntryCost)
				}
				r.logger.Warn("round start aborted, entry cost failed", "player", r.seats[i].PlayerID)
				r.unreadyLocked()
				r.state = StateOpen
				return fmt.Errorf("seat %d: %w", i, ErrEntryCost)
			}
			debited = append(debited, r.seats[i].PlayerID)
		}
	}

	return r.dealLocked(r.roundsDone + 1)
}

// dealLocked creates the round and moves the room to bidding. Also used
// for redeals, which reuse the sequence number and skip the entry cost.
func (r *Room) dealLocked(seq int) error {
	r.firstCaller = (r.firstCaller + 1) % game.NumSeats

	round, err := game.NewRound(seq, game.RoundOptions{
		BidMode:     r.opts.BidMode,
		MaxCall:     r.opts.MaxCall,
		LastChance:  r.opts.LastChance,
		Cap:         r.opts.MultiplierCap,
		FirstCaller: r.firstCaller,
	}, r.rng, r.logger, r.handleRoundEvent)
	if err != nil {
		r.logger.Error("deal failed", "error", err)
		r.unreadyLocked()
		r.state = StateOpen
		return err
	}

	r.round = round
	r.state = StateBidding
	return nil
}

func (r *Room) unreadyLocked() {
	for i := range r.seats {
		r.seats[i].Ready = false
	}
}

// handleRoundEvent translates round events to the messenger. Dealt
// hands go to their own seats only; everything else is broadcast.
func (r *Room) handleRoundEvent(event game.Event) {
	switch e := event.(type) {
	case game.DealtEvent:
		var sizes [game.NumSeats]int
		for seat, hand := range e.Hands {
			sizes[seat] = len(hand)
		}
		for seat, hand := range e.Hands {
			r.messenger.SendToSeat(r.id, seat, HandDealtEvent{
				Seq:       e.Seq,
				Seat:      seat,
				Cards:     hand,
				HandSizes: sizes,
				FirstCall: r.firstCaller,
			})
		}
	default:
		r.messenger.Broadcast(r.id, event, -1)
	}
}

// Bid applies a bidding call from the player.
func (r *Room) Bid(playerID string, value int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	seat, err := r.actingSeatLocked(playerID)
	if err != nil {
		return err
	}

	if err := r.round.Bid(seat, value, r.clock.Now()); err != nil {
		return err
	}

	switch r.round.Phase() {
	case game.PhasePlaying:
		r.state = StatePlaying
	case game.PhaseRedeal:
		// All seats passed: discard and redeal without consuming the
		// round budget or re-charging the entry cost.
		r.logger.Info("no landlord, redealing", "seq", r.round.Seq())
		seq := r.round.Seq()
		r.round = nil
		r.messenger.Broadcast(r.id, RoundRestartEvent{Seq: seq, Reason: "no_landlord"}, -1)
		return r.dealLocked(seq)
	}
	return nil
}

// Play applies a card play from the player. Invariant violations abort
// the round defensively and redeal rather than continuing corrupted state.
func (r *Room) Play(playerID string, cards []deck.Card) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	seat, err := r.actingSeatLocked(playerID)
	if err != nil {
		return err
	}

	outcome, err := r.round.Play(seat, cards)
	if err != nil {
		if game.IsInvariant(err) {
			r.abortRoundLocked(err)
		}
		return err
	}

	if outcome.Finished {
		r.settleLocked(*outcome.Result)
	}
	return nil
}

// Pass applies a pass from the player.
func (r *Room) Pass(playerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	seat, err := r.actingSeatLocked(playerID)
	if err != nil {
		return err
	}

	_, err = r.round.Pass(seat)
	return err
}

func (r *Room) actingSeatLocked(playerID string) (int, error) {
	if r.closedLocked() {
		return -1, ErrRoomClosed
	}
	seat := r.seatOf(playerID)
	if seat < 0 {
		return -1, ErrNotSeated
	}
	if r.round == nil {
		return -1, ErrNoActiveRound
	}
	return seat, nil
}

// abortRoundLocked discards a corrupted round and redeals. The seats
// get a room-wide restart notice; the round budget is not consumed.
func (r *Room) abortRoundLocked(cause error) {
	seq := r.round.Seq()
	r.logger.Error("aborting round defensively", "seq", seq, "error", cause)
	r.round = nil
	r.messenger.Broadcast(r.id, RoundRestartEvent{Seq: seq, Reason: "invariant_abort"}, -1)
	if err := r.dealLocked(seq); err != nil {
		r.logger.Error("redeal after abort failed", "error", err)
	}
}

// settleLocked applies one round's settlement: ledger credits and
// debits, history persistence, and either the next round gate or the
// match-level settlement.
func (r *Room) settleLocked(result game.ScoreResult) {
	r.state = StateSettling

	record := RoundRecord{
		Seq:      r.round.Seq(),
		Landlord: r.round.Landlord(),
		Result:   result,
		Bids:     r.round.BidRecords(),
		Plays:    r.round.History(),
	}
	r.history = append(r.history, record)
	r.round = nil

	var totals [game.NumSeats]int
	for seat, delta := range result.Deltas {
		r.seats[seat].Total += delta
		totals[seat] = r.seats[seat].Total

		// Settlement application is delegated to the ledger; a failed
		// debit is logged but never blocks the room.
		switch {
		case delta > 0:
			r.ledger.Credit(r.seats[seat].PlayerID, r.opts.EntryKind, delta)
		case delta < 0:
			if !r.ledger.CheckAndDebit(r.seats[seat].PlayerID, r.opts.EntryKind, -delta) {
				r.logger.Warn("settlement debit failed", "player", r.seats[seat].PlayerID, "delta", delta)
			}
		}
	}

	if err := r.store.SaveRoundHistory(r.id, record); err != nil {
		r.logger.Error("saving round history", "error", err)
	}

	r.roundsDone++
	r.messenger.Broadcast(r.id, RoundSettledEvent{Record: record, Totals: totals}, -1)

	if r.roundsDone >= r.opts.RoundLimit {
		r.finishMatchLocked(false)
		return
	}

	// Gate the next round on a fresh round of readiness.
	r.unreadyLocked()
	r.state = StateOpen
}

// finishMatchLocked performs the match-level aggregate settlement.
func (r *Room) finishMatchLocked(dismissed bool) {
	summary := MatchSummary{
		RoomID:       r.id,
		RoundsPlayed: r.roundsDone,
		Dismissed:    dismissed,
	}
	for i := range r.seats {
		summary.Totals[i] = r.seats[i].Total
		summary.Players[i] = r.seats[i].PlayerID
	}

	if err := r.store.SaveMatchSummary(r.id, summary); err != nil {
		r.logger.Error("saving match summary", "error", err)
	}

	if dismissed {
		r.state = StateDismissed
	} else {
		r.state = StateMatchOver
	}
	r.vote = nil
	r.logger.Info("match finished", "rounds", r.roundsDone, "dismissed", dismissed, "totals", summary.Totals)
	r.messenger.Broadcast(r.id, MatchEndEvent{Summary: summary}, -1)
}

// MarkOffline flags the player's seat offline without removing it from
// the round. Gameplay continues; the takeover policy may consult
// TakeoverAction for the offline seat.
func (r *Room) MarkOffline(playerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	seat := r.seatOf(playerID)
	if seat < 0 {
		return ErrNotSeated
	}
	r.seats[seat].Online = false
	r.logger.Info("player offline", "player", playerID, "seat", seat)
	r.broadcastSeat(seat)
	return nil
}

// Reconnect flags the seat online again and returns a full
// resynchronization snapshot including the seat's exact hand.
func (r *Room) Reconnect(playerID string) (Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	seat := r.seatOf(playerID)
	if seat < 0 {
		return Snapshot{}, ErrNotSeated
	}
	r.seats[seat].Online = true
	r.broadcastSeat(seat)
	return r.snapshotLocked(seat), nil
}

// Snapshot returns a consistent room view. forSeat includes that
// seat's exact hand; pass -1 for a spectator view.
func (r *Room) Snapshot(forSeat int) Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked(forSeat)
}

func (r *Room) snapshotLocked(forSeat int) Snapshot {
	snap := Snapshot{
		RoomID:     r.id,
		State:      r.state,
		RoundsDone: r.roundsDone,
		RoundLimit: r.opts.RoundLimit,
		Turn:       -1,
		Landlord:   -1,
		TakenAt:    r.clock.Now(),
	}

	for i := range r.seats {
		snap.Seats[i] = SeatSnapshot{
			PlayerID: r.seats[i].PlayerID,
			Ready:    r.seats[i].Ready,
			Online:   r.seats[i].Online,
			Total:    r.seats[i].Total,
		}
	}

	if r.round != nil {
		snap.RoundSeq = r.round.Seq()
		snap.Turn = r.round.Turn()
		snap.Landlord = r.round.Landlord()
		snap.BaseStake = r.round.BaseStake()
		snap.Multiplier = r.round.Multiplier()
		for i := range r.seats {
			snap.Seats[i].HandSize = r.round.HandSize(i)
		}
		if r.round.Landlord() >= 0 {
			snap.Bottom = r.round.Bottom()
		}
		if play, owner, ok := r.round.Standing(); ok {
			snap.Standing = &StandingPlay{Seat: owner, Type: play.Type, Cards: play.Cards}
		}
		if forSeat >= 0 && forSeat < game.NumSeats {
			snap.Hand = r.round.HandOf(forSeat)
		}
	}

	if r.vote != nil {
		snap.Vote = &VoteStateEvent{
			Proposer: r.vote.proposer,
			Choices:  r.vote.choices,
			Deadline: r.vote.deadline,
		}
	}
	return snap
}

// TakeoverAction suggests an auto-action for an offline seat holding
// the turn. The external takeover policy decides whether to apply it
// via Play or Pass.
func (r *Room) TakeoverAction(seat int) (cards []deck.Card, pass bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.round == nil || seat < 0 || seat >= game.NumSeats || r.seats[seat].Online {
		return nil, false
	}
	return r.round.AutoAction(seat)
}

// ProposeDismiss opens a dismissal vote. Only legal between rounds:
// before a round starts or after the active round has finished.
func (r *Room) ProposeDismiss(playerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closedLocked() {
		return ErrRoomClosed
	}
	seat := r.seatOf(playerID)
	if seat < 0 {
		return ErrNotSeated
	}
	if r.vote != nil {
		return ErrVoteActive
	}
	if r.round != nil {
		return ErrRoundActive
	}

	r.vote = newDismissVote(seat, r.clock.Now().Add(r.opts.DismissWindow))
	r.logger.Info("dismissal proposed", "seat", seat, "deadline", r.vote.deadline)
	r.broadcastVoteLocked()
	return nil
}

// VoteDismiss records one seat's vote. Unanimous agreement abandons the
// room, settling the already-completed rounds as a truncated match. A
// single disagreement clears the vote for everyone.
func (r *Room) VoteDismiss(playerID string, agree bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closedLocked() {
		return ErrRoomClosed
	}
	seat := r.seatOf(playerID)
	if seat < 0 {
		return ErrNotSeated
	}
	if r.vote == nil {
		return ErrNoVote
	}

	if !agree {
		r.vote.choices[seat] = VoteDisagree
		r.logger.Info("dismissal rejected", "seat", seat)
		r.clearVoteLocked("disagreed")
		return nil
	}

	r.vote.choices[seat] = VoteAgree
	r.broadcastVoteLocked()

	if r.vote.unanimous() {
		r.logger.Info("dismissal unanimous, abandoning room")
		if r.round != nil {
			// A round that started during the vote is abandoned
			// without settlement.
			r.messenger.Broadcast(r.id, RoundRestartEvent{Seq: r.round.Seq(), Reason: "dismissed"}, -1)
			r.round = nil
		}
		r.finishMatchLocked(true)
	}
	return nil
}

func (r *Room) clearVoteLocked(reason string) {
	r.vote = nil
	r.messenger.Broadcast(r.id, VoteClearedEvent{Reason: reason}, -1)
}

func (r *Room) broadcastVoteLocked() {
	r.messenger.Broadcast(r.id, VoteStateEvent{
		Proposer: r.vote.proposer,
		Choices:  r.vote.choices,
		Deadline: r.vote.deadline,
	}, -1)
}

func (r *Room) broadcastSeat(seat int) {
	r.messenger.Broadcast(r.id, SeatUpdateEvent{
		Seat:     seat,
		PlayerID: r.seats[seat].PlayerID,
		Ready:    r.seats[seat].Ready,
		Online:   r.seats[seat].Online,
	}, -1)
}

// Tick drives the room's time-based transitions: the dismissal vote
// deadline and the idle-room expiry. Idempotent; the manager calls it
// on a fixed cadence.
func (r *Room) Tick(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.vote != nil && r.vote.expired(now) {
		r.logger.Info("dismissal vote timed out")
		r.clearVoteLocked("timeout")
	}

	if r.closedLocked() {
		return
	}
	if r.occupiedLocked() == 0 && !r.emptySince.IsZero() &&
		now.Sub(r.emptySince) >= r.opts.IdleExpiry {
		r.logger.Info("idle room force-dismissed", "emptySince", r.emptySince)
		r.finishMatchLocked(true)
	}
}
