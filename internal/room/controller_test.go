package room

import (
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/landlordd/internal/deck"
	"github.com/lox/landlordd/internal/game"
	"github.com/lox/landlordd/internal/roomid"
)

type seatEvent struct {
	seat  int
	event any
}

// capture records everything the room sends, in order.
type capture struct {
	mu     sync.Mutex
	direct []seatEvent
	casts  []any
}

func (c *capture) SendToSeat(roomID string, seat int, event any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.direct = append(c.direct, seatEvent{seat: seat, event: event})
}

func (c *capture) Broadcast(roomID string, event any, excludeSeat int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.casts = append(c.casts, event)
}

func (c *capture) handFor(seat int) (HandDealtEvent, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.direct) - 1; i >= 0; i-- {
		if e, ok := c.direct[i].event.(HandDealtEvent); ok && c.direct[i].seat == seat {
			return e, true
		}
	}
	return HandDealtEvent{}, false
}

func (c *capture) lastBroadcast(match func(any) bool) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.casts) - 1; i >= 0; i-- {
		if match(c.casts[i]) {
			return c.casts[i], true
		}
	}
	return nil, false
}

type fakeLedger struct {
	mu       sync.Mutex
	balances map[string]int
}

func newFakeLedger(balances map[string]int) *fakeLedger {
	return &fakeLedger{balances: balances}
}

func (l *fakeLedger) CheckAndDebit(playerID, kind string, amount int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.balances[playerID] < amount {
		return false
	}
	l.balances[playerID] -= amount
	return true
}

func (l *fakeLedger) Credit(playerID, kind string, amount int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[playerID] += amount
}

func (l *fakeLedger) balance(playerID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[playerID]
}

type memoryStore struct {
	mu      sync.Mutex
	rounds  []RoundRecord
	summary *MatchSummary
}

func (s *memoryStore) SaveRoundHistory(roomID string, record RoundRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rounds = append(s.rounds, record)
	return nil
}

func (s *memoryStore) SaveMatchSummary(roomID string, summary MatchSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summary = &summary
	return nil
}

var testPlayers = [game.NumSeats]string{"alice", "bob", "carol"}

func newTestRoom(t *testing.T, opts Options, messenger Messenger, ledger Ledger, store HistoryStore) (*Room, *quartz.Mock) {
	t.Helper()
	if opts.Seed == 0 {
		opts.Seed = 42
	}
	clock := quartz.NewMock(t)
	logger := log.New(io.Discard)
	return NewRoom("room1", opts, logger, clock, messenger, ledger, store), clock
}

// seatAll joins and readies all three players; the last ready starts a round.
func seatAll(t *testing.T, r *Room) {
	t.Helper()
	for _, p := range testPlayers {
		_, err := r.Join(p)
		require.NoError(t, err)
	}
	for _, p := range testPlayers {
		require.NoError(t, r.SetReady(p, true))
	}
}

// bidLandlord makes the seat holding the call bid the maximum, which
// resolves bidding immediately.
func bidLandlord(t *testing.T, r *Room) int {
	t.Helper()
	snap := r.Snapshot(-1)
	turn := snap.Turn
	require.NoError(t, r.Bid(snap.Seats[turn].PlayerID, 3))
	require.Equal(t, StatePlaying, r.State())
	return turn
}

// playOut drives the round to settlement: the trick leader sheds its
// lowest single while the other two seats pass every trick.
func playOut(t *testing.T, r *Room) {
	t.Helper()
	for i := 0; r.State() == StatePlaying; i++ {
		require.Less(t, i, 200, "round did not terminate")
		snap := r.Snapshot(-1)
		pid := snap.Seats[snap.Turn].PlayerID
		if snap.Standing != nil && snap.Standing.Seat != snap.Turn {
			require.NoError(t, r.Pass(pid))
			continue
		}
		hand := r.Snapshot(snap.Turn).Hand
		require.NotEmpty(t, hand)
		require.NoError(t, r.Play(pid, hand[:1]))
	}
}

func TestJoinSeatsAndLimits(t *testing.T) {
	r, _ := newTestRoom(t, Options{}, nil, nil, nil)

	for i, p := range testPlayers {
		seat, err := r.Join(p)
		require.NoError(t, err)
		assert.Equal(t, i, seat)
	}

	_, err := r.Join("dave")
	assert.ErrorIs(t, err, ErrRoomFull)

	_, err = r.Join("alice")
	assert.ErrorIs(t, err, ErrAlreadySeated)
}

func TestReadyGateStartsRound(t *testing.T) {
	rec := &capture{}
	r, _ := newTestRoom(t, Options{}, rec, nil, nil)

	for _, p := range testPlayers {
		_, err := r.Join(p)
		require.NoError(t, err)
	}
	require.NoError(t, r.SetReady("alice", true))
	require.NoError(t, r.SetReady("bob", true))
	assert.Equal(t, StateOpen, r.State(), "round must not start before all seats ready")

	require.NoError(t, r.SetReady("carol", true))
	assert.Equal(t, StateBidding, r.State())

	for seat := 0; seat < game.NumSeats; seat++ {
		dealt, ok := rec.handFor(seat)
		require.True(t, ok, "seat %d got no hand", seat)
		assert.Len(t, dealt.Cards, 17)
		assert.Equal(t, [game.NumSeats]int{17, 17, 17}, dealt.HandSizes)
	}
}

func TestEntryCostAbortsAtomically(t *testing.T) {
	ledger := newFakeLedger(map[string]int{"alice": 5, "bob": 5, "carol": 0})
	r, _ := newTestRoom(t, Options{EntryCost: 5}, nil, ledger, nil)

	for _, p := range testPlayers {
		_, err := r.Join(p)
		require.NoError(t, err)
	}
	require.NoError(t, r.SetReady("alice", true))
	require.NoError(t, r.SetReady("bob", true))

	err := r.SetReady("carol", true)
	require.ErrorIs(t, err, ErrEntryCost)

	assert.Equal(t, StateOpen, r.State())
	assert.Equal(t, 5, ledger.balance("alice"), "debit must be refunded on abort")
	assert.Equal(t, 5, ledger.balance("bob"))

	snap := r.Snapshot(-1)
	for _, seat := range snap.Seats {
		assert.False(t, seat.Ready, "abort must reset readiness")
	}
}

func TestEntryCostCharged(t *testing.T) {
	ledger := newFakeLedger(map[string]int{"alice": 10, "bob": 10, "carol": 10})
	r, _ := newTestRoom(t, Options{EntryCost: 5}, nil, ledger, nil)

	seatAll(t, r)
	require.Equal(t, StateBidding, r.State())
	for _, p := range testPlayers {
		assert.Equal(t, 5, ledger.balance(p))
	}
}

func TestLeaveBlockedDuringRound(t *testing.T) {
	r, _ := newTestRoom(t, Options{}, nil, nil, nil)
	seatAll(t, r)

	assert.ErrorIs(t, r.Leave("alice"), ErrRoundActive)
}

func TestRoundSettlementAndNextRoundGate(t *testing.T) {
	rec := &capture{}
	store := &memoryStore{}
	r, _ := newTestRoom(t, Options{RoundLimit: 2}, rec, nil, store)

	seatAll(t, r)
	landlord := bidLandlord(t, r)
	playOut(t, r)

	assert.Equal(t, StateOpen, r.State(), "rounds remain, room reopens")

	snap := r.Snapshot(-1)
	assert.Equal(t, 1, snap.RoundsDone)
	sum := 0
	for _, seat := range snap.Seats {
		sum += seat.Total
		assert.False(t, seat.Ready, "readiness is per round")
	}
	assert.Zero(t, sum, "score deltas must conserve")

	require.Len(t, store.rounds, 1)
	assert.Equal(t, landlord, store.rounds[0].Landlord)
	assert.NotEmpty(t, store.rounds[0].Plays)

	settled, ok := rec.lastBroadcast(func(e any) bool { _, ok := e.(RoundSettledEvent); return ok })
	require.True(t, ok)
	assert.Equal(t, 1, settled.(RoundSettledEvent).Record.Seq)
}

func TestMatchEndsAfterRoundLimit(t *testing.T) {
	rec := &capture{}
	store := &memoryStore{}
	r, _ := newTestRoom(t, Options{RoundLimit: 1}, rec, nil, store)

	seatAll(t, r)
	bidLandlord(t, r)
	playOut(t, r)

	assert.Equal(t, StateMatchOver, r.State())

	end, ok := rec.lastBroadcast(func(e any) bool { _, ok := e.(MatchEndEvent); return ok })
	require.True(t, ok)
	summary := end.(MatchEndEvent).Summary
	assert.Equal(t, 1, summary.RoundsPlayed)
	assert.False(t, summary.Dismissed)

	require.NotNil(t, store.summary)
	assert.Equal(t, summary, *store.summary)

	assert.ErrorIs(t, r.SetReady("alice", true), ErrRoomClosed)
	assert.NoError(t, r.Leave("alice"), "leaving a finished room is allowed")
}

func TestNoLandlordRedealsWithoutConsumingBudget(t *testing.T) {
	rec := &capture{}
	r, _ := newTestRoom(t, Options{RoundLimit: 1}, rec, nil, nil)

	seatAll(t, r)
	for i := 0; i < game.NumSeats; i++ {
		snap := r.Snapshot(-1)
		require.NoError(t, r.Bid(snap.Seats[snap.Turn].PlayerID, 0))
	}

	assert.Equal(t, StateBidding, r.State(), "redeal returns to bidding")

	restart, ok := rec.lastBroadcast(func(e any) bool { _, ok := e.(RoundRestartEvent); return ok })
	require.True(t, ok)
	assert.Equal(t, "no_landlord", restart.(RoundRestartEvent).Reason)

	snap := r.Snapshot(-1)
	assert.Equal(t, 1, snap.RoundSeq, "redeal keeps the sequence number")
	assert.Zero(t, snap.RoundsDone)
}

func TestDismissVoteUnanimous(t *testing.T) {
	rec := &capture{}
	store := &memoryStore{}
	r, _ := newTestRoom(t, Options{}, rec, nil, store)

	for _, p := range testPlayers {
		_, err := r.Join(p)
		require.NoError(t, err)
	}

	require.NoError(t, r.ProposeDismiss("alice"))
	require.NoError(t, r.VoteDismiss("bob", true))
	assert.Equal(t, StateOpen, r.State(), "vote incomplete")

	require.NoError(t, r.VoteDismiss("carol", true))
	assert.Equal(t, StateDismissed, r.State())

	require.NotNil(t, store.summary)
	assert.True(t, store.summary.Dismissed)
	assert.Zero(t, store.summary.RoundsPlayed)
}

func TestDismissVoteDisagreementClears(t *testing.T) {
	rec := &capture{}
	r, _ := newTestRoom(t, Options{}, rec, nil, nil)

	for _, p := range testPlayers {
		_, err := r.Join(p)
		require.NoError(t, err)
	}

	require.NoError(t, r.ProposeDismiss("alice"))
	require.NoError(t, r.VoteDismiss("bob", false))

	assert.Equal(t, StateOpen, r.State())
	assert.Nil(t, r.Snapshot(-1).Vote)

	cleared, ok := rec.lastBroadcast(func(e any) bool { _, ok := e.(VoteClearedEvent); return ok })
	require.True(t, ok)
	assert.Equal(t, "disagreed", cleared.(VoteClearedEvent).Reason)

	require.NoError(t, r.ProposeDismiss("bob"), "a cleared vote can be reproposed")
}

func TestDismissVoteDeadlineClears(t *testing.T) {
	rec := &capture{}
	r, clock := newTestRoom(t, Options{DismissWindow: time.Minute}, rec, nil, nil)

	_, err := r.Join("alice")
	require.NoError(t, err)
	require.NoError(t, r.ProposeDismiss("alice"))

	r.Tick(clock.Now().Add(30 * time.Second))
	assert.NotNil(t, r.Snapshot(-1).Vote, "vote survives before the deadline")

	r.Tick(clock.Now().Add(time.Minute))
	assert.Nil(t, r.Snapshot(-1).Vote)
	assert.Equal(t, StateOpen, r.State())

	cleared, ok := rec.lastBroadcast(func(e any) bool { _, ok := e.(VoteClearedEvent); return ok })
	require.True(t, ok)
	assert.Equal(t, "timeout", cleared.(VoteClearedEvent).Reason)
}

func TestProposeDismissBlockedMidRound(t *testing.T) {
	r, _ := newTestRoom(t, Options{}, nil, nil, nil)
	seatAll(t, r)

	assert.ErrorIs(t, r.ProposeDismiss("alice"), ErrRoundActive)
}

func TestReconnectSnapshotCarriesHand(t *testing.T) {
	r, _ := newTestRoom(t, Options{}, nil, nil, nil)
	seatAll(t, r)
	bidLandlord(t, r)

	require.NoError(t, r.MarkOffline("bob"))
	assert.False(t, r.Snapshot(-1).Seats[1].Online)

	snap, err := r.Reconnect("bob")
	require.NoError(t, err)
	assert.True(t, snap.Seats[1].Online)
	assert.NotEmpty(t, snap.Hand)
	assert.Equal(t, snap.Seats[1].HandSize, len(snap.Hand))
	assert.GreaterOrEqual(t, snap.Landlord, 0, "landlord visible after bidding")
	assert.NotEmpty(t, snap.Bottom, "bottom revealed once bidding resolved")
}

func TestTakeoverActionForOfflineSeat(t *testing.T) {
	r, _ := newTestRoom(t, Options{}, nil, nil, nil)
	seatAll(t, r)
	landlord := bidLandlord(t, r)

	cards, pass := r.TakeoverAction(landlord)
	assert.Nil(t, cards)
	assert.False(t, pass, "online seats are never taken over")

	pid := r.Snapshot(-1).Seats[landlord].PlayerID
	require.NoError(t, r.MarkOffline(pid))

	cards, pass = r.TakeoverAction(landlord)
	require.False(t, pass, "leader must play, not pass")
	require.Len(t, cards, 1)
	require.NoError(t, r.Play(pid, cards))
}

func TestSnapshotSpectatorOmitsHand(t *testing.T) {
	r, _ := newTestRoom(t, Options{}, nil, nil, nil)
	seatAll(t, r)

	snap := r.Snapshot(-1)
	assert.Empty(t, snap.Hand)
	assert.Empty(t, snap.Bottom, "bottom hidden until a landlord is fixed")
	for _, seat := range snap.Seats {
		assert.Equal(t, 17, seat.HandSize)
	}
}

func TestPlayRejectionsLeaveRoomUnchanged(t *testing.T) {
	r, _ := newTestRoom(t, Options{}, nil, nil, nil)
	seatAll(t, r)
	bidLandlord(t, r)

	snap := r.Snapshot(-1)
	waiting := (snap.Turn + 1) % game.NumSeats
	err := r.Play(snap.Seats[waiting].PlayerID, r.Snapshot(waiting).Hand[:1])
	code, ok := game.RejectionCode(err)
	require.True(t, ok)
	assert.Equal(t, game.RejectNotYourTurn, code)

	// Two copies of a card the seat holds once.
	low := r.Snapshot(snap.Turn).Hand[0]
	err = r.Play(snap.Seats[snap.Turn].PlayerID, []deck.Card{low, low})
	code, ok = game.RejectionCode(err)
	require.True(t, ok)
	assert.Equal(t, game.RejectCardsNotHeld, code)

	after := r.Snapshot(-1)
	assert.Equal(t, StatePlaying, after.State)
	assert.Equal(t, snap.Turn, after.Turn, "rejections do not advance the turn")
}

func TestManagerOpenGetAndReap(t *testing.T) {
	clock := quartz.NewMock(t)
	logger := log.New(io.Discard)
	m := NewManager(logger, clock, nil, nil, nil)

	r, err := m.OpenRoom(Options{IdleExpiry: time.Minute, Seed: 42})
	require.NoError(t, err)
	require.NoError(t, roomid.Validate(r.ID()))

	got, ok := m.GetRoom(r.ID())
	require.True(t, ok)
	assert.Same(t, r, got)
	assert.Equal(t, 1, m.RoomCount())

	// Empty past its idle expiry: dismissed and reaped in one sweep.
	m.Tick(clock.Now().Add(2 * time.Minute))
	assert.Equal(t, 0, m.RoomCount())
	_, ok = m.GetRoom(r.ID())
	assert.False(t, ok)
}

func TestManagerRoomIDsFollowClock(t *testing.T) {
	clock := quartz.NewMock(t)
	logger := log.New(io.Discard)
	m := NewManager(logger, clock, nil, nil, nil)

	first, err := m.OpenRoom(Options{Seed: 42})
	require.NoError(t, err)
	clock.Advance(time.Millisecond)
	second, err := m.OpenRoom(Options{Seed: 43})
	require.NoError(t, err)

	require.NoError(t, roomid.Validate(first.ID()))
	require.NoError(t, roomid.Validate(second.ID()))
	assert.Less(t, first.ID(), second.ID())
}

func TestManagerKeepsOccupiedRooms(t *testing.T) {
	clock := quartz.NewMock(t)
	m := NewManager(log.New(io.Discard), clock, nil, nil, nil)

	r, err := m.OpenRoom(Options{IdleExpiry: time.Minute, Seed: 42})
	require.NoError(t, err)
	_, err = r.Join("alice")
	require.NoError(t, err)

	m.Tick(clock.Now().Add(time.Hour))
	assert.Equal(t, 1, m.RoomCount(), "occupied rooms never idle out")

	found, seat, ok := m.FindSeat("alice")
	require.True(t, ok)
	assert.Same(t, r, found)
	assert.Equal(t, 0, seat)
}

func TestManagerJoinSeatAndSnapshot(t *testing.T) {
	m := NewManager(log.New(io.Discard), quartz.NewMock(t), nil, nil, nil)

	r, err := m.OpenRoom(Options{Seed: 42})
	require.NoError(t, err)

	seat, err := m.JoinSeat(r.ID(), "alice")
	require.NoError(t, err)
	assert.Equal(t, 0, seat)

	_, err = m.JoinSeat("nope", "bob")
	assert.ErrorIs(t, err, ErrRoomNotFound)

	snap, err := m.GetSnapshot(r.ID(), -1)
	require.NoError(t, err)
	assert.Equal(t, "alice", snap.Seats[0].PlayerID)

	_, err = m.GetSnapshot("nope", -1)
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestManagerListRooms(t *testing.T) {
	m := NewManager(log.New(io.Discard), quartz.NewMock(t), nil, nil, nil)

	_, err := m.OpenRoom(Options{RoundLimit: 5, EntryCost: 3, Seed: 42})
	require.NoError(t, err)

	rooms := m.ListRooms()
	require.Len(t, rooms, 1)
	assert.Equal(t, "open", rooms[0].State)
	assert.Equal(t, 5, rooms[0].RoundLimit)
	assert.Equal(t, 3, rooms[0].EntryCost)
	assert.Zero(t, rooms[0].Occupied)
}
