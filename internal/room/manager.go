package room

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/landlordd/internal/roomid"
)

// Summary holds lightweight room metadata for listings.
type Summary struct {
	ID         string `json:"id"`
	State      string `json:"state"`
	Occupied   int    `json:"occupied"`
	RoundsDone int    `json:"rounds_done"`
	RoundLimit int    `json:"round_limit"`
	EntryCost  int    `json:"entry_cost"`
}

// Manager tracks open rooms and drives their time-based transitions.
type Manager struct {
	logger    *log.Logger
	clock     quartz.Clock
	messenger Messenger
	ledger    Ledger
	store     HistoryStore
	ids       *roomid.Generator

	mu    sync.RWMutex
	rooms map[string]*Room
}

// NewManager constructs an empty manager. Collaborators follow the same
// nil conventions as NewRoom.
func NewManager(logger *log.Logger, clock quartz.Clock, messenger Messenger, ledger Ledger, store HistoryStore) *Manager {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Manager{
		logger:    logger.With("component", "room_manager"),
		clock:     clock,
		messenger: messenger,
		ledger:    ledger,
		store:     store,
		ids:       roomid.NewGenerator(func() time.Time { return clock.Now() }, nil),
		rooms:     make(map[string]*Room),
	}
}

// OpenRoom creates a room with a generated identifier.
func (m *Manager) OpenRoom(opts Options) (*Room, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.ids.Generate()
	room := NewRoom(id, opts, m.logger, m.clock, m.messenger, m.ledger, m.store)
	m.rooms[id] = room
	m.logger.Info("room opened", "room", id, "rounds", opts.RoundLimit, "cost", opts.EntryCost)
	return room, nil
}

// GetRoom retrieves a room by ID.
func (m *Manager) GetRoom(id string) (*Room, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	room, ok := m.rooms[id]
	return room, ok
}

// JoinSeat seats the player in the room, returning the seat index.
func (m *Manager) JoinSeat(roomID, playerID string) (int, error) {
	room, ok := m.GetRoom(roomID)
	if !ok {
		return -1, ErrRoomNotFound
	}
	return room.Join(playerID)
}

// GetSnapshot returns a consistent view of the room. forSeat includes
// that seat's exact hand; pass -1 for a spectator view.
func (m *Manager) GetSnapshot(roomID string, forSeat int) (Snapshot, error) {
	room, ok := m.GetRoom(roomID)
	if !ok {
		return Snapshot{}, ErrRoomNotFound
	}
	return room.Snapshot(forSeat), nil
}

// FindSeat returns the room currently seating the player, if any.
func (m *Manager) FindSeat(playerID string) (*Room, int, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, room := range m.rooms {
		room.mu.Lock()
		seat := room.seatOf(playerID)
		room.mu.Unlock()
		if seat >= 0 {
			return room, seat, true
		}
	}
	return nil, -1, false
}

// ListRooms returns a snapshot of all tracked rooms.
func (m *Manager) ListRooms() []Summary {
	m.mu.RLock()
	defer m.mu.RUnlock()

	summaries := make([]Summary, 0, len(m.rooms))
	for _, room := range m.rooms {
		snap := room.Snapshot(-1)
		occupied := 0
		for _, seat := range snap.Seats {
			if seat.PlayerID != "" {
				occupied++
			}
		}
		summaries = append(summaries, Summary{
			ID:         room.ID(),
			State:      snap.State.String(),
			Occupied:   occupied,
			RoundsDone: snap.RoundsDone,
			RoundLimit: snap.RoundLimit,
			EntryCost:  room.opts.EntryCost,
		})
	}
	return summaries
}

// RoomCount returns the number of tracked rooms.
func (m *Manager) RoomCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}

// Tick forwards the clock to every room, then reaps rooms that are
// closed and fully vacated.
func (m *Manager) Tick(now time.Time) {
	m.mu.RLock()
	rooms := make([]*Room, 0, len(m.rooms))
	for _, room := range m.rooms {
		rooms = append(rooms, room)
	}
	m.mu.RUnlock()

	for _, room := range rooms {
		room.Tick(now)
	}

	// Dismissed rooms go immediately; finished matches linger until the
	// players have left.
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, room := range m.rooms {
		if room.State() == StateDismissed || (room.Closed() && room.Empty()) {
			delete(m.rooms, id)
			m.logger.Info("room reaped", "room", id)
		}
	}
}

// Run ticks all rooms on the given cadence until the context ends.
func (m *Manager) Run(ctx context.Context, interval time.Duration) error {
	ticker := m.clock.TickerFunc(ctx, interval, func() error {
		m.Tick(m.clock.Now())
		return nil
	}, "room_manager_tick")
	return ticker.Wait()
}
