package server

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/landlordd/internal/deck"
	"github.com/lox/landlordd/internal/game"
	"github.com/lox/landlordd/internal/room"
)

// Connection represents a WebSocket connection to a client
type Connection struct {
	conn      *websocket.Conn
	send      chan *Message
	playerID  string
	roomID    string
	seat      int
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.RWMutex
	closeOnce sync.Once
	manager   *room.Manager
}

// NewConnection creates a new connection wrapper
func NewConnection(conn *websocket.Conn, logger *log.Logger, manager *room.Manager) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		conn:    conn,
		send:    make(chan *Message, 256),
		seat:    -1,
		logger:  logger.WithPrefix("conn"),
		ctx:     ctx,
		cancel:  cancel,
		manager: manager,
	}
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.send)
		err = c.conn.Close()
	})
	return err
}

// SendMessage sends a message to the client
func (c *Connection) SendMessage(msg *Message) error {
	defer func() {
		if r := recover(); r != nil {
			// Channel was closed during shutdown.
			c.logger.Debug("Attempted to send message on closed connection", "error", r)
		}
	}()

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		_ = c.Close()
		return ErrConnectionClosed
	}
}

// SetPlayer associates this connection with a player
func (c *Connection) SetPlayer(playerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playerID = playerID
}

// GetPlayer returns the associated player ID
func (c *Connection) GetPlayer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerID
}

// SetSeat associates this connection with a room seat. Pass an empty
// roomID to clear the association.
func (c *Connection) SetSeat(roomID string, seat int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roomID = roomID
	c.seat = seat
}

// GetRoom returns the associated room ID
func (c *Connection) GetRoom() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.roomID
}

// GetSeat returns the associated seat, -1 when unseated
func (c *Connection) GetSeat() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.seat
}

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

var ErrConnectionClosed = websocket.ErrCloseSent

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		var msg Message
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			break
		}

		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// handleMessage processes incoming messages from the client
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("Received message", "type", msg.Type, "player", c.GetPlayer())

	switch msg.Type {
	case MessageTypeAuth:
		var data AuthData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse auth data")
			return
		}
		c.handleAuth(data)

	case MessageTypeCreateRoom:
		var data CreateRoomData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse create room data")
			return
		}
		c.handleCreateRoom(data)

	case MessageTypeJoinRoom:
		var data JoinRoomData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse join room data")
			return
		}
		c.handleJoinRoom(data)

	case MessageTypeLeaveRoom:
		c.handleLeaveRoom()

	case MessageTypeListRooms:
		c.handleListRooms()

	case MessageTypeReady:
		var data ReadyData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse ready data")
			return
		}
		c.withRoom(func(r *room.Room, player string) error {
			return r.SetReady(player, data.Ready)
		})

	case MessageTypeBid:
		var data BidData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse bid data")
			return
		}
		c.withRoom(func(r *room.Room, player string) error {
			return r.Bid(player, data.Value)
		})

	case MessageTypePlay:
		var data PlayData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse play data")
			return
		}
		cards, err := deck.ParseCards(data.Cards)
		if err != nil {
			c.sendError("invalid_cards", err.Error())
			return
		}
		c.withRoom(func(r *room.Room, player string) error {
			return r.Play(player, cards)
		})

	case MessageTypePass:
		c.withRoom(func(r *room.Room, player string) error {
			return r.Pass(player)
		})

	case MessageTypeProposeDismiss:
		c.withRoom(func(r *room.Room, player string) error {
			return r.ProposeDismiss(player)
		})

	case MessageTypeVoteDismiss:
		var data VoteDismissData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse vote data")
			return
		}
		c.withRoom(func(r *room.Room, player string) error {
			return r.VoteDismiss(player, data.Agree)
		})

	case MessageTypeSnapshot:
		c.handleSnapshot()

	default:
		c.sendError("unknown_message_type", "Unknown message type: "+msg.Type.String())
	}
}

// sendError sends an error message to the client
func (c *Connection) sendError(code, message string) {
	errorMsg, err := NewMessage(MessageTypeError, ErrorData{
		Code:    code,
		Message: message,
	})
	if err != nil {
		c.logger.Error("Failed to create error message", "error", err)
		return
	}

	_ = c.SendMessage(errorMsg)
}

// errorCode maps room and round errors to stable protocol codes.
func errorCode(err error) string {
	if code, ok := game.RejectionCode(err); ok {
		return string(code)
	}
	switch {
	case errors.Is(err, room.ErrRoomNotFound):
		return "room_not_found"
	case errors.Is(err, room.ErrRoomFull):
		return "room_full"
	case errors.Is(err, room.ErrRoomClosed):
		return "room_closed"
	case errors.Is(err, room.ErrAlreadySeated):
		return "already_seated"
	case errors.Is(err, room.ErrNotSeated):
		return "not_seated"
	case errors.Is(err, room.ErrRoundActive):
		return "round_active"
	case errors.Is(err, room.ErrNoActiveRound):
		return "no_active_round"
	case errors.Is(err, room.ErrEntryCost):
		return "entry_cost_failed"
	case errors.Is(err, room.ErrVoteActive):
		return "vote_active"
	case errors.Is(err, room.ErrNoVote):
		return "no_vote"
	default:
		return "internal_error"
	}
}

func (c *Connection) handleAuth(data AuthData) {
	c.logger.Info("Auth request", "playerName", data.PlayerName)

	// Simple authentication - just accept any player name
	if data.PlayerName == "" {
		c.sendError("invalid_auth", "Player name required")
		return
	}

	c.SetPlayer(data.PlayerName)

	response, _ := NewMessage(MessageTypeAuthResponse, AuthResponseData{
		Success:  true,
		PlayerID: data.PlayerName,
	})
	_ = c.SendMessage(response)
}

func (c *Connection) handleCreateRoom(data CreateRoomData) {
	c.logger.Info("Create room request", "player", c.GetPlayer())

	if c.manager == nil {
		c.sendError("service_unavailable", "Room manager not available")
		return
	}
	if c.GetPlayer() == "" {
		c.sendError("not_authenticated", "Must authenticate first")
		return
	}

	opts := room.DefaultOptions()
	if data.Rounds > 0 {
		opts.RoundLimit = data.Rounds
	}
	if data.BidMode == "score" {
		opts.BidMode = game.BidModeScore
	}
	if data.MaxCall > 0 {
		opts.MaxCall = data.MaxCall
	}
	opts.LastChance = data.LastChance
	opts.EntryCost = data.EntryCost

	r, err := c.manager.OpenRoom(opts)
	if err != nil {
		c.sendError("create_failed", err.Error())
		return
	}

	response, _ := NewMessage(MessageTypeRoomCreated, RoomCreatedData{RoomID: r.ID()})
	_ = c.SendMessage(response)
}

func (c *Connection) handleJoinRoom(data JoinRoomData) {
	c.logger.Info("Join room request", "roomId", data.RoomID, "player", c.GetPlayer())

	if c.manager == nil {
		c.sendError("service_unavailable", "Room manager not available")
		return
	}
	player := c.GetPlayer()
	if player == "" {
		c.sendError("not_authenticated", "Must authenticate first")
		return
	}

	seat, err := c.manager.JoinSeat(data.RoomID, player)
	if errors.Is(err, room.ErrAlreadySeated) {
		// A returning player gets a full resync of their seat.
		r, ok := c.manager.GetRoom(data.RoomID)
		if !ok {
			c.sendError("room_not_found", "Room not found: "+data.RoomID)
			return
		}
		snap, rerr := r.Reconnect(player)
		if rerr != nil {
			c.sendError(errorCode(rerr), rerr.Error())
			return
		}
		for i, s := range snap.Seats {
			if s.PlayerID == player {
				seat = i
			}
		}
		c.SetSeat(data.RoomID, seat)
		response, _ := NewMessage(MessageTypeRoomJoined, RoomJoinedData{
			RoomID: data.RoomID, Seat: seat, Snapshot: snap,
		})
		_ = c.SendMessage(response)
		return
	}
	if err != nil {
		c.sendError(errorCode(err), err.Error())
		return
	}

	c.SetSeat(data.RoomID, seat)
	snap, _ := c.manager.GetSnapshot(data.RoomID, seat)
	response, _ := NewMessage(MessageTypeRoomJoined, RoomJoinedData{
		RoomID: data.RoomID, Seat: seat, Snapshot: snap,
	})
	_ = c.SendMessage(response)
}

func (c *Connection) handleLeaveRoom() {
	roomID := c.GetRoom()
	c.logger.Info("Leave room request", "roomId", roomID, "player", c.GetPlayer())

	if roomID == "" {
		c.sendError("not_seated", "Not in a room")
		return
	}
	r, ok := c.manager.GetRoom(roomID)
	if !ok {
		c.SetSeat("", -1)
		c.sendError("room_not_found", "Room no longer exists")
		return
	}

	if err := r.Leave(c.GetPlayer()); err != nil {
		c.sendError(errorCode(err), err.Error())
		return
	}

	c.SetSeat("", -1)
	response, _ := NewMessage(MessageTypeRoomLeft, RoomLeftData{RoomID: roomID})
	_ = c.SendMessage(response)
}

func (c *Connection) handleListRooms() {
	if c.manager == nil {
		c.sendError("service_unavailable", "Room manager not available")
		return
	}

	response, _ := NewMessage(MessageTypeRoomList, RoomListData{Rooms: c.manager.ListRooms()})
	_ = c.SendMessage(response)
}

func (c *Connection) handleSnapshot() {
	roomID := c.GetRoom()
	if roomID == "" {
		c.sendError("not_seated", "Not in a room")
		return
	}
	snap, err := c.manager.GetSnapshot(roomID, c.GetSeat())
	if err != nil {
		c.sendError(errorCode(err), err.Error())
		return
	}

	response, _ := NewMessage(MessageTypeSnapshotState, SnapshotData{Snapshot: snap})
	_ = c.SendMessage(response)
}

// withRoom runs a room action for the seated player, translating
// failures to protocol errors. Successes need no direct reply; the
// room publishes events.
func (c *Connection) withRoom(action func(r *room.Room, player string) error) {
	player := c.GetPlayer()
	if player == "" {
		c.sendError("not_authenticated", "Must authenticate first")
		return
	}
	roomID := c.GetRoom()
	if roomID == "" {
		c.sendError("not_seated", "Not in a room")
		return
	}
	r, ok := c.manager.GetRoom(roomID)
	if !ok {
		c.sendError("room_not_found", "Room no longer exists")
		return
	}

	if err := action(r, player); err != nil {
		c.sendError(errorCode(err), err.Error())
	}
}
