package server

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/lox/landlordd/internal/deck"
	"github.com/lox/landlordd/internal/game"
	"github.com/lox/landlordd/internal/room"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"requestId,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data interface{}) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Client → Server Messages

type AuthData struct {
	PlayerName string `json:"playerName"`
	Token      string `json:"token,omitempty"`
}

type CreateRoomData struct {
	Rounds     int    `json:"rounds,omitempty"`
	BidMode    string `json:"bidMode,omitempty"` // "call" or "score"
	MaxCall    int    `json:"maxCall,omitempty"`
	LastChance bool   `json:"lastChance,omitempty"`
	EntryCost  int    `json:"entryCost,omitempty"`
}

type JoinRoomData struct {
	RoomID string `json:"roomId"`
}

type LeaveRoomData struct {
	RoomID string `json:"roomId"`
}

type ReadyData struct {
	Ready bool `json:"ready"`
}

type BidData struct {
	Value int `json:"value"`
}

// PlayData carries cards in the compact text form, e.g. "3h3d3s".
type PlayData struct {
	Cards string `json:"cards"`
}

type VoteDismissData struct {
	Agree bool `json:"agree"`
}

// Server → Client Messages

type AuthResponseData struct {
	Success  bool   `json:"success"`
	PlayerID string `json:"playerId,omitempty"`
	Error    string `json:"error,omitempty"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type RoomCreatedData struct {
	RoomID string `json:"roomId"`
}

type RoomJoinedData struct {
	RoomID   string        `json:"roomId"`
	Seat     int           `json:"seat"`
	Snapshot room.Snapshot `json:"snapshot"`
}

type RoomLeftData struct {
	RoomID string `json:"roomId"`
}

type RoomListData struct {
	Rooms []room.Summary `json:"rooms"`
}

type SnapshotData struct {
	Snapshot room.Snapshot `json:"snapshot"`
}

// Room and round event payloads

type HandDealtData struct {
	Seq       int                `json:"seq"`
	Seat      int                `json:"seat"`
	Cards     []deck.Card        `json:"cards"`
	HandSizes [game.NumSeats]int `json:"handSizes"`
	FirstCall int                `json:"firstCall"`
}

type BidMadeData struct {
	Seat     int `json:"seat"`
	Call     int `json:"call"`
	NextTurn int `json:"nextTurn"`
}

type LandlordData struct {
	Seat   int         `json:"seat"`
	Stake  int         `json:"stake"`
	Bottom []deck.Card `json:"bottom"`
}

type PlayMadeData struct {
	Seat       int         `json:"seat"`
	PlayType   string      `json:"playType"`
	Cards      []deck.Card `json:"cards"`
	Remaining  int         `json:"remaining"`
	Multiplier int         `json:"multiplier"`
	NextTurn   int         `json:"nextTurn"`
}

type PassMadeData struct {
	Seat         int  `json:"seat"`
	NextTurn     int  `json:"nextTurn"`
	TrickCleared bool `json:"trickCleared"`
}

type RoundEndData struct {
	Seq        int                `json:"seq"`
	Winner     int                `json:"winner"`
	Deltas     [game.NumSeats]int `json:"deltas"`
	Base       int                `json:"base"`
	Multiplier int                `json:"multiplier"`
	Spring     bool               `json:"spring"`
}

type RoundRestartData struct {
	Seq    int    `json:"seq"`
	Reason string `json:"reason"`
}

type RoundSettledData struct {
	Seq    int                `json:"seq"`
	Totals [game.NumSeats]int `json:"totals"`
}

type SeatUpdateData struct {
	Seat     int    `json:"seat"`
	PlayerID string `json:"playerId"`
	Ready    bool   `json:"ready"`
	Online   bool   `json:"online"`
}

type MatchEndData struct {
	RoundsPlayed int                   `json:"roundsPlayed"`
	Totals       [game.NumSeats]int    `json:"totals"`
	Players      [game.NumSeats]string `json:"players"`
	Dismissed    bool                  `json:"dismissed"`
}

type VoteStateData struct {
	Proposer int                   `json:"proposer"`
	Choices  [game.NumSeats]string `json:"choices"`
	Deadline time.Time             `json:"deadline"`
}

type VoteClearedData struct {
	Reason string `json:"reason"`
}

// eventMessage maps a room or round event to its wire message. The
// event set is closed; an unknown event is a programming error.
func eventMessage(event any) (*Message, error) {
	switch e := event.(type) {
	case room.HandDealtEvent:
		return NewMessage(MessageTypeHandDealt, HandDealtData{
			Seq: e.Seq, Seat: e.Seat, Cards: e.Cards,
			HandSizes: e.HandSizes, FirstCall: e.FirstCall,
		})
	case room.SeatUpdateEvent:
		return NewMessage(MessageTypeSeatUpdate, SeatUpdateData{
			Seat: e.Seat, PlayerID: e.PlayerID, Ready: e.Ready, Online: e.Online,
		})
	case room.RoundRestartEvent:
		return NewMessage(MessageTypeRoundRestart, RoundRestartData{Seq: e.Seq, Reason: e.Reason})
	case room.RoundSettledEvent:
		return NewMessage(MessageTypeRoundSettled, RoundSettledData{Seq: e.Record.Seq, Totals: e.Totals})
	case room.MatchEndEvent:
		return NewMessage(MessageTypeMatchEnd, MatchEndData{
			RoundsPlayed: e.Summary.RoundsPlayed,
			Totals:       e.Summary.Totals,
			Players:      e.Summary.Players,
			Dismissed:    e.Summary.Dismissed,
		})
	case room.VoteStateEvent:
		var choices [game.NumSeats]string
		for i, c := range e.Choices {
			choices[i] = c.String()
		}
		return NewMessage(MessageTypeVoteState, VoteStateData{
			Proposer: e.Proposer, Choices: choices, Deadline: e.Deadline,
		})
	case room.VoteClearedEvent:
		return NewMessage(MessageTypeVoteCleared, VoteClearedData{Reason: e.Reason})
	case game.BidEvent:
		return NewMessage(MessageTypeBidMade, BidMadeData{Seat: e.Seat, Call: e.Call, NextTurn: e.NextTurn})
	case game.LandlordEvent:
		return NewMessage(MessageTypeLandlord, LandlordData{Seat: e.Seat, Stake: e.Stake, Bottom: e.Bottom})
	case game.PlayEvent:
		return NewMessage(MessageTypePlayMade, PlayMadeData{
			Seat:       e.Seat,
			PlayType:   e.Play.Type.String(),
			Cards:      e.Play.Cards,
			Remaining:  e.Remaining,
			Multiplier: e.Multiplier,
			NextTurn:   e.NextTurn,
		})
	case game.PassEvent:
		return NewMessage(MessageTypePassMade, PassMadeData{
			Seat: e.Seat, NextTurn: e.NextTurn, TrickCleared: e.TrickCleared,
		})
	case game.RedealEvent:
		return NewMessage(MessageTypeRoundRestart, RoundRestartData{Seq: e.Seq, Reason: "no_landlord"})
	case game.RoundAbortEvent:
		return NewMessage(MessageTypeRoundRestart, RoundRestartData{Seq: e.Seq, Reason: e.Reason})
	case game.RoundEndEvent:
		return NewMessage(MessageTypeRoundEnd, RoundEndData{
			Seq:        e.Seq,
			Winner:     e.Winner,
			Deltas:     e.Result.Deltas,
			Base:       e.Result.Base,
			Multiplier: e.Result.Multiplier,
			Spring:     e.Result.Spring,
		})
	default:
		return nil, fmt.Errorf("unmapped event type %T", event)
	}
}
