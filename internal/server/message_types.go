package server

// MessageType represents a WebSocket message type with type safety
type MessageType string

// WebSocket message type constants used for the client-server protocol.
const (
	// Client to server messages
	MessageTypeAuth           MessageType = "auth"
	MessageTypeCreateRoom     MessageType = "create_room"
	MessageTypeJoinRoom       MessageType = "join_room"
	MessageTypeLeaveRoom      MessageType = "leave_room"
	MessageTypeListRooms      MessageType = "list_rooms"
	MessageTypeReady          MessageType = "ready"
	MessageTypeBid            MessageType = "bid"
	MessageTypePlay           MessageType = "play"
	MessageTypePass           MessageType = "pass"
	MessageTypeProposeDismiss MessageType = "propose_dismiss"
	MessageTypeVoteDismiss    MessageType = "vote_dismiss"
	MessageTypeSnapshot       MessageType = "snapshot"

	// Server to client messages
	MessageTypeAuthResponse  MessageType = "auth_response"
	MessageTypeError         MessageType = "error"
	MessageTypeRoomCreated   MessageType = "room_created"
	MessageTypeRoomJoined    MessageType = "room_joined"
	MessageTypeRoomLeft      MessageType = "room_left"
	MessageTypeRoomList      MessageType = "room_list"
	MessageTypeSnapshotState MessageType = "snapshot_state"

	// Room and round events, forwarded as they happen
	MessageTypeSeatUpdate   MessageType = "seat_update"
	MessageTypeHandDealt    MessageType = "hand_dealt"
	MessageTypeBidMade      MessageType = "bid_made"
	MessageTypeLandlord     MessageType = "landlord_fixed"
	MessageTypePlayMade     MessageType = "play_made"
	MessageTypePassMade     MessageType = "pass_made"
	MessageTypeRoundEnd     MessageType = "round_end"
	MessageTypeRoundRestart MessageType = "round_restart"
	MessageTypeRoundSettled MessageType = "round_settled"
	MessageTypeMatchEnd     MessageType = "match_end"
	MessageTypeVoteState    MessageType = "vote_state"
	MessageTypeVoteCleared  MessageType = "vote_cleared"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}
