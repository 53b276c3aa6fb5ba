package hub

import "github.com/pairwave/signaling/internal/presence"

// Outbound frame types. Every frame carries a "type" discriminator so the
// client can dispatch on it.

type ConnectedEvent struct {
	Type   string `json:"type"`
	PeerID string `json:"peerId"`
}

type UserCountEvent struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// MatchFoundEvent is sent to both sides of a pairing; exactly one side sees
// Initiator=true and creates the WebRTC offer.
type MatchFoundEvent struct {
	Type        string `json:"type"`
	RoomID      string `json:"roomId"`
	PeerID      string `json:"peerId"`
	DisplayName string `json:"displayName"`
	Initiator   bool   `json:"initiator"`
	Reputation  int    `json:"reputation"`
	AvatarURL   string `json:"avatarUrl"`
}

// ForceDisconnectEvent tells a 1:1 survivor to return to discovery.
type ForceDisconnectEvent struct {
	Type string `json:"type"`
}

// PeerLeftEvent tells group-room survivors that one member departed; the room
// continues.
type PeerLeftEvent struct {
	Type   string `json:"type"`
	PeerID string `json:"peerId"`
}

// PeerJoinedEvent tells existing room members that the queue (or an invite)
// added someone.
type PeerJoinedEvent struct {
	Type   string              `json:"type"`
	RoomID string              `json:"roomId"`
	Peer   presence.PublicPeer `json:"peer"`
}

type OnlineUsersEvent struct {
	Type  string                `json:"type"`
	Users []presence.PublicPeer `json:"users"`
}

type InviteReceivedEvent struct {
	Type string              `json:"type"`
	From presence.PublicPeer `json:"from"`
}

type NoUsersFoundEvent struct {
	Type string `json:"type"`
}

const (
	evConnected       = "connected"
	evUserCount       = "user-count"
	evMatchFound      = "match-found"
	evForceDisconnect = "force-disconnect"
	evPeerLeft        = "peer-left"
	evPeerJoined      = "peer-joined"
	evOnlineUsers     = "online-users-list"
	evInviteReceived  = "invite-received"
	evNoUsersFound    = "no-users-found"
)
