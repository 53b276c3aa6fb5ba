// Package hub is the single owner of all matchmaking state: connection
// registry, queue, rooms, adjacency graph and reputation live behind one
// mutex, and every operation runs as an atomic unit with respect to the
// others. Nothing here performs blocking I/O — frame delivery is
// fire-and-forget through presence.Sender.
package hub

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pairwave/signaling/internal/invites"
	"github.com/pairwave/signaling/internal/match"
	"github.com/pairwave/signaling/internal/metrics"
	"github.com/pairwave/signaling/internal/presence"
	"github.com/pairwave/signaling/internal/relay"
	"github.com/pairwave/signaling/internal/reputation"
	"github.com/pairwave/signaling/internal/rooms"
)

type Hub struct {
	mu sync.Mutex

	maxRoomSize int
	log         *zap.Logger

	registry *presence.Registry
	queue    *match.Queue
	rooms    *rooms.Manager
	graph    *rooms.Graph
	rep      *reputation.Tracker
	relay    *relay.Relay
	invites  *invites.Store
}

type Options struct {
	MaxRoomSize int
	Invites     *invites.Store
	Logger      *zap.Logger
	// Reputation overrides the default tracker; tests inject a fake clock.
	Reputation *reputation.Tracker
}

func New(opts Options) *Hub {
	if opts.MaxRoomSize < 2 {
		opts.MaxRoomSize = 10
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Reputation == nil {
		opts.Reputation = reputation.NewTracker()
	}
	reg := presence.NewRegistry()
	return &Hub{
		maxRoomSize: opts.MaxRoomSize,
		log:         opts.Logger,
		registry:    reg,
		queue:       match.NewQueue(),
		rooms:       rooms.NewManager(),
		graph:       rooms.NewGraph(),
		rep:         opts.Reputation,
		relay:       relay.New(reg, opts.Logger),
		invites:     opts.Invites,
	}
}

// Connect registers a new connection, greets it with its assigned peer id and
// broadcasts the updated presence count to everyone.
func (h *Hub) Connect(peerID, subject, displayName, avatarURL string, s presence.Sender) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.registry.Register(peerID, subject, displayName, avatarURL, s)
	h.rep.Ensure(peerID)
	metrics.PeersOnline.Set(float64(h.registry.Count()))

	h.send(peerID, ConnectedEvent{Type: evConnected, PeerID: peerID})
	h.broadcastCountLocked()

	h.log.Info("peer connected", zap.String("peer", peerID), zap.String("name", displayName))
}

// Disconnect runs full departure cleanup for the connection and removes it
// from the registry.
func (h *Hub) Disconnect(peerID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.cleanupLocked(peerID, "")
	h.registry.Unregister(peerID)
	if h.invites != nil {
		h.invites.DropPeer(peerID)
	}
	metrics.PeersOnline.Set(float64(h.registry.Count()))
	h.broadcastCountLocked()

	h.log.Info("peer disconnected", zap.String("peer", peerID))
}

// FindMatch enqueues the peer and announces any pairings the drain produced.
// A peer already mid-call is ignored; it gets no new match until it skips or
// disconnects.
func (h *Hub) FindMatch(peerID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if roomID, ok := h.rooms.RoomOf(peerID); ok {
		h.log.Debug("find-match while in room ignored",
			zap.String("peer", peerID), zap.String("room", roomID))
		return
	}
	h.queue.Enqueue(peerID)
	h.announceLocked()
	metrics.QueueDepth.Set(float64(h.queue.Len()))
}

// LeaveQueue cancels a pending find-match.
func (h *Hub) LeaveQueue(peerID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.queue.Remove(peerID)
	metrics.QueueDepth.Set(float64(h.queue.Len()))
}

// Skip ends the pairing with target (or every current partner when target is
// empty) and puts the skipper back at the queue tail.
func (h *Hub) Skip(peerID, target string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.cleanupLocked(peerID, target)
	// A scoped skip inside a multi-party room leaves the skipper mid-call;
	// only room-free peers go back into the pool.
	if !h.inCallLocked(peerID) {
		h.queue.Enqueue(peerID)
		h.announceLocked()
	}
	metrics.QueueDepth.Set(float64(h.queue.Len()))
}

// Relay forwards a signaling or auxiliary frame to target. The first
// delivered frame inside a room marks it active.
func (h *Hub) Relay(kind relay.Kind, from, target string, payload json.RawMessage) relay.Result {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !relay.Known(kind) {
		return relay.TargetNotFound
	}
	res := h.relay.Forward(kind, from, target, payload)
	if res == relay.Delivered {
		if roomID, ok := h.rooms.RoomOf(from); ok {
			h.rooms.MarkActive(roomID)
		}
	}
	return res
}

// OnlineUsers sends the requester a presence snapshot.
func (h *Hub) OnlineUsers(peerID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	users := make([]presence.PublicPeer, 0, h.registry.Count())
	for p := range h.registry.All() {
		users = append(users, h.profileLocked(p))
	}
	h.send(peerID, OnlineUsersEvent{Type: evOnlineUsers, Users: users})
}

// Invite records a direct call invite and notifies the target. Targets that
// are gone or already in a call yield no-users-found to the inviter.
func (h *Hub) Invite(from, target string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.invites == nil {
		return
	}
	if !h.registry.Connected(target) || h.inCallLocked(target) || from == target {
		h.send(from, NoUsersFoundEvent{Type: evNoUsersFound})
		return
	}
	fp, ok := h.registry.Get(from)
	if !ok {
		return
	}
	h.invites.Create(from, target)
	h.send(target, InviteReceivedEvent{Type: evInviteReceived, From: h.profileLocked(fp)})
}

// AcceptInvite redeems a pending invite from inviter and forms the room.
// Stale, expired or impossible accepts are dropped silently.
func (h *Hub) AcceptInvite(peerID, inviter string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.invites == nil || !h.invites.Redeem(inviter, peerID) {
		return
	}
	if !h.registry.Connected(inviter) || h.inCallLocked(inviter) || h.inCallLocked(peerID) {
		return
	}
	h.queue.Remove(inviter)
	h.queue.Remove(peerID)
	h.formRoomLocked(match.Match{RoomID: newRoomID(), Peers: [2]string{inviter, peerID}}, "invite")
	metrics.QueueDepth.Set(float64(h.queue.Len()))
}

// AddUser grows the caller's room by one peer from the queue. Full rooms and
// empty queues both come back as no-users-found.
func (h *Hub) AddUser(peerID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	roomID, ok := h.rooms.RoomOf(peerID)
	if !ok {
		h.send(peerID, NoUsersFoundEvent{Type: evNoUsersFound})
		return
	}
	room, ok := h.rooms.Get(roomID)
	if !ok {
		return
	}
	members := h.rooms.Participants(roomID)
	candidate := h.queue.GrowRoom(members, room.MaxCapacity)
	if candidate == "" {
		h.send(peerID, NoUsersFoundEvent{Type: evNoUsersFound})
		return
	}
	if err := h.rooms.Join(roomID, candidate); err != nil {
		h.queue.Enqueue(candidate)
		h.send(peerID, NoUsersFoundEvent{Type: evNoUsersFound})
		return
	}

	h.rep.Ensure(candidate)
	h.rep.StartTimer(candidate)

	cp, _ := h.registry.Get(candidate)
	for _, member := range members {
		h.graph.Link(candidate, member)
		if cp != nil {
			h.send(member, PeerJoinedEvent{Type: evPeerJoined, RoomID: roomID, Peer: h.profileLocked(cp)})
		}
		if mp, ok := h.registry.Get(member); ok {
			// the newcomer dials every existing member
			h.send(candidate, h.matchFoundLocked(roomID, mp, true))
		}
	}

	metrics.MatchesTotal.WithLabelValues("grow").Inc()
	metrics.QueueDepth.Set(float64(h.queue.Len()))
	h.log.Info("room grew", zap.String("room", roomID), zap.String("peer", candidate))
}

// Counts reports (peers, rooms, queued) for health/introspection.
func (h *Hub) Counts() (peers, roomCount, queued int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.registry.Count(), h.rooms.Count(), h.queue.Len()
}

// cleanupLocked is the departure state machine. For each affected counterpart
// the classification is driven by the counterpart's adjacency degree: a
// survivor whose sole adjacency is the departing peer is forced back to
// discovery; survivors with other adjacencies are merely told the peer left.
func (h *Hub) cleanupLocked(departing, target string) {
	affected := h.graph.Adjacent(departing)
	if target != "" {
		affected = []string{target}
	}

	for _, p := range affected {
		if !h.graph.HasEdge(departing, p) {
			continue // already cleaned up; disconnect can race an explicit skip
		}
		if h.graph.SoleMatch(p, departing) {
			h.graph.Unlink(departing, p)
			h.rooms.Leave(p)
			h.rep.Flush(p)
			h.send(p, ForceDisconnectEvent{Type: evForceDisconnect})
			metrics.ForceDisconnects.Inc()
		} else {
			h.graph.Unlink(departing, p)
			h.send(p, PeerLeftEvent{Type: evPeerLeft, PeerID: departing})
			metrics.PeerLeft.Inc()
		}
	}

	if h.graph.Degree(departing) == 0 {
		h.rooms.Leave(departing)
	}

	h.queue.Remove(departing)
	if awarded := h.rep.Flush(departing); awarded > 0 {
		metrics.ReputationAwarded.Add(float64(awarded))
	}
	h.broadcastCountLocked()

	metrics.RoomsActive.Set(float64(h.rooms.Count()))
	metrics.QueueDepth.Set(float64(h.queue.Len()))
}

// announceLocked turns pending queue pairings into live rooms and tells both
// sides, exactly once per match.
func (h *Hub) announceLocked() {
	for _, m := range h.queue.TakePendingMatches() {
		h.formRoomLocked(m, "queue")
	}
}

func (h *Hub) formRoomLocked(m match.Match, origin string) {
	a, b := m.Peers[0], m.Peers[1]
	h.rooms.Create(m.RoomID, h.maxRoomSize)
	_ = h.rooms.Join(m.RoomID, a)
	_ = h.rooms.Join(m.RoomID, b)
	h.graph.Link(a, b)

	h.rep.Ensure(a)
	h.rep.Ensure(b)
	h.rep.StartTimer(a)
	h.rep.StartTimer(b)

	pa, okA := h.registry.Get(a)
	pb, okB := h.registry.Get(b)
	// the longer-waiting side (or the inviter) breaks the offer/answer symmetry
	if okB {
		h.send(a, h.matchFoundLocked(m.RoomID, pb, true))
	}
	if okA {
		h.send(b, h.matchFoundLocked(m.RoomID, pa, false))
	}

	metrics.MatchesTotal.WithLabelValues(origin).Inc()
	metrics.RoomsActive.Set(float64(h.rooms.Count()))

	h.log.Info("match formed",
		zap.String("room", m.RoomID),
		zap.String("initiator", a),
		zap.String("peer", b),
		zap.String("origin", origin),
	)
}

func (h *Hub) matchFoundLocked(roomID string, other *presence.Peer, initiator bool) MatchFoundEvent {
	return MatchFoundEvent{
		Type:        evMatchFound,
		RoomID:      roomID,
		PeerID:      other.ID,
		DisplayName: other.Name(),
		Initiator:   initiator,
		Reputation:  h.rep.Score(other.ID),
		AvatarURL:   other.Avatar(),
	}
}

func (h *Hub) profileLocked(p *presence.Peer) presence.PublicPeer {
	return presence.PublicPeer{
		ID:          p.ID,
		DisplayName: p.Name(),
		Reputation:  h.rep.Score(p.ID),
		AvatarURL:   p.Avatar(),
	}
}

func (h *Hub) inCallLocked(peerID string) bool {
	_, ok := h.rooms.RoomOf(peerID)
	return ok
}

// send delivers best-effort; a dead target is dropped silently.
func (h *Hub) send(peerID string, v any) {
	p, ok := h.registry.Get(peerID)
	if !ok {
		return
	}
	if err := p.Sender().Send(v); err != nil {
		h.log.Debug("send failed", zap.String("peer", peerID), zap.Error(err))
	}
}

func newRoomID() string { return uuid.NewString() }

func (h *Hub) broadcastCountLocked() {
	ev := UserCountEvent{Type: evUserCount, Count: h.registry.Count()}
	for p := range h.registry.All() {
		if err := p.Sender().Send(ev); err != nil {
			h.log.Debug("count broadcast failed", zap.String("peer", p.ID), zap.Error(err))
		}
	}
}
