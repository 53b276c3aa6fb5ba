// Package presence is the single source of truth for "is peer X currently
// connected". The registry is not internally synchronized: the hub owns all
// matchmaking state behind one mutex and serializes access.
package presence

import (
	"fmt"
	"iter"
	"time"
)

// Sender delivers a frame to one connection. Implementations must be safe for
// concurrent use; delivery is best-effort.
type Sender interface {
	Send(v any) error
}

// Peer is one live, identified connection.
type Peer struct {
	ID          string
	Subject     string // external user id, may be empty
	DisplayName string
	AvatarURL   string
	ConnectedAt time.Time

	sender Sender
}

func (p *Peer) Sender() Sender { return p.sender }

// Name returns the display name, falling back to a readable tag derived from
// the connection id.
func (p *Peer) Name() string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	return "User-" + shortID(p.ID)
}

// Avatar returns the avatar URL, falling back to a generated one seeded with
// the connection id.
func (p *Peer) Avatar() string {
	if p.AvatarURL != "" {
		return p.AvatarURL
	}
	return fmt.Sprintf("https://api.dicebear.com/7.x/avataaars/svg?seed=%s", p.ID)
}

func shortID(id string) string {
	if len(id) > 6 {
		return id[:6]
	}
	return id
}

// PublicPeer is the wire-facing view of a peer.
type PublicPeer struct {
	ID          string `json:"peerId"`
	DisplayName string `json:"displayName"`
	Reputation  int    `json:"reputation"`
	AvatarURL   string `json:"avatarUrl"`
}

type Registry struct {
	peers map[string]*Peer
	now   func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{peers: make(map[string]*Peer), now: time.Now}
}

// Register adds a peer. Re-registering an id replaces the sender and identity
// but keeps the original connect time (idempotent).
func (r *Registry) Register(id, subject, displayName, avatarURL string, s Sender) *Peer {
	if p, ok := r.peers[id]; ok {
		p.Subject = subject
		p.DisplayName = displayName
		p.AvatarURL = avatarURL
		p.sender = s
		return p
	}
	p := &Peer{
		ID:          id,
		Subject:     subject,
		DisplayName: displayName,
		AvatarURL:   avatarURL,
		ConnectedAt: r.now(),
		sender:      s,
	}
	r.peers[id] = p
	return p
}

// Unregister removes a peer; unknown ids are a no-op.
func (r *Registry) Unregister(id string) {
	delete(r.peers, id)
}

func (r *Registry) Get(id string) (*Peer, bool) {
	p, ok := r.peers[id]
	return p, ok
}

func (r *Registry) Connected(id string) bool {
	_, ok := r.peers[id]
	return ok
}

func (r *Registry) Count() int { return len(r.peers) }

// All yields every registered peer. The sequence is finite and restartable;
// callers must not mutate the registry while ranging.
func (r *Registry) All() iter.Seq[*Peer] {
	return func(yield func(*Peer) bool) {
		for _, p := range r.peers {
			if !yield(p) {
				return
			}
		}
	}
}
