// Package relay forwards signaling and auxiliary frames from a sender to a
// named target. It keeps no state of its own; reachability is resolved
// against the connection registry on every call.
package relay

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/pairwave/signaling/internal/metrics"
	"github.com/pairwave/signaling/internal/presence"
)

// Kind enumerates the forwardable frame types.
type Kind string

const (
	Offer            Kind = "offer"
	Answer           Kind = "answer"
	ICECandidate     Kind = "ice-candidate"
	ChatMessage      Kind = "chat-message"
	MediaStateChange Kind = "media-state-change"
	Typing           Kind = "typing"
)

var kinds = map[Kind]struct{}{
	Offer: {}, Answer: {}, ICECandidate: {},
	ChatMessage: {}, MediaStateChange: {}, Typing: {},
}

// Known reports whether k is a forwardable kind.
func Known(k Kind) bool {
	_, ok := kinds[k]
	return ok
}

// Result makes drop behavior assertable without a live transport.
type Result int

const (
	Delivered Result = iota
	TargetNotFound
)

// Envelope is what the target receives: the sender's payload verbatim,
// annotated with the sender id so the recipient can correlate simultaneous
// peers.
type Envelope struct {
	Type Kind            `json:"type"`
	From string          `json:"from"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Directory resolves a peer id to a live connection.
type Directory interface {
	Get(id string) (*presence.Peer, bool)
}

type Relay struct {
	dir Directory
	log *zap.Logger
}

func New(dir Directory, log *zap.Logger) *Relay {
	return &Relay{dir: dir, log: log}
}

// Forward sends the payload to target, tagged with from. Unreachable targets
// drop the frame silently — best-effort delivery, never surfaced to the
// sender. Transport write errors are logged and swallowed for the same
// reason.
func (r *Relay) Forward(k Kind, from, target string, payload json.RawMessage) Result {
	p, ok := r.dir.Get(target)
	if !ok {
		metrics.RelayDropped.WithLabelValues(string(k)).Inc()
		return TargetNotFound
	}
	if err := p.Sender().Send(Envelope{Type: k, From: from, Data: payload}); err != nil {
		r.log.Debug("relay write failed",
			zap.String("kind", string(k)),
			zap.String("from", from),
			zap.String("target", target),
			zap.Error(err),
		)
	}
	metrics.RelayMessages.WithLabelValues(string(k)).Inc()
	return Delivered
}
