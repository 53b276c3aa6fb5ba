package ws

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/pairwave/signaling/internal/hub"
	"github.com/pairwave/signaling/internal/identity"
	"github.com/pairwave/signaling/internal/metrics"
	"github.com/pairwave/signaling/internal/relay"
)

type wsOpts struct {
	readBuf, writeBuf int
	maxMsg            int64
	heartbeat         time.Duration
	rl                interface{ AllowWS(*http.Request) bool } // nil => no limit
}

type Option func(*wsOpts)

func WithRateLimiter(rl interface{ AllowWS(*http.Request) bool }) Option {
	return func(o *wsOpts) { o.rl = rl }
}

func WithBuffers(read, write int) Option {
	return func(o *wsOpts) { o.readBuf, o.writeBuf = read, write }
}

func WithLimits(max int64, heartbeat time.Duration) Option {
	return func(o *wsOpts) { o.maxMsg, o.heartbeat = max, heartbeat }
}

// originAllowed checks if the Origin header is in the allowlist.
// - Empty Origin (non-browser clients) is allowed.
// - Items in allowedOrigins can be full origins (https://example.com) or hostnames (example.com).
func originAllowed(allowedOrigins []string, origin string) bool {
	if origin == "" {
		return true // non-browser clients typically omit Origin
	}
	if len(allowedOrigins) == 0 {
		return false
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	host := u.Hostname()
	for _, a := range allowedOrigins {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		if strings.EqualFold(a, origin) {
			return true
		}
		if strings.EqualFold(a, host) {
			return true
		}
	}
	return false
}

// conn serializes JSON writes onto one websocket. The hub's broadcast path and
// the relay both go through Send, so a single mutex is the whole write-side
// concurrency story.
type conn struct {
	mu sync.Mutex
	ws *websocket.Conn
}

func (c *conn) Send(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	metrics.WSFrameSize.WithLabelValues("out").Observe(float64(len(data)))
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

// inbound is the superset of every client frame; unused fields stay zero.
type inbound struct {
	Type     string          `json:"type"`
	Target   string          `json:"target"`
	SenderID string          `json:"senderId"`
	Data     json.RawMessage `json:"data"`
}

func NewHandler(h *hub.Hub, ids *identity.Source, allowedOrigins []string, lg *zap.Logger, dev bool, options ...Option) http.Handler {
	if lg == nil {
		lg = zap.NewNop()
	}
	cfg := wsOpts{readBuf: 64 << 10, writeBuf: 64 << 10, maxMsg: 1 << 20, heartbeat: 60 * time.Second}
	for _, opt := range options {
		opt(&cfg)
	}
	pingPeriod := cfg.heartbeat * 9 / 10

	up := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if dev {
				return true
			}
			return originAllowed(allowedOrigins, r.Header.Get("Origin"))
		},
		ReadBufferSize:  cfg.readBuf,
		WriteBufferSize: cfg.writeBuf,
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !dev && !originAllowed(allowedOrigins, r.Header.Get("Origin")) {
			http.Error(w, "forbidden origin", http.StatusForbidden)
			return
		}
		if cfg.rl != nil && !cfg.rl.AllowWS(r) {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		id, err := ids.FromRequest(r)
		if err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		raw, err := up.Upgrade(w, r, nil)
		if err != nil {
			lg.Warn("ws upgrade failed", zap.Error(err))
			return
		}
		defer raw.Close()
		metrics.WSConnections.Inc()

		raw.SetReadLimit(cfg.maxMsg)
		_ = raw.SetReadDeadline(time.Now().Add(cfg.heartbeat))
		raw.SetPongHandler(func(string) error {
			return raw.SetReadDeadline(time.Now().Add(cfg.heartbeat))
		})

		peerID := uuid.NewString()
		c := &conn{ws: raw}
		h.Connect(peerID, id.Subject, id.DisplayName, id.AvatarURL, c)
		defer h.Disconnect(peerID)

		done := make(chan struct{})
		defer close(done)
		go func() {
			t := time.NewTicker(pingPeriod)
			defer t.Stop()
			for {
				select {
				case <-done:
					return
				case <-t.C:
					if err := raw.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
						_ = raw.Close()
						return
					}
				}
			}
		}()

		for {
			mt, msg, err := raw.ReadMessage()
			if err != nil {
				// quiet on normal closes
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					lg.Debug("ws read error", zap.String("peer", peerID), zap.Error(err))
				}
				return
			}
			if mt != websocket.TextMessage {
				continue
			}
			metrics.WSFrameSize.WithLabelValues("in").Observe(float64(len(msg)))

			var m inbound
			if err := json.Unmarshal(msg, &m); err != nil {
				continue
			}
			switch m.Type {
			case "find-match":
				h.FindMatch(peerID)
			case "leave-queue":
				h.LeaveQueue(peerID)
			case "skip-match":
				h.Skip(peerID, m.Target)
			case "get-online-users":
				h.OnlineUsers(peerID)
			case "invite-user":
				h.Invite(peerID, m.Target)
			case "accept-invite":
				h.AcceptInvite(peerID, m.SenderID)
			case "add-user":
				h.AddUser(peerID)
			default:
				if kind := relay.Kind(m.Type); relay.Known(kind) {
					h.Relay(kind, peerID, m.Target, m.Data)
				}
				// anything else is ignored
			}
		}
	})
}
