package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	reg = prometheus.NewRegistry()

	WSConnections = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pw_ws_connections_total", Help: "Total WS connections accepted",
	})
	PeersOnline = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "pw_peers_online", Help: "Registered peers",
	})
	RoomsActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "pw_rooms_active", Help: "Live rooms",
	})
	QueueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "pw_queue_depth", Help: "Peers waiting in the matchmaking queue",
	})
	MatchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pw_matches_total", Help: "Rooms formed, by origin",
	}, []string{"origin"}) // queue | invite | grow

	RelayMessages = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pw_relay_messages_total", Help: "Relayed frames by kind",
	}, []string{"kind"})
	RelayDropped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pw_relay_dropped_total", Help: "Frames dropped because the target was unreachable",
	}, []string{"kind"})

	ForceDisconnects = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pw_force_disconnects_total", Help: "Survivors forced back to discovery",
	})
	PeerLeft = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pw_peer_left_total", Help: "Group-room departures announced",
	})

	ReputationAwarded = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pw_reputation_points_total", Help: "Reputation points awarded for completed calls",
	})

	WSFrameSize = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pw_ws_frame_bytes",
		Help:    "WebSocket frame sizes",
		Buckets: []float64{64, 256, 1024, 4096, 16384, 65536, 262144, 1048576},
	}, []string{"dir"})
)

func init() {
	reg.MustRegister(
		WSConnections, PeersOnline, RoomsActive, QueueDepth, MatchesTotal,
		RelayMessages, RelayDropped,
		ForceDisconnects, PeerLeft,
		ReputationAwarded,
		WSFrameSize,
	)
}

func Handler() http.Handler { return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}) }
