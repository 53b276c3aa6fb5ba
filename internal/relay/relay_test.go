package relay

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pairwave/signaling/internal/presence"
)

type recorder struct {
	frames []any
	err    error
}

func (r *recorder) Send(v any) error {
	r.frames = append(r.frames, v)
	return r.err
}

func setup(t *testing.T) (*presence.Registry, *Relay, *recorder) {
	t.Helper()
	reg := presence.NewRegistry()
	rec := &recorder{}
	reg.Register("B", "", "Bea", "", rec)
	return reg, New(reg, zap.NewNop()), rec
}

func TestForwardAnnotatesSender(t *testing.T) {
	_, rl, rec := setup(t)

	payload := json.RawMessage(`{"target":"B","sdp":"v=0"}`)
	res := rl.Forward(Offer, "A", "B", payload)
	require.Equal(t, Delivered, res)
	require.Len(t, rec.frames, 1)

	env, ok := rec.frames[0].(Envelope)
	require.True(t, ok)
	require.Equal(t, Offer, env.Type)
	require.Equal(t, "A", env.From)
	require.JSONEq(t, string(payload), string(env.Data))
}

func TestForwardUnknownTargetDropsSilently(t *testing.T) {
	_, rl, rec := setup(t)

	res := rl.Forward(ChatMessage, "A", "nobody", json.RawMessage(`{}`))
	require.Equal(t, TargetNotFound, res)
	require.Empty(t, rec.frames)
}

func TestForwardSwallowsWriteErrors(t *testing.T) {
	_, rl, rec := setup(t)
	rec.err = errors.New("broken pipe")

	res := rl.Forward(ICECandidate, "A", "B", json.RawMessage(`{"candidate":"c"}`))
	require.Equal(t, Delivered, res, "write failure stays best-effort")
}

func TestKnownKinds(t *testing.T) {
	for _, k := range []Kind{Offer, Answer, ICECandidate, ChatMessage, MediaStateChange, Typing} {
		require.True(t, Known(k), string(k))
	}
	require.False(t, Known(Kind("find-match")))
}
