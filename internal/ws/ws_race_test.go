package ws_test

import (
	"encoding/json"
	"strconv"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestRelayAndPingsNoRace(t *testing.T) {
	// small heartbeat to trigger frequent pings while frames flow
	ts := newTestServer(t, 200*time.Millisecond)

	a := dial(t, ts, "Ann")
	defer a.Close()
	b := dial(t, ts, "Ben")
	defer b.Close()

	greetA := readUntil(t, a, "connected")
	greetB := readUntil(t, b, "connected")

	send(t, a, `{"type":"find-match"}`)
	send(t, b, `{"type":"find-match"}`)
	readUntil(t, a, "match-found")
	readUntil(t, b, "match-found")

	// hammer: chat frames in both directions while server pings are running
	for i := 0; i < 200; i++ {
		msg := `{"type":"chat-message","target":"` + greetB.PeerID + `","data":{"message":"` + strconv.Itoa(i) + `"}}`
		if err := a.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
			t.Fatalf("write: %v", err)
		}

		got := readUntil(t, b, "chat-message")
		if got.From != greetA.PeerID {
			t.Fatalf("chat from %q, want %q", got.From, greetA.PeerID)
		}
		var payload struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(got.Data, &payload); err != nil {
			t.Fatalf("payload: %v", err)
		}
		if payload.Message != strconv.Itoa(i) {
			t.Fatalf("out of order: got %q want %d", payload.Message, i)
		}
	}
}
