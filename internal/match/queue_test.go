package match

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFIFOPairingParallel(t *testing.T) {
	q := NewQueue()
	for _, id := range []string{"A", "B", "C", "D", "E", "F"} {
		q.Enqueue(id)
	}

	got := q.TakePendingMatches()
	require.Len(t, got, 3)
	require.Equal(t, [2]string{"A", "B"}, got[0].Peers)
	require.Equal(t, [2]string{"C", "D"}, got[1].Peers)
	require.Equal(t, [2]string{"E", "F"}, got[2].Peers)

	// each pairing is an independent room
	require.NotEqual(t, got[0].RoomID, got[1].RoomID)
	require.NotEqual(t, got[1].RoomID, got[2].RoomID)
	require.Equal(t, 0, q.Len())
}

func TestOddPeerStaysQueued(t *testing.T) {
	q := NewQueue()
	q.Enqueue("A")
	require.Empty(t, q.TakePendingMatches())
	require.True(t, q.Contains("A"))

	q.Enqueue("B")
	q.Enqueue("C")
	matches := q.TakePendingMatches()
	require.Len(t, matches, 1)
	require.Equal(t, [2]string{"A", "B"}, matches[0].Peers)
	require.Equal(t, []string{"C"}, q.Waiting())
}

func TestNoDuplicateEnqueue(t *testing.T) {
	q := NewQueue()
	q.Enqueue("X")
	q.Enqueue("X")
	require.Equal(t, 1, q.Len())
	require.Empty(t, q.TakePendingMatches())
}

func TestTakePendingMatchesClears(t *testing.T) {
	q := NewQueue()
	q.Enqueue("A")
	q.Enqueue("B")
	require.Len(t, q.TakePendingMatches(), 1)
	require.Empty(t, q.TakePendingMatches())
}

func TestGrowRoomPicksFirstEligible(t *testing.T) {
	q := NewQueue()
	// Build waiters directly: enqueue would pair them off immediately.
	q.entries = []Entry{{PeerID: "A"}, {PeerID: "B"}, {PeerID: "C"}}

	got := q.GrowRoom([]string{"A", "Z"}, 10)
	require.Equal(t, "B", got, "first entry not already in the room")
	require.False(t, q.Contains("B"))
	require.True(t, q.Contains("A"))
	require.True(t, q.Contains("C"))
}

func TestGrowRoomFullOrEmptyIsNoop(t *testing.T) {
	q := NewQueue()
	q.Enqueue("W")

	require.Equal(t, "", q.GrowRoom([]string{"A", "B"}, 2), "full room must not grow")
	require.True(t, q.Contains("W"))

	require.Equal(t, "", q.GrowRoom([]string{"W", "X"}, 10), "no eligible candidate")
}

func TestRemove(t *testing.T) {
	q := NewQueue()
	q.Enqueue("A")
	q.Remove("A")
	require.Equal(t, 0, q.Len())
	q.Remove("A") // no-op
	require.Equal(t, 0, q.Len())
}
