// Package match holds the FIFO matchmaking queue. The queue pairs waiting
// peers two at a time and records the pairings for the caller to announce;
// it never talks to the transport itself.
//
// Like the other matchmaking structures, the queue is not internally
// synchronized — the hub serializes all access behind its mutex.
package match

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Entry is one waiting peer. Position in the queue implies priority.
type Entry struct {
	PeerID     string
	EnqueuedAt time.Time
}

// Match is a pairing decided by a drain pass. RoomID is minted here so the
// pairing is addressable before the room exists; the room itself is created
// by the caller. Peers is in pop order: Peers[0] waited longest.
type Match struct {
	RoomID string
	Peers  [2]string
}

type Queue struct {
	entries []Entry
	pending []Match
	now     func() time.Time
}

func NewQueue() *Queue {
	return &Queue{now: time.Now}
}

// Enqueue appends the peer and immediately drains. Already-queued peers are
// left where they are (idempotent, no duplicate entries).
func (q *Queue) Enqueue(peerID string) {
	if q.index(peerID) >= 0 {
		return
	}
	q.entries = append(q.entries, Entry{PeerID: peerID, EnqueuedAt: q.now()})
	q.drain()
}

// drain pops pairs of oldest entries until fewer than two remain. A single
// pass can decide several independent matches.
func (q *Queue) drain() {
	for len(q.entries) >= 2 {
		a, b := q.entries[0], q.entries[1]
		q.entries = q.entries[2:]
		q.pending = append(q.pending, Match{
			RoomID: uuid.NewString(),
			Peers:  [2]string{a.PeerID, b.PeerID},
		})
	}
}

// TakePendingMatches returns and clears the matches decided since the last
// call. The caller announces each exactly once.
func (q *Queue) TakePendingMatches() []Match {
	out := q.pending
	q.pending = nil
	return out
}

// GrowRoom scans the queue in FIFO order for the first peer not already among
// the given participants, removes it, and returns its id. Returns "" when the
// room is at capacity or no eligible candidate is waiting.
func (q *Queue) GrowRoom(participants []string, capacity int) string {
	if capacity > 0 && len(participants) >= capacity {
		return ""
	}
	for i, e := range q.entries {
		if slices.Contains(participants, e.PeerID) {
			continue
		}
		q.entries = append(q.entries[:i], q.entries[i+1:]...)
		return e.PeerID
	}
	return ""
}

// Remove drops the peer's entry if present; no-op otherwise.
func (q *Queue) Remove(peerID string) {
	if i := q.index(peerID); i >= 0 {
		q.entries = append(q.entries[:i], q.entries[i+1:]...)
	}
}

func (q *Queue) Contains(peerID string) bool { return q.index(peerID) >= 0 }

func (q *Queue) Len() int { return len(q.entries) }

// Waiting returns the queued peer ids in order.
func (q *Queue) Waiting() []string {
	out := make([]string, len(q.entries))
	for i, e := range q.entries {
		out[i] = e.PeerID
	}
	return out
}

func (q *Queue) index(peerID string) int {
	for i, e := range q.entries {
		if e.PeerID == peerID {
			return i
		}
	}
	return -1
}
