// Package reputation accrues a per-peer score from completed call time.
// Scores influence nothing in matchmaking; they are carried on profiles for
// display only.
package reputation

import "time"

const (
	// InitialScore is assigned the first time a peer is seen.
	InitialScore = 100
	// minCreditable is the shortest call that earns points.
	minCreditable = 30 * time.Second
	// pointsPerMinute converts call time into score.
	pointsPerMinute = 10
)

// Tracker is guarded by the hub's mutex, like the rest of the matchmaking
// state.
type Tracker struct {
	scores map[string]int
	starts map[string]time.Time
	now    func() time.Time
}

func NewTracker() *Tracker {
	return &Tracker{
		scores: make(map[string]int),
		starts: make(map[string]time.Time),
		now:    time.Now,
	}
}

// NewTrackerWithClock is for tests that need to simulate elapsed call time.
func NewTrackerWithClock(now func() time.Time) *Tracker {
	t := NewTracker()
	t.now = now
	return t
}

// Ensure initializes the peer's score if unseen. Scores survive disconnects
// for the life of the process.
func (t *Tracker) Ensure(peerID string) {
	if _, ok := t.scores[peerID]; !ok {
		t.scores[peerID] = InitialScore
	}
}

// StartTimer records the call start for the peer, overwriting any prior
// unflushed timer.
func (t *Tracker) StartTimer(peerID string) {
	t.starts[peerID] = t.now()
}

// Flush credits the peer for elapsed call time and clears the timer. Calls
// under 30 seconds earn nothing; longer calls earn floor(minutes*10) points.
// Flushing without a running timer is a no-op, so a disconnect racing an
// explicit leave cannot double-credit.
func (t *Tracker) Flush(peerID string) int {
	start, ok := t.starts[peerID]
	if !ok {
		return 0
	}
	delete(t.starts, peerID)

	elapsed := t.now().Sub(start)
	if elapsed <= minCreditable {
		return 0
	}
	points := int(elapsed.Minutes() * pointsPerMinute)
	if points <= 0 {
		return 0
	}
	t.Ensure(peerID)
	t.scores[peerID] += points
	return points
}

// Score returns the peer's current score; unseen peers report the initial
// score.
func (t *Tracker) Score(peerID string) int {
	if s, ok := t.scores[peerID]; ok {
		return s
	}
	return InitialScore
}
