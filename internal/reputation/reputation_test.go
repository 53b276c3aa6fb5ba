package reputation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time            { return c.t }
func (c *fakeClock) advance(d time.Duration)   { c.t = c.t.Add(d) }
func newClock() *fakeClock                     { return &fakeClock{t: time.Unix(1_700_000_000, 0)} }

func TestTwoMinuteCallEarnsTwenty(t *testing.T) {
	clk := newClock()
	tr := NewTrackerWithClock(clk.now)
	tr.Ensure("X")

	tr.StartTimer("X")
	clk.advance(2 * time.Minute)
	require.Equal(t, 20, tr.Flush("X"))
	require.Equal(t, InitialScore+20, tr.Score("X"))
}

func TestShortCallEarnsNothing(t *testing.T) {
	clk := newClock()
	tr := NewTrackerWithClock(clk.now)

	tr.StartTimer("X")
	clk.advance(20 * time.Second)
	require.Equal(t, 0, tr.Flush("X"))
	require.Equal(t, InitialScore, tr.Score("X"))
}

func TestDoubleFlushIsIdempotent(t *testing.T) {
	clk := newClock()
	tr := NewTrackerWithClock(clk.now)

	tr.StartTimer("X")
	clk.advance(2 * time.Minute)
	require.Equal(t, 20, tr.Flush("X"))
	require.Equal(t, 0, tr.Flush("X"), "second flush without startTimer must not credit")
	require.Equal(t, InitialScore+20, tr.Score("X"))
}

func TestStartTimerOverwritesPriorTimer(t *testing.T) {
	clk := newClock()
	tr := NewTrackerWithClock(clk.now)

	tr.StartTimer("X")
	clk.advance(10 * time.Minute)
	tr.StartTimer("X") // restart; the 10 minutes are forfeit
	clk.advance(time.Minute)
	require.Equal(t, 10, tr.Flush("X"))
}

func TestScoreSurvivesAcrossSessions(t *testing.T) {
	clk := newClock()
	tr := NewTrackerWithClock(clk.now)

	tr.StartTimer("X")
	clk.advance(90 * time.Second)
	require.Equal(t, 15, tr.Flush("X"))

	// new session for the same peer
	tr.StartTimer("X")
	clk.advance(time.Minute)
	require.Equal(t, 10, tr.Flush("X"))
	require.Equal(t, InitialScore+25, tr.Score("X"))
}

func TestUnseenPeerReportsInitialScore(t *testing.T) {
	tr := NewTracker()
	require.Equal(t, InitialScore, tr.Score("nobody"))
}
