package invites

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func frozen(s *Store) *time.Time {
	t := time.Unix(1_700_000_000, 0)
	s.now = func() time.Time { return t }
	return &t
}

func TestCreateRedeemOnce(t *testing.T) {
	s := NewStore(time.Minute)
	s.Create("A", "B")

	require.True(t, s.Redeem("A", "B"))
	require.False(t, s.Redeem("A", "B"), "invite is single-use")
}

func TestRedeemWrongDirectionFails(t *testing.T) {
	s := NewStore(time.Minute)
	s.Create("A", "B")
	require.False(t, s.Redeem("B", "A"))
	require.True(t, s.Redeem("A", "B"), "original direction still intact")
}

func TestExpiredInviteNotRedeemable(t *testing.T) {
	s := NewStore(time.Minute)
	now := frozen(s)
	s.Create("A", "B")

	*now = now.Add(2 * time.Minute)
	require.False(t, s.Redeem("A", "B"))
	require.Equal(t, 0, s.Len(), "expired entry consumed on redeem attempt")
}

func TestSweepReclaimsExpired(t *testing.T) {
	s := NewStore(time.Minute)
	now := frozen(s)
	s.Create("A", "B")
	s.Create("C", "D")

	s.sweep(now.Add(2 * time.Minute))
	require.Equal(t, 0, s.Len())
}

func TestDropPeerRemovesBothDirections(t *testing.T) {
	s := NewStore(time.Minute)
	s.Create("A", "B")
	s.Create("B", "C")
	s.Create("C", "D")

	s.DropPeer("B")
	require.Equal(t, 1, s.Len())
	require.True(t, s.Redeem("C", "D"))
}
