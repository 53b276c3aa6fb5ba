// Package invites tracks pending direct call invites. An invite is minted
// when a peer asks to call a specific online user and is redeemable once by
// the invitee until it expires. Expired entries are reclaimed by a janitor.
package invites

import (
	"context"
	"sync"
	"time"
)

type key struct {
	from, to string
}

type entry struct {
	exp time.Time
}

type Store struct {
	mu  sync.Mutex
	m   map[key]entry
	ttl time.Duration
	now func() time.Time
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		m:   make(map[key]entry),
		ttl: ttl,
		now: time.Now,
	}
}

// Create records (or refreshes) a pending invite from -> to and returns its
// expiry.
func (s *Store) Create(from, to string) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp := s.now().Add(s.ttl)
	s.m[key{from, to}] = entry{exp: exp}
	return exp
}

// Redeem consumes the invite from -> to. Unknown or expired invites report
// false; either way the entry is gone afterwards.
func (s *Store) Redeem(from, to string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key{from, to}
	e, ok := s.m[k]
	if !ok {
		return false
	}
	delete(s.m, k)
	return !s.now().After(e.exp)
}

// DropPeer removes every invite sent by or addressed to the peer. Called on
// disconnect so stale invites cannot be redeemed against a gone connection.
func (s *Store) DropPeer(peerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.m {
		if k.from == peerID || k.to == peerID {
			delete(s.m, k)
		}
	}
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}

func (s *Store) sweep(now time.Time) {
	s.mu.Lock()
	for k, e := range s.m {
		if now.After(e.exp) {
			delete(s.m, k)
		}
	}
	s.mu.Unlock()
}

// StartJanitor sweeps expired invites until ctx is done.
func (s *Store) StartJanitor(ctx context.Context) {
	t := time.NewTicker(30 * time.Second)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-t.C:
				s.sweep(now)
			}
		}
	}()
}
