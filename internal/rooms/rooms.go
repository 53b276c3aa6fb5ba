// Package rooms owns the set of active rooms and the adjacency graph used to
// classify departures. Structures here are plain data guarded by the hub's
// mutex, not by their own locks.
package rooms

import "errors"

// ErrRoomFull signals the room has reached capacity.
var ErrRoomFull = errors.New("room-full")

// State is the explicit room lifecycle. A room forms when a pairing creates
// it, turns active on the first successful relay between its members, and
// ends when its last participant leaves.
type State int

const (
	Forming State = iota
	Active
	Ended
)

func (s State) String() string {
	switch s {
	case Forming:
		return "forming"
	case Active:
		return "active"
	case Ended:
		return "ended"
	}
	return "unknown"
}

// Room is a named group of peer ids. Participants keeps insertion order; for
// a freshly paired room the first two are in FIFO-pop order.
type Room struct {
	ID           string
	Participants []string
	MaxCapacity  int
	State        State
}

func (r *Room) has(peerID string) bool {
	for _, id := range r.Participants {
		if id == peerID {
			return true
		}
	}
	return false
}

// Manager tracks every live room and which room each peer is in. A peer is in
// at most one room.
type Manager struct {
	rooms  map[string]*Room
	roomOf map[string]string // peerID -> roomID
}

func NewManager() *Manager {
	return &Manager{
		rooms:  make(map[string]*Room),
		roomOf: make(map[string]string),
	}
}

// Create registers an empty forming room. Creating an existing id is a no-op.
func (m *Manager) Create(id string, capacity int) *Room {
	if r, ok := m.rooms[id]; ok {
		return r
	}
	r := &Room{ID: id, MaxCapacity: capacity, State: Forming}
	m.rooms[id] = r
	return r
}

// Join adds the peer to the room. Full rooms reject with ErrRoomFull; joining
// a room the peer is already in is a no-op.
func (m *Manager) Join(roomID, peerID string) error {
	r, ok := m.rooms[roomID]
	if !ok {
		return nil // already cleaned up; tolerate per the error model
	}
	if r.has(peerID) {
		return nil
	}
	if r.MaxCapacity > 0 && len(r.Participants) >= r.MaxCapacity {
		return ErrRoomFull
	}
	r.Participants = append(r.Participants, peerID)
	m.roomOf[peerID] = roomID
	return nil
}

// Leave removes the peer from whatever room it is in and reports the room id
// and remaining participants. Empty rooms are destroyed immediately. ok is
// false when the peer was in no room.
func (m *Manager) Leave(peerID string) (roomID string, remaining []string, ok bool) {
	roomID, ok = m.roomOf[peerID]
	if !ok {
		return "", nil, false
	}
	delete(m.roomOf, peerID)

	r := m.rooms[roomID]
	if r == nil {
		return roomID, nil, true
	}
	for i, id := range r.Participants {
		if id == peerID {
			r.Participants = append(r.Participants[:i], r.Participants[i+1:]...)
			break
		}
	}
	if len(r.Participants) == 0 {
		r.State = Ended
		delete(m.rooms, roomID)
	}
	return roomID, append([]string(nil), r.Participants...), true
}

// MarkActive records the forming -> active transition; any other state is
// left alone.
func (m *Manager) MarkActive(roomID string) {
	if r, ok := m.rooms[roomID]; ok && r.State == Forming {
		r.State = Active
	}
}

func (m *Manager) Get(roomID string) (*Room, bool) {
	r, ok := m.rooms[roomID]
	return r, ok
}

// RoomOf reports which room the peer is in, if any.
func (m *Manager) RoomOf(peerID string) (string, bool) {
	id, ok := m.roomOf[peerID]
	return id, ok
}

// Participants returns a copy of the room's member list, nil for unknown rooms.
func (m *Manager) Participants(roomID string) []string {
	r, ok := m.rooms[roomID]
	if !ok {
		return nil
	}
	return append([]string(nil), r.Participants...)
}

func (m *Manager) Count() int { return len(m.rooms) }
