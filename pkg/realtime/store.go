package realtime

import (
	"sync"
)

// Room holds state for one room.
type Room[T any] struct {
	ID    string
	State T
}

// RoomStore is a concurrent table of rooms. It only guards the table itself;
// room state must carry its own synchronization.
type RoomStore[T any] struct {
	mu    sync.RWMutex
	rooms map[string]*Room[T]
}

// NewRoomStore creates an empty room store.
func NewRoomStore[T any]() *RoomStore[T] {
	return &RoomStore[T]{
		rooms: make(map[string]*Room[T]),
	}
}

// Create adds a room with the given id and state. It returns false and leaves
// the table untouched if id is already taken.
func (s *RoomStore[T]) Create(id string, state T) (*Room[T], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[id]; ok {
		return nil, false
	}
	r := &Room[T]{ID: id, State: state}
	s.rooms[id] = r
	return r, true
}

// Get returns the room by ID if it exists.
func (s *RoomStore[T]) Get(id string) (*Room[T], bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rooms[id]
	return r, ok
}

// Delete removes the room and returns it.
func (s *RoomStore[T]) Delete(id string) (*Room[T], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[id]
	if ok {
		delete(s.rooms, id)
	}
	return r, ok
}

// List returns every room in no particular order.
func (s *RoomStore[T]) List() []*Room[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Room[T], 0, len(s.rooms))
	for _, r := range s.rooms {
		out = append(out, r)
	}
	return out
}

// Drain removes and returns every room.
func (s *RoomStore[T]) Drain() []*Room[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Room[T], 0, len(s.rooms))
	for id, r := range s.rooms {
		out = append(out, r)
		delete(s.rooms, id)
	}
	return out
}

// Len reports the number of rooms.
func (s *RoomStore[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}
