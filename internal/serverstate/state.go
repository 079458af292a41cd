package serverstate

import (
	"sync"
	"sync/atomic"
)

// Status values reported by GetState.
const (
	StatusNotReady = "not_ready"
	StatusReady    = "ready"
	StatusDraining = "draining"
	StatusUnknown  = "unknown"
)

// State holds the server status and draining flag. All fields are updated
// together so callers always observe a consistent snapshot.
type State struct {
	Status   string `json:"status"`
	Draining bool   `json:"draining"`
}

// Store defines how the server state is persisted. Implementations may keep
// state in memory or in Redis so several relay replicas drain together.
type Store interface {
	Load() State
	Store(State)
}

var (
	mu     sync.RWMutex
	active Store = NewMemoryStore()
)

// UseStore replaces the active Store and returns the previous one.
// A nil store is ignored.
func UseStore(s Store) Store {
	mu.Lock()
	defer mu.Unlock()
	prev := active
	if s != nil {
		active = s
	}
	return prev
}

func current() Store {
	mu.RLock()
	defer mu.RUnlock()
	return active
}

// memoryStore implements Store using an atomic.Value.
type memoryStore struct {
	v atomic.Value
}

// NewMemoryStore returns a memory-backed Store initialized to not_ready.
func NewMemoryStore() Store {
	ms := &memoryStore{}
	ms.v.Store(State{Status: StatusNotReady})
	return ms
}

func (m *memoryStore) Load() State {
	if st, ok := m.v.Load().(State); ok {
		return st
	}
	return State{Status: StatusUnknown}
}

func (m *memoryStore) Store(s State) {
	m.v.Store(s)
}

// SetState updates the server status string.
func SetState(status string) {
	s := current()
	st := s.Load()
	st.Status = status
	s.Store(st)
}

// GetState returns the current server status.
func GetState() string {
	return current().Load().Status
}

// StartDrain marks the server as draining.
func StartDrain() {
	s := current()
	st := s.Load()
	st.Draining = true
	st.Status = StatusDraining
	s.Store(st)
}

// IsDraining reports whether the server is draining.
func IsDraining() bool {
	return current().Load().Draining
}

// MarkReady reports the server as ready unless the store already holds a
// drain. With a shared store that drain may belong to another replica, so it
// is left in place and MarkReady returns false.
func MarkReady() bool {
	s := current()
	if s.Load().Draining {
		return false
	}
	s.Store(State{Status: StatusReady})
	return true
}
