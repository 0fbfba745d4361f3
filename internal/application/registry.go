package application

import (
	"slices"
	"sync"
)

// Registry holds at most one session per editable unit id.
type Registry[T any] struct {
	sessions map[string]*Session[T]
	mu       sync.Mutex
}

func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{sessions: make(map[string]*Session[T])}
}

// Open returns the session registered under id, creating it with create when
// there is none. The second result reports whether a session was created.
func (r *Registry[T]) Open(id string, create func() *Session[T]) (*Session[T], bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if session, ok := r.sessions[id]; ok {
		return session, false
	}

	session := create()
	r.sessions[id] = session
	return session, true
}

func (r *Registry[T]) Get(id string) (*Session[T], bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[id]
	return session, ok
}

// Close disposes and forgets the session registered under id.
func (r *Registry[T]) Close(id string) bool {
	r.mu.Lock()
	session, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if ok {
		session.Close()
	}
	return ok
}

func (r *Registry[T]) CloseAll() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*Session[T])
	r.mu.Unlock()

	for _, session := range sessions {
		session.Close()
	}
}

func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// IDs returns the registered ids in sorted order.
func (r *Registry[T]) IDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
