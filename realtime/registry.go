package realtime

import "sync"

// Session is a live realtime connection owned by one user. *websocket.Conn
// satisfies it.
type Session interface {
	Close() error
}

// Registry tracks live connections keyed by user ID so that an external
// password-change signal can sever them. One user may hold several
// connections at once.
//
// Registry instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]map[Session]struct{}
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]map[Session]struct{}),
	}
}

// Register records a session for userID and returns the matching unregister
// function. The unregister function is idempotent.
func (r *Registry) Register(userID string, s Session) func() {
	r.mu.Lock()
	set, ok := r.sessions[userID]
	if !ok {
		set = make(map[Session]struct{})
		r.sessions[userID] = set
	}
	set[s] = struct{}{}
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()

			set, ok := r.sessions[userID]
			if !ok {
				return
			}
			delete(set, s)
			if len(set) == 0 {
				delete(r.sessions, userID)
			}
		})
	}
}

// DisconnectUser closes and forgets every live session for userID, returning
// how many were closed. Severing connections on password change is the
// caller's policy; new connection attempts with the old token are refused at
// upgrade time regardless.
func (r *Registry) DisconnectUser(userID string) int {
	r.mu.Lock()
	set := r.sessions[userID]
	delete(r.sessions, userID)
	r.mu.Unlock()

	for s := range set {
		_ = s.Close()
	}
	return len(set)
}

// Count returns the number of live sessions for userID.
func (r *Registry) Count(userID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions[userID])
}
