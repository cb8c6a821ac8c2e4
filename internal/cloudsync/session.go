package cloudsync

import "sync"

// Session is the signed-in identity. Every sign-in and sign-out bumps the
// generation so that late results for an earlier identity can be told apart.
type Session struct {
	mu         sync.RWMutex
	uid        string
	generation uint64
}

func NewSession() *Session {
	return &Session{}
}

// SignIn makes uid the active user and returns the new generation.
func (s *Session) SignIn(uid string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uid = uid
	s.generation++
	return s.generation
}

// SignOut clears the active user.
func (s *Session) SignOut() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uid = ""
	s.generation++
}

// User returns the active user id, empty when signed out.
func (s *Session) User() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.uid
}

// Valid reports whether gen is still the current generation and a user is
// signed in.
func (s *Session) Valid(gen uint64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.uid != "" && s.generation == gen
}
