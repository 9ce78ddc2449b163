package admin

import (
	"sync"
)

// Sessions keeps one controller per signed-in admin session
type Sessions struct {
	mu          sync.Mutex
	controllers map[string]*Controller
	factory     func() *Controller
}

// NewSessions creates a registry building controllers with factory
func NewSessions(factory func() *Controller) *Sessions {
	return &Sessions{
		controllers: make(map[string]*Controller),
		factory:     factory,
	}
}

// Get returns the controller for a session, creating it on first use
func (s *Sessions) Get(sessionID string) *Controller {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.controllers[sessionID]
	if !ok {
		c = s.factory()
		s.controllers[sessionID] = c
	}
	return c
}

// Evict drops the controller of a signed-out session
func (s *Sessions) Evict(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.controllers, sessionID)
}

// Len returns the number of live controllers
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.controllers)
}
