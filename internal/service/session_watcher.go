package service

import (
	"sync"

	"storefront/internal/domain"

	"github.com/juju/pubsub/v2"
)

// sessionChange is the payload published on a session topic. A nil Session
// means signed out.
type sessionChange struct {
	Session *domain.Session
}

// SessionWatcher delivers the latest session state for one token
type SessionWatcher struct {
	changes chan *domain.Session
	unsub   func()

	// Sends are guarded by mu and closed so nothing writes to a closed channel
	mu     sync.Mutex
	closed bool
}

func newSessionWatcher(hub *pubsub.SimpleHub, topic string, current *domain.Session) *SessionWatcher {
	w := &SessionWatcher{
		changes: make(chan *domain.Session, 1),
		unsub:   func() {},
	}
	// Buffered, so the initial state never blocks
	w.changes <- current

	if hub != nil && topic != "" {
		w.unsub = hub.Subscribe(topic, w.onChange)
	}
	return w
}

// Changes yields the current session once, then each change
func (w *SessionWatcher) Changes() <-chan *domain.Session {
	return w.changes
}

// Stop releases the subscription and closes Changes. It is safe to call
// more than once.
func (w *SessionWatcher) Stop() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	close(w.changes)
	w.mu.Unlock()

	w.unsub()
}

func (w *SessionWatcher) onChange(topic string, data interface{}) {
	change, ok := data.(sessionChange)
	if !ok {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}

	// Only the latest state matters; replace any undelivered one
	select {
	case <-w.changes:
	default:
	}
	w.changes <- change.Session
}
