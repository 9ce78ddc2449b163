// Package gate decides whether a protected view may render. A gate starts
// in Checking and settles exactly once per mount on the first session
// report from its source.
package gate

import (
	"context"
	"sync"

	"storefront/internal/domain"
)

// State is the gate's authentication decision
type State int

const (
	Checking State = iota
	Authenticated
	Unauthenticated
)

func (s State) String() string {
	switch s {
	case Authenticated:
		return "authenticated"
	case Unauthenticated:
		return "unauthenticated"
	default:
		return "checking"
	}
}

// Source reports session state. The first value is the current session,
// nil when signed out.
type Source interface {
	Changes() <-chan *domain.Session
	Stop()
}

// Gate tracks one mount of a protected view
type Gate struct {
	source Source

	mu       sync.Mutex
	state    State
	session  *domain.Session
	history  []State
	mounted  bool
	stopped  bool
	decided  chan struct{}
	stopping chan struct{}
	done     chan struct{}
}

// New creates a gate in the Checking state
func New(source Source) *Gate {
	return &Gate{
		source:   source,
		state:    Checking,
		history:  []State{Checking},
		decided:  make(chan struct{}),
		stopping: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Mount starts listening to the source. Calling it again is a no-op.
func (g *Gate) Mount() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.mounted || g.stopped {
		return
	}
	g.mounted = true
	go g.loop()
}

func (g *Gate) loop() {
	defer close(g.done)

	for {
		select {
		case <-g.stopping:
			return
		case session, ok := <-g.source.Changes():
			if !ok {
				return
			}
			g.report(session)
		}
	}
}

// report applies the first session report; later ones are ignored
func (g *Gate) report(session *domain.Session) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != Checking || g.stopped {
		return
	}
	if session != nil {
		g.state = Authenticated
		g.session = session
	} else {
		g.state = Unauthenticated
	}
	g.history = append(g.history, g.state)
	close(g.decided)
}

// Wait blocks until the gate has decided or ctx is done. It returns the
// current state, which is Checking when ctx ended first.
func (g *Gate) Wait(ctx context.Context) State {
	select {
	case <-g.decided:
	case <-ctx.Done():
	}
	return g.State()
}

// State returns the current decision
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Session returns the authenticated session, nil unless Authenticated
func (g *Gate) Session() *domain.Session {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.session
}

// History returns every state the gate has been in, oldest first
func (g *Gate) History() []State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]State{}, g.history...)
}

// Unmount stops the source and waits for the listener to exit. After
// Unmount no report changes the state. It is safe to call more than once.
func (g *Gate) Unmount() {
	g.mu.Lock()
	if g.stopped {
		g.mu.Unlock()
		return
	}
	g.stopped = true
	mounted := g.mounted
	close(g.stopping)
	g.mu.Unlock()

	g.source.Stop()
	if mounted {
		<-g.done
	}
}
