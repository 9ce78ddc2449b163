package gate

import (
	"context"
	"sync"
	"testing"
	"time"

	"storefront/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeSource is a manually driven session source
type fakeSource struct {
	changes chan *domain.Session
	once    sync.Once
	stops   int
	mu      sync.Mutex
}

func newFakeSource() *fakeSource {
	return &fakeSource{changes: make(chan *domain.Session, 4)}
}

func (f *fakeSource) Changes() <-chan *domain.Session { return f.changes }

func (f *fakeSource) Stop() {
	f.mu.Lock()
	f.stops++
	f.mu.Unlock()
	f.once.Do(func() { close(f.changes) })
}

func waitFor(t *testing.T, g *Gate) State {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return g.Wait(ctx)
}

func TestGate_StartsChecking(t *testing.T) {
	g := New(newFakeSource())

	assert.Equal(t, Checking, g.State())
	assert.Equal(t, []State{Checking}, g.History())
	assert.Nil(t, g.Session())
}

func TestGate_AuthenticatedOnSession(t *testing.T) {
	source := newFakeSource()
	g := New(source)
	g.Mount()
	defer g.Unmount()

	source.changes <- &domain.Session{ID: "s1", Email: "owner@shop.com"}

	assert.Equal(t, Authenticated, waitFor(t, g))
	assert.Equal(t, []State{Checking, Authenticated}, g.History())
	require.NotNil(t, g.Session())
	assert.Equal(t, "s1", g.Session().ID)
}

func TestGate_UnauthenticatedOnNil(t *testing.T) {
	source := newFakeSource()
	g := New(source)
	g.Mount()
	defer g.Unmount()

	source.changes <- nil

	assert.Equal(t, Unauthenticated, waitFor(t, g))
	assert.Equal(t, []State{Checking, Unauthenticated}, g.History())
}

func TestGate_FirstDecisionIsFinal(t *testing.T) {
	source := newFakeSource()
	g := New(source)
	g.Mount()

	source.changes <- &domain.Session{ID: "s1"}
	require.Equal(t, Authenticated, waitFor(t, g))

	source.changes <- nil
	g.Unmount()

	assert.Equal(t, Authenticated, g.State())
	assert.Equal(t, []State{Checking, Authenticated}, g.History())
}

func TestGate_WaitTimesOutWhileChecking(t *testing.T) {
	g := New(newFakeSource())
	g.Mount()
	defer g.Unmount()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	assert.Equal(t, Checking, g.Wait(ctx))
}

func TestGate_UnmountIsIdempotentAndIgnoresLateReports(t *testing.T) {
	source := newFakeSource()
	g := New(source)
	g.Mount()

	g.Unmount()
	g.Unmount()

	assert.Equal(t, Checking, g.State())
	source.mu.Lock()
	assert.Equal(t, 1, source.stops)
	source.mu.Unlock()

	g.report(&domain.Session{ID: "late"})
	assert.Equal(t, Checking, g.State())
}

func TestGate_UnmountWithoutMount(t *testing.T) {
	source := newFakeSource()
	g := New(source)

	g.Unmount()
	g.Mount()

	assert.Equal(t, Checking, g.State())
}
