package login

import (
	"context"
	"strings"
	"sync"

	"storefront/internal/domain"

	"go.uber.org/zap"
)

// Flows hands out one Flow per account so concurrent submissions for the
// same email are rejected while other accounts proceed
type Flows struct {
	provider Provider
	logger   *zap.Logger

	mu    sync.Mutex
	flows map[string]*heldFlow
}

// heldFlow counts the requests currently holding a flow
type heldFlow struct {
	flow    *Flow
	holders int
}

// NewFlows creates an empty registry
func NewFlows(provider Provider, logger *zap.Logger) *Flows {
	return &Flows{
		provider: provider,
		logger:   logger,
		flows:    make(map[string]*heldFlow),
	}
}

// For returns the flow for an email, creating it if needed. Every call must
// be paired with Release.
func (f *Flows) For(email string) *Flow {
	key := strings.ToLower(strings.TrimSpace(email))

	f.mu.Lock()
	defer f.mu.Unlock()

	held, ok := f.flows[key]
	if !ok {
		held = &heldFlow{flow: NewFlow(f.provider, f.logger)}
		f.flows[key] = held
	}
	held.holders++
	return held.flow
}

// Release gives up a flow obtained from For; the last holder drops it
func (f *Flows) Release(email string, flow *Flow) {
	key := strings.ToLower(strings.TrimSpace(email))

	f.mu.Lock()
	defer f.mu.Unlock()

	held, ok := f.flows[key]
	if !ok || held.flow != flow {
		return
	}
	held.holders--
	if held.holders <= 0 {
		delete(f.flows, key)
	}
}

// Resume returns the session already attached to token, if any
func (f *Flows) Resume(ctx context.Context, token string) *domain.Session {
	return NewFlow(f.provider, f.logger).Resume(ctx, token)
}
