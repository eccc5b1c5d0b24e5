package engine

import (
	"sort"
	"sync"

	"papertrade-systemv1/internal/model"
)

// Result is emitted on the registry's result channel whenever an order
// reaches a terminal state (filled, cancelled, or rejected). Realized is the
// P&L locked in by a filled reducing trade, zero otherwise.
type Result struct {
	PortfolioID string      `json:"portfolio_id"`
	Order       model.Order `json:"order"`
	Realized    float64     `json:"realized"`
}

// Registry owns all portfolio accounts, keyed by portfolio id. It replaces
// the process-wide map the engine would otherwise need: callers hold a
// *Registry and never share ambient global state.
type Registry struct {
	mu             sync.RWMutex
	accounts       map[string]*Account
	commissionRate float64
	results        chan Result
}

// NewRegistry creates an empty registry. All accounts created through it
// share the given commission rate.
func NewRegistry(commissionRate float64) *Registry {
	return &Registry{
		accounts:       make(map[string]*Account),
		commissionRate: commissionRate,
		results:        make(chan Result, 256),
	}
}

// GetOrCreate returns the account for id, creating it with initialCapital on
// first reference.
func (r *Registry) GetOrCreate(id string, initialCapital float64) *Account {
	r.mu.Lock()
	defer r.mu.Unlock()

	if a, ok := r.accounts[id]; ok {
		return a
	}
	a := NewAccount(id, initialCapital, r.commissionRate)
	a.notify = r.emit
	r.accounts[id] = a
	return a
}

// Get returns the account for id if it exists.
func (r *Registry) Get(id string) (*Account, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.accounts[id]
	return a, ok
}

// Reset restores the account to its initial capital with no positions or
// orders. Returns false if the id is unknown.
func (r *Registry) Reset(id string) bool {
	a, ok := r.Get(id)
	if !ok {
		return false
	}
	a.Reset()
	return true
}

// Delete removes the account from the registry. Returns false if the id is
// unknown.
func (r *Registry) Delete(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[id]; !ok {
		return false
	}
	delete(r.accounts, id)
	return true
}

// List returns all portfolio ids, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.accounts))
	for id := range r.accounts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// UpdateAll applies a price snapshot to every account.
func (r *Registry) UpdateAll(prices map[string]float64) {
	r.mu.RLock()
	accounts := make([]*Account, 0, len(r.accounts))
	for _, a := range r.accounts {
		accounts = append(accounts, a)
	}
	r.mu.RUnlock()

	for _, a := range accounts {
		a.UpdatePrices(prices)
	}
}

// Results returns the channel of terminal order events. The channel is
// buffered; events are dropped rather than blocking an execution when no
// consumer keeps up.
func (r *Registry) Results() <-chan Result {
	return r.results
}

func (r *Registry) emit(res Result) {
	select {
	case r.results <- res:
	default: // slow consumer — drop event
	}
}
