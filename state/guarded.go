package state

import "sync"

// Guarded wraps an OnchainState with a single RWMutex so a read-only
// caller (e.g. an RPC status endpoint) can take a Snapshot concurrently
// with the single-threaded block pipeline mutating state. This is not part
// of the spec's core model — spec.md §5 explicitly treats concurrent
// access as moot under the single-threaded model — it exists only because
// SPEC_FULL's ambient concurrency note allows a lock-wrapped variant for
// callers that need one, grounded on consensus/bft/vote_pool.go's
// sync.RWMutex-guarded map access pattern.
type Guarded struct {
	mu sync.RWMutex
	s  *OnchainState
}

// NewGuarded wraps s.
func NewGuarded(s *OnchainState) *Guarded {
	return &Guarded{s: s}
}

// Mutate runs fn with exclusive access to the underlying OnchainState. All
// processor calls (Guarantee/Dispute/Assurance/Accumulation) must go
// through Mutate in a concurrent setting.
func (g *Guarded) Mutate(fn func(*OnchainState)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	fn(g.s)
}

// Snapshot takes a read lock and returns a plain-data snapshot.
func (g *Guarded) Snapshot() Snapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.s.Snapshot()
}
