// Package beneficiary answers whether a principal is a verified beneficiary.
package beneficiary

import (
	"context"
	"sync"

	id "relief/pkg/domain"
)

// InMemory is a seeded registry for local runs and tests.
type InMemory struct {
	mu       sync.RWMutex
	verified map[id.Principal]struct{}
}

func NewInMemory(verified ...id.Principal) *InMemory {
	r := &InMemory{verified: make(map[id.Principal]struct{}, len(verified))}
	for _, p := range verified {
		r.verified[p] = struct{}{}
	}
	return r
}

func (r *InMemory) IsVerified(_ context.Context, principal id.Principal) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.verified[principal]
	return ok, nil
}

func (r *InMemory) Verify(principal id.Principal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.verified[principal] = struct{}{}
}

func (r *InMemory) Revoke(principal id.Principal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.verified, principal)
}
