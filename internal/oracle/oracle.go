// Package oracle reports disaster status to the issuance engine.
package oracle

import (
	"context"
	"sync"

	"relief/internal/issuance/ports"
	id "relief/pkg/domain"
)

// InMemory holds declared disasters in process. Unknown disasters are
// reported inactive.
type InMemory struct {
	mu        sync.RWMutex
	disasters map[id.DisasterID]ports.DisasterStatus
}

func NewInMemory() *InMemory {
	return &InMemory{disasters: make(map[id.DisasterID]ports.DisasterStatus)}
}

func (o *InMemory) DisasterStatus(_ context.Context, disasterID id.DisasterID) (*ports.DisasterStatus, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	status, ok := o.disasters[disasterID]
	if !ok {
		return &ports.DisasterStatus{}, nil
	}
	return &status, nil
}

// Declare records an active disaster starting at start.
func (o *InMemory) Declare(disasterID id.DisasterID, severity uint64, start id.Height) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.disasters[disasterID] = ports.DisasterStatus{Active: true, Severity: severity, StartHeight: start}
}

// End marks a disaster inactive as of height end.
func (o *InMemory) End(disasterID id.DisasterID, end id.Height) {
	o.mu.Lock()
	defer o.mu.Unlock()
	status := o.disasters[disasterID]
	status.Active = false
	status.EndHeight = end
	o.disasters[disasterID] = status
}
