package ledger

import (
	"context"
	"math/bits"
	"sync"

	id "relief/pkg/domain"
)

// InMemory is a process-local ledger.
type InMemory struct {
	mu        sync.Mutex
	custodian id.Principal
	balances  map[id.Principal]uint64
}

// NewInMemory creates a ledger whose custodian starts with funds.
func NewInMemory(custodian id.Principal, funds uint64) *InMemory {
	return &InMemory{
		custodian: custodian,
		balances:  map[id.Principal]uint64{custodian: funds},
	}
}

func (l *InMemory) Balance(_ context.Context, account id.Principal) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[account], nil
}

// Mint moves amount from the custodian to recipient.
func (l *InMemory) Mint(_ context.Context, recipient id.Principal, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.move(l.custodian, recipient, amount)
}

// Burn moves amount from account back to the custodian.
func (l *InMemory) Burn(_ context.Context, account id.Principal, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.move(account, l.custodian, amount)
}

// Fund credits the custodian.
func (l *InMemory) Fund(amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	sum, carry := bits.Add64(l.balances[l.custodian], amount, 0)
	if carry != 0 {
		return ErrOverflow
	}
	l.balances[l.custodian] = sum
	return nil
}

func (l *InMemory) move(from, to id.Principal, amount uint64) error {
	if amount == 0 {
		return ErrInvalidAmount
	}
	if l.balances[from] < amount {
		return ErrInsufficientBalance
	}
	if from == to {
		return nil
	}
	credited, carry := bits.Add64(l.balances[to], amount, 0)
	if carry != 0 {
		return ErrOverflow
	}
	l.balances[from] -= amount
	l.balances[to] = credited
	return nil
}
