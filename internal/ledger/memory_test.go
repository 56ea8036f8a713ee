package ledger

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryMintDisbursesFromCustodian(t *testing.T) {
	ctx := context.Background()
	l := NewInMemory("relief.custodian", 500)

	require.NoError(t, l.Mint(ctx, "victim.one", 200))

	custodial, _ := l.Balance(ctx, "relief.custodian")
	victim, _ := l.Balance(ctx, "victim.one")
	assert.Equal(t, uint64(300), custodial)
	assert.Equal(t, uint64(200), victim)
}

func TestInMemoryMintRejectsOverdraw(t *testing.T) {
	ctx := context.Background()
	l := NewInMemory("relief.custodian", 100)

	assert.ErrorIs(t, l.Mint(ctx, "victim.one", 101), ErrInsufficientBalance)
	assert.ErrorIs(t, l.Mint(ctx, "victim.one", 0), ErrInvalidAmount)

	custodial, _ := l.Balance(ctx, "relief.custodian")
	assert.Equal(t, uint64(100), custodial)
}

func TestInMemoryBurnReversesMint(t *testing.T) {
	ctx := context.Background()
	l := NewInMemory("relief.custodian", 500)

	require.NoError(t, l.Mint(ctx, "victim.one", 200))
	require.NoError(t, l.Burn(ctx, "victim.one", 200))

	custodial, _ := l.Balance(ctx, "relief.custodian")
	victim, _ := l.Balance(ctx, "victim.one")
	assert.Equal(t, uint64(500), custodial)
	assert.Zero(t, victim)
}

func TestInMemoryFundOverflow(t *testing.T) {
	l := NewInMemory("relief.custodian", ^uint64(0))
	assert.ErrorIs(t, l.Fund(1), ErrOverflow)
}

func TestInMemoryConcurrentMints(t *testing.T) {
	ctx := context.Background()
	l := NewInMemory("relief.custodian", 100)

	var wg sync.WaitGroup
	for i := 0; i < 150; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = l.Mint(ctx, "victim.one", 1)
		}()
	}
	wg.Wait()

	custodial, _ := l.Balance(ctx, "relief.custodian")
	victim, _ := l.Balance(ctx, "victim.one")
	assert.Zero(t, custodial)
	assert.Equal(t, uint64(100), victim)
}
