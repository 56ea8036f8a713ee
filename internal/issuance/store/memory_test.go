package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"relief/internal/issuance/models"
	"relief/internal/issuance/ports"
	id "relief/pkg/domain"
	"relief/pkg/platform/sentinel"
)

type InMemorySuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func TestInMemorySuite(t *testing.T) {
	suite.Run(t, new(InMemorySuite))
}

func (s *InMemorySuite) SetupTest() {
	s.store = NewInMemory(models.NewEngineState("ops.admin", 1000, 3))
	s.ctx = context.Background()
}

func (s *InMemorySuite) TestLookupsReturnNotFound() {
	_, err := s.store.FindRule(s.ctx, 1)
	s.ErrorIs(err, sentinel.ErrNotFound)
	_, err = s.store.FindClaim(s.ctx, "alice", 1)
	s.ErrorIs(err, sentinel.ErrNotFound)
	_, err = s.store.FindVoucher(s.ctx, 1)
	s.ErrorIs(err, sentinel.ErrNotFound)

	empty := NewInMemory(nil)
	_, err = empty.LoadState(s.ctx)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemorySuite) TestClaimsAreWriteOnce() {
	claim := &models.VictimClaim{Beneficiary: "alice", DisasterID: 1, Amount: 200}
	s.Require().NoError(s.store.CreateClaim(s.ctx, claim))
	s.ErrorIs(s.store.CreateClaim(s.ctx, claim), sentinel.ErrAlreadyUsed)

	other := &models.VictimClaim{Beneficiary: "alice", DisasterID: 2, Amount: 200}
	s.NoError(s.store.CreateClaim(s.ctx, other), "key includes the disaster id")
}

func (s *InMemorySuite) TestCommittedTransactionIsVisible() {
	err := s.store.RunInTx(s.ctx, func(ctx context.Context, tx ports.Store) error {
		state, err := tx.LoadState(ctx)
		s.Require().NoError(err)
		state.Paused = true
		s.Require().NoError(tx.SaveState(ctx, state))
		s.Require().NoError(tx.SaveRule(ctx, &models.AllocationRule{DisasterID: 1, BaseAmount: 100}))
		s.Require().NoError(tx.GrantRole(ctx, models.RoleIssuer, "field.agent"))

		// reads inside the transaction see staged writes
		reread, err := tx.LoadState(ctx)
		s.Require().NoError(err)
		s.True(reread.Paused)
		return nil
	})
	s.Require().NoError(err)

	state, err := s.store.LoadState(s.ctx)
	s.Require().NoError(err)
	s.True(state.Paused)
	rule, err := s.store.FindRule(s.ctx, 1)
	s.Require().NoError(err)
	s.Equal(uint64(100), rule.BaseAmount)
	ok, err := s.store.HasRole(s.ctx, models.RoleIssuer, "field.agent")
	s.Require().NoError(err)
	s.True(ok)
}

func (s *InMemorySuite) TestFailedTransactionLeavesNoTrace() {
	boom := errors.New("audit sink down")
	err := s.store.RunInTx(s.ctx, func(ctx context.Context, tx ports.Store) error {
		s.Require().NoError(tx.CreateClaim(ctx, &models.VictimClaim{Beneficiary: "alice", DisasterID: 1}))
		s.Require().NoError(tx.CreateVoucher(ctx, &models.IssuedVoucher{ID: 1, Recipient: "alice"}))
		state, _ := tx.LoadState(ctx)
		state.TotalIssued = 200
		s.Require().NoError(tx.SaveState(ctx, state))
		return boom
	})
	s.ErrorIs(err, boom)

	_, err = s.store.FindClaim(s.ctx, "alice", 1)
	s.ErrorIs(err, sentinel.ErrNotFound)
	s.Equal(0, s.store.CountVouchers())
	state, _ := s.store.LoadState(s.ctx)
	s.Equal(uint64(0), state.TotalIssued)
}

func (s *InMemorySuite) TestRevokeInsideTransaction() {
	s.Require().NoError(s.store.GrantRole(s.ctx, models.RoleIssuer, "field.agent"))
	err := s.store.RunInTx(s.ctx, func(ctx context.Context, tx ports.Store) error {
		s.Require().NoError(tx.RevokeRole(ctx, models.RoleIssuer, "field.agent"))
		ok, _ := tx.HasRole(ctx, models.RoleIssuer, "field.agent")
		s.False(ok)
		return nil
	})
	s.Require().NoError(err)
	ok, _ := s.store.HasRole(s.ctx, models.RoleIssuer, "field.agent")
	s.False(ok)
}

func (s *InMemorySuite) TestTransactionsAreSerialized() {
	const workers = 50
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.store.RunInTx(s.ctx, func(ctx context.Context, tx ports.Store) error {
				state, err := tx.LoadState(ctx)
				if err != nil {
					return err
				}
				next, vid, err := state.WithIssuance(1)
				if err != nil {
					return err
				}
				if err := tx.CreateVoucher(ctx, &models.IssuedVoucher{ID: vid}); err != nil {
					return err
				}
				return tx.SaveState(ctx, next)
			})
		}()
	}
	wg.Wait()

	state, err := s.store.LoadState(s.ctx)
	s.Require().NoError(err)
	s.Equal(uint64(workers), state.TotalIssued)
	s.Equal(id.VoucherID(workers+1), state.NextVoucherID)
	s.Equal(workers, s.store.CountVouchers())
}

func (s *InMemorySuite) TestCancelledContextAbortsTransaction() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()
	called := false
	err := s.store.RunInTx(ctx, func(context.Context, ports.Store) error {
		called = true
		return nil
	})
	s.Error(err)
	s.False(called)
}
