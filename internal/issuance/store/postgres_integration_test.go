//go:build integration

package store_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/suite"

	"relief/internal/issuance/models"
	"relief/internal/issuance/store"
	id "relief/pkg/domain"
	"relief/pkg/platform/sentinel"
	"relief/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.Postgres
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.postgres.TruncateTables(ctx,
		"engine_state", "allocation_rules", "victim_claims", "issued_vouchers", "role_grants"))
	s.Require().NoError(s.store.EnsureState(ctx, models.NewEngineState("ops.admin", 1000, 3)))
}

func (s *PostgresStoreSuite) TestEnsureStateKeepsExistingRow() {
	ctx := context.Background()
	s.Require().NoError(s.store.EnsureState(ctx, models.NewEngineState("someone.else", 5, 5)))

	state, err := s.store.LoadState(ctx)
	s.Require().NoError(err)
	s.Equal("ops.admin", state.Admin.String())
	s.Equal(uint64(1000), state.MaxPerVictim)
}

func (s *PostgresStoreSuite) TestMaxUnsignedRoundTrip() {
	ctx := context.Background()
	rule := &models.AllocationRule{
		DisasterID:         id.DisasterID(^uint64(0)),
		BaseAmount:         ^uint64(0),
		SeverityMultiplier: 1,
	}
	s.Require().NoError(s.store.SaveRule(ctx, rule))

	got, err := s.store.FindRule(ctx, rule.DisasterID)
	s.Require().NoError(err)
	s.Equal(rule, got)
}

// TestConcurrentClaimInsert verifies the (beneficiary, disaster) key admits
// exactly one claim.
func (s *PostgresStoreSuite) TestConcurrentClaimInsert() {
	ctx := context.Background()
	const goroutines = 20

	var wg sync.WaitGroup
	var ok, dup atomic.Int32
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			claim, err := models.NewClaim("victim.one", 7, 200, 100, nil)
			if err != nil {
				return
			}
			err = s.store.CreateClaim(ctx, claim)
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, sentinel.ErrAlreadyUsed):
				dup.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), ok.Load())
	s.Equal(int32(goroutines-1), dup.Load())
}

func (s *PostgresStoreSuite) TestRolledBackTxLeavesNoTrace() {
	ctx := context.Background()
	tx, err := s.postgres.DB.BeginTx(ctx, nil)
	s.Require().NoError(err)

	txStore := store.NewPostgresTx(tx)
	state, err := txStore.LoadState(ctx)
	s.Require().NoError(err)
	next, voucherID, err := state.WithIssuance(200)
	s.Require().NoError(err)
	s.Require().NoError(txStore.CreateVoucher(ctx, &models.IssuedVoucher{ID: voucherID, Recipient: "victim.one", Amount: 200, DisasterID: 7, IssuedAt: 100}))
	s.Require().NoError(txStore.SaveState(ctx, next))
	s.Require().NoError(tx.Rollback())

	_, err = s.store.FindVoucher(ctx, voucherID)
	s.ErrorIs(err, sentinel.ErrNotFound)
	after, err := s.store.LoadState(ctx)
	s.Require().NoError(err)
	s.Zero(after.TotalIssued)
}

func (s *PostgresStoreSuite) TestRoleGrants() {
	ctx := context.Background()
	s.Require().NoError(s.store.GrantRole(ctx, models.RoleIssuer, "field.agent"))
	s.Require().NoError(s.store.GrantRole(ctx, models.RoleIssuer, "field.agent"))

	has, err := s.store.HasRole(ctx, models.RoleIssuer, "field.agent")
	s.Require().NoError(err)
	s.True(has)

	s.Require().NoError(s.store.RevokeRole(ctx, models.RoleIssuer, "field.agent"))
	has, err = s.store.HasRole(ctx, models.RoleIssuer, "field.agent")
	s.Require().NoError(err)
	s.False(has)
}
