//go:build integration

package ledger_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"relief/internal/ledger"
	"relief/pkg/testutil/containers"
)

type PostgresLedgerSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	ledger   *ledger.Postgres
}

func TestPostgresLedgerSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresLedgerSuite))
}

func (s *PostgresLedgerSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.ledger = ledger.NewPostgres(s.postgres.Pool, "relief.custodian")
}

func (s *PostgresLedgerSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "ledger_balances"))
}

func (s *PostgresLedgerSuite) TestMintAndBurn() {
	ctx := context.Background()
	s.Require().NoError(s.ledger.Fund(ctx, 500))
	s.Require().NoError(s.ledger.Mint(ctx, "victim.one", 200))

	custodial, err := s.ledger.Balance(ctx, "relief.custodian")
	s.Require().NoError(err)
	s.Equal(uint64(300), custodial)

	s.Require().NoError(s.ledger.Burn(ctx, "victim.one", 200))
	victim, err := s.ledger.Balance(ctx, "victim.one")
	s.Require().NoError(err)
	s.Zero(victim)
}

func (s *PostgresLedgerSuite) TestOverdrawLeavesBalancesUntouched() {
	ctx := context.Background()
	s.Require().NoError(s.ledger.Fund(ctx, 100))

	s.ErrorIs(s.ledger.Mint(ctx, "victim.one", 101), ledger.ErrInsufficientBalance)

	custodial, err := s.ledger.Balance(ctx, "relief.custodian")
	s.Require().NoError(err)
	s.Equal(uint64(100), custodial)
}

func (s *PostgresLedgerSuite) TestUnknownAccountHasZeroBalance() {
	balance, err := s.ledger.Balance(context.Background(), "nobody")
	s.Require().NoError(err)
	s.Zero(balance)
}

func (s *PostgresLedgerSuite) TestCreditBeyondRangeIsOverflow() {
	ctx := context.Background()
	s.Require().NoError(s.ledger.Fund(ctx, ^uint64(0)))
	s.ErrorIs(s.ledger.Fund(ctx, 1), ledger.ErrOverflow)
}
