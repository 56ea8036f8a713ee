package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relief/internal/issuance/models"
	id "relief/pkg/domain"
	"relief/pkg/platform/sentinel"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func TestPostgresLoadState(t *testing.T) {
	t.Run("read store does not lock the state row", func(t *testing.T) {
		db, mock := newMock(t)
		store := NewPostgres(db)

		mock.ExpectQuery(`FROM engine_state\s+WHERE id = 1$`).
			WillReturnRows(sqlmock.NewRows([]string{"admin", "paused", "total_issued", "max_per_victim", "min_severity", "next_voucher_id"}).
				AddRow("ops.admin", false, "18446744073709551615", "1000", "3", "7"))

		state, err := store.LoadState(context.Background())
		require.NoError(t, err)
		assert.Equal(t, id.Principal("ops.admin"), state.Admin)
		assert.Equal(t, ^uint64(0), state.TotalIssued)
		assert.Equal(t, uint64(1000), state.MaxPerVictim)
		assert.Equal(t, id.VoucherID(7), state.NextVoucherID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("tx store locks the state row", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectQuery(`FOR UPDATE`).
			WillReturnRows(sqlmock.NewRows([]string{"admin", "paused", "total_issued", "max_per_victim", "min_severity", "next_voucher_id"}).
				AddRow("ops.admin", true, int64(0), int64(1000), int64(3), int64(1)))
		mock.ExpectRollback()

		tx, err := db.Begin()
		require.NoError(t, err)
		state, err := NewPostgresTx(tx).LoadState(context.Background())
		require.NoError(t, err)
		assert.True(t, state.Paused)
		require.NoError(t, tx.Rollback())
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row maps to not found", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectQuery("FROM engine_state").WillReturnError(sql.ErrNoRows)

		_, err := NewPostgres(db).LoadState(context.Background())
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}

func TestPostgresSaveStateWithoutRow(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec("UPDATE engine_state").WillReturnResult(sqlmock.NewResult(0, 0))

	err := NewPostgres(db).SaveState(context.Background(), models.NewEngineState("ops.admin", 1000, 3))
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestPostgresCreateClaim(t *testing.T) {
	claim := &models.VictimClaim{
		Beneficiary: "victim.one",
		DisasterID:  7,
		Amount:      200,
		ClaimedAt:   100,
		ExpiresAt:   1540,
		Metadata:    []byte("zone-a"),
	}

	t.Run("inserts unsigned columns as decimal text", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectExec("INSERT INTO victim_claims").
			WithArgs("victim.one", "7", "200", "100", "1540", []byte("zone-a")).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, NewPostgres(db).CreateClaim(context.Background(), claim))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unique violation maps to already used", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectExec("INSERT INTO victim_claims").
			WillReturnError(&pq.Error{Code: pgUniqueViolation})

		err := NewPostgres(db).CreateClaim(context.Background(), claim)
		assert.ErrorIs(t, err, sentinel.ErrAlreadyUsed)
	})

	t.Run("other failures are wrapped", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectExec("INSERT INTO victim_claims").WillReturnError(errors.New("connection reset"))

		err := NewPostgres(db).CreateClaim(context.Background(), claim)
		require.Error(t, err)
		assert.NotErrorIs(t, err, sentinel.ErrAlreadyUsed)
		assert.Contains(t, err.Error(), "insert claim")
	})
}

func TestPostgresFindRuleNotFound(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery("FROM allocation_rules").WithArgs("9").WillReturnError(sql.ErrNoRows)

	_, err := NewPostgres(db).FindRule(context.Background(), 9)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestPostgresFindVoucher(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery("FROM issued_vouchers").WithArgs("3").
		WillReturnRows(sqlmock.NewRows([]string{"recipient", "amount", "disaster_id", "issued_at"}).
			AddRow("victim.one", []byte("200"), []byte("7"), []byte("100")))

	v, err := NewPostgres(db).FindVoucher(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, &models.IssuedVoucher{ID: 3, Recipient: "victim.one", Amount: 200, DisasterID: 7, IssuedAt: 100}, v)
}

func TestPostgresHasRole(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery("SELECT EXISTS").WithArgs("issuer", "field.agent").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := NewPostgres(db).HasRole(context.Background(), models.RoleIssuer, "field.agent")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUnsignedScan(t *testing.T) {
	var v u64
	require.NoError(t, v.Scan([]byte("42")))
	assert.Equal(t, u64(42), v)

	assert.Error(t, v.Scan(int64(-1)))
	assert.Error(t, v.Scan([]byte("18446744073709551616")))
	assert.Error(t, v.Scan(3.5))
}
