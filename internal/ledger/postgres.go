package ledger

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	id "relief/pkg/domain"
)

const pgCheckViolation = "23514"

// Postgres keeps balances in the ledger_balances table through a pgx pool.
// Balances are NUMERIC(20,0) and cross the wire as decimal text.
type Postgres struct {
	pool      *pgxpool.Pool
	custodian id.Principal
}

func NewPostgres(pool *pgxpool.Pool, custodian id.Principal) *Postgres {
	return &Postgres{pool: pool, custodian: custodian}
}

func (l *Postgres) Balance(ctx context.Context, account id.Principal) (uint64, error) {
	var raw string
	err := l.pool.QueryRow(ctx,
		`SELECT balance::text FROM ledger_balances WHERE account = $1`,
		account.String(),
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read balance: %w", err)
	}
	balance, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse balance: %w", err)
	}
	return balance, nil
}

// Mint moves amount from the custodian to recipient.
func (l *Postgres) Mint(ctx context.Context, recipient id.Principal, amount uint64) error {
	return l.move(ctx, l.custodian, recipient, amount)
}

// Burn moves amount from account back to the custodian.
func (l *Postgres) Burn(ctx context.Context, account id.Principal, amount uint64) error {
	return l.move(ctx, account, l.custodian, amount)
}

// Fund credits the custodian, creating its row if needed.
func (l *Postgres) Fund(ctx context.Context, amount uint64) error {
	return pgx.BeginFunc(ctx, l.pool, func(tx pgx.Tx) error {
		return credit(ctx, tx, l.custodian, amount)
	})
}

func (l *Postgres) move(ctx context.Context, from, to id.Principal, amount uint64) error {
	if amount == 0 {
		return ErrInvalidAmount
	}
	return pgx.BeginFunc(ctx, l.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE ledger_balances
			SET balance = balance - $2::text::numeric, updated_at = NOW()
			WHERE account = $1 AND balance >= $2::text::numeric
		`, from.String(), strconv.FormatUint(amount, 10))
		if err != nil {
			return fmt.Errorf("debit %s: %w", from, err)
		}
		if tag.RowsAffected() == 0 {
			return ErrInsufficientBalance
		}
		return credit(ctx, tx, to, amount)
	})
}

// credit adds amount to account. The column check constraint rejects
// balances beyond the uint64 range.
func credit(ctx context.Context, tx pgx.Tx, account id.Principal, amount uint64) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO ledger_balances (account, balance)
		VALUES ($1, $2::text::numeric)
		ON CONFLICT (account) DO UPDATE
		SET balance = ledger_balances.balance + EXCLUDED.balance, updated_at = NOW()
	`, account.String(), strconv.FormatUint(amount, 10))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgCheckViolation {
			return ErrOverflow
		}
		return fmt.Errorf("credit %s: %w", account, err)
	}
	return nil
}
