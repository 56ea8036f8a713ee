package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"relief/internal/issuance/ports"
	issuancestore "relief/internal/issuance/store"
	dErrors "relief/pkg/domain-errors"
	txcontext "relief/pkg/platform/tx"
)

const defaultIssuanceTxTimeout = 5 * time.Second

// issuancePostgresTx serializes engine calls on the engine_state row lock
// taken by the tx-bound store's LoadState. The transaction rides in the
// context so the audit outbox insert commits or rolls back with it.
type issuancePostgresTx struct {
	db      *sql.DB
	timeout time.Duration
}

func newIssuancePostgresTx(db *sql.DB, timeout time.Duration) *issuancePostgresTx {
	return &issuancePostgresTx{db: db, timeout: timeout}
}

func (t *issuancePostgresTx) RunInTx(ctx context.Context, fn func(ctx context.Context, store ports.Store) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultIssuanceTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin issuance tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(txcontext.WithTx(ctx, tx), issuancestore.NewPostgresTx(tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit issuance tx: %w", err)
	}
	return nil
}
