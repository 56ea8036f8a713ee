// Package ledger holds token balances for the issuance engine.
//
// Mint disburses from the custodial account: the custodian is debited and the
// recipient credited in one step, so the engine's balance check and the mint
// agree on the funds available. Burn reverses a mint.
package ledger

import "errors"

var (
	// ErrInsufficientBalance is returned when a debit exceeds the account balance.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrOverflow is returned when a credit would wrap the account balance.
	ErrOverflow = errors.New("balance overflow")

	// ErrInvalidAmount is returned for zero-value movements.
	ErrInvalidAmount = errors.New("amount must be positive")
)
