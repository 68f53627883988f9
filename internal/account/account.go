// Package account is the chip ledger behind every player at a table. Game
// engines never touch a balance directly; they move chips exclusively through
// Withdraw and Deposit so that bookkeeping stays in one place.
package account

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrInsufficientFunds is returned when a withdrawal exceeds the
	// balance. The balance is left untouched; it never clamps to zero.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrNegativeAmount is returned for negative deposits or withdrawals.
	ErrNegativeAmount = errors.New("amount must not be negative")
)

// Account holds a named chip balance.
type Account struct {
	ID      uuid.UUID
	Name    string
	balance int
}

// Generate creates an account with a fresh id and starting balance.
func Generate(name string, balance int) *Account {
	return &Account{ID: uuid.New(), Name: name, balance: balance}
}

// Balance returns the current chip balance.
func (a *Account) Balance() int {
	return a.balance
}

// Deposit adds chips to the account.
func (a *Account) Deposit(amount int) error {
	if amount < 0 {
		return fmt.Errorf("deposit %d: %w", amount, ErrNegativeAmount)
	}
	a.balance += amount
	return nil
}

// Withdraw removes chips from the account, failing if the balance is short.
func (a *Account) Withdraw(amount int) error {
	if amount < 0 {
		return fmt.Errorf("withdraw %d: %w", amount, ErrNegativeAmount)
	}
	if a.balance < amount {
		return fmt.Errorf("withdraw %d with balance %d: %w", amount, a.balance, ErrInsufficientFunds)
	}
	a.balance -= amount
	return nil
}

func (a *Account) String() string {
	return fmt.Sprintf("%s (%d chips)", a.Name, a.balance)
}
