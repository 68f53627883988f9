package account

import (
	"errors"
	"testing"
)

func TestWithdrawInsufficientFundsLeavesBalance(t *testing.T) {
	a := Generate("Dana", 50)

	err := a.Withdraw(60)
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("error = %v, want ErrInsufficientFunds", err)
	}
	if a.Balance() != 50 {
		t.Errorf("balance = %d after rejected withdrawal, want 50", a.Balance())
	}
}

func TestWithdrawAndDeposit(t *testing.T) {
	a := Generate("Dana", 100)

	if err := a.Withdraw(40); err != nil {
		t.Fatal(err)
	}
	if a.Balance() != 60 {
		t.Errorf("balance = %d, want 60", a.Balance())
	}

	if err := a.Deposit(80); err != nil {
		t.Fatal(err)
	}
	if a.Balance() != 140 {
		t.Errorf("balance = %d, want 140", a.Balance())
	}
}

func TestNegativeAmountsRejected(t *testing.T) {
	a := Generate("Dana", 100)

	if err := a.Deposit(-1); !errors.Is(err, ErrNegativeAmount) {
		t.Errorf("Deposit(-1) error = %v, want ErrNegativeAmount", err)
	}
	if err := a.Withdraw(-1); !errors.Is(err, ErrNegativeAmount) {
		t.Errorf("Withdraw(-1) error = %v, want ErrNegativeAmount", err)
	}
	if a.Balance() != 100 {
		t.Errorf("balance = %d, want 100", a.Balance())
	}
}

func TestGenerateAssignsDistinctIDs(t *testing.T) {
	a := Generate("A", 0)
	b := Generate("B", 0)
	if a.ID == b.ID {
		t.Error("expected distinct account ids")
	}
}
