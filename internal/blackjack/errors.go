package blackjack

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadySettled is returned when a hand is settled twice. The
	// first settlement stands; the second attempt changes nothing.
	ErrAlreadySettled = errors.New("hand already settled")

	// ErrIllegalAction is returned when a decision is not in the hand's
	// legal action set. State is unchanged and the same decision is
	// offered again.
	ErrIllegalAction = errors.New("illegal action")

	// ErrNoBet is returned when an operation requires a bet-bearing hand
	// and the player has none.
	ErrNoBet = errors.New("no bet placed")
)

// BetReason classifies why a bet was rejected.
type BetReason int

const (
	BetBelowMinimum BetReason = iota
	BetInsufficientFunds
	BetNotANumber
)

func (r BetReason) String() string {
	switch r {
	case BetBelowMinimum:
		return "below minimum"
	case BetInsufficientFunds:
		return "insufficient funds"
	case BetNotANumber:
		return "not a number"
	default:
		return "unknown"
	}
}

// BetError is a recoverable bet rejection. Engine state is unchanged; the
// caller re-prompts and tries again.
type BetError struct {
	Reason  BetReason
	Amount  int
	Minimum int
	Balance int
}

func (e *BetError) Error() string {
	switch e.Reason {
	case BetBelowMinimum:
		return fmt.Sprintf("bet %d is below the table minimum of %d", e.Amount, e.Minimum)
	case BetInsufficientFunds:
		return fmt.Sprintf("bet %d exceeds balance of %d", e.Amount, e.Balance)
	case BetNotANumber:
		return "bet is not a number"
	default:
		return "bet rejected"
	}
}
