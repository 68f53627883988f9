package blackjack

import "fmt"

// Outcome is the closed set of ways a hand can end. Keeping it an enum with
// exhaustive switches means a new outcome cannot ship without a ratio and a
// message.
type Outcome int

const (
	OutcomeBlackjackTie Outcome = iota
	OutcomeTie
	OutcomePlayerBlackjack
	OutcomeDealerBust
	OutcomePlayerWins
	OutcomeDealerBlackjack
	OutcomePlayerBust
	OutcomeDealerWins
)

// String returns the stable identifier used in logs and events.
func (o Outcome) String() string {
	switch o {
	case OutcomeBlackjackTie:
		return "blackjack_tie"
	case OutcomeTie:
		return "tie"
	case OutcomePlayerBlackjack:
		return "player_blackjack"
	case OutcomeDealerBust:
		return "dealer_bust"
	case OutcomePlayerWins:
		return "player_wins"
	case OutcomeDealerBlackjack:
		return "dealer_blackjack"
	case OutcomePlayerBust:
		return "player_bust"
	case OutcomeDealerWins:
		return "dealer_wins"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Message returns the dealer's table-talk line for the outcome.
func (o Outcome) Message() string {
	switch o {
	case OutcomeBlackjackTie:
		return "Both have Blackjack. Push."
	case OutcomeTie:
		return "Push."
	case OutcomePlayerBlackjack:
		return "Blackjack! You win!"
	case OutcomeDealerBust:
		return "Dealer busted. You win!"
	case OutcomePlayerWins:
		return "You win!"
	case OutcomeDealerBlackjack:
		return "Dealer has Blackjack."
	case OutcomePlayerBust:
		return "You busted. Dealer wins."
	case OutcomeDealerWins:
		return "Dealer wins."
	default:
		return "Unknown outcome."
	}
}

// Ratio returns the payout ratio applied to the hand's bet. The bet was
// withdrawn when it was placed, so 1.0 is a push, 0.0 a total loss, 2.0 an
// even-money win and 1+multiplier a natural blackjack win.
func (o Outcome) Ratio(multiplier float64) float64 {
	switch o {
	case OutcomeBlackjackTie, OutcomeTie:
		return 1.0
	case OutcomePlayerBlackjack:
		return 1.0 + multiplier
	case OutcomeDealerBust, OutcomePlayerWins:
		return 2.0
	case OutcomeDealerBlackjack, OutcomePlayerBust, OutcomeDealerWins:
		return 0.0
	default:
		return 0.0
	}
}

// Payout returns the chips deposited back for a bet settled with this
// outcome.
func (o Outcome) Payout(bet int, multiplier float64) int {
	return int(float64(bet) * o.Ratio(multiplier))
}

// Won reports whether the outcome pays more than the original bet.
func (o Outcome) Won() bool {
	return o == OutcomePlayerBlackjack || o == OutcomeDealerBust || o == OutcomePlayerWins
}

// Push reports whether the outcome returns exactly the original bet.
func (o Outcome) Push() bool {
	return o == OutcomeBlackjackTie || o == OutcomeTie
}
