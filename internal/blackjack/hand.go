package blackjack

import (
	"strings"

	"github.com/feltkit/felt/internal/deck"
)

// Settlement records how a hand ended and what it paid.
type Settlement struct {
	Outcome Outcome
	Payout  int
}

// Hand is one hand of cards owned by a single seat, together with the bet
// riding on it. A player holds more than one only after splitting.
type Hand struct {
	cards []deck.Card

	// Bet is the amount withdrawn from the player's account for this
	// hand. Doubling doubles it; the dealer's hand keeps it at zero.
	Bet int

	// Split marks a hand created by splitting. A split hand can never be
	// a natural blackjack, even if its first two cards total 21.
	Split bool

	settlement *Settlement
}

// NewHand creates an empty hand carrying the given bet.
func NewHand(bet int) *Hand {
	return &Hand{Bet: bet}
}

// AddCard appends a card to the hand.
func (h *Hand) AddCard(c deck.Card) {
	h.cards = append(h.cards, c)
}

// Cards returns a copy of the hand's cards in deal order.
func (h *Hand) Cards() []deck.Card {
	out := make([]deck.Card, len(h.cards))
	copy(out, h.cards)
	return out
}

// Len returns the number of cards in the hand.
func (h *Hand) Len() int {
	return len(h.cards)
}

// Total returns the hand's blackjack total: aces count as 11, then demote
// to 1 one at a time while the total exceeds 21.
func (h *Hand) Total() int {
	total, aces := 0, 0
	for _, c := range h.cards {
		total += c.PointValue()
		if c.IsAce() {
			aces++
		}
	}
	for aces > 0 && total > 21 {
		total -= 10
		aces--
	}
	return total
}

// IsSoft reports whether the total still counts an ace as 11.
func (h *Hand) IsSoft() bool {
	total, aces := 0, 0
	for _, c := range h.cards {
		total += c.PointValue()
		if c.IsAce() {
			aces++
		}
	}
	for aces > 0 && total > 21 {
		total -= 10
		aces--
	}
	return aces > 0
}

// IsBust reports whether the hand's total exceeds 21.
func (h *Hand) IsBust() bool {
	return h.Total() > 21
}

// IsBlackjack reports whether the hand is a natural: two cards totalling 21
// on a hand that was not produced by splitting.
func (h *Hand) IsBlackjack() bool {
	return !h.Split && len(h.cards) == 2 && h.Total() == 21
}

// Settle records the hand's outcome and payout. A hand settles exactly once
// per round; a second call returns ErrAlreadySettled and changes nothing.
func (h *Hand) Settle(o Outcome, payout int) error {
	if h.settlement != nil {
		return ErrAlreadySettled
	}
	h.settlement = &Settlement{Outcome: o, Payout: payout}
	return nil
}

// Settled reports whether the hand has an outcome.
func (h *Hand) Settled() bool {
	return h.settlement != nil
}

// Settlement returns the recorded outcome, or nil before settling.
func (h *Hand) Settlement() *Settlement {
	return h.settlement
}

func (h *Hand) String() string {
	parts := make([]string, len(h.cards))
	for i, c := range h.cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}
