package blackjack

import (
	"fmt"
	"slices"

	"github.com/feltkit/felt/internal/account"
	"github.com/feltkit/felt/internal/deck"
)

// Player is a seat at the table: an account to move chips through and the
// hands currently in play. Hands is empty between rounds and grows past one
// only by splitting.
type Player struct {
	Account *account.Account
	Hands   []*Hand
}

// NewPlayer seats a player backed by the given account.
func NewPlayer(acct *account.Account) *Player {
	return &Player{Account: acct}
}

// Name returns the account holder's name.
func (p *Player) Name() string {
	return p.Account.Name
}

// Balance returns the player's chip balance.
func (p *Player) Balance() int {
	return p.Account.Balance()
}

// ClearHands discards the player's hands between rounds. Balances persist;
// hands and bets do not.
func (p *Player) ClearHands() {
	p.Hands = nil
}

// PlaceBet withdraws the stake and opens the player's first hand of the
// round. Rejections are typed *BetError values; the engine never loops on
// input, the caller re-prompts.
func (p *Player) PlaceBet(amount, tableMinimum int) error {
	if amount < tableMinimum {
		return &BetError{Reason: BetBelowMinimum, Amount: amount, Minimum: tableMinimum, Balance: p.Balance()}
	}
	if amount > p.Balance() {
		return &BetError{Reason: BetInsufficientFunds, Amount: amount, Minimum: tableMinimum, Balance: p.Balance()}
	}
	if err := p.Account.Withdraw(amount); err != nil {
		return fmt.Errorf("place bet: %w", err)
	}
	p.Hands = append(p.Hands, NewHand(amount))
	return nil
}

// CanDouble reports whether the hand may double down: exactly two cards (no
// hit taken yet) and enough balance to match the bet.
func (p *Player) CanDouble(h *Hand) bool {
	return h.Len() == 2 && p.Balance() >= h.Bet
}

// CanSplit reports whether the hand may be split: two cards of equal point
// value (ten, jack, queen and king are mutually splittable), enough balance
// to match the bet, and at most one split per original hand: a hand that is
// itself the product of a split cannot be split again.
func (p *Player) CanSplit(h *Hand) bool {
	if h.Split || h.Len() != 2 {
		return false
	}
	cards := h.Cards()
	if cards[0].PointValue() != cards[1].PointValue() {
		return false
	}
	return p.Balance() >= h.Bet
}

// DoubleDown withdraws the bet a second time, doubles the stake and draws
// exactly one card. The hand's turn is over afterwards regardless of total.
func (p *Player) DoubleDown(h *Hand, shoe *deck.Shoe) error {
	if !p.CanDouble(h) {
		return fmt.Errorf("double down: %w", ErrIllegalAction)
	}
	if err := p.Account.Withdraw(h.Bet); err != nil {
		return fmt.Errorf("double down: %w", err)
	}
	h.Bet *= 2
	card, err := shoe.Draw()
	if err != nil {
		return fmt.Errorf("double down: %w", err)
	}
	h.AddCard(card)
	return nil
}

// Split withdraws the bet again and breaks the hand in two: the second card
// moves to a new hand marked as split, each hand draws one fresh card, and
// the new hand is inserted directly after the original so it acts next.
// Both hands remain independently actionable. Returns the new hand.
func (p *Player) Split(h *Hand, shoe *deck.Shoe) (*Hand, error) {
	if !p.CanSplit(h) {
		return nil, fmt.Errorf("split: %w", ErrIllegalAction)
	}
	if err := p.Account.Withdraw(h.Bet); err != nil {
		return nil, fmt.Errorf("split: %w", err)
	}

	moved := h.cards[1]
	h.cards = h.cards[:1]

	// Both halves count as split hands: neither can be a natural and
	// neither can be split again.
	h.Split = true

	next := NewHand(h.Bet)
	next.Split = true
	next.AddCard(moved)

	for _, hand := range []*Hand{h, next} {
		card, err := shoe.Draw()
		if err != nil {
			return nil, fmt.Errorf("split: %w", err)
		}
		hand.AddCard(card)
	}

	idx := slices.Index(p.Hands, h)
	if idx < 0 {
		return nil, fmt.Errorf("split: hand does not belong to player")
	}
	p.Hands = slices.Insert(p.Hands, idx+1, next)

	return next, nil
}

// Dealer is the house seat: a single hand, never split, never bet-bearing,
// driven by a fixed draw policy instead of decisions.
type Dealer struct {
	Hand *Hand
}

// NewDealer creates a dealer with an empty hand.
func NewDealer() *Dealer {
	return &Dealer{Hand: NewHand(0)}
}

// ClearHand discards the dealer's hand between rounds.
func (d *Dealer) ClearHand() {
	d.Hand = NewHand(0)
}

// ShouldHit applies the fixed house policy: hit below 17, using the same
// soft-ace totalling as players. Ace+6 is a soft 17 and stands.
func (d *Dealer) ShouldHit() bool {
	return d.Hand.Total() < 17
}
