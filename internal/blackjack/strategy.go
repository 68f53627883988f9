package blackjack

import "github.com/feltkit/felt/internal/deck"

// PolicyAgent plays a simplified basic strategy: split aces and eights,
// double hard 10s and 11s, stand on low totals against a weak dealer upcard,
// otherwise draw to 17. It only ever returns actions from the legal set, so
// it can drive unattended simulations.
type PolicyAgent struct{}

func (PolicyAgent) Decide(view TableView, legal []Action) Action {
	hand := view.Hand

	if isLegal(SplitPair, legal) && len(hand.Cards) == 2 {
		r := hand.Cards[0].Rank
		if r == deck.Ace || r == deck.Eight {
			return SplitPair
		}
	}

	if isLegal(Double, legal) && !hand.Soft && (hand.Total == 10 || hand.Total == 11) {
		return Double
	}

	if hand.Total >= 17 && !hand.Soft {
		return Stand
	}
	if hand.Soft && hand.Total >= 18 {
		return Stand
	}

	// Hard 13-16 against a weak upcard: let the dealer bust.
	if !hand.Soft && hand.Total >= 13 && !view.Dealer.Revealed {
		up := view.Dealer.Upcard.PointValue()
		if up >= 2 && up <= 6 {
			return Stand
		}
	}

	if isLegal(Hit, legal) {
		return Hit
	}
	return Stand
}
