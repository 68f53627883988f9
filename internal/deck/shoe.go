package deck

import (
	"errors"
	"fmt"
	rand "math/rand/v2"
)

const deckSize = 52

var (
	// ErrBadDeckCount is returned when a shoe is constructed with fewer
	// than one deck.
	ErrBadDeckCount = errors.New("shoe requires at least one deck")

	// ErrShoeExhausted is returned when a draw is attempted on an empty
	// shoe. The shoe never reshuffles itself mid-round, so running dry
	// means the table was configured too small for its players and is
	// treated as fatal by the round engine.
	ErrShoeExhausted = errors.New("shoe exhausted")
)

// Shoe is the draw source for a sitting: one or more standard 52-card decks
// combined and shuffled. A shoe is owned by exactly one table; cards only
// ever leave it during a round.
type Shoe struct {
	cards     []Card
	deckCount int
	rng       *rand.Rand
}

// NewShoe builds deckCount standard decks, concatenates them and shuffles
// the result once.
func NewShoe(deckCount int, rng *rand.Rand) (*Shoe, error) {
	if deckCount < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrBadDeckCount, deckCount)
	}

	s := &Shoe{
		cards:     make([]Card, 0, deckCount*deckSize),
		deckCount: deckCount,
		rng:       rng,
	}
	for i := 0; i < deckCount; i++ {
		for suit := Spades; suit <= Clubs; suit++ {
			for rank := Two; rank <= Ace; rank++ {
				s.cards = append(s.cards, NewCard(suit, rank))
			}
		}
	}
	s.Shuffle()

	return s, nil
}

// NewShoeFromCards builds an unshuffled shoe holding exactly the given cards
// in draw order. Used for deterministic scenarios and tests.
func NewShoeFromCards(cards []Card) *Shoe {
	deckCount := (len(cards) + deckSize - 1) / deckSize
	if deckCount < 1 {
		deckCount = 1
	}
	return &Shoe{
		cards:     append([]Card(nil), cards...),
		deckCount: deckCount,
	}
}

// Shuffle re-randomizes the remaining cards in place (Fisher-Yates). Called
// at construction; a sitting may also call it when rebuilding the shoe
// between rounds, never during one.
func (s *Shoe) Shuffle() {
	for i := len(s.cards) - 1; i > 0; i-- {
		j := s.rng.IntN(i + 1)
		s.cards[i], s.cards[j] = s.cards[j], s.cards[i]
	}
}

// Draw removes and returns the top card.
func (s *Shoe) Draw() (Card, error) {
	if len(s.cards) == 0 {
		return Card{}, ErrShoeExhausted
	}

	card := s.cards[0]
	s.cards = s.cards[1:]
	return card, nil
}

// Remaining returns the number of cards left in the shoe.
func (s *Shoe) Remaining() int {
	return len(s.cards)
}

// Size returns the number of cards the shoe held when full (52 per deck).
func (s *Shoe) Size() int {
	return s.deckCount * deckSize
}

// DeckCount returns the number of decks the shoe was built from.
func (s *Shoe) DeckCount() int {
	return s.deckCount
}
