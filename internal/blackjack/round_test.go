package blackjack

import (
	"context"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feltkit/felt/internal/account"
	"github.com/feltkit/felt/internal/deck"
)

var testRules = TableRules{MinimumBet: 10, DeckCount: 1, BlackjackPayout: DefaultBlackjackPayout}

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

// riggedRound builds a one-player round drawing the given cards in order.
func riggedRound(t *testing.T, balance int, cards string) (*Round, *Player) {
	t.Helper()
	shoe := deck.NewShoeFromCards(deck.MustParseCards(cards))
	player := NewPlayer(account.Generate("Dana", balance))
	round, err := NewRound(shoe, []*Player{player}, NewDealer(), testRules, WithLogger(testLogger()))
	require.NoError(t, err)
	return round, player
}

// eventLog records every published event type in order.
type eventLog struct {
	events []GameEvent
}

func (l *eventLog) OnEvent(e GameEvent) { l.events = append(l.events, e) }

func (l *eventLog) types() []EventType {
	out := make([]EventType, len(l.events))
	for i, e := range l.events {
		out[i] = e.EventType()
	}
	return out
}

func TestRoundRejectsBadRules(t *testing.T) {
	shoe := deck.NewShoeFromCards(deck.MustParseCards("AsKs"))
	player := NewPlayer(account.Generate("Dana", 100))

	for _, rules := range []TableRules{
		{MinimumBet: 0, DeckCount: 1, BlackjackPayout: 1.5},
		{MinimumBet: 10, DeckCount: 0, BlackjackPayout: 1.5},
		{MinimumBet: 10, DeckCount: 1, BlackjackPayout: 0},
	} {
		_, err := NewRound(shoe, []*Player{player}, NewDealer(), rules)
		assert.Error(t, err, "rules %+v", rules)
	}
}

func TestDealerBlackjackResolvesTableImmediately(t *testing.T) {
	// Deal order: player Ks, dealer Ah, player 9s, dealer Th.
	round, player := riggedRound(t, 100, "KsAh9sTh")

	agent := &ScriptedAgent{Actions: []Action{Hit, Hit, Hit}} // must never be consulted
	err := round.Play(context.Background(), FixedBet(10), map[string]Agent{"Dana": agent})
	require.NoError(t, err)

	require.Len(t, player.Hands, 1)
	s := player.Hands[0].Settlement()
	require.NotNil(t, s)
	assert.Equal(t, OutcomeDealerBlackjack, s.Outcome)
	assert.Equal(t, 0, s.Payout)
	assert.Equal(t, 90, player.Balance())
	assert.Equal(t, 0, agent.pos, "player decisions are skipped under a dealer natural")
}

func TestDealerBlackjackAgainstPlayerNaturalIsPush(t *testing.T) {
	// Player As Kd (natural) against dealer Ah Th (natural).
	round, player := riggedRound(t, 100, "AsAhKdTh")

	err := round.Play(context.Background(), FixedBet(10), nil)
	require.NoError(t, err)

	s := player.Hands[0].Settlement()
	require.NotNil(t, s)
	assert.Equal(t, OutcomeBlackjackTie, s.Outcome)
	assert.Equal(t, 100, player.Balance(), "a push is balance neutral")
}

func TestPlayerBlackjackPaysThreeToTwo(t *testing.T) {
	// Player As Kd natural; dealer 9h 7h has no one to draw against and
	// stands pat on 16.
	round, player := riggedRound(t, 100, "As9hKd7h")

	err := round.Play(context.Background(), FixedBet(10), nil)
	require.NoError(t, err)

	s := player.Hands[0].Settlement()
	require.NotNil(t, s)
	assert.Equal(t, OutcomePlayerBlackjack, s.Outcome)
	assert.Equal(t, 25, s.Payout)
	assert.Equal(t, 115, player.Balance())
	assert.Equal(t, 2, round.dealer.Hand.Len(), "dealer draws nothing against a lone natural")
}

func TestSplitBustAndPush(t *testing.T) {
	// Deal: player 8s, dealer Th, player 8h, dealer 9h (dealer 19).
	// Split draws 5d onto 8s and 3c onto 8h. The first hand hits Kd and
	// busts; the second hits 8d to 19 and stands for a push.
	round, player := riggedRound(t, 100, "8sTh8h9h5d3cKd8d")

	agent := &ScriptedAgent{Actions: []Action{SplitPair, Hit, Hit, Stand}}
	err := round.Play(context.Background(), FixedBet(10), map[string]Agent{"Dana": agent})
	require.NoError(t, err)

	require.Len(t, player.Hands, 2)

	first := player.Hands[0].Settlement()
	require.NotNil(t, first)
	assert.Equal(t, OutcomePlayerBust, first.Outcome)
	assert.Equal(t, 0, first.Payout)

	second := player.Hands[1].Settlement()
	require.NotNil(t, second)
	assert.Equal(t, OutcomeTie, second.Outcome)
	assert.Equal(t, 10, second.Payout)

	// Two stakes of 10 went in, one came back.
	assert.Equal(t, 90, player.Balance())
}

func TestDoubleDownWin(t *testing.T) {
	// Player 5s 6h doubles into Th for 21; dealer Th 7h stands on 17.
	round, player := riggedRound(t, 100, "5sTh6h7hTd")

	agent := &ScriptedAgent{Actions: []Action{Double}}
	err := round.Play(context.Background(), FixedBet(10), map[string]Agent{"Dana": agent})
	require.NoError(t, err)

	h := player.Hands[0]
	assert.Equal(t, 20, h.Bet)
	assert.Equal(t, 3, h.Len(), "doubling draws exactly one card")

	s := h.Settlement()
	require.NotNil(t, s)
	assert.Equal(t, OutcomePlayerWins, s.Outcome)
	assert.Equal(t, 40, s.Payout)
	assert.Equal(t, 120, player.Balance())
}

func TestDealerDrawsToSeventeen(t *testing.T) {
	// Player stands on Th 9s; dealer Th 6h must hit hard 16 and draws 2d.
	round, player := riggedRound(t, 100, "ThTh9s6h2d")

	err := round.Play(context.Background(), FixedBet(10), nil)
	require.NoError(t, err)

	assert.Equal(t, 18, round.dealer.Hand.Total())
	s := player.Hands[0].Settlement()
	require.NotNil(t, s)
	assert.Equal(t, OutcomePlayerWins, s.Outcome)
	assert.Equal(t, 120, player.Balance())
}

func TestDealerStandsOnSoftSeventeen(t *testing.T) {
	// Dealer Ah 6h is a soft 17 and must not draw.
	round, player := riggedRound(t, 100, "ThAh9s6h")

	err := round.Play(context.Background(), FixedBet(10), nil)
	require.NoError(t, err)

	assert.Equal(t, 2, round.dealer.Hand.Len())
	assert.Equal(t, 17, round.dealer.Hand.Total())

	s := player.Hands[0].Settlement()
	require.NotNil(t, s)
	assert.Equal(t, OutcomePlayerWins, s.Outcome, "19 beats the dealer's soft 17")
}

func TestBustLosesEvenWhenDealerBusts(t *testing.T) {
	// Player Th 6h hits Kd and busts; dealer Th 6h would bust too but the
	// player's bust settles first and the dealer stands pat with no live
	// hands left.
	round, player := riggedRound(t, 100, "ThTh6h6hKd")

	agent := &ScriptedAgent{Actions: []Action{Hit, Hit}}
	err := round.Play(context.Background(), FixedBet(10), map[string]Agent{"Dana": agent})
	require.NoError(t, err)

	s := player.Hands[0].Settlement()
	require.NotNil(t, s)
	assert.Equal(t, OutcomePlayerBust, s.Outcome)
	assert.Equal(t, 90, player.Balance())
}

func TestIllegalActionIsReofferedWithoutStateChange(t *testing.T) {
	// Splitting an unpaired hand is illegal: the decision is rejected,
	// the script runs dry and the agent falls back to standing.
	round, player := riggedRound(t, 100, "8sTh9h7h")

	agent := &ScriptedAgent{Actions: []Action{SplitPair}}
	err := round.Play(context.Background(), FixedBet(10), map[string]Agent{"Dana": agent})
	require.NoError(t, err)

	require.Len(t, player.Hands, 1)
	h := player.Hands[0]
	assert.Equal(t, 2, h.Len(), "rejected action must not change the hand")
	assert.Equal(t, 10, h.Bet)

	s := h.Settlement()
	require.NotNil(t, s)
	assert.Equal(t, OutcomeTie, s.Outcome, "17 pushes the dealer's 17")
}

func TestPlayerUnderMinimumSitsOut(t *testing.T) {
	round, player := riggedRound(t, 5, "AsAhKdTh")

	err := round.Play(context.Background(), FixedBet(10), nil)
	require.NoError(t, err)

	assert.Empty(t, player.Hands)
	assert.Equal(t, 5, player.Balance())
	assert.Equal(t, PhaseResolved, round.Phase())
}

// rejectThenBet returns a not-a-number rejection first, then a real amount.
type rejectThenBet struct {
	amount int
	asked  int
}

func (b *rejectThenBet) NextBet(req BetRequest) (int, error) {
	b.asked++
	if b.asked == 1 {
		return 0, &BetError{Reason: BetNotANumber}
	}
	if b.asked == 2 {
		// Engine-side rejection path: bet below the minimum.
		return req.Minimum - 1, nil
	}
	return b.amount, nil
}

func TestBetRejectionsReprompt(t *testing.T) {
	round, player := riggedRound(t, 100, "ThAh9s6h")

	provider := &rejectThenBet{amount: 10}
	err := round.Play(context.Background(), provider, nil)
	require.NoError(t, err)

	assert.Equal(t, 3, provider.asked, "one reprompt per rejection")
	require.Len(t, player.Hands, 1)
	assert.Equal(t, 10, player.Hands[0].Bet)
}

func TestShoeExhaustionAbortsRound(t *testing.T) {
	// Three cards cannot cover an opening deal.
	round, player := riggedRound(t, 100, "ThAh9s")

	err := round.Play(context.Background(), FixedBet(10), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, deck.ErrShoeExhausted)

	// The bet was taken but nothing was paid out: the round died before
	// settling, which is the documented hard-failure mode.
	assert.Equal(t, 90, player.Balance())
	assert.False(t, player.Hands[0].Settled())
}

func TestCardConservation(t *testing.T) {
	full := deck.NewShoeFromCards(deck.MustParseCards("8sTh8h9h5d3cKd8d2c4c"))
	player := NewPlayer(account.Generate("Dana", 100))
	round, err := NewRound(full, []*Player{player}, NewDealer(), testRules, WithLogger(testLogger()))
	require.NoError(t, err)

	agent := &ScriptedAgent{Actions: []Action{SplitPair, Hit, Hit, Stand}}
	require.NoError(t, round.Play(context.Background(), FixedBet(10), map[string]Agent{"Dana": agent}))

	held := round.dealer.Hand.Len()
	for _, h := range player.Hands {
		held += h.Len()
	}
	assert.Equal(t, 10-full.Remaining(), held, "every card drawn is held by a hand")
}

func TestRoundEventsInOrder(t *testing.T) {
	round, _ := riggedRound(t, 100, "ThAh9s6h")

	logSub := &eventLog{}
	round.Bus().Subscribe(logSub)

	err := round.Play(context.Background(), FixedBet(10), nil)
	require.NoError(t, err)

	types := logSub.types()
	require.NotEmpty(t, types)
	assert.Equal(t, EventTypeRoundStart, types[0])
	assert.Equal(t, EventTypeRoundEnd, types[len(types)-1])

	dealt := 0
	for _, et := range types {
		if et == EventTypeCardDealt {
			dealt++
		}
	}
	assert.Equal(t, 4, dealt)

	// The hole card is the only hidden deal.
	hidden := 0
	for _, e := range logSub.events {
		if cd, ok := e.(CardDealtEvent); ok && cd.Hidden {
			hidden++
			assert.Equal(t, "dealer", cd.Seat)
		}
	}
	assert.Equal(t, 1, hidden)
}

func TestMultiplePlayersSettleIndependently(t *testing.T) {
	// Alice stands on 20 and wins; Bob stands on 16 and loses to the
	// dealer's soft 17. Deal order interleaves players before the dealer.
	shoe := deck.NewShoeFromCards(deck.MustParseCards("ThTh" + "Ah" + "Ts6h" + "6h" + "4d"))
	alice := NewPlayer(account.Generate("Alice", 100))
	bob := NewPlayer(account.Generate("Bob", 100))
	round, err := NewRound(shoe, []*Player{alice, bob}, NewDealer(), testRules, WithLogger(testLogger()))
	require.NoError(t, err)

	agents := map[string]Agent{
		"Alice": &ScriptedAgent{Actions: []Action{Stand}},
		"Bob":   &ScriptedAgent{Actions: []Action{Stand}},
	}
	require.NoError(t, round.Play(context.Background(), FixedBet(10), agents))

	sa := alice.Hands[0].Settlement()
	sb := bob.Hands[0].Settlement()
	require.NotNil(t, sa)
	require.NotNil(t, sb)
	assert.Equal(t, OutcomePlayerWins, sa.Outcome)
	assert.Equal(t, OutcomeDealerWins, sb.Outcome)
	assert.Equal(t, 120, alice.Balance())
	assert.Equal(t, 90, bob.Balance())
}
