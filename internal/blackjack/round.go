package blackjack

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/feltkit/felt/internal/deck"
)

// TableRules is the configuration a round is played under, supplied once at
// construction.
type TableRules struct {
	MinimumBet      int
	DeckCount       int
	BlackjackPayout float64 // multiplier over the bet for a natural, 1.5 by default
}

// DefaultBlackjackPayout is the standard 3:2 natural payout.
const DefaultBlackjackPayout = 1.5

// Validate checks the rules at construction time. Violations are
// configuration errors: fatal, never recovered mid-sitting.
func (r TableRules) Validate() error {
	if r.MinimumBet < 1 {
		return fmt.Errorf("minimum bet must be positive, got %d", r.MinimumBet)
	}
	if r.DeckCount < 1 {
		return fmt.Errorf("deck count must be positive, got %d", r.DeckCount)
	}
	if r.BlackjackPayout <= 0 {
		return fmt.Errorf("blackjack payout must be positive, got %v", r.BlackjackPayout)
	}
	return nil
}

// Phase is a stage of the round state machine. Phases advance strictly
// forward; there are no back-edges within one round.
type Phase int

const (
	PhaseBetting Phase = iota
	PhaseDealing
	PhaseNaturalCheck
	PhasePlayerActs
	PhaseDealerActs
	PhaseSettling
	PhasePaying
	PhaseResolved
)

func (p Phase) String() string {
	switch p {
	case PhaseBetting:
		return "betting"
	case PhaseDealing:
		return "dealing"
	case PhaseNaturalCheck:
		return "natural_check"
	case PhasePlayerActs:
		return "player_acts"
	case PhaseDealerActs:
		return "dealer_acts"
	case PhaseSettling:
		return "settling"
	case PhasePaying:
		return "paying"
	case PhaseResolved:
		return "resolved"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Round drives one play-through of the blackjack phases over a shared shoe
// and a set of participants. It owns game state and ledger calls only;
// rendering happens in event subscribers.
type Round struct {
	shoe    *deck.Shoe
	players []*Player
	dealer  *Dealer
	rules   TableRules

	logger *log.Logger
	bus    EventBus

	phase          Phase
	holeRevealed   bool
	startRemaining int
}

// RoundOption configures a Round.
type RoundOption func(*Round)

// WithLogger sets the round's logger.
func WithLogger(logger *log.Logger) RoundOption {
	return func(r *Round) { r.logger = logger }
}

// WithEventBus sets the bus round events are published to.
func WithEventBus(bus EventBus) RoundOption {
	return func(r *Round) { r.bus = bus }
}

// NewRound creates a round over the given shoe and participants. Hands from
// a previous round are discarded; balances persist.
func NewRound(shoe *deck.Shoe, players []*Player, dealer *Dealer, rules TableRules, opts ...RoundOption) (*Round, error) {
	if err := rules.Validate(); err != nil {
		return nil, fmt.Errorf("table rules: %w", err)
	}

	r := &Round{
		shoe:    shoe,
		players: players,
		dealer:  dealer,
		rules:   rules,
		logger:  log.NewWithOptions(io.Discard, log.Options{}),
		bus:     NewEventBus(),
	}
	for _, opt := range opts {
		opt(r)
	}

	for _, p := range players {
		p.ClearHands()
	}
	dealer.ClearHand()

	return r, nil
}

// Bus returns the round's event bus for subscribing observers.
func (r *Round) Bus() EventBus {
	return r.bus
}

// Phase returns the current phase.
func (r *Round) Phase() Phase {
	return r.phase
}

// Play runs the phases in order: betting, dealing, natural check, player
// decisions, dealer draws, settling, paying. Bets come from the provider;
// decisions from each player's agent (players without one stand on
// everything). Play blocks on those calls and has no timeout of its own.
//
// Shoe exhaustion aborts the round with ErrShoeExhausted: payouts have not
// happened yet at any point where a card is drawn, so there is nothing to
// roll back.
func (r *Round) Play(ctx context.Context, bets BetProvider, agents map[string]Agent) error {
	r.startRemaining = r.shoe.Remaining()

	r.enter(PhaseBetting)
	if err := r.betting(ctx, bets); err != nil {
		return err
	}
	if r.activeHands() == 0 {
		r.logger.Info("no bets placed, round skipped")
		r.enter(PhaseResolved)
		return nil
	}

	r.enter(PhaseDealing)
	if err := r.dealing(); err != nil {
		return err
	}

	r.enter(PhaseNaturalCheck)
	dealerNatural := r.naturalCheck()

	if !dealerNatural {
		r.enter(PhasePlayerActs)
		if err := r.playerActs(ctx, agents); err != nil {
			return err
		}

		r.enter(PhaseDealerActs)
		if err := r.dealerActs(); err != nil {
			return err
		}
	}

	r.enter(PhaseSettling)
	r.settling()

	r.enter(PhasePaying)
	if err := r.paying(); err != nil {
		return err
	}

	if err := r.validateCardConservation(); err != nil {
		return err
	}

	balances := make(map[string]int, len(r.players))
	for _, p := range r.players {
		balances[p.Name()] = p.Balance()
	}
	r.bus.Publish(RoundEndEvent{Balances: balances, timestamp: time.Now()})

	r.enter(PhaseResolved)
	return nil
}

func (r *Round) enter(p Phase) {
	r.phase = p
	r.logger.Debug("phase", "phase", p)
}

// betting collects one opening bet per player. A player whose balance is
// under the table minimum sits the round out but stays at the table.
func (r *Round) betting(ctx context.Context, bets BetProvider) error {
	for _, p := range r.players {
		if err := ctx.Err(); err != nil {
			return err
		}

		if p.Balance() < r.rules.MinimumBet {
			r.logger.Info("player sits out, balance under minimum",
				"player", p.Name(), "balance", p.Balance(), "minimum", r.rules.MinimumBet)
			continue
		}

		var rejected *BetError
		for {
			amount, err := bets.NextBet(BetRequest{
				Player:   p.Name(),
				Balance:  p.Balance(),
				Minimum:  r.rules.MinimumBet,
				Rejected: rejected,
			})
			if err != nil {
				var be *BetError
				if errors.As(err, &be) {
					rejected = be
					continue
				}
				// Provider gave up on this player; they sit out.
				r.logger.Warn("no bet from player", "player", p.Name(), "error", err)
				break
			}

			if err := p.PlaceBet(amount, r.rules.MinimumBet); err != nil {
				var be *BetError
				if errors.As(err, &be) {
					r.logger.Warn("bet rejected", "player", p.Name(), "amount", amount, "reason", be.Reason)
					rejected = be
					continue
				}
				return fmt.Errorf("betting: %w", err)
			}

			r.logger.Debug("bet placed", "player", p.Name(), "amount", amount)
			break
		}
	}

	names := make([]string, 0, len(r.players))
	for _, p := range r.players {
		if len(p.Hands) > 0 {
			names = append(names, p.Name())
		}
	}
	if len(names) > 0 {
		r.bus.Publish(RoundStartEvent{
			Players:   names,
			Minimum:   r.rules.MinimumBet,
			DeckCount: r.shoe.DeckCount(),
			timestamp: time.Now(),
		})
	}
	return nil
}

// dealing gives two cards to every bet-bearing hand, then two to the dealer.
// The dealer's second card is the hole card: hidden from views and events
// until the reveal, though the engine itself always knows it.
func (r *Round) dealing() error {
	for pass := 0; pass < 2; pass++ {
		for _, p := range r.players {
			for i, h := range p.Hands {
				if err := r.draw(p.Name(), i, h, false); err != nil {
					return fmt.Errorf("dealing to %s: %w", p.Name(), err)
				}
			}
		}
		if err := r.draw("dealer", 0, r.dealer.Hand, pass == 1); err != nil {
			return fmt.Errorf("dealing to dealer: %w", err)
		}
	}
	return nil
}

// draw moves one card from the shoe into a hand and publishes it.
func (r *Round) draw(seat string, handIndex int, h *Hand, hidden bool) error {
	card, err := r.shoe.Draw()
	if err != nil {
		return err
	}
	h.AddCard(card)
	r.logger.Debug("card dealt", "seat", seat, "hand", handIndex, "card", card, "hidden", hidden)
	r.bus.Publish(CardDealtEvent{
		Seat:      seat,
		HandIndex: handIndex,
		Card:      card,
		Hidden:    hidden,
		timestamp: time.Now(),
	})
	return nil
}

// naturalCheck resolves the whole table immediately when the dealer holds a
// natural: every hand is either a losing hand or a blackjack push, and
// player decisions are skipped. Returns true in that case.
func (r *Round) naturalCheck() bool {
	if !r.dealer.Hand.IsBlackjack() {
		return false
	}

	r.logger.Info("dealer has blackjack")
	r.revealDealer()

	for _, p := range r.players {
		for i, h := range p.Hands {
			outcome := OutcomeDealerBlackjack
			if h.IsBlackjack() {
				outcome = OutcomeBlackjackTie
			}
			r.settleHand(p, i, h, outcome)
		}
	}
	return true
}

// playerActs walks every unresolved hand in turn order, asking the player's
// agent for a decision restricted to the hand's legal set. An illegal
// action is rejected without state change and the same decision offered
// again. A split inserts the new hand directly after the current one, so it
// is acted on before the turn moves on.
func (r *Round) playerActs(ctx context.Context, agents map[string]Agent) error {
	for _, p := range r.players {
		agent := agents[p.Name()]
		if agent == nil {
			agent = standOnEverything{}
		}

		for i := 0; i < len(p.Hands); i++ {
			if err := ctx.Err(); err != nil {
				return err
			}

			h := p.Hands[i]
			if h.Settled() {
				continue
			}
			if h.IsBlackjack() {
				r.logger.Debug("natural stands", "player", p.Name(), "hand", i)
				continue
			}

			if err := r.actOnHand(ctx, p, agent, i); err != nil {
				return err
			}
		}
	}
	return nil
}

// actOnHand runs the decision loop for a single hand until it stands,
// busts, reaches 21 or doubles.
func (r *Round) actOnHand(ctx context.Context, p *Player, agent Agent, idx int) error {
	h := p.Hands[idx]
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if h.IsBust() || h.Total() == 21 {
			return nil
		}

		legal := legalActions(p, h)
		action := agent.Decide(r.tableView(p, h, idx), legal)
		if !isLegal(action, legal) {
			// No state change; the same decision is offered again.
			r.logger.Warn("illegal action rejected",
				"player", p.Name(), "hand", idx, "action", action, "error", ErrIllegalAction)
			continue
		}

		switch action {
		case Stand:
			r.publishAction(p, idx, Stand)
			return nil

		case Hit:
			if err := r.draw(p.Name(), idx, h, false); err != nil {
				return fmt.Errorf("hit: %w", err)
			}
			r.publishAction(p, idx, Hit)

		case Double:
			if err := p.DoubleDown(h, r.shoe); err != nil {
				return err
			}
			r.publishAction(p, idx, Double)
			return nil // doubling always ends the hand

		case SplitPair:
			if _, err := p.Split(h, r.shoe); err != nil {
				return err
			}
			r.publishAction(p, idx, SplitPair)
			// Keep acting on the original half; the new hand sits at
			// idx+1 and is picked up next.
		}
	}
}

func (r *Round) publishAction(p *Player, idx int, a Action) {
	h := p.Hands[idx]
	r.logger.Debug("player action", "player", p.Name(), "hand", idx, "action", a, "total", h.Total())
	r.bus.Publish(PlayerActionEvent{
		Player:    p.Name(),
		HandIndex: idx,
		Action:    a,
		Hand:      handView(h),
		timestamp: time.Now(),
	})
}

// dealerActs reveals the hole card and applies the fixed house policy. The
// dealer only draws at all if some hand is still live (neither bust nor a
// natural), which never changes any settlement, it just skips pointless
// draws.
func (r *Round) dealerActs() error {
	r.revealDealer()

	if !r.anyLiveHands() {
		r.logger.Debug("no live hands, dealer stands pat")
		return nil
	}

	for r.dealer.ShouldHit() {
		if err := r.draw("dealer", 0, r.dealer.Hand, false); err != nil {
			return fmt.Errorf("dealer draw: %w", err)
		}
	}
	r.logger.Debug("dealer stands", "total", r.dealer.Hand.Total())
	return nil
}

func (r *Round) revealDealer() {
	if r.holeRevealed {
		return
	}
	r.holeRevealed = true
	r.bus.Publish(DealerRevealEvent{
		Cards:     r.dealer.Hand.Cards(),
		Total:     r.dealer.Hand.Total(),
		timestamp: time.Now(),
	})
}

// settling classifies every hand not already resolved by the natural check.
// Priority order matters: a busted hand loses even when the dealer also
// busts, and a natural wins over any non-natural 21.
func (r *Round) settling() {
	dealerTotal := r.dealer.Hand.Total()
	dealerBust := r.dealer.Hand.IsBust()

	for _, p := range r.players {
		for i, h := range p.Hands {
			if h.Settled() {
				continue
			}

			var outcome Outcome
			switch {
			case h.IsBlackjack():
				outcome = OutcomePlayerBlackjack
			case h.IsBust():
				outcome = OutcomePlayerBust
			case dealerBust:
				outcome = OutcomeDealerBust
			case h.Total() == dealerTotal:
				outcome = OutcomeTie
			case h.Total() < dealerTotal:
				outcome = OutcomeDealerWins
			default:
				outcome = OutcomePlayerWins
			}
			r.settleHand(p, i, h, outcome)
		}
	}
}

func (r *Round) settleHand(p *Player, idx int, h *Hand, outcome Outcome) {
	payout := outcome.Payout(h.Bet, r.rules.BlackjackPayout)
	if err := h.Settle(outcome, payout); err != nil {
		// Settling the same hand twice is an engine bug; the first
		// settlement stands.
		r.logger.Error("settle failed", "player", p.Name(), "hand", idx, "error", err)
		return
	}
	r.logger.Info("hand settled",
		"player", p.Name(), "hand", idx, "outcome", outcome, "bet", h.Bet, "payout", payout)
	r.bus.Publish(HandSettledEvent{
		Player:    p.Name(),
		HandIndex: idx,
		Outcome:   outcome,
		Bet:       h.Bet,
		Payout:    payout,
		Hand:      handView(h),
		timestamp: time.Now(),
	})
}

// paying deposits each settled hand's payout. It runs only after every hand
// has settled, so a failure here cannot leave the round half-paid out of
// order.
func (r *Round) paying() error {
	for _, p := range r.players {
		for i, h := range p.Hands {
			s := h.Settlement()
			if s == nil {
				return fmt.Errorf("paying: %s hand %d reached payout unsettled", p.Name(), i)
			}
			if s.Payout == 0 {
				continue
			}
			if err := p.Account.Deposit(s.Payout); err != nil {
				return fmt.Errorf("paying %s: %w", p.Name(), err)
			}
		}
	}
	return nil
}

// validateCardConservation checks that every card that left the shoe this
// round is held by a hand.
func (r *Round) validateCardConservation() error {
	held := r.dealer.Hand.Len()
	for _, p := range r.players {
		for _, h := range p.Hands {
			held += h.Len()
		}
	}
	drawn := r.startRemaining - r.shoe.Remaining()
	if drawn != held {
		return fmt.Errorf("card conservation violation: %d drawn, %d held", drawn, held)
	}
	return nil
}

func (r *Round) activeHands() int {
	n := 0
	for _, p := range r.players {
		n += len(p.Hands)
	}
	return n
}

// anyLiveHands reports whether some hand could still be beaten by the
// dealer's draws.
func (r *Round) anyLiveHands() bool {
	for _, p := range r.players {
		for _, h := range p.Hands {
			if !h.IsBust() && !h.IsBlackjack() {
				return true
			}
		}
	}
	return false
}

// tableView snapshots the table for one decision.
func (r *Round) tableView(p *Player, h *Hand, idx int) TableView {
	dv := DealerView{Upcard: r.dealer.Hand.Cards()[0], Revealed: r.holeRevealed}
	if r.holeRevealed {
		dv.Cards = r.dealer.Hand.Cards()
		dv.Total = r.dealer.Hand.Total()
	}
	return TableView{
		Player:    p.Name(),
		Balance:   p.Balance(),
		Hand:      handView(h),
		HandIndex: idx,
		HandCount: len(p.Hands),
		Dealer:    dv,
		Minimum:   r.rules.MinimumBet,
	}
}

// standOnEverything is the fallback agent for players with no decision
// provider.
type standOnEverything struct{}

func (standOnEverything) Decide(TableView, []Action) Action { return Stand }
