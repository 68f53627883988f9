// Package session runs a sitting: the loop of rounds one player plays at a
// table, from choosing the shoe to cashing out.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	rand "math/rand/v2"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/feltkit/felt/internal/blackjack"
	"github.com/feltkit/felt/internal/config"
	"github.com/feltkit/felt/internal/deck"
	"github.com/feltkit/felt/internal/display"
)

// Prompter asks the player the out-of-round questions: shoe size and whether
// to keep playing. display.Console implements it for the terminal.
type Prompter interface {
	AskInt(prompt string, min, max int) (int, error)
	AskYesNo(prompt string) (bool, error)
}

// Announcer receives session-level messages outside the event stream.
type Announcer interface {
	Printf(format string, args ...any)
	ClearScreen()
}

// Session drives a sitting for one player against the house.
type Session struct {
	cfg      *config.Config
	player   *blackjack.Player
	agent    blackjack.Agent
	bets     blackjack.BetProvider
	prompter Prompter
	announce Announcer
	subs     []blackjack.EventSubscriber

	logger  *log.Logger
	clock   quartz.Clock
	rng     *rand.Rand
	timeout time.Duration

	rounds int
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

// WithClock sets the clock used for decision deadlines.
func WithClock(clock quartz.Clock) Option {
	return func(s *Session) { s.clock = clock }
}

// WithDecisionTimeout enables a per-decision deadline. Zero disables it.
func WithDecisionTimeout(d time.Duration) Option {
	return func(s *Session) { s.timeout = d }
}

// WithSubscribers adds event subscribers attached to every round's bus.
func WithSubscribers(subs ...blackjack.EventSubscriber) Option {
	return func(s *Session) { s.subs = append(s.subs, subs...) }
}

// nopAnnouncer is used when no announcer is configured.
type nopAnnouncer struct{}

func (nopAnnouncer) Printf(string, ...any) {}
func (nopAnnouncer) ClearScreen()          {}

// New creates a sitting for the given player. The agent and bet provider
// supply in-round decisions; the prompter supplies the between-round ones.
func New(cfg *config.Config, player *blackjack.Player, agent blackjack.Agent,
	bets blackjack.BetProvider, prompter Prompter, announce Announcer,
	rng *rand.Rand, opts ...Option) *Session {

	s := &Session{
		cfg:      cfg,
		player:   player,
		agent:    agent,
		bets:     bets,
		prompter: prompter,
		announce: announce,
		logger:   log.NewWithOptions(io.Discard, log.Options{}),
		clock:    quartz.NewReal(),
		rng:      rng,
	}
	if s.announce == nil {
		s.announce = nopAnnouncer{}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Rounds returns how many rounds were played this sitting.
func (s *Session) Rounds() int { return s.rounds }

// Run plays rounds until the player quits, goes broke, gets ejected or the
// context is cancelled. The shoe persists across rounds and is rebuilt only
// when it runs low, so card counting between rounds actually works.
func (s *Session) Run(ctx context.Context) error {
	deckCount, err := s.prompter.AskInt(
		fmt.Sprintf("How many decks in the shoe? (1-%d)", s.cfg.Blackjack.MaxDecks),
		1, s.cfg.Blackjack.MaxDecks)
	if err != nil {
		return s.farewell(err)
	}

	shoe, err := deck.NewShoe(deckCount, s.rng)
	if err != nil {
		return err
	}
	s.logger.Info("shoe built", "decks", deckCount, "cards", shoe.Size())

	rules := blackjack.TableRules{
		MinimumBet:      s.cfg.Blackjack.MinimumBet,
		DeckCount:       deckCount,
		BlackjackPayout: s.cfg.Blackjack.BlackjackPayout,
	}

	agent := s.agent
	if s.timeout > 0 {
		agent = NewTimeoutAgent(agent, s.timeout, s.clock, s.logger)
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if s.player.Balance() < rules.MinimumBet {
			s.announce.Printf("\nYou're down to $%d, under the $%d minimum. The house thanks you.\n",
				s.player.Balance(), rules.MinimumBet)
			return nil
		}

		if shoe.Remaining() < s.reshuffleAt(shoe) {
			s.logger.Info("shoe running low, rebuilding", "remaining", shoe.Remaining())
			s.announce.Printf("\nThe dealer swaps in a fresh shoe.\n")
			if shoe, err = deck.NewShoe(deckCount, s.rng); err != nil {
				return err
			}
		}

		round, err := blackjack.NewRound(shoe, []*blackjack.Player{s.player}, blackjack.NewDealer(),
			rules, blackjack.WithLogger(s.logger))
		if err != nil {
			return err
		}
		for _, sub := range s.subs {
			round.Bus().Subscribe(sub)
		}

		if err := round.Play(ctx, s.bets, map[string]blackjack.Agent{s.player.Name(): agent}); err != nil {
			return fmt.Errorf("round %d: %w", s.rounds+1, err)
		}
		s.rounds++

		again, err := s.prompter.AskYesNo("\nPlay another round?")
		if err != nil {
			return s.farewell(err)
		}
		if !again {
			s.announce.Printf("\nYou leave the table with $%d after %d rounds.\n",
				s.player.Balance(), s.rounds)
			return nil
		}
		s.announce.ClearScreen()
	}
}

// reshuffleAt is the low-water mark for the shoe. A quarter of the shoe, but
// never less than enough cards for one heavily split round.
func (s *Session) reshuffleAt(shoe *deck.Shoe) int {
	quarter := shoe.Size() / 4
	if quarter < 16 {
		return 16
	}
	return quarter
}

// farewell classifies end-of-input conditions. Ejection and a closed stdin
// end the sitting without being session failures.
func (s *Session) farewell(err error) error {
	switch {
	case errors.Is(err, display.ErrEjected):
		s.announce.Printf("\nThat's %d invalid inputs. Security will see you out.\n", display.DefaultStrikeLimit)
		s.logger.Warn("player ejected", "player", s.player.Name())
		return nil
	case errors.Is(err, io.EOF):
		s.logger.Info("input closed, ending sitting")
		return nil
	default:
		return err
	}
}
