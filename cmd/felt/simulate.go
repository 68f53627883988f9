package main

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/feltkit/felt/internal/account"
	"github.com/feltkit/felt/internal/blackjack"
	"github.com/feltkit/felt/internal/config"
	"github.com/feltkit/felt/internal/deck"
	"github.com/feltkit/felt/internal/randutil"
	"github.com/feltkit/felt/internal/stats"
)

// SimulateCmd plays automated rounds against basic strategy and reports the
// observed house edge.
type SimulateCmd struct {
	Config   string `short:"c" default:"casino.hcl" help:"Path to HCL configuration file"`
	Rounds   int    `default:"10000" help:"Rounds to play per table"`
	Tables   int    `default:"1" help:"Tables running concurrently"`
	Seed     *int64 `help:"Deterministic RNG seed (optional)"`
	LogLevel string `short:"l" default:"warn" help:"Log level"`
}

func (c *SimulateCmd) Run() error {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := setupLogger(c.LogLevel)

	var seed int64
	if c.Seed != nil {
		seed = *c.Seed
	} else {
		seed = time.Now().UnixNano()
	}
	logger.Info("simulation starting",
		"tables", c.Tables, "rounds", c.Rounds, "seed", seed, "decks", cfg.Blackjack.Decks)

	start := time.Now()
	trackers := make([]*stats.Tracker, c.Tables)

	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < c.Tables; i++ {
		tracker := stats.NewTracker()
		trackers[i] = tracker
		tableSeed := seed + int64(i)
		tableName := fmt.Sprintf("Bot%d", i+1)

		g.Go(func() error {
			return c.runTable(ctx, cfg, tableName, tableSeed, tracker)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	elapsed := time.Since(start)

	total := stats.NewTracker()
	for _, tracker := range trackers {
		total.Merge(tracker)
	}

	c.report(total, elapsed)
	return nil
}

// runTable plays one table's rounds on a persistent shoe, topping the bot
// back up whenever it cannot cover the minimum so every round gets played.
func (c *SimulateCmd) runTable(ctx context.Context, cfg *config.Config, name string, seed int64, tracker *stats.Tracker) error {
	rng := randutil.New(seed)
	player := blackjack.NewPlayer(account.Generate(name, cfg.Casino.StartingChips))
	rules := blackjack.TableRules{
		MinimumBet:      cfg.Blackjack.MinimumBet,
		DeckCount:       cfg.Blackjack.Decks,
		BlackjackPayout: cfg.Blackjack.BlackjackPayout,
	}

	shoe, err := deck.NewShoe(rules.DeckCount, rng)
	if err != nil {
		return err
	}

	agents := map[string]blackjack.Agent{name: blackjack.PolicyAgent{}}

	for i := 0; i < c.Rounds; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		if player.Balance() < rules.MinimumBet {
			if err := player.Account.Deposit(cfg.Casino.StartingChips); err != nil {
				return err
			}
		}
		if shoe.Remaining() < 16 {
			if shoe, err = deck.NewShoe(rules.DeckCount, rng); err != nil {
				return err
			}
		}

		round, err := blackjack.NewRound(shoe, []*blackjack.Player{player}, blackjack.NewDealer(), rules)
		if err != nil {
			return err
		}
		round.Bus().Subscribe(tracker)

		if err := round.Play(ctx, blackjack.FixedBet(rules.MinimumBet), agents); err != nil {
			return fmt.Errorf("table %s round %d: %w", name, i+1, err)
		}
	}
	return nil
}

func (c *SimulateCmd) report(total *stats.Tracker, elapsed time.Duration) {
	var hands, wins, losses, pushes, blackjacks, busts, wagered, net int
	for _, s := range total.Players() {
		hands += s.Hands
		wins += s.Wins
		losses += s.Losses
		pushes += s.Pushes
		blackjacks += s.Blackjacks
		busts += s.Busts
		wagered += s.Wagered
		net += s.NetChips
	}

	fmt.Printf("\nSimulation complete: %d rounds across %d tables in %s\n",
		total.Rounds(), c.Tables, elapsed.Round(time.Millisecond))
	fmt.Printf("  hands        %d\n", hands)
	if hands > 0 {
		fmt.Printf("  won          %d (%.1f%%), %d blackjacks\n",
			wins, 100*float64(wins)/float64(hands), blackjacks)
		fmt.Printf("  lost         %d (%.1f%%), %d busts\n",
			losses, 100*float64(losses)/float64(hands), busts)
		fmt.Printf("  pushed       %d (%.1f%%)\n",
			pushes, 100*float64(pushes)/float64(hands))
	}
	fmt.Printf("  wagered      $%d\n", wagered)
	fmt.Printf("  net          $%+d\n", net)
	if wagered > 0 {
		fmt.Printf("  house edge   %.2f%%\n", -100*float64(net)/float64(wagered))
	}
}
