package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/feltkit/felt/internal/account"
	"github.com/feltkit/felt/internal/blackjack"
	"github.com/feltkit/felt/internal/config"
	"github.com/feltkit/felt/internal/display"
	"github.com/feltkit/felt/internal/randutil"
	"github.com/feltkit/felt/internal/session"
	"github.com/feltkit/felt/internal/stats"
)

// PlayCmd runs an interactive sitting.
type PlayCmd struct {
	Config    string `short:"c" default:"casino.hcl" help:"Path to HCL configuration file"`
	Name      string `short:"n" default:"Player" help:"Name to play under"`
	Chips     int    `help:"Starting chips (overrides config)"`
	LogLevel  string `short:"l" help:"Log level (overrides config)"`
	Seed      *int64 `help:"Deterministic RNG seed (optional)"`
	TimeoutMs int    `help:"Decision timeout in milliseconds (0 disables)"`
}

func (c *PlayCmd) Run() error {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return err
	}
	if c.Chips > 0 {
		cfg.Casino.StartingChips = c.Chips
	}
	if c.LogLevel != "" {
		cfg.Casino.LogLevel = c.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := setupLogger(cfg.Casino.LogLevel)

	var seed int64
	if c.Seed != nil {
		seed = *c.Seed
		logger.Info("using deterministic seed", "seed", seed)
	} else {
		seed = time.Now().UnixNano()
	}
	rng := randutil.New(seed)

	player := blackjack.NewPlayer(account.Generate(c.Name, cfg.Casino.StartingChips))
	logger.Info("account opened", "player", player.Name(), "id", player.Account.ID, "chips", player.Balance())

	renderer := display.NewRenderer()
	console := display.NewConsole(os.Stdin, renderer, display.NewStrikes(display.DefaultStrikeLimit))
	tracker := stats.NewTracker()

	renderer.Banner(" Welcome to the blackjack table ")
	renderer.Printf("%s sits down with $%d. Table minimum is $%d.\n\n",
		player.Name(), player.Balance(), cfg.Blackjack.MinimumBet)

	opts := []session.Option{
		session.WithLogger(logger),
		session.WithSubscribers(renderer, tracker),
	}
	if c.TimeoutMs > 0 {
		opts = append(opts, session.WithDecisionTimeout(time.Duration(c.TimeoutMs)*time.Millisecond))
	}

	sitting := session.New(cfg, player,
		&display.PromptAgent{Console: console},
		&display.ConsoleBetProvider{Console: console},
		console, renderer, rng, opts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := sitting.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}

	printSummary(renderer, tracker, player.Name())
	return nil
}

func printSummary(renderer *display.Renderer, tracker *stats.Tracker, name string) {
	s := tracker.Player(name)
	if s.Hands == 0 {
		return
	}
	renderer.Printf("\nSitting summary for %s:\n", name)
	renderer.Printf("  rounds     %d\n", tracker.Rounds())
	renderer.Printf("  hands      %d\n", s.Hands)
	renderer.Printf("  won        %d (%d blackjacks)\n", s.Wins, s.Blackjacks)
	renderer.Printf("  lost       %d (%d busts)\n", s.Losses, s.Busts)
	renderer.Printf("  pushed     %d\n", s.Pushes)
	renderer.Printf("  net chips  %+d\n", s.NetChips)
}

func setupLogger(level string) *log.Logger {
	logger := log.New(os.Stderr)
	switch level {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "info":
		logger.SetLevel(log.InfoLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}
	return logger
}
