// Package config loads casino configuration from HCL files.
package config

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Config represents the complete casino configuration.
type Config struct {
	Casino    CasinoSettings `hcl:"casino,block"`
	Blackjack TableSettings  `hcl:"blackjack,block"`
}

// CasinoSettings contains house-level configuration.
type CasinoSettings struct {
	StartingChips int    `hcl:"starting_chips,optional"`
	LogLevel      string `hcl:"log_level,optional"`
	LogFile       string `hcl:"log_file,optional"`
}

// TableSettings configures the blackjack table.
type TableSettings struct {
	MinimumBet      int     `hcl:"minimum_bet,optional"`
	Decks           int     `hcl:"decks,optional"`
	MaxDecks        int     `hcl:"max_decks,optional"`
	BlackjackPayout float64 `hcl:"blackjack_payout,optional"`
}

// Default returns the stock table configuration.
func Default() *Config {
	return &Config{
		Casino: CasinoSettings{
			StartingChips: 1000,
			LogLevel:      "info",
		},
		Blackjack: TableSettings{
			MinimumBet:      10,
			Decks:           1,
			MaxDecks:        8,
			BlackjackPayout: 1.5,
		},
	}
}

// Load reads configuration from an HCL file. A missing file is not an error:
// the defaults are returned so the binary runs without any setup.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	// Apply defaults for missing values
	defaults := Default()
	if config.Casino.StartingChips == 0 {
		config.Casino.StartingChips = defaults.Casino.StartingChips
	}
	if config.Casino.LogLevel == "" {
		config.Casino.LogLevel = defaults.Casino.LogLevel
	}
	if config.Blackjack.MinimumBet == 0 {
		config.Blackjack.MinimumBet = defaults.Blackjack.MinimumBet
	}
	if config.Blackjack.Decks == 0 {
		config.Blackjack.Decks = defaults.Blackjack.Decks
	}
	if config.Blackjack.MaxDecks == 0 {
		config.Blackjack.MaxDecks = defaults.Blackjack.MaxDecks
	}
	if config.Blackjack.BlackjackPayout == 0 {
		config.Blackjack.BlackjackPayout = defaults.Blackjack.BlackjackPayout
	}

	return &config, nil
}

// Validate checks the configuration for values the engine cannot run with.
func (c *Config) Validate() error {
	if c.Casino.StartingChips < 1 {
		return fmt.Errorf("starting chips must be positive, got %d", c.Casino.StartingChips)
	}
	if c.Blackjack.MinimumBet < 1 {
		return fmt.Errorf("minimum bet must be positive, got %d", c.Blackjack.MinimumBet)
	}
	if c.Blackjack.MinimumBet > c.Casino.StartingChips {
		return fmt.Errorf("minimum bet %d exceeds starting chips %d",
			c.Blackjack.MinimumBet, c.Casino.StartingChips)
	}
	if c.Blackjack.Decks < 1 || c.Blackjack.Decks > c.Blackjack.MaxDecks {
		return fmt.Errorf("decks must be between 1 and %d, got %d",
			c.Blackjack.MaxDecks, c.Blackjack.Decks)
	}
	if c.Blackjack.BlackjackPayout <= 0 {
		return fmt.Errorf("blackjack payout must be positive, got %v", c.Blackjack.BlackjackPayout)
	}
	return nil
}
