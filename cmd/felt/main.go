package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Play     PlayCmd          `cmd:"" help:"Sit down at the blackjack table"`
	Simulate SimulateCmd      `cmd:"" help:"Run automated rounds and report house edge"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("felt"),
		kong.Description("Terminal blackjack against the house"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
