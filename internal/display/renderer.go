// Package display renders table events and prompts the human player at a
// terminal. The round engine never prints; everything the player sees goes
// through this package.
package display

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/muesli/termenv"

	"github.com/feltkit/felt/internal/blackjack"
	"github.com/feltkit/felt/internal/deck"
)

// Renderer subscribes to a round's event bus and prints a running account of
// the table to its writer.
type Renderer struct {
	out    io.Writer
	styles *Styles
	term   *termenv.Output
}

// NewRenderer creates a renderer writing to stdout.
func NewRenderer() *Renderer {
	return NewRendererTo(os.Stdout)
}

// NewRendererTo creates a renderer writing to the given writer.
func NewRendererTo(out io.Writer) *Renderer {
	return &Renderer{
		out:    out,
		styles: NewStyles(),
		term:   termenv.NewOutput(out),
	}
}

// ClearScreen wipes the terminal between rounds.
func (r *Renderer) ClearScreen() {
	r.term.ClearScreen()
}

// Banner prints the sitting header.
func (r *Renderer) Banner(text string) {
	fmt.Fprintln(r.out, r.styles.Header.Render(text))
	fmt.Fprintln(r.out)
}

// Printf writes styled free-form text, for prompts and session messages.
func (r *Renderer) Printf(format string, args ...any) {
	fmt.Fprintf(r.out, format, args...)
}

// Warn prints an input rejection.
func (r *Renderer) Warn(text string) {
	fmt.Fprintln(r.out, r.styles.Warning.Render(text))
}

// OnEvent implements blackjack.EventSubscriber.
func (r *Renderer) OnEvent(event blackjack.GameEvent) {
	switch e := event.(type) {
	case blackjack.RoundStartEvent:
		fmt.Fprintln(r.out, r.styles.SubHeader.Render(
			fmt.Sprintf("--- New round: %s, table minimum $%d ---",
				strings.Join(e.Players, ", "), e.Minimum)))

	case blackjack.CardDealtEvent:
		if e.Hidden {
			fmt.Fprintf(r.out, "%s draws %s\n", r.seatName(e.Seat), r.hiddenCard())
			return
		}
		fmt.Fprintf(r.out, "%s draws %s\n", r.seatName(e.Seat), r.formatCard(e.Card))

	case blackjack.PlayerActionEvent:
		r.showAction(e)

	case blackjack.DealerRevealEvent:
		fmt.Fprintf(r.out, "%s reveals %s (%d)\n",
			r.styles.Dealer.Render("Dealer"), r.formatCards(e.Cards), e.Total)

	case blackjack.HandSettledEvent:
		r.showSettlement(e)

	case blackjack.RoundEndEvent:
		fmt.Fprintln(r.out)
		fmt.Fprintln(r.out, "Chip counts:")
		for name, balance := range e.Balances {
			fmt.Fprintf(r.out, "  %s: %s\n", name, r.styles.Chips.Render(fmt.Sprintf("$%d", balance)))
		}
		fmt.Fprintln(r.out, r.styles.Separator.Render(strings.Repeat("=", 47)))
	}
}

func (r *Renderer) showAction(e blackjack.PlayerActionEvent) {
	var text string
	switch e.Action {
	case blackjack.Stand:
		text = fmt.Sprintf("%s stands on %d", e.Player, e.Hand.Total)
	case blackjack.Hit:
		text = fmt.Sprintf("%s hits to %d", e.Player, e.Hand.Total)
	case blackjack.Double:
		text = fmt.Sprintf("%s doubles down for $%d, drawing to %d", e.Player, e.Hand.Bet, e.Hand.Total)
	case blackjack.SplitPair:
		text = fmt.Sprintf("%s splits the pair", e.Player)
	default:
		text = fmt.Sprintf("%s %s", e.Player, e.Action)
	}
	fmt.Fprintln(r.out, r.styles.Action.Render(text))

	if e.Hand.Bust {
		fmt.Fprintln(r.out, r.styles.Loser.Render(
			fmt.Sprintf("%s busts with %s (%d)", e.Player, r.plainCards(e.Hand.Cards), e.Hand.Total)))
	}
}

func (r *Renderer) showSettlement(e blackjack.HandSettledEvent) {
	fmt.Fprintf(r.out, "%s hand %s (%d): ", e.Player, r.formatCards(e.Hand.Cards), e.Hand.Total)

	message := e.Outcome.Message()
	switch {
	case e.Outcome.Won():
		fmt.Fprintf(r.out, "%s %s\n", r.styles.Winner.Render(message),
			r.styles.Chips.Render(fmt.Sprintf("+$%d", e.Payout-e.Bet)))
	case e.Outcome.Push():
		fmt.Fprintf(r.out, "%s\n", r.styles.SubHeader.Render(message))
	default:
		fmt.Fprintf(r.out, "%s %s\n", r.styles.Loser.Render(message),
			r.styles.Loser.Render(fmt.Sprintf("-$%d", e.Bet)))
	}
}

func (r *Renderer) seatName(seat string) string {
	if seat == "dealer" {
		return r.styles.Dealer.Render("Dealer")
	}
	return seat
}

func (r *Renderer) hiddenCard() string {
	return r.styles.Separator.Render("[?]")
}

func (r *Renderer) formatCard(c deck.Card) string {
	if c.IsRed() {
		return r.styles.CardRed.Render(c.String())
	}
	return r.styles.CardBlack.Render(c.String())
}

// formatCards formats cards with proper colors
func (r *Renderer) formatCards(cards []deck.Card) string {
	if len(cards) == 0 {
		return "[]"
	}
	formatted := make([]string, len(cards))
	for i, c := range cards {
		formatted[i] = r.formatCard(c)
	}
	return "[" + strings.Join(formatted, " ") + "]"
}

func (r *Renderer) plainCards(cards []deck.Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}
