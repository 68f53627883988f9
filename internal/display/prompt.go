package display

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/feltkit/felt/internal/blackjack"
)

// DefaultStrikeLimit is how many rejected inputs the house tolerates before
// showing the player the door.
const DefaultStrikeLimit = 13

// ErrEjected is returned once a player has used up their strikes.
var ErrEjected = errors.New("player ejected for too many invalid inputs")

// Strikes counts rejected inputs across a whole sitting. The count never
// resets on a valid input; patience runs out exactly once.
type Strikes struct {
	count int
	limit int
}

// NewStrikes creates a counter with the given limit.
func NewStrikes(limit int) *Strikes {
	return &Strikes{limit: limit}
}

// Add records one rejected input.
func (s *Strikes) Add() { s.count++ }

// Exceeded reports whether the player is out of patience credit.
func (s *Strikes) Exceeded() bool { return s.count >= s.limit }

// Count returns strikes used so far.
func (s *Strikes) Count() int { return s.count }

// Console wraps terminal input with strike accounting. All human input for a
// sitting flows through one Console so the strike count is shared between
// bet prompts and action prompts.
type Console struct {
	in       *bufio.Scanner
	renderer *Renderer
	strikes  *Strikes
}

// NewConsole creates a console reading from in and rendering through r.
func NewConsole(in io.Reader, r *Renderer, strikes *Strikes) *Console {
	return &Console{
		in:       bufio.NewScanner(in),
		renderer: r,
		strikes:  strikes,
	}
}

// Strikes exposes the shared counter for the session's ejection check.
func (c *Console) Strikes() *Strikes { return c.strikes }

func (c *Console) readLine() (string, error) {
	if !c.in.Scan() {
		if err := c.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(c.in.Text()), nil
}

// AskInt prompts until it reads an integer in [min, max], charging a strike
// for every rejected line. Returns ErrEjected when the strikes run out.
func (c *Console) AskInt(prompt string, min, max int) (int, error) {
	for {
		if c.strikes.Exceeded() {
			return 0, ErrEjected
		}

		c.renderer.Printf("%s ", prompt)
		line, err := c.readLine()
		if err != nil {
			return 0, err
		}

		n, err := strconv.Atoi(line)
		if err != nil {
			c.strikes.Add()
			c.renderer.Warn(fmt.Sprintf("%q is not a number.", line))
			continue
		}
		if n < min || n > max {
			c.strikes.Add()
			c.renderer.Warn(fmt.Sprintf("Enter a number between %d and %d.", min, max))
			continue
		}
		return n, nil
	}
}

// AskYesNo prompts for a y/n answer.
func (c *Console) AskYesNo(prompt string) (bool, error) {
	for {
		if c.strikes.Exceeded() {
			return false, ErrEjected
		}

		c.renderer.Printf("%s [y/n] ", prompt)
		line, err := c.readLine()
		if err != nil {
			return false, err
		}

		switch strings.ToLower(line) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		default:
			c.strikes.Add()
			c.renderer.Warn("Answer y or n.")
		}
	}
}

// PromptAgent asks the human for each decision. It satisfies
// blackjack.Agent, which cannot surface input errors, so a dead or hostile
// console degrades to standing; the session notices the strike counter
// afterwards and ejects.
type PromptAgent struct {
	Console *Console
}

// Decide implements blackjack.Agent.
func (a *PromptAgent) Decide(view blackjack.TableView, legal []blackjack.Action) blackjack.Action {
	c := a.Console
	c.renderer.Printf("\nDealer shows %s\n", c.renderer.formatCard(view.Dealer.Upcard))
	c.renderer.Printf("Your hand %s (%d)", c.renderer.formatCards(view.Hand.Cards), view.Hand.Total)
	if view.HandCount > 1 {
		c.renderer.Printf(" [hand %d of %d]", view.HandIndex+1, view.HandCount)
	}
	c.renderer.Printf("\n")

	for {
		if c.strikes.Exceeded() {
			return blackjack.Stand
		}

		c.renderer.Printf("%s ", c.renderer.styles.Prompt.Render(promptFor(legal)))
		line, err := c.readLine()
		if err != nil {
			return blackjack.Stand
		}

		action, ok := parseAction(line)
		if !ok {
			c.strikes.Add()
			c.renderer.Warn(fmt.Sprintf("%q is not an option.", line))
			continue
		}
		for _, l := range legal {
			if action == l {
				return action
			}
		}
		c.strikes.Add()
		c.renderer.Warn(fmt.Sprintf("%s is not available for this hand.", action))
	}
}

func promptFor(legal []blackjack.Action) string {
	parts := make([]string, len(legal))
	for i, a := range legal {
		switch a {
		case blackjack.Stand:
			parts[i] = "[s]tand"
		case blackjack.Hit:
			parts[i] = "[h]it"
		case blackjack.Double:
			parts[i] = "[d]ouble"
		case blackjack.SplitPair:
			parts[i] = "s[p]lit"
		}
	}
	return strings.Join(parts, " ") + "?"
}

func parseAction(line string) (blackjack.Action, bool) {
	switch strings.ToLower(line) {
	case "s", "stand":
		return blackjack.Stand, true
	case "h", "hit":
		return blackjack.Hit, true
	case "d", "double":
		return blackjack.Double, true
	case "p", "split":
		return blackjack.SplitPair, true
	default:
		return blackjack.Stand, false
	}
}

// ConsoleBetProvider collects opening bets from the console.
type ConsoleBetProvider struct {
	Console *Console
}

// NextBet implements blackjack.BetProvider. A line that fails to parse is
// reported back to the engine as a not-a-number rejection so it stays in the
// same rejection loop as bets the engine itself refuses.
func (b *ConsoleBetProvider) NextBet(req blackjack.BetRequest) (int, error) {
	c := b.Console
	if c.strikes.Exceeded() {
		return 0, ErrEjected
	}

	if req.Rejected != nil {
		c.strikes.Add()
		if c.strikes.Exceeded() {
			return 0, ErrEjected
		}
		c.renderer.Warn(req.Rejected.Error())
	}

	c.renderer.Printf("%s, you have %s. Bet (minimum $%d)? ",
		req.Player, c.renderer.styles.Chips.Render(fmt.Sprintf("$%d", req.Balance)), req.Minimum)
	line, err := c.readLine()
	if err != nil {
		return 0, err
	}

	amount, err := strconv.Atoi(line)
	if err != nil {
		return 0, &blackjack.BetError{Reason: blackjack.BetNotANumber}
	}
	return amount, nil
}
