package blackjack

import (
	"slices"

	"github.com/feltkit/felt/internal/deck"
)

// Action is a player decision on a hand.
type Action int

const (
	Stand Action = iota
	Hit
	Double
	SplitPair
)

func (a Action) String() string {
	switch a {
	case Stand:
		return "stand"
	case Hit:
		return "hit"
	case Double:
		return "double"
	case SplitPair:
		return "split"
	default:
		return "?"
	}
}

// HandView is a read-only snapshot of a hand for agents and subscribers.
type HandView struct {
	Cards     []deck.Card
	Total     int
	Soft      bool
	Bust      bool
	Blackjack bool
	Bet       int
	Split     bool
}

// DealerView shows what a player may see of the dealer's hand. Until the
// reveal only the upcard is populated; concealment is presentation state,
// the engine itself always knows both cards.
type DealerView struct {
	Upcard   deck.Card
	Cards    []deck.Card // empty until revealed
	Total    int         // zero until revealed
	Revealed bool
}

// TableView is the immutable state handed to an agent for one decision.
type TableView struct {
	Player    string
	Balance   int
	Hand      HandView
	HandIndex int // which of the player's hands is acting
	HandCount int
	Dealer    DealerView
	Minimum   int
}

// Agent decides for a hand. It receives immutable state and the legal action
// set and returns exactly one of those actions; anything else is rejected by
// the engine and the same decision is offered again. The engine blocks on
// Decide with no retry policy of its own.
type Agent interface {
	Decide(view TableView, legal []Action) Action
}

// BetRequest asks a provider for one player's stake. Rejected carries the
// previous attempt's typed rejection, nil on the first ask.
type BetRequest struct {
	Player   string
	Balance  int
	Minimum  int
	Rejected *BetError
}

// BetProvider supplies bet amounts. Returning a *BetError (e.g. unparseable
// input) re-prompts; any other error withdraws the player from the round.
type BetProvider interface {
	NextBet(req BetRequest) (int, error)
}

// handView builds the snapshot for a hand.
func handView(h *Hand) HandView {
	return HandView{
		Cards:     h.Cards(),
		Total:     h.Total(),
		Soft:      h.IsSoft(),
		Bust:      h.IsBust(),
		Blackjack: h.IsBlackjack(),
		Bet:       h.Bet,
		Split:     h.Split,
	}
}

// legalActions computes the action set offered for a hand.
func legalActions(p *Player, h *Hand) []Action {
	actions := []Action{Stand, Hit}
	if p.CanDouble(h) {
		actions = append(actions, Double)
	}
	if p.CanSplit(h) {
		actions = append(actions, SplitPair)
	}
	return actions
}

func isLegal(a Action, legal []Action) bool {
	return slices.Contains(legal, a)
}

// ScriptedAgent replays a fixed list of actions, then stands. Used by tests
// and deterministic scenarios.
type ScriptedAgent struct {
	Actions []Action
	pos     int
}

// Decide returns the next scripted action regardless of legality; the script
// is the test's responsibility. Once exhausted it always stands.
func (s *ScriptedAgent) Decide(TableView, []Action) Action {
	if s.pos >= len(s.Actions) {
		return Stand
	}
	a := s.Actions[s.pos]
	s.pos++
	return a
}

// FixedBet always bets the same amount, for simulations and tests.
type FixedBet int

func (f FixedBet) NextBet(req BetRequest) (int, error) {
	return int(f), nil
}
