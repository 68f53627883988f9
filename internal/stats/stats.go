// Package stats tallies round outcomes from the table's event stream.
package stats

import (
	"sort"
	"sync"

	"github.com/feltkit/felt/internal/blackjack"
)

// PlayerStats accumulates per-player results across rounds.
type PlayerStats struct {
	Name       string
	Hands      int
	Wins       int
	Losses     int
	Pushes     int
	Blackjacks int
	Busts      int
	Wagered    int
	NetChips   int
}

// WinRate returns the fraction of hands won, 0 for an empty record.
func (s PlayerStats) WinRate() float64 {
	if s.Hands == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Hands)
}

// Tracker is an event subscriber that keeps running totals for every player
// it sees. Safe for use from one table at a time; cross-table aggregation
// goes through Merge.
type Tracker struct {
	mu      sync.Mutex
	rounds  int
	players map[string]*PlayerStats
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{players: make(map[string]*PlayerStats)}
}

// OnEvent implements blackjack.EventSubscriber.
func (t *Tracker) OnEvent(event blackjack.GameEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch e := event.(type) {
	case blackjack.RoundStartEvent:
		t.rounds++

	case blackjack.HandSettledEvent:
		s := t.forPlayer(e.Player)
		s.Hands++
		s.Wagered += e.Bet
		s.NetChips += e.Payout - e.Bet

		switch {
		case e.Outcome == blackjack.OutcomePlayerBlackjack:
			s.Blackjacks++
			s.Wins++
		case e.Outcome == blackjack.OutcomePlayerBust:
			s.Busts++
			s.Losses++
		case e.Outcome.Won():
			s.Wins++
		case e.Outcome.Push():
			s.Pushes++
		default:
			s.Losses++
		}
	}
}

func (t *Tracker) forPlayer(name string) *PlayerStats {
	s, ok := t.players[name]
	if !ok {
		s = &PlayerStats{Name: name}
		t.players[name] = s
	}
	return s
}

// Rounds returns the number of rounds observed.
func (t *Tracker) Rounds() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rounds
}

// Player returns a copy of one player's record.
func (t *Tracker) Player(name string) PlayerStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok := t.players[name]; ok {
		return *s
	}
	return PlayerStats{Name: name}
}

// Players returns copies of every record, sorted by name.
func (t *Tracker) Players() []PlayerStats {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]PlayerStats, 0, len(t.players))
	for _, s := range t.players {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Merge folds another tracker's totals into this one. Used by the simulator
// to combine per-table trackers after all tables finish.
func (t *Tracker) Merge(other *Tracker) {
	other.mu.Lock()
	snapshot := make([]PlayerStats, 0, len(other.players))
	for _, s := range other.players {
		snapshot = append(snapshot, *s)
	}
	rounds := other.rounds
	other.mu.Unlock()

	t.mu.Lock()
	defer t.mu.Unlock()
	t.rounds += rounds
	for _, s := range snapshot {
		into := t.forPlayer(s.Name)
		into.Hands += s.Hands
		into.Wins += s.Wins
		into.Losses += s.Losses
		into.Pushes += s.Pushes
		into.Blackjacks += s.Blackjacks
		into.Busts += s.Busts
		into.Wagered += s.Wagered
		into.NetChips += s.NetChips
	}
}

// Reset clears all totals.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rounds = 0
	t.players = make(map[string]*PlayerStats)
}
