package session

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feltkit/felt/internal/account"
	"github.com/feltkit/felt/internal/blackjack"
	"github.com/feltkit/felt/internal/config"
	"github.com/feltkit/felt/internal/display"
	"github.com/feltkit/felt/internal/randutil"
	"github.com/feltkit/felt/internal/stats"
)

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

// scriptPrompter answers the between-round questions from canned lists.
type scriptPrompter struct {
	decks   int
	deckErr error
	again   []bool
}

func (p *scriptPrompter) AskInt(string, int, int) (int, error) {
	return p.decks, p.deckErr
}

func (p *scriptPrompter) AskYesNo(string) (bool, error) {
	if len(p.again) == 0 {
		return false, nil
	}
	answer := p.again[0]
	p.again = p.again[1:]
	return answer, nil
}

func yesTimes(n int) []bool {
	answers := make([]bool, n)
	for i := range answers {
		answers[i] = true
	}
	return answers
}

func newTestSession(t *testing.T, balance int, prompter Prompter, opts ...Option) (*Session, *blackjack.Player) {
	t.Helper()
	cfg := config.Default()
	player := blackjack.NewPlayer(account.Generate("Dana", balance))
	s := New(cfg, player, blackjack.PolicyAgent{}, blackjack.FixedBet(10),
		prompter, nil, randutil.New(42), opts...)
	return s, player
}

func TestSessionPlaysUntilQuit(t *testing.T) {
	prompter := &scriptPrompter{decks: 1, again: []bool{true, false}}
	s, player := newTestSession(t, 1000, prompter)

	require.NoError(t, s.Run(context.Background()))
	assert.Equal(t, 2, s.Rounds())
	// Every round moves chips through the ledger; the player can never be
	// left holding a negative balance.
	assert.GreaterOrEqual(t, player.Balance(), 0)
}

func TestSessionSurvivesShoeTurnover(t *testing.T) {
	// Twenty rounds through a single-deck shoe forces several rebuilds.
	prompter := &scriptPrompter{decks: 1, again: yesTimes(19)}
	tracker := stats.NewTracker()
	s, _ := newTestSession(t, 100000, prompter, WithSubscribers(tracker))

	require.NoError(t, s.Run(context.Background()))
	assert.Equal(t, 20, s.Rounds())
	assert.Equal(t, 20, tracker.Rounds())
	// At least one settled hand per round; splits can add more.
	assert.GreaterOrEqual(t, tracker.Player("Dana").Hands, 20)
}

func TestSessionEndsWhenBroke(t *testing.T) {
	prompter := &scriptPrompter{decks: 1, again: yesTimes(50)}
	s, player := newTestSession(t, 5, prompter)

	require.NoError(t, s.Run(context.Background()))
	assert.Equal(t, 0, s.Rounds())
	assert.Equal(t, 5, player.Balance())
}

func TestSessionEjectionIsNotAFailure(t *testing.T) {
	prompter := &scriptPrompter{deckErr: display.ErrEjected}
	s, _ := newTestSession(t, 100, prompter)
	assert.NoError(t, s.Run(context.Background()))
	assert.Equal(t, 0, s.Rounds())
}

func TestSessionClosedInputIsNotAFailure(t *testing.T) {
	prompter := &scriptPrompter{deckErr: io.EOF}
	s, _ := newTestSession(t, 100, prompter)
	assert.NoError(t, s.Run(context.Background()))
}

func TestSessionHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	prompter := &scriptPrompter{decks: 1, again: yesTimes(5)}
	s, _ := newTestSession(t, 100, prompter)
	assert.ErrorIs(t, s.Run(ctx), context.Canceled)
}

// blockingAgent never answers.
type blockingAgent struct {
	block chan struct{}
}

func (a *blockingAgent) Decide(blackjack.TableView, []blackjack.Action) blackjack.Action {
	<-a.block
	return blackjack.Hit
}

func TestTimeoutAgentStandsOnDeadline(t *testing.T) {
	ctx := context.Background()
	mockClock := quartz.NewMock(t)
	inner := &blockingAgent{block: make(chan struct{})}
	defer close(inner.block)

	agent := NewTimeoutAgent(inner, 10*time.Second, mockClock, testLogger())

	trap := mockClock.Trap().AfterFunc()
	defer trap.Close()

	decided := make(chan blackjack.Action, 1)
	go func() {
		decided <- agent.Decide(blackjack.TableView{Player: "Dana"}, []blackjack.Action{blackjack.Stand, blackjack.Hit})
	}()

	// Wait until the deadline timer is armed, then fire it.
	call := trap.MustWait(ctx)
	call.MustRelease(ctx)
	mockClock.Advance(10 * time.Second).MustWait(ctx)

	assert.Equal(t, blackjack.Stand, <-decided)
}

func TestTimeoutAgentPassesThroughFastDecisions(t *testing.T) {
	mockClock := quartz.NewMock(t)
	agent := NewTimeoutAgent(&blackjack.ScriptedAgent{Actions: []blackjack.Action{blackjack.Hit}},
		10*time.Second, mockClock, testLogger())

	got := agent.Decide(blackjack.TableView{Player: "Dana"}, []blackjack.Action{blackjack.Stand, blackjack.Hit})
	assert.Equal(t, blackjack.Hit, got)
}
