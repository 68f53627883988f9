package session

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/feltkit/felt/internal/blackjack"
)

// TimeoutAgent wraps another agent with a decision deadline. A decision that
// does not arrive in time becomes a stand, the safest default: it never
// spends chips or draws a card.
type TimeoutAgent struct {
	inner   blackjack.Agent
	timeout time.Duration
	clock   quartz.Clock
	logger  *log.Logger
}

// NewTimeoutAgent wraps inner with the given deadline.
func NewTimeoutAgent(inner blackjack.Agent, timeout time.Duration, clock quartz.Clock, logger *log.Logger) *TimeoutAgent {
	return &TimeoutAgent{
		inner:   inner,
		timeout: timeout,
		clock:   clock,
		logger:  logger.WithPrefix("timeout-agent"),
	}
}

// Decide implements blackjack.Agent. The inner agent runs in its own
// goroutine; if the deadline fires first its eventual answer is discarded.
func (a *TimeoutAgent) Decide(view blackjack.TableView, legal []blackjack.Action) blackjack.Action {
	decided := make(chan blackjack.Action, 1)
	go func() {
		decided <- a.inner.Decide(view, legal)
	}()

	timedOut := make(chan struct{})
	timer := a.clock.AfterFunc(a.timeout, func() {
		close(timedOut)
	})
	defer timer.Stop()

	select {
	case action := <-decided:
		return action
	case <-timedOut:
		a.logger.Warn("decision timeout, standing", "player", view.Player, "timeout", a.timeout)
		return blackjack.Stand
	}
}
