package blackjack

import (
	"time"

	"github.com/feltkit/felt/internal/deck"
)

// EventType identifies a round event.
type EventType string

const (
	EventTypeRoundStart   EventType = "round_start"
	EventTypeCardDealt    EventType = "card_dealt"
	EventTypePlayerAction EventType = "player_action"
	EventTypeDealerReveal EventType = "dealer_reveal"
	EventTypeHandSettled  EventType = "hand_settled"
	EventTypeRoundEnd     EventType = "round_end"
)

func (et EventType) String() string { return string(et) }

// GameEvent is anything the round engine reports to subscribers. Events are
// read-only snapshots; subscribers never mutate engine state.
type GameEvent interface {
	EventType() EventType
	Timestamp() time.Time
}

// RoundStartEvent is published once bets are down and before dealing.
type RoundStartEvent struct {
	Players   []string
	Minimum   int
	DeckCount int
	timestamp time.Time
}

func (e RoundStartEvent) EventType() EventType { return EventTypeRoundStart }
func (e RoundStartEvent) Timestamp() time.Time { return e.timestamp }

// CardDealtEvent is published for every card leaving the shoe. Hidden marks
// the dealer's hole card; its value is withheld until the reveal.
type CardDealtEvent struct {
	Seat      string // player name, or "dealer"
	HandIndex int
	Card      deck.Card
	Hidden    bool
	timestamp time.Time
}

func (e CardDealtEvent) EventType() EventType { return EventTypeCardDealt }
func (e CardDealtEvent) Timestamp() time.Time { return e.timestamp }

// PlayerActionEvent is published after an accepted decision is applied.
type PlayerActionEvent struct {
	Player    string
	HandIndex int
	Action    Action
	Hand      HandView
	timestamp time.Time
}

func (e PlayerActionEvent) EventType() EventType { return EventTypePlayerAction }
func (e PlayerActionEvent) Timestamp() time.Time { return e.timestamp }

// DealerRevealEvent is published when the hole card turns over, before any
// dealer draws.
type DealerRevealEvent struct {
	Cards     []deck.Card
	Total     int
	timestamp time.Time
}

func (e DealerRevealEvent) EventType() EventType { return EventTypeDealerReveal }
func (e DealerRevealEvent) Timestamp() time.Time { return e.timestamp }

// HandSettledEvent is published once per hand during settling.
type HandSettledEvent struct {
	Player    string
	HandIndex int
	Outcome   Outcome
	Bet       int
	Payout    int
	Hand      HandView
	timestamp time.Time
}

func (e HandSettledEvent) EventType() EventType { return EventTypeHandSettled }
func (e HandSettledEvent) Timestamp() time.Time { return e.timestamp }

// RoundEndEvent is published after payouts with the post-round balances.
type RoundEndEvent struct {
	Balances  map[string]int
	timestamp time.Time
}

func (e RoundEndEvent) EventType() EventType { return EventTypeRoundEnd }
func (e RoundEndEvent) Timestamp() time.Time { return e.timestamp }

// EventSubscriber receives round events.
type EventSubscriber interface {
	OnEvent(event GameEvent)
}

// EventBus manages event publishing and subscription.
type EventBus interface {
	Subscribe(subscriber EventSubscriber)
	Unsubscribe(subscriber EventSubscriber)
	Publish(event GameEvent)
}

// SimpleEventBus is a basic synchronous in-memory event bus.
type SimpleEventBus struct {
	subscribers []EventSubscriber
}

// NewEventBus creates a new event bus.
func NewEventBus() EventBus {
	return &SimpleEventBus{}
}

// Subscribe adds a subscriber to receive events.
func (bus *SimpleEventBus) Subscribe(subscriber EventSubscriber) {
	bus.subscribers = append(bus.subscribers, subscriber)
}

// Unsubscribe removes a subscriber.
func (bus *SimpleEventBus) Unsubscribe(subscriber EventSubscriber) {
	for i, sub := range bus.subscribers {
		if sub == subscriber {
			bus.subscribers = append(bus.subscribers[:i], bus.subscribers[i+1:]...)
			break
		}
	}
}

// Publish delivers an event to all subscribers in subscription order.
func (bus *SimpleEventBus) Publish(event GameEvent) {
	for _, subscriber := range bus.subscribers {
		subscriber.OnEvent(event)
	}
}
