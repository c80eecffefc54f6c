package engine

import (
	"time"

	"github.com/lox/holdembet/internal/ledger"
	"github.com/lox/holdembet/internal/pot"
	"github.com/lox/holdembet/internal/showdown"
)

// EventType represents a game event type with type safety
type EventType string

const (
	EventTypeHandStart    EventType = "hand_start"
	EventTypeBlindPosted  EventType = "blind_posted"
	EventTypeRoundChange  EventType = "round_change"
	EventTypePlayerAction EventType = "player_action"
	EventTypePotAwarded   EventType = "pot_awarded"
	EventTypeHandEnd      EventType = "hand_end"
	EventTypeStateChanged EventType = "state_changed"
)

func (et EventType) String() string {
	return string(et)
}

// GameEvent represents any event that occurs during a hand
type GameEvent interface {
	EventType() EventType
	Timestamp() time.Time
}

// HandStartEvent is published before blinds are posted
type HandStartEvent struct {
	HandID     string
	Number     int
	Dealer     int
	SmallBlind int
	BigBlind   int
	Players    []ledger.Player // Stacks before blinds
	timestamp  time.Time
}

func (e HandStartEvent) EventType() EventType { return EventTypeHandStart }
func (e HandStartEvent) Timestamp() time.Time { return e.timestamp }

// BlindPostedEvent is published for each forced bet
type BlindPostedEvent struct {
	Seat      int
	Amount    int
	Big       bool
	AllIn     bool
	timestamp time.Time
}

func (e BlindPostedEvent) EventType() EventType { return EventTypeBlindPosted }
func (e BlindPostedEvent) Timestamp() time.Time { return e.timestamp }

// RoundChangeEvent is published when a betting round begins
type RoundChangeEvent struct {
	Round     Round
	Pot       int
	timestamp time.Time
}

func (e RoundChangeEvent) EventType() EventType { return EventTypeRoundChange }
func (e RoundChangeEvent) Timestamp() time.Time { return e.timestamp }

// PlayerActionEvent is published after an action is applied
type PlayerActionEvent struct {
	Seat      int
	Name      string
	Action    Action
	Committed int // Chips moved into the pot by this action
	TotalBet  int  // The player's bet this round after the action
	Raised    bool // The action raised the current bet
	AllIn     bool
	Round     Round
	PotAfter  int
	timestamp time.Time
}

func (e PlayerActionEvent) EventType() EventType { return EventTypePlayerAction }
func (e PlayerActionEvent) Timestamp() time.Time { return e.timestamp }

// PotAwardedEvent is published when a pot is paid out
type PotAwardedEvent struct {
	Index       int
	Pot         pot.Pot
	Award       showdown.Award
	Uncontested bool
	timestamp   time.Time
}

func (e PotAwardedEvent) EventType() EventType { return EventTypePotAwarded }
func (e PotAwardedEvent) Timestamp() time.Time { return e.timestamp }

// HandEndEvent is published when a hand reaches HandComplete
type HandEndEvent struct {
	HandID    string
	Number    int
	Showdown  bool
	Players   []ledger.Player // Final stacks
	Discarded int
	timestamp time.Time
}

func (e HandEndEvent) EventType() EventType { return EventTypeHandEnd }
func (e HandEndEvent) Timestamp() time.Time { return e.timestamp }

// StateChangedEvent carries the full state after every successful mutation
type StateChangedEvent struct {
	Snapshot  Snapshot
	timestamp time.Time
}

func (e StateChangedEvent) EventType() EventType { return EventTypeStateChanged }
func (e StateChangedEvent) Timestamp() time.Time { return e.timestamp }

// EventSubscriber can subscribe to game events
type EventSubscriber interface {
	OnEvent(event GameEvent)
}

// SubscriberFunc adapts a function to EventSubscriber
type SubscriberFunc func(event GameEvent)

func (f SubscriberFunc) OnEvent(event GameEvent) {
	f(event)
}

// EventBus manages event publishing and subscription
type EventBus interface {
	Subscribe(subscriber EventSubscriber)
	Unsubscribe(subscriber EventSubscriber)
	Publish(event GameEvent)
}

// SimpleEventBus is a synchronous in-memory event bus
type SimpleEventBus struct {
	subscribers []EventSubscriber
}

// NewEventBus creates a new event bus
func NewEventBus() *SimpleEventBus {
	return &SimpleEventBus{}
}

func (bus *SimpleEventBus) Subscribe(subscriber EventSubscriber) {
	bus.subscribers = append(bus.subscribers, subscriber)
}

// Unsubscribe removes a subscriber. Function subscribers cannot be compared
// and are only removed by pointer-typed subscribers.
func (bus *SimpleEventBus) Unsubscribe(subscriber EventSubscriber) {
	if _, ok := subscriber.(SubscriberFunc); ok {
		return
	}
	for i, sub := range bus.subscribers {
		if _, ok := sub.(SubscriberFunc); ok {
			continue
		}
		if sub == subscriber {
			bus.subscribers = append(bus.subscribers[:i], bus.subscribers[i+1:]...)
			break
		}
	}
}

func (bus *SimpleEventBus) Publish(event GameEvent) {
	for _, subscriber := range bus.subscribers {
		subscriber.OnEvent(event)
	}
}
