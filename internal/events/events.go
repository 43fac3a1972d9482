package events

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Change types published after admin writes.
const (
	MenuChanged     = "menu.changed"
	ScheduleChanged = "schedule.changed"
	EventsChanged   = "events.changed"
	ConfigChanged   = "config.changed"
)

// Types lists every change type admin writes publish.
var Types = []string{MenuChanged, ScheduleChanged, EventsChanged, ConfigChanged}

// Event is an in-process notification that some resource changed.
type Event struct {
	Type      string
	Key       string
	CreatedAt time.Time
}

// Handler reacts to an event.
type Handler func(event Event) error

// Bus provides in-process pub/sub.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string][]Handler
	logger      zerolog.Logger
}

// NewBus constructs an empty bus.
func NewBus(logger zerolog.Logger) *Bus {
	return &Bus{
		subscribers: make(map[string][]Handler),
		logger:      logger.With().Str("component", "events").Logger(),
	}
}

// Subscribe registers handler for each of the given event types.
func (b *Bus) Subscribe(handler Handler, types ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, t := range types {
		b.subscribers[t] = append(b.subscribers[t], handler)
	}
}

// Publish notifies subscribers of the event type. Handlers run
// synchronously; their errors are logged and do not reach the publisher.
func (b *Bus) Publish(eventType, key string) {
	if b == nil {
		return
	}
	b.mu.RLock()
	handlers := append([]Handler(nil), b.subscribers[eventType]...)
	b.mu.RUnlock()

	ev := Event{Type: eventType, Key: key, CreatedAt: time.Now()}
	for _, h := range handlers {
		if err := h(ev); err != nil {
			b.logger.Warn().Err(err).Str("type", eventType).Str("key", key).Msg("event handler failed")
		}
	}
}
