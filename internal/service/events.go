package service

import "sync"

// EventType defines the type of event
type EventType string

const (
	EventCatalogReloaded    EventType = "catalog_reloaded"
	EventCatalogReloadError EventType = "catalog_reload_failed"
	EventSelectionChanged   EventType = "selection_changed"
)

// Event represents an event that occurred in the system
type Event struct {
	Type    EventType `json:"type"`
	Payload any       `json:"payload,omitempty"`
}

// CatalogReloadedPayload describes a newly published snapshot
type CatalogReloadedPayload struct {
	Version   int64 `json:"version"`
	NodeCount int   `json:"node_count"`
	EdgeCount int   `json:"edge_count"`
}

// SelectionChangedPayload describes a session's new selection
type SelectionChangedPayload struct {
	SessionID string `json:"session_id"`
	Selected  bool   `json:"selected"`
	NodeID    string `json:"node_id,omitempty"`
}

// EventBus allows publishing and subscribing to events
type EventBus struct {
	mu          sync.RWMutex
	subscribers []chan<- Event
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make([]chan<- Event, 0),
	}
}

// Subscribe adds a subscriber to receive events
func (eb *EventBus) Subscribe(ch chan<- Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.subscribers = append(eb.subscribers, ch)
}

// Publish sends an event to all subscribers
func (eb *EventBus) Publish(event Event) {
	if eb == nil {
		return
	}
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	for _, ch := range eb.subscribers {
		select {
		case ch <- event:
		default:
			// Subscriber is slow, skip
		}
	}
}
