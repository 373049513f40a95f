package services

import (
	"sync"
)

// EntityEvent signals that a section of a project changed, so connected
// dashboards can refresh the affected view instead of polling.
type EntityEvent struct {
	Section   string `json:"section"` // projects, stages, tasks, attachments, meetings
	Action    string `json:"action"`  // created, updated, deleted
	ProjectID uint   `json:"project_id"`
	EntityID  uint   `json:"entity_id,omitempty"`
}

// EventHub manages SSE client connections and event broadcasting. It is
// injected where needed; there is no package-level instance.
type EventHub struct {
	clients map[string]chan EntityEvent
	mu      sync.RWMutex
}

func NewEventHub() *EventHub {
	return &EventHub{
		clients: make(map[string]chan EntityEvent),
	}
}

// Subscribe registers a client and returns its event channel.
func (h *EventHub) Subscribe(clientID string) <-chan EntityEvent {
	h.mu.Lock()
	defer h.mu.Unlock()

	// Buffered so a slow client never blocks a publisher
	ch := make(chan EntityEvent, 100)
	h.clients[clientID] = ch
	return ch
}

// Unsubscribe removes a client and closes its channel.
func (h *EventHub) Unsubscribe(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ch, ok := h.clients[clientID]; ok {
		close(ch)
		delete(h.clients, clientID)
	}
}

// Publish broadcasts an event to all connected clients.
func (h *EventHub) Publish(event EntityEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.clients {
		select {
		case ch <- event:
		default:
			// Client buffer full, drop the event
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *EventHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
