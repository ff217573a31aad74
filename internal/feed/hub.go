// Package feed fans out change notifications to interested listeners.
//
// Services publish an Event after every successful write. Listeners (the
// websocket endpoint, the Redis bridge) subscribe per resource and refetch
// whatever they display; events carry identifiers only.
package feed

import (
	"log/slog"
	"sync"

	"github.com/mmynk/triplan/internal/metrics"
)

// Resource names a collection that changed.
type Resource string

const (
	ResourceProjects    Resource = "projects"
	ResourceItineraries Resource = "itineraries"
	ResourceBills       Resource = "bills"
	ResourceChats       Resource = "chats"

	// AllResources subscribes to every resource.
	AllResources Resource = "*"
)

// Action is the kind of write that happened.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// Event describes one committed write.
type Event struct {
	Resource  Resource `json:"resource"`
	Action    Action   `json:"action"`
	ProjectID string   `json:"project_id"`
	ID        string   `json:"id"`

	// Origin identifies the instance that published the event when it
	// crossed the Redis bridge.
	Origin string `json:"origin,omitempty"`
}

// Publisher is the write side of the hub, as seen by services.
type Publisher interface {
	Publish(ev Event)
}

type subscription struct {
	resource Resource
	fn       func(Event)
}

// Hub is an in-process publish/subscribe registry. Callbacks run on the
// publishing goroutine and must not block.
type Hub struct {
	mu      sync.RWMutex
	subs    map[int]subscription
	nextID  int
	forward func(Event)
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[int]subscription)}
}

// Subscribe registers fn for events on resource and returns a function that
// removes it. Calling the returned function more than once is safe.
func (h *Hub) Subscribe(resource Resource, fn func(Event)) (unsubscribe func()) {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = subscription{resource: resource, fn: fn}
	h.mu.Unlock()
	metrics.FeedSubscribers.Inc()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
			metrics.FeedSubscribers.Dec()
		})
	}
}

// SetForwarder installs fn to receive every locally published event, used to
// relay events to other instances.
func (h *Hub) SetForwarder(fn func(Event)) {
	h.mu.Lock()
	h.forward = fn
	h.mu.Unlock()
}

// Publish delivers ev to local subscribers and the forwarder, if any.
func (h *Hub) Publish(ev Event) {
	metrics.FeedEventsTotal.WithLabelValues(string(ev.Resource), string(ev.Action)).Inc()
	slog.Debug("Feed event",
		"resource", ev.Resource,
		"action", ev.Action,
		"project_id", ev.ProjectID,
		"id", ev.ID,
	)

	h.deliver(ev)

	h.mu.RLock()
	forward := h.forward
	h.mu.RUnlock()
	if forward != nil {
		forward(ev)
	}
}

// deliver runs local callbacks only.
func (h *Hub) deliver(ev Event) {
	h.mu.RLock()
	fns := make([]func(Event), 0, len(h.subs))
	for _, s := range h.subs {
		if s.resource == AllResources || s.resource == ev.Resource {
			fns = append(fns, s.fn)
		}
	}
	h.mu.RUnlock()

	for _, fn := range fns {
		fn(ev)
	}
}
