// Package events implements a Hub that fans change notifications out to live subscribers.
// Whenever a service writes a course, team, player, or match, the handler publishes an
// Event; clients holding a /api/v1/stream connection receive it and refresh their cached
// copy of that collection instead of polling.
package events

import (
	"context"
	"encoding/json"
	"sync"
)

// Topics a subscriber can listen on. They match the collection names used in the API paths.
const (
	TopicCourses = "courses"
	TopicTeams   = "teams"
	TopicPlayers = "players"
	TopicMatches = "matches"
)

// Actions carried by an Event.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// Event says that one record in a collection changed.
type Event struct {
	Topic  string `json:"topic"`
	Action string `json:"action"`
	ID     string `json:"id"`
}

// JSON encodes the event for the wire. The struct only holds strings, so this can't fail.
func (e Event) JSON() []byte {
	b, _ := json.Marshal(e)
	return b
}

// Subscriber is one live listener. Send is closed when the Hub drops it, which is the
// signal for the stream writer to finish.
type Subscriber struct {
	topics map[string]bool
	Send   chan Event
}

// Wants reports whether the subscriber listens on topic. An empty topic set means all.
func (s *Subscriber) Wants(topic string) bool {
	return len(s.topics) == 0 || s.topics[topic]
}

// Hub tracks subscribers and delivers events to them. All changes to the subscriber set
// go through Run's goroutine; mu only guards reads from Len.
type Hub struct {
	subscribers map[*Subscriber]bool

	publish    chan Event
	register   chan *Subscriber
	unregister chan *Subscriber
	done       chan struct{}

	mu sync.RWMutex
}

// NewHub creates an idle Hub. Call Run before publishing.
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[*Subscriber]bool),
		publish:     make(chan Event, 256),
		register:    make(chan *Subscriber),
		unregister:  make(chan *Subscriber),
		done:        make(chan struct{}),
	}
}

// Run processes registrations and publishes until ctx is cancelled, then closes every
// remaining subscriber.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for s := range h.subscribers {
				delete(h.subscribers, s)
				close(s.Send)
			}
			h.mu.Unlock()
			return

		case s := <-h.register:
			h.mu.Lock()
			h.subscribers[s] = true
			h.mu.Unlock()

		case s := <-h.unregister:
			h.remove(s)

		case ev := <-h.publish:
			for s := range h.subscribers {
				if !s.Wants(ev.Topic) {
					continue
				}
				select {
				case s.Send <- ev:
				default:
					// Too slow to keep up: drop it rather than stall everyone else.
					h.remove(s)
				}
			}
		}
	}
}

func (h *Hub) remove(s *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subscribers[s] {
		delete(h.subscribers, s)
		close(s.Send)
	}
}

// Publish queues an event for delivery. It never blocks the caller: if the queue is full
// or the Hub has stopped, the event is discarded and false is returned.
func (h *Hub) Publish(ev Event) bool {
	select {
	case <-h.done:
		return false
	default:
	}
	select {
	case h.publish <- ev:
		return true
	default:
		return false
	}
}

// Subscribe registers a listener for the given topics (all topics when none are given).
// It returns nil if the Hub has stopped or ctx ends first.
func (h *Hub) Subscribe(ctx context.Context, topics ...string) *Subscriber {
	s := &Subscriber{topics: make(map[string]bool, len(topics)), Send: make(chan Event, 16)}
	for _, t := range topics {
		if t != "" {
			s.topics[t] = true
		}
	}
	select {
	case h.register <- s:
		return s
	case <-h.done:
		return nil
	case <-ctx.Done():
		return nil
	}
}

// Unsubscribe removes a listener. Calling it more than once, or after the Hub has
// already dropped the subscriber, is harmless.
func (h *Hub) Unsubscribe(s *Subscriber) {
	if s == nil {
		return
	}
	select {
	case h.unregister <- s:
	case <-h.done:
	}
}

// Len returns the number of live subscribers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Done is closed once Run has returned.
func (h *Hub) Done() <-chan struct{} { return h.done }
