// Package events provides fan-out of node events to registered subscribers,
// primarily the websocket event feed.
package events

import (
	"fmt"
	"sync"
)

// subscriberBuffer gives a slow receiver room before messages are dropped.
// A websocket write can take a while.
const subscriberBuffer = 100

// Events maintains the set of subscriber channels.
type Events struct {
	mu          sync.RWMutex
	subscribers map[string]chan string
}

// New constructs an Events for registering subscribers and publishing.
func New() *Events {
	return &Events{
		subscribers: make(map[string]chan string),
	}
}

// Subscribe registers the unique id and returns the channel events will be
// delivered on.
func (evt *Events) Subscribe(id string) chan string {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	if ch, exists := evt.subscribers[id]; exists {
		return ch
	}

	ch := make(chan string, subscriberBuffer)
	evt.subscribers[id] = ch

	return ch
}

// Unsubscribe closes and removes the channel registered under the id.
func (evt *Events) Unsubscribe(id string) error {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	ch, exists := evt.subscribers[id]
	if !exists {
		return fmt.Errorf("subscriber %q does not exist", id)
	}

	delete(evt.subscribers, id)
	close(ch)

	return nil
}

// Publish delivers the message to every subscriber without blocking. A
// subscriber whose buffer is full misses the message.
func (evt *Events) Publish(msg string) {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	for _, ch := range evt.subscribers {
		select {
		case ch <- msg:
		default:
		}
	}
}

// Shutdown closes and removes every subscriber channel.
func (evt *Events) Shutdown() {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	for id, ch := range evt.subscribers {
		delete(evt.subscribers, id)
		close(ch)
	}
}
