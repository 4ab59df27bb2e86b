// Package memory records announcements in memory for tests and local runs.
package memory

import (
	"context"
	"fmt"
	"sync"
)

// Message captures one Publish call.
type Message struct {
	Topic   string
	Payload any
}

// Announcer stores published payloads for inspection.
type Announcer struct {
	mu       sync.RWMutex
	messages []Message
}

// New returns an empty Announcer.
func New() *Announcer {
	return &Announcer{}
}

// Publish records the message and returns a pseudo ID.
func (a *Announcer) Publish(_ context.Context, topic string, payload any) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.messages = append(a.messages, Message{Topic: topic, Payload: payload})
	return fmt.Sprintf("memory-%d", len(a.messages)), nil
}

// Messages returns a copy of the recorded publishes.
func (a *Announcer) Messages() []Message {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]Message, len(a.messages))
	copy(out, a.messages)
	return out
}
