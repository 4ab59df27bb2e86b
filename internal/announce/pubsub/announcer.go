// Package pubsub announces events on Google Cloud Pub/Sub.
package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"cloud.google.com/go/pubsub"
)

// Config selects the project and the topic used when callers pass none.
type Config struct {
	ProjectID    string `mapstructure:"project_id"`
	DefaultTopic string `mapstructure:"topic"`
}

// Announcer publishes JSON payloads to Pub/Sub topics.
type Announcer struct {
	client       *pubsub.Client
	defaultTopic string

	mu     sync.Mutex
	topics map[string]*pubsub.Topic
}

// New wraps an existing client.
func New(client *pubsub.Client, defaultTopic string) (*Announcer, error) {
	if client == nil {
		return nil, errors.New("pubsub client is required")
	}
	return &Announcer{
		client:       client,
		defaultTopic: defaultTopic,
		topics:       make(map[string]*pubsub.Topic),
	}, nil
}

// Dial creates a client for cfg.ProjectID using application default credentials.
func Dial(ctx context.Context, cfg Config) (*Announcer, error) {
	if cfg.ProjectID == "" {
		return nil, errors.New("pubsub project id is required")
	}
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}
	return New(client, cfg.DefaultTopic)
}

// Publish marshals payload to JSON and waits for the server-assigned ID.
func (a *Announcer) Publish(ctx context.Context, topic string, payload any) (string, error) {
	if topic == "" {
		topic = a.defaultTopic
	}
	if topic == "" {
		return "", errors.New("pubsub topic is required")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	result := a.topic(topic).Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: map[string]string{"content_type": "application/json"},
	})
	id, err := result.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("publish to %s: %w", topic, err)
	}
	return id, nil
}

// Close flushes pending messages and closes the client.
func (a *Announcer) Close() error {
	a.mu.Lock()
	for _, t := range a.topics {
		t.Stop()
	}
	a.topics = map[string]*pubsub.Topic{}
	a.mu.Unlock()
	return a.client.Close()
}

func (a *Announcer) topic(id string) *pubsub.Topic {
	a.mu.Lock()
	defer a.mu.Unlock()
	t, ok := a.topics[id]
	if !ok {
		t = a.client.Topic(id)
		a.topics[id] = t
	}
	return t
}
