package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Event announces a newly published world version.
type Event struct {
	WorldID     string    `json:"world_id"`
	Version     int64     `json:"version"`
	Author      string    `json:"author"`
	Lines       []string  `json:"lines"`
	PublishedAt time.Time `json:"published_at"`
}

// Notifier delivers events to other players.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
	Close() error
}

// Nop discards every event.
type Nop struct{}

// Notify implements Notifier.
func (Nop) Notify(context.Context, Event) error { return nil }

// Close implements Notifier.
func (Nop) Close() error { return nil }

// Channel returns the pub/sub channel events of worldID are published on.
func Channel(prefix, worldID string) string {
	return prefix + ":" + worldID
}

// DecodeEvent parses a published event.
func DecodeEvent(payload string) (Event, error) {
	var event Event
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return event, fmt.Errorf("decode event: %w", err)
	}
	return event, nil
}
