package domain

import "context"

type Event struct {
	Type    string
	Payload map[string]any
}

const (
	EventPageRegenerated = "page.regenerated"
	EventPageRemoved     = "page.removed"
)

type EventBus interface {
	Publish(ctx context.Context, e Event)
}
