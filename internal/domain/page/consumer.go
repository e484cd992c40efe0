package page

import "context"

// Consumer turns item change notifications into artifact regeneration or removal.
// A nil id means the message carried nothing usable and is ignored.
type Consumer struct {
	renderer Renderer
}

func NewConsumer(r Renderer) *Consumer {
	return &Consumer{renderer: r}
}

func (c *Consumer) OnUpsert(ctx context.Context, itemID *int64) error {
	if itemID == nil {
		return nil
	}
	return c.renderer.Regenerate(ctx, *itemID)
}

func (c *Consumer) OnDelete(ctx context.Context, itemID *int64) error {
	if itemID == nil {
		return nil
	}
	return c.renderer.Remove(ctx, *itemID)
}
