package page_test

import (
	"context"
	"errors"
	"testing"

	"pagesync/internal/domain/page"
)

type rendererSpy struct {
	regenerated []int64
	removed     []int64
	err         error
}

func (r *rendererSpy) Regenerate(ctx context.Context, itemID int64) error {
	r.regenerated = append(r.regenerated, itemID)
	return r.err
}

func (r *rendererSpy) Remove(ctx context.Context, itemID int64) error {
	r.removed = append(r.removed, itemID)
	return r.err
}

func ptr(v int64) *int64 { return &v }

func TestConsumer_NilIDIsIgnored(t *testing.T) {
	spy := &rendererSpy{}
	c := page.NewConsumer(spy)

	if err := c.OnUpsert(context.Background(), nil); err != nil {
		t.Fatalf("OnUpsert(nil): %v", err)
	}
	if err := c.OnDelete(context.Background(), nil); err != nil {
		t.Fatalf("OnDelete(nil): %v", err)
	}
	if len(spy.regenerated) != 0 || len(spy.removed) != 0 {
		t.Fatalf("expected no renderer calls, got regenerate=%v remove=%v", spy.regenerated, spy.removed)
	}
}

func TestConsumer_ExactlyOneCallPerEvent(t *testing.T) {
	spy := &rendererSpy{}
	c := page.NewConsumer(spy)

	if err := c.OnUpsert(context.Background(), ptr(42)); err != nil {
		t.Fatalf("OnUpsert: %v", err)
	}
	if len(spy.regenerated) != 1 || spy.regenerated[0] != 42 || len(spy.removed) != 0 {
		t.Fatalf("unexpected calls after upsert: regenerate=%v remove=%v", spy.regenerated, spy.removed)
	}

	if err := c.OnDelete(context.Background(), ptr(7)); err != nil {
		t.Fatalf("OnDelete: %v", err)
	}
	if len(spy.removed) != 1 || spy.removed[0] != 7 || len(spy.regenerated) != 1 {
		t.Fatalf("unexpected calls after delete: regenerate=%v remove=%v", spy.regenerated, spy.removed)
	}
}

func TestConsumer_PropagatesRendererError(t *testing.T) {
	boom := errors.New("disk full")
	spy := &rendererSpy{err: boom}
	c := page.NewConsumer(spy)

	if err := c.OnUpsert(context.Background(), ptr(1)); !errors.Is(err, boom) {
		t.Fatalf("expected renderer error from OnUpsert, got %v", err)
	}
	if err := c.OnDelete(context.Background(), ptr(1)); !errors.Is(err, boom) {
		t.Fatalf("expected renderer error from OnDelete, got %v", err)
	}
}
