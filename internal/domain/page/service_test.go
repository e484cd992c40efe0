package page_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"pagesync/internal/domain"
	"pagesync/internal/domain/item"
	"pagesync/internal/domain/page"
)

type uowStub struct{}

func (uowStub) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// failingCommitUow runs the work and then reports a failed commit.
type failingCommitUow struct{ err error }

func (u failingCommitUow) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := fn(ctx); err != nil {
		return err
	}
	return u.err
}

type eventBusFake struct{ events []domain.Event }

func (e *eventBusFake) Publish(ctx context.Context, ev domain.Event) { e.events = append(e.events, ev) }

type itemRepoFake struct{ byID map[int64]item.Item }

func (r *itemRepoFake) GetByID(ctx context.Context, id int64) (item.Item, error) {
	it, ok := r.byID[id]
	if !ok {
		return item.Item{}, domain.NotFound("item not found")
	}
	return it, nil
}

type artifactRepoFake struct{ byID map[int64]page.Artifact }

func (r *artifactRepoFake) Save(ctx context.Context, a page.Artifact) (page.Artifact, error) {
	a.RenderCount = r.byID[a.ItemID].RenderCount + 1
	r.byID[a.ItemID] = a
	return a, nil
}

func (r *artifactRepoFake) Delete(ctx context.Context, itemID int64) error {
	delete(r.byID, itemID)
	return nil
}

func (r *artifactRepoFake) Get(ctx context.Context, itemID int64) (page.Artifact, error) {
	a, ok := r.byID[itemID]
	if !ok {
		return page.Artifact{}, domain.NotFound("page not found")
	}
	return a, nil
}

type memStore struct{ pages map[int64][]byte }

func (s *memStore) Put(ctx context.Context, itemID int64, content []byte) error {
	s.pages[itemID] = append([]byte(nil), content...)
	return nil
}

func (s *memStore) Delete(ctx context.Context, itemID int64) error {
	delete(s.pages, itemID)
	return nil
}

func (s *memStore) Get(ctx context.Context, itemID int64) ([]byte, error) {
	p, ok := s.pages[itemID]
	if !ok {
		return nil, domain.NotFound("page not found")
	}
	return p, nil
}

type titleTemplate struct{}

func (titleTemplate) Render(w io.Writer, it item.Item) error {
	_, err := fmt.Fprintf(w, "<h1>%s</h1><p>%s</p>", it.Title, it.Price())
	return err
}

type fixture struct {
	svc       page.Service
	items     *itemRepoFake
	artifacts *artifactRepoFake
	store     *memStore
	events    *eventBusFake
}

func newFixture() *fixture {
	f := &fixture{
		items:     &itemRepoFake{byID: map[int64]item.Item{42: {ID: 42, Title: "Phone", PriceCents: 19999}}},
		artifacts: &artifactRepoFake{byID: map[int64]page.Artifact{}},
		store:     &memStore{pages: map[int64][]byte{}},
		events:    &eventBusFake{},
	}
	f.svc = page.NewService(uowStub{}, f.items, f.artifacts, f.store, titleTemplate{}, f.events)
	return f
}

func TestRegenerate_WritesArtifact(t *testing.T) {
	f := newFixture()

	if err := f.svc.Regenerate(context.Background(), 42); err != nil {
		t.Fatalf("Regenerate: %v", err)
	}

	got := string(f.store.pages[42])
	if got != "<h1>Phone</h1><p>199.99</p>" {
		t.Fatalf("unexpected page content %q", got)
	}
	a := f.artifacts.byID[42]
	if a.RenderCount != 1 || a.Size != len(got) || len(a.Checksum) != 64 {
		t.Fatalf("unexpected artifact %+v", a)
	}
	if len(f.events.events) != 1 || f.events.events[0].Type != domain.EventPageRegenerated {
		t.Fatalf("expected page.regenerated event, got %+v", f.events.events)
	}
}

func TestRegenerate_TwiceIsIdentical(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	if err := f.svc.Regenerate(ctx, 42); err != nil {
		t.Fatalf("first Regenerate: %v", err)
	}
	first := append([]byte(nil), f.store.pages[42]...)
	firstSum := f.artifacts.byID[42].Checksum

	if err := f.svc.Regenerate(ctx, 42); err != nil {
		t.Fatalf("second Regenerate: %v", err)
	}
	if !bytes.Equal(first, f.store.pages[42]) {
		t.Fatalf("content changed between identical regenerations")
	}
	if f.artifacts.byID[42].Checksum != firstSum {
		t.Fatalf("checksum changed between identical regenerations")
	}
	if f.artifacts.byID[42].RenderCount != 2 {
		t.Fatalf("expected render count 2, got %d", f.artifacts.byID[42].RenderCount)
	}
}

func TestRegenerate_MissingItemIsPermanent(t *testing.T) {
	f := newFixture()

	err := f.svc.Regenerate(context.Background(), 404)
	if domain.CodeOf(err) != domain.ErrorCodeNotFound || !domain.IsPermanent(err) {
		t.Fatalf("expected permanent NOT_FOUND, got %v", err)
	}
	if _, ok := f.store.pages[404]; ok {
		t.Fatalf("no page should be written for a missing item")
	}
}

func TestRemove_MissingArtifactIsNotAnError(t *testing.T) {
	f := newFixture()

	if err := f.svc.Remove(context.Background(), 42); err != nil {
		t.Fatalf("Remove on absent artifact: %v", err)
	}
	if len(f.events.events) != 1 || f.events.events[0].Type != domain.EventPageRemoved {
		t.Fatalf("expected page.removed event, got %+v", f.events.events)
	}
}

func TestScenario_UpsertThenDelete(t *testing.T) {
	f := newFixture()
	c := page.NewConsumer(f.svc)
	ctx := context.Background()

	if err := c.OnUpsert(ctx, ptr(42)); err != nil {
		t.Fatalf("OnUpsert: %v", err)
	}
	if err := c.OnDelete(ctx, ptr(42)); err != nil {
		t.Fatalf("OnDelete: %v", err)
	}

	_, err := f.svc.Get(ctx, 42)
	if domain.CodeOf(err) != domain.ErrorCodeNotFound {
		t.Fatalf("expected artifact to be absent, got %v", err)
	}
	if _, ok := f.store.pages[42]; ok {
		t.Fatalf("store still holds page 42")
	}
}

func TestScenario_DeleteThenUpsert(t *testing.T) {
	f := newFixture()
	c := page.NewConsumer(f.svc)
	ctx := context.Background()

	if err := c.OnDelete(ctx, ptr(42)); err != nil {
		t.Fatalf("OnDelete: %v", err)
	}
	if err := c.OnUpsert(ctx, ptr(42)); err != nil {
		t.Fatalf("OnUpsert: %v", err)
	}

	p, err := f.svc.Get(ctx, 42)
	if err != nil {
		t.Fatalf("expected artifact to be present, got %v", err)
	}
	if p.ItemID != 42 || len(p.Content) == 0 {
		t.Fatalf("unexpected page %+v", p)
	}
}

func TestGet_PropagatesStoreError(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.artifacts.byID[5] = page.Artifact{ItemID: 5}

	_, err := f.svc.Get(ctx, 5)
	var de *domain.DomainError
	if !errors.As(err, &de) || de.Code != domain.ErrorCodeNotFound {
		t.Fatalf("expected NOT_FOUND from store, got %v", err)
	}
}

func TestFailedCommitPublishesNoEvents(t *testing.T) {
	f := newFixture()
	commitErr := errors.New("commit failed")
	svc := page.NewService(failingCommitUow{err: commitErr}, f.items, f.artifacts, f.store, titleTemplate{}, f.events)
	ctx := context.Background()

	if err := svc.Regenerate(ctx, 42); !errors.Is(err, commitErr) {
		t.Fatalf("expected commit error from Regenerate, got %v", err)
	}
	if err := svc.Remove(ctx, 42); !errors.Is(err, commitErr) {
		t.Fatalf("expected commit error from Remove, got %v", err)
	}
	if len(f.events.events) != 0 {
		t.Fatalf("expected no events for rolled back work, got %+v", f.events.events)
	}
}
