package page

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"pagesync/internal/domain"
	"pagesync/internal/domain/item"
)

// Renderer is the collaborator the sync consumer drives. Both operations must be safe to repeat.
type Renderer interface {
	Regenerate(ctx context.Context, itemID int64) error
	Remove(ctx context.Context, itemID int64) error
}

type Service interface {
	Renderer
	Get(ctx context.Context, itemID int64) (Page, error)
}

type service struct {
	uow       domain.UnitOfWork
	items     item.Repository
	artifacts Repository
	store     Store
	tmpl      Template
	events    domain.EventBus
	now       func() time.Time
}

func NewService(
	uow domain.UnitOfWork,
	items item.Repository,
	artifacts Repository,
	store Store,
	tmpl Template,
	events domain.EventBus,
) Service {
	return &service{
		uow:       uow,
		items:     items,
		artifacts: artifacts,
		store:     store,
		tmpl:      tmpl,
		events:    events,
		now:       time.Now,
	}
}

func (s *service) Regenerate(ctx context.Context, itemID int64) error {
	var saved Artifact
	err := s.uow.WithinTx(ctx, func(ctx context.Context) error {
		it, err := s.items.GetByID(ctx, itemID)
		if err != nil {
			return err
		}

		var buf bytes.Buffer
		if err := s.tmpl.Render(&buf, it); err != nil {
			return fmt.Errorf("render item %d: %w", itemID, err)
		}
		content := buf.Bytes()

		if err := s.store.Put(ctx, itemID, content); err != nil {
			return fmt.Errorf("store page %d: %w", itemID, err)
		}

		sum := sha256.Sum256(content)
		saved, err = s.artifacts.Save(ctx, Artifact{
			ItemID:     itemID,
			Checksum:   hex.EncodeToString(sum[:]),
			Size:       len(content),
			RenderedAt: s.now().UTC(),
		})
		return err
	})
	if err != nil {
		return err
	}

	s.publish(ctx, domain.Event{
		Type: domain.EventPageRegenerated,
		Payload: map[string]any{
			"item_id":      itemID,
			"checksum":     saved.Checksum,
			"render_count": saved.RenderCount,
		},
	})
	return nil
}

func (s *service) Remove(ctx context.Context, itemID int64) error {
	err := s.uow.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.store.Delete(ctx, itemID); err != nil {
			return fmt.Errorf("delete page %d: %w", itemID, err)
		}
		return s.artifacts.Delete(ctx, itemID)
	})
	if err != nil {
		return err
	}

	s.publish(ctx, domain.Event{
		Type:    domain.EventPageRemoved,
		Payload: map[string]any{"item_id": itemID},
	})
	return nil
}

// publish runs only after the unit of work has committed.
func (s *service) publish(ctx context.Context, e domain.Event) {
	if s.events != nil {
		s.events.Publish(ctx, e)
	}
}

func (s *service) Get(ctx context.Context, itemID int64) (Page, error) {
	a, err := s.artifacts.Get(ctx, itemID)
	if err != nil {
		return Page{}, err
	}
	content, err := s.store.Get(ctx, itemID)
	if err != nil {
		return Page{}, err
	}
	return Page{Artifact: a, Content: content}, nil
}
