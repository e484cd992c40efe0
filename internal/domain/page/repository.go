package page

import (
	"context"
	"io"

	"pagesync/internal/domain/item"
)

// Repository keeps artifact metadata. Save upserts and bumps RenderCount; Delete of a
// missing record is not an error.
type Repository interface {
	Save(ctx context.Context, a Artifact) (Artifact, error)
	Delete(ctx context.Context, itemID int64) error
	Get(ctx context.Context, itemID int64) (Artifact, error)
}

// Store holds rendered page content keyed by item id. Put overwrites; Delete of a
// missing page is not an error; Get returns a NOT_FOUND domain error when absent.
type Store interface {
	Put(ctx context.Context, itemID int64, content []byte) error
	Delete(ctx context.Context, itemID int64) error
	Get(ctx context.Context, itemID int64) ([]byte, error)
}

type Template interface {
	Render(w io.Writer, it item.Item) error
}
