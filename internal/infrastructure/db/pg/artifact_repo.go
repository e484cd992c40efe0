package pg

import (
	"context"
	"database/sql"
	"errors"

	"pagesync/internal/domain"
	"pagesync/internal/domain/page"
)

type ArtifactRepository struct {
	db *sql.DB
}

func NewArtifactRepository(db *sql.DB) *ArtifactRepository {
	return &ArtifactRepository{db: db}
}

func (r *ArtifactRepository) Save(ctx context.Context, a page.Artifact) (page.Artifact, error) {
	var res page.Artifact
	err := conn(ctx, r.db).QueryRowContext(ctx,
		`INSERT INTO page_artifacts (item_id, checksum, size, render_count, rendered_at)
		 VALUES ($1, $2, $3, 1, $4)
		 ON CONFLICT (item_id) DO UPDATE
		   SET checksum = EXCLUDED.checksum,
		       size = EXCLUDED.size,
		       render_count = page_artifacts.render_count + 1,
		       rendered_at = EXCLUDED.rendered_at
		 RETURNING item_id, checksum, size, render_count, rendered_at`,
		a.ItemID, a.Checksum, a.Size, a.RenderedAt,
	).Scan(&res.ItemID, &res.Checksum, &res.Size, &res.RenderCount, &res.RenderedAt)
	if err != nil {
		return page.Artifact{}, err
	}
	return res, nil
}

func (r *ArtifactRepository) Delete(ctx context.Context, itemID int64) error {
	_, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM page_artifacts WHERE item_id = $1`, itemID)
	return err
}

func (r *ArtifactRepository) Get(ctx context.Context, itemID int64) (page.Artifact, error) {
	var a page.Artifact
	err := conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT item_id, checksum, size, render_count, rendered_at
		   FROM page_artifacts
		  WHERE item_id = $1`,
		itemID,
	).Scan(&a.ItemID, &a.Checksum, &a.Size, &a.RenderCount, &a.RenderedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return page.Artifact{}, domain.NotFound("page not found")
	}
	if err != nil {
		return page.Artifact{}, err
	}
	return a, nil
}
