package pg

import (
	"context"
	"database/sql"

	"pagesync/internal/domain/stats"
)

type StatsRepository struct {
	db *sql.DB
}

func NewStatsRepository(db *sql.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

func (r *StatsRepository) GetPageTotals(ctx context.Context) (stats.PageTotals, error) {
	const q = `
	SELECT COUNT(*), COALESCE(SUM(render_count), 0), MAX(rendered_at)
	FROM page_artifacts;`

	var (
		res  stats.PageTotals
		last sql.NullTime
	)
	if err := conn(ctx, r.db).QueryRowContext(ctx, q).Scan(&res.Pages, &res.Renders, &last); err != nil {
		return stats.PageTotals{}, err
	}
	if last.Valid {
		t := last.Time
		res.LastRenderedAt = &t
	}
	return res, nil
}

func (r *StatsRepository) GetItemRenderStats(ctx context.Context, limit int) ([]stats.ItemRenderStat, error) {
	const q = `
	SELECT item_id, render_count, rendered_at
	FROM page_artifacts
	ORDER BY render_count DESC, item_id
	LIMIT $1;`

	rows, err := conn(ctx, r.db).QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []stats.ItemRenderStat
	for rows.Next() {
		var s stats.ItemRenderStat
		if err := rows.Scan(&s.ItemID, &s.RenderCount, &s.RenderedAt); err != nil {
			return nil, err
		}
		res = append(res, s)
	}

	return res, rows.Err()
}
