package stats

import "context"

type Repository interface {
	GetPageTotals(ctx context.Context) (PageTotals, error)
	GetItemRenderStats(ctx context.Context, limit int) ([]ItemRenderStat, error)
}
