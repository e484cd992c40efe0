package stats

import "context"

const defaultLimit = 100

type Service interface {
	GetTotals(ctx context.Context) (PageTotals, error)
	GetTopRendered(ctx context.Context, limit int) ([]ItemRenderStat, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) GetTotals(ctx context.Context) (PageTotals, error) {
	return s.repo.GetPageTotals(ctx)
}

func (s *service) GetTopRendered(ctx context.Context, limit int) ([]ItemRenderStat, error) {
	if limit <= 0 || limit > defaultLimit {
		limit = defaultLimit
	}
	return s.repo.GetItemRenderStats(ctx, limit)
}
