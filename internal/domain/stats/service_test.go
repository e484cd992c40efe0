package stats_test

import (
	"context"
	"testing"

	"pagesync/internal/domain/stats"
)

type repoFake struct {
	totals    stats.PageTotals
	items     []stats.ItemRenderStat
	lastLimit int
}

func (r *repoFake) GetPageTotals(ctx context.Context) (stats.PageTotals, error) {
	return r.totals, nil
}

func (r *repoFake) GetItemRenderStats(ctx context.Context, limit int) ([]stats.ItemRenderStat, error) {
	r.lastLimit = limit
	return append([]stats.ItemRenderStat(nil), r.items...), nil
}

func TestStatsService_PassThrough(t *testing.T) {
	r := &repoFake{
		totals: stats.PageTotals{Pages: 2, Renders: 5},
		items: []stats.ItemRenderStat{
			{ItemID: 42, RenderCount: 4},
			{ItemID: 7, RenderCount: 1},
		},
	}
	svc := stats.NewService(r)

	tot, err := svc.GetTotals(context.Background())
	if err != nil || tot.Pages != 2 || tot.Renders != 5 {
		t.Fatalf("unexpected totals: %+v %v", tot, err)
	}

	items, err := svc.GetTopRendered(context.Background(), 10)
	if err != nil || len(items) != 2 || items[0].ItemID != 42 {
		t.Fatalf("unexpected item stats: %v %v", items, err)
	}
	if r.lastLimit != 10 {
		t.Fatalf("expected limit 10, got %d", r.lastLimit)
	}
}

func TestStatsService_ClampsLimit(t *testing.T) {
	r := &repoFake{}
	svc := stats.NewService(r)

	for _, limit := range []int{0, -3, 1000} {
		if _, err := svc.GetTopRendered(context.Background(), limit); err != nil {
			t.Fatalf("GetTopRendered(%d): %v", limit, err)
		}
		if r.lastLimit != 100 {
			t.Fatalf("limit %d: expected clamp to 100, got %d", limit, r.lastLimit)
		}
	}
}
