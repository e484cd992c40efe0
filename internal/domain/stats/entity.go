package stats

import "time"

type PageTotals struct {
	Pages          int
	Renders        int
	LastRenderedAt *time.Time
}

type ItemRenderStat struct {
	ItemID      int64
	RenderCount int
	RenderedAt  time.Time
}
