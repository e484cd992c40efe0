package dto

import "time"

type ItemRenderStat struct {
	ItemID      int64     `json:"item_id"`
	RenderCount int       `json:"render_count"`
	RenderedAt  time.Time `json:"rendered_at"`
}

type PageTotals struct {
	Pages          int        `json:"pages"`
	Renders        int        `json:"renders"`
	LastRenderedAt *time.Time `json:"last_rendered_at,omitempty"`
}

type StatsResponse struct {
	Totals  *PageTotals      `json:"totals,omitempty"`
	PerItem []ItemRenderStat `json:"per_item,omitempty"`
}
