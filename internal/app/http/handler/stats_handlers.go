package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"pagesync/internal/app/dto"
)

func (h *Handler) StatsPages(c *gin.Context) {
	scope := strings.ToLower(c.DefaultQuery("scope", "all"))

	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			h.badRequest(c, "limit must be a positive integer")
			return
		}
		limit = n
	}

	resp := dto.StatsResponse{}
	ctx := c.Request.Context()

	withTotals := scope == "all" || scope == "" || scope == "totals"
	withItems := scope == "all" || scope == "" || scope == "items"
	if !withTotals && !withItems {
		h.badRequest(c, "invalid scope, must be one of: all, totals, items")
		return
	}

	if withTotals {
		t, err := h.StatsSvc.GetTotals(ctx)
		if err != nil {
			h.writeError(c, err)
			return
		}
		resp.Totals = &dto.PageTotals{
			Pages:          t.Pages,
			Renders:        t.Renders,
			LastRenderedAt: t.LastRenderedAt,
		}
	}

	if withItems {
		items, err := h.StatsSvc.GetTopRendered(ctx, limit)
		if err != nil {
			h.writeError(c, err)
			return
		}
		resp.PerItem = make([]dto.ItemRenderStat, 0, len(items))
		for _, s := range items {
			resp.PerItem = append(resp.PerItem, dto.ItemRenderStat{
				ItemID:      s.ItemID,
				RenderCount: s.RenderCount,
				RenderedAt:  s.RenderedAt,
			})
		}
	}

	c.JSON(http.StatusOK, resp)
}
