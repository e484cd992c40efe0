package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pagesync/internal/app/dto"
	"pagesync/internal/app/listener"
	"pagesync/internal/domain"
	"pagesync/internal/infrastructure/broker"
)

func (h *Handler) itemID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("item_id"), 10, 64)
	if err != nil || id <= 0 {
		h.badRequest(c, "item_id must be a positive integer")
		return 0, false
	}
	return id, true
}

func (h *Handler) PageGet(c *gin.Context) {
	id, ok := h.itemID(c)
	if !ok {
		return
	}

	p, err := h.PageSvc.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.Page{
		ItemID:      p.ItemID,
		Checksum:    p.Checksum,
		Size:        p.Size,
		RenderCount: p.RenderCount,
		RenderedAt:  p.RenderedAt,
	})
}

func (h *Handler) PageHTML(c *gin.Context) {
	id, ok := h.itemID(c)
	if !ok {
		return
	}

	p, err := h.PageSvc.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.Header("ETag", `"`+p.Checksum+`"`)
	c.Data(http.StatusOK, "text/html; charset=utf-8", p.Content)
}

// PageResync queues a regeneration through the broker so it goes through the
// same consumer path as catalog updates.
func (h *Handler) PageResync(c *gin.Context) {
	h.publish(c, listener.RoutingKeyUpdate)
}

func (h *Handler) PageDelete(c *gin.Context) {
	h.publish(c, listener.RoutingKeyDelete)
}

func (h *Handler) publish(c *gin.Context, routingKey string) {
	id, ok := h.itemID(c)
	if !ok {
		return
	}

	if err := h.Publisher.Publish(c.Request.Context(), listener.Exchange, routingKey, broker.EncodeItemID(id)); err != nil {
		h.Log.Warn("publish failed", zap.Int64("item_id", id), zap.String("routing_key", routingKey), zap.Error(err))
		h.writeError(c, domain.Unavailable("broker unavailable", err))
		return
	}

	c.JSON(http.StatusAccepted, dto.PageCommand{
		ItemID:     id,
		RoutingKey: routingKey,
		Status:     "queued",
	})
}
