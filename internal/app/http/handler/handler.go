package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pagesync/internal/domain/page"
	"pagesync/internal/domain/stats"
	"pagesync/internal/infrastructure/broker"
)

type Handler struct {
	PageSvc   page.Service
	StatsSvc  stats.Service
	Publisher broker.Publisher
	Log       *zap.Logger
}

func New(
	pageSvc page.Service,
	statsSvc stats.Service,
	publisher broker.Publisher,
	log *zap.Logger,
) *Handler {
	return &Handler{
		PageSvc:   pageSvc,
		StatsSvc:  statsSvc,
		Publisher: publisher,
		Log:       log,
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
