package httpapi

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"pagesync/internal/app/http/handler"
	"pagesync/internal/app/http/middleware"
)

func NewRouter(h *handler.Handler, gatherer prometheus.Gatherer, log *zap.Logger) *gin.Engine {
	r := gin.New()

	r.Use(
		middleware.ZapLogger(log),
		middleware.ZapRecovery(log),
	)

	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	r.GET("/pages/:item_id", h.PageGet)
	r.GET("/pages/:item_id/html", h.PageHTML)
	r.POST("/pages/:item_id/resync", h.PageResync)
	r.DELETE("/pages/:item_id", h.PageDelete)

	r.GET("/stats/pages", h.StatsPages)

	return r
}
