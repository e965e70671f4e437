package api

import (
	"ParkLedger/internal/metrics"

	"github.com/gin-gonic/gin"
)

// NewRouter wires the desk routes. m may be nil, which leaves out /metrics.
func NewRouter(h *Handler, m *metrics.Metrics) *gin.Engine {
	r := gin.New()
	r.Use(Recovery(), Logger())
	if m != nil {
		r.Use(Metrics(m))
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}

	r.GET("/healthz", h.Health)

	v := r.Group("/api")
	{
		modules := v.Group("/modules/:kind")
		modules.GET("/working", h.GetWorking)
		modules.PUT("/working", h.PutWorking)
		modules.POST("/finalize", h.Finalize)

		v.GET("/deposit", h.Deposit)
		v.GET("/status", h.Status)
		v.GET("/history", h.History)
		v.GET("/history/:date", h.Day)
		v.GET("/history/:date/journal", h.Journal)
		v.GET("/export.xlsx", h.Export)
	}
	return r
}
