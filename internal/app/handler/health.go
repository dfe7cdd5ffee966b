package handler

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"go.uber.org/zap"

	"github.com/atinyakov/linkshort/internal/models"
)

// Version is reported by the health endpoint. It is overridden at link time.
var Version = "dev"

type HealthHandler struct {
	started time.Time
	now     func() time.Time
	logger  *zap.Logger
}

func NewHealth(started time.Time, l *zap.Logger) *HealthHandler {
	return &HealthHandler{
		started: started,
		now:     time.Now,
		logger:  l,
	}
}

// Healthz handles GET /getHealthz. It never touches storage.
func (h *HealthHandler) Healthz(res http.ResponseWriter, _ *http.Request) {
	now := h.now()
	uptime := now.Sub(h.started).Seconds()

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	writeJSON(res, h.logger, http.StatusOK, models.Health{
		Status:  "healthy",
		Version: Version,
		Uptime: models.Uptime{
			Seconds: uptime,
			Minutes: fmt.Sprintf("%.2f", uptime/60),
			Hours:   fmt.Sprintf("%.2f", uptime/3600),
		},
		System: models.System{
			Platform:     runtime.GOOS,
			Architecture: runtime.GOARCH,
			CPUCores:     runtime.NumCPU(),
			Goroutines:   runtime.NumGoroutine(),
			Memory: models.Memory{
				Alloc: mem.Alloc,
				Sys:   mem.Sys,
			},
			GoVersion: runtime.Version(),
		},
		Timestamp: now.UTC(),
	})
}
