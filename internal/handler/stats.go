package handler

import (
	"context"
	"log/slog"
	"net/http"
	"runtime"
	"time"

	"github.com/vitorvieirah/projeto-importacao-irisk/pkg/response"
)

// StatsProvider returns storage statistics.
type StatsProvider interface {
	Stats(ctx context.Context) (map[string]interface{}, error)
}

// StatsHandler serves operational statistics.
type StatsHandler struct {
	stats       StatsProvider
	dbType      string // sqlite, postgres or mysql
	rateLimiter string // redis or memory
	startTime   time.Time
	logger      *slog.Logger
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(stats StatsProvider, dbType, rateLimiter string, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{
		stats:       stats,
		dbType:      dbType,
		rateLimiter: rateLimiter,
		startTime:   time.Now(),
		logger:      logger.With("handler", "stats"),
	}
}

// GetStats handles GET /api/v1/stats
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats := make(map[string]interface{})

	// System info
	stats["uptime_seconds"] = int64(time.Since(h.startTime).Seconds())
	stats["uptime_human"] = time.Since(h.startTime).Round(time.Second).String()
	stats["server_time"] = time.Now().Format(time.RFC3339)
	stats["db_type"] = h.dbType
	stats["rate_limiter"] = h.rateLimiter

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	stats["memory"] = map[string]interface{}{
		"alloc_mb":      float64(memStats.Alloc) / 1024 / 1024,
		"sys_mb":        float64(memStats.Sys) / 1024 / 1024,
		"heap_inuse_mb": float64(memStats.HeapInuse) / 1024 / 1024,
		"num_gc":        memStats.NumGC,
		"goroutines":    runtime.NumGoroutine(),
	}

	storageStats, err := h.stats.Stats(r.Context())
	if err != nil {
		h.logger.WarnContext(r.Context(), "storage stats unavailable", "error", err)
		stats["storage"] = map[string]interface{}{"status": "error"}
	} else {
		storageStats["status"] = "connected"
		stats["storage"] = storageStats
	}

	stats["runtime"] = map[string]interface{}{
		"go_version": runtime.Version(),
		"os":         runtime.GOOS,
		"arch":       runtime.GOARCH,
		"cpus":       runtime.NumCPU(),
	}

	response.OK(w, stats)
}
