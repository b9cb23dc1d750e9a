package handler

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"gw2vault-api/internal/service"
	"gw2vault-api/pkg/apierror"
	"gw2vault-api/pkg/response"
)

// AdminHandler handles admin-related HTTP requests.
type AdminHandler struct {
	snapshots *service.SnapshotService
	cleanup   *service.CleanupScheduler
	dbType    string
	cacheType string
	startTime time.Time
}

// NewAdminHandler creates a new admin handler. cleanup may be nil.
func NewAdminHandler(snapshots *service.SnapshotService, cleanup *service.CleanupScheduler, dbType, cacheType string) *AdminHandler {
	return &AdminHandler{
		snapshots: snapshots,
		cleanup:   cleanup,
		dbType:    dbType,
		cacheType: cacheType,
		startTime: time.Now(),
	}
}

// GetStats handles GET /api/v1/admin/stats
func (h *AdminHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats := make(map[string]interface{})

	stats["uptime_seconds"] = int64(time.Since(h.startTime).Seconds())
	stats["uptime_human"] = time.Since(h.startTime).Round(time.Second).String()
	stats["server_time"] = time.Now().Format(time.RFC3339)
	stats["db_type"] = h.dbType
	stats["cache_type"] = h.cacheType

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	stats["memory"] = map[string]interface{}{
		"alloc_mb":      float64(memStats.Alloc) / 1024 / 1024,
		"sys_mb":        float64(memStats.Sys) / 1024 / 1024,
		"heap_inuse_mb": float64(memStats.HeapInuse) / 1024 / 1024,
		"num_gc":        memStats.NumGC,
		"goroutines":    runtime.NumGoroutine(),
	}

	storeStats, err := h.snapshots.Stats(r.Context())
	if err == nil {
		storeStats["status"] = "connected"
		stats["store"] = storeStats
	} else {
		stats["store"] = map[string]interface{}{
			"status": "error",
			"error":  err.Error(),
		}
	}

	stats["runtime"] = map[string]interface{}{
		"go_version": runtime.Version(),
		"os":         runtime.GOOS,
		"arch":       runtime.GOARCH,
		"cpus":       runtime.NumCPU(),
	}

	response.OK(w, stats)
}

// ListRuns handles GET /api/v1/admin/runs?page=1&limit=50
func (h *AdminHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 50)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 500 {
		response.Error(w, apierror.BadRequest("limit must be between 1 and 500"))
		return
	}

	runs, total, err := h.snapshots.ListRuns(r.Context(), limit, (page-1)*limit)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.JSONWithMeta(w, http.StatusOK, runs, page, limit, total)
}

// Cleanup handles POST /api/v1/admin/cleanup
func (h *AdminHandler) Cleanup(w http.ResponseWriter, r *http.Request) {
	if h.cleanup == nil {
		response.Error(w, apierror.ServiceUnavailable("Cleanup is disabled"))
		return
	}

	deleted, err := h.cleanup.RunNow(r.Context())
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, map[string]int64{"deleted": deleted})
}

func queryInt(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
