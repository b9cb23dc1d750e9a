package handler

import (
	"errors"
	"net/http"
	"strconv"

	"gw2vault-api/internal/gw2"
	"gw2vault-api/internal/middleware"
	"gw2vault-api/internal/service"
	"gw2vault-api/pkg/apierror"
	"gw2vault-api/pkg/response"

	"github.com/go-chi/chi/v5"
)

// SnapshotHandler serves the caller's account snapshot.
type SnapshotHandler struct {
	snapshots *service.SnapshotService
}

// NewSnapshotHandler creates a new snapshot handler.
func NewSnapshotHandler(snapshots *service.SnapshotService) *SnapshotHandler {
	return &SnapshotHandler{snapshots: snapshots}
}

// Get handles POST /api/v1/snapshot. With ?refresh=true a new collection is
// forced; otherwise the stored snapshot is returned when there is one.
func (h *SnapshotHandler) Get(w http.ResponseWriter, r *http.Request) {
	apiKey := middleware.GetAPIKey(r.Context())

	refresh, _ := strconv.ParseBool(r.URL.Query().Get("refresh"))

	var err error
	var data interface{}
	if refresh {
		data, err = h.snapshots.Refresh(r.Context(), apiKey)
	} else {
		data, err = h.snapshots.Get(r.Context(), apiKey)
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	response.OK(w, data)
}

// Meta handles GET /api/v1/snapshot/meta
func (h *SnapshotHandler) Meta(w http.ResponseWriter, r *http.Request) {
	meta, err := h.snapshots.Meta(r.Context(), middleware.GetAPIKey(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.OK(w, meta)
}

// Forget handles DELETE /api/v1/snapshot
func (h *SnapshotHandler) Forget(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.snapshots.Forget(r.Context(), middleware.GetAPIKey(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !deleted {
		response.Error(w, apierror.NotFound("No snapshot stored for this key"))
		return
	}
	response.NoContent(w)
}

// Locations handles POST /api/v1/snapshot/locations/{item_type}. Materials are
// included unless ?materials=false.
func (h *SnapshotHandler) Locations(w http.ResponseWriter, r *http.Request) {
	itemType := gw2.ItemType(chi.URLParam(r, "item_type"))
	if !itemType.IsKnown() {
		response.Error(w, apierror.BadRequest("unknown item type: "+string(itemType)))
		return
	}

	includeMaterials := true
	if v := r.URL.Query().Get("materials"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			response.Error(w, apierror.BadRequest("materials must be true or false"))
			return
		}
		includeMaterials = b
	}

	locations, err := h.snapshots.Locations(r.Context(), middleware.GetAPIKey(r.Context()), itemType, includeMaterials)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.OK(w, locations)
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrMissingKey):
		response.Error(w, apierror.Unauthorized(err.Error()))
	case errors.Is(err, service.ErrSnapshotNotFound):
		response.Error(w, apierror.NotFound("No snapshot stored for this key"))
	default:
		response.Error(w, err)
	}
}
