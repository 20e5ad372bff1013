package api

import (
	"net/http"
	"time"

	"github.com/erazemk/labshaker/internal/backup"
	"github.com/erazemk/labshaker/internal/blob"
	"github.com/erazemk/labshaker/internal/booking"
)

// AdminHandler handles maintenance endpoints.
type AdminHandler struct {
	Service *booking.Service
	Blobs   blob.Store
	Now     func() time.Time
}

// Backup handles POST /api/admin/backup.
func (h *AdminHandler) Backup(w http.ResponseWriter, r *http.Request) {
	key, err := backup.Write(r.Context(), h.Service.Store(), h.Blobs, h.Now())
	if err != nil {
		serviceError(w, err, "writing backup")
		return
	}
	jsonResponse(w, http.StatusCreated, map[string]string{"key": key})
}

// ListBackups handles GET /api/admin/backups.
func (h *AdminHandler) ListBackups(w http.ResponseWriter, r *http.Request) {
	keys, err := backup.List(r.Context(), h.Blobs)
	if err != nil {
		serviceError(w, err, "listing backups")
		return
	}
	if keys == nil {
		keys = []string{}
	}
	jsonResponse(w, http.StatusOK, keys)
}
