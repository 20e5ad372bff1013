package api

import (
	"errors"
	"net/http"

	"github.com/erazemk/labshaker/internal/blob"
	"github.com/erazemk/labshaker/internal/booking"
	"github.com/erazemk/labshaker/internal/imaging"
	"github.com/erazemk/labshaker/internal/model"
)

// DevicesHandler handles device endpoints.
type DevicesHandler struct {
	Service *booking.Service
	Blobs   blob.Store
}

type deviceRequest struct {
	Name           string `json:"name"`
	Brand          string `json:"brand"`
	Model          string `json:"model"`
	CapacityFlasks int    `json:"capacity_flasks"`
	Active         *bool  `json:"active"`
	Notes          string `json:"notes"`
}

func (req deviceRequest) apply(d *model.Device) {
	d.Name = req.Name
	d.Brand = req.Brand
	d.Model = req.Model
	d.CapacityFlasks = req.CapacityFlasks
	d.Notes = req.Notes
	if req.Active != nil {
		d.Active = *req.Active
	}
}

// List handles GET /api/devices.
func (h *DevicesHandler) List(w http.ResponseWriter, r *http.Request) {
	devices, err := h.Service.Devices(r.Context())
	if err != nil {
		serviceError(w, err, "listing devices")
		return
	}
	if devices == nil {
		devices = []model.Device{}
	}
	jsonResponse(w, http.StatusOK, devices)
}

// Create handles POST /api/devices. New devices are active unless the body
// says otherwise.
func (h *DevicesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req deviceRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	d := model.Device{Active: true}
	req.apply(&d)

	saved, err := h.Service.SaveDevice(r.Context(), d)
	if err != nil {
		serviceError(w, err, "creating device")
		return
	}
	jsonResponse(w, http.StatusCreated, saved)
}

// Get handles GET /api/devices/{id}.
func (h *DevicesHandler) Get(w http.ResponseWriter, r *http.Request) {
	d, err := h.Service.Device(r.Context(), r.PathValue("id"))
	if err != nil {
		serviceError(w, err, "getting device")
		return
	}
	jsonResponse(w, http.StatusOK, d)
}

// Update handles PUT /api/devices/{id}.
func (h *DevicesHandler) Update(w http.ResponseWriter, r *http.Request) {
	d, err := h.Service.Device(r.Context(), r.PathValue("id"))
	if err != nil {
		serviceError(w, err, "getting device")
		return
	}

	var req deviceRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.apply(&d)

	saved, err := h.Service.SaveDevice(r.Context(), d)
	if err != nil {
		serviceError(w, err, "updating device")
		return
	}
	jsonResponse(w, http.StatusOK, saved)
}

// Delete handles DELETE /api/devices/{id}. The device photo stays in the
// blob store: slips of the device's finished reservations still print it.
func (h *DevicesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.Service.DeleteDevice(r.Context(), r.PathValue("id"))
	if err != nil {
		serviceError(w, err, "deleting device")
		return
	}
	if !deleted {
		jsonError(w, http.StatusConflict, "device has scheduled reservations and cannot be deleted")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "device deleted"})
}

// UploadPhoto handles PUT /api/devices/{id}/photo with a multipart "photo" field.
func (h *DevicesHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := h.Service.Device(r.Context(), id); err != nil {
		serviceError(w, err, "getting device")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUpload+1<<20)
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}
	file, _, err := r.FormFile("photo")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "photo file required")
		return
	}
	defer file.Close()

	photo, err := imaging.Photo(file)
	if errors.Is(err, imaging.ErrTooLarge) {
		jsonError(w, http.StatusRequestEntityTooLarge, err.Error())
		return
	}
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.Blobs.Put(r.Context(), blob.PhotoKey(id), photo, imaging.MIME); err != nil {
		serviceError(w, err, "storing photo")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "photo uploaded"})
}

// GetPhoto handles GET /api/devices/{id}/photo.
func (h *DevicesHandler) GetPhoto(w http.ResponseWriter, r *http.Request) {
	obj, err := h.Blobs.Get(r.Context(), blob.PhotoKey(r.PathValue("id")))
	if errors.Is(err, blob.ErrNotFound) {
		jsonError(w, http.StatusNotFound, "no photo")
		return
	}
	if err != nil {
		serviceError(w, err, "reading photo")
		return
	}

	w.Header().Set("Content-Type", obj.ContentType)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.Write(obj.Data)
}
