package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/erazemk/labshaker/internal/blob"
	"github.com/erazemk/labshaker/internal/booking"
	"github.com/erazemk/labshaker/internal/imaging"
	"github.com/erazemk/labshaker/internal/model"
	"github.com/erazemk/labshaker/internal/slip"
)

// ReservationsHandler handles reservation endpoints.
type ReservationsHandler struct {
	Service *booking.Service
	Blobs   blob.Store
}

// queryDate parses an optional YYYY-MM-DD query parameter.
func queryDate(r *http.Request, key string) (model.Date, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return model.Date{}, nil
	}
	return model.ParseDate(v)
}

// List handles GET /api/reservations.
func (h *ReservationsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := booking.ReservationFilter{
		DeviceID: q.Get("device_id"),
		Project:  model.Project(q.Get("project")),
	}
	if f.Project != "" && !f.Project.Valid() {
		jsonError(w, http.StatusBadRequest, "unknown project")
		return
	}

	var err error
	if f.From, err = queryDate(r, "from"); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid from date")
		return
	}
	if f.To, err = queryDate(r, "to"); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid to date")
		return
	}

	reservations, err := h.Service.ListReservations(r.Context(), f)
	if err != nil {
		serviceError(w, err, "listing reservations")
		return
	}
	jsonResponse(w, http.StatusOK, reservations)
}

// Create handles POST /api/reservations.
func (h *ReservationsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req booking.NewReservation
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.Service.CreateReservation(r.Context(), req)
	if err != nil {
		serviceError(w, err, "creating reservation")
		return
	}
	jsonResponse(w, http.StatusCreated, res)
}

// Get handles GET /api/reservations/{id}.
func (h *ReservationsHandler) Get(w http.ResponseWriter, r *http.Request) {
	res, err := h.Service.Reservation(r.Context(), r.PathValue("id"))
	if err != nil {
		serviceError(w, err, "getting reservation")
		return
	}
	jsonResponse(w, http.StatusOK, res)
}

// Cancel handles POST /api/reservations/{id}/cancel.
func (h *ReservationsHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	res, err := h.Service.CancelReservation(r.Context(), r.PathValue("id"))
	if err != nil {
		serviceError(w, err, "cancelling reservation")
		return
	}
	jsonResponse(w, http.StatusOK, res)
}

// Complete handles POST /api/reservations/{id}/complete.
func (h *ReservationsHandler) Complete(w http.ResponseWriter, r *http.Request) {
	res, err := h.Service.CompleteReservation(r.Context(), r.PathValue("id"))
	if err != nil {
		serviceError(w, err, "completing reservation")
		return
	}
	jsonResponse(w, http.StatusOK, res)
}

// Slip handles GET /api/reservations/{id}/slip.
func (h *ReservationsHandler) Slip(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	res, err := h.Service.Reservation(ctx, r.PathValue("id"))
	if err != nil {
		serviceError(w, err, "getting reservation")
		return
	}

	// Finished reservations may outlive their device.
	device, err := h.Service.Device(ctx, res.DeviceID)
	if errors.Is(err, booking.ErrDeviceNotFound) {
		device = model.Device{ID: res.DeviceID, Name: res.DeviceID}
	} else if err != nil {
		serviceError(w, err, "getting device")
		return
	}

	var thumb []byte
	if obj, err := h.Blobs.Get(ctx, blob.PhotoKey(device.ID)); err == nil {
		if thumb, err = imaging.Fit(obj.Data, imaging.ThumbSize); err != nil {
			slog.Warn("device photo unusable on slip", "device", device.ID, "error", err)
			thumb = nil
		}
	} else if !errors.Is(err, blob.ErrNotFound) {
		slog.Warn("reading device photo", "device", device.ID, "error", err)
	}

	pdf, err := slip.Render(res, device, thumb)
	if err != nil {
		serviceError(w, err, "rendering slip")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+slip.Filename(res)+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}

// Availability handles GET /api/availability.
func (h *ReservationsHandler) Availability(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := booking.Request{
		DeviceID:             q.Get("device_id"),
		Quantity:             1,
		ExcludeReservationID: q.Get("exclude"),
	}
	if req.DeviceID == "" {
		jsonError(w, http.StatusBadRequest, "device_id required")
		return
	}

	var err error
	if req.Start, err = model.ParseDate(q.Get("start")); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid start date")
		return
	}
	if req.End, err = model.ParseDate(q.Get("end")); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid end date")
		return
	}
	if req.End.Before(req.Start) {
		jsonError(w, http.StatusBadRequest, "end date must be on or after the start date")
		return
	}
	if v := q.Get("quantity"); v != "" {
		if req.Quantity, err = strconv.Atoi(v); err != nil || req.Quantity <= 0 {
			jsonError(w, http.StatusBadRequest, "quantity must be a positive integer")
			return
		}
	}

	a, err := h.Service.CheckAvailability(r.Context(), req)
	if err != nil {
		serviceError(w, err, "checking availability")
		return
	}
	jsonResponse(w, http.StatusOK, a)
}
