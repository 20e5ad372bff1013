package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/erazemk/labshaker/internal/booking"
	"github.com/erazemk/labshaker/internal/model"
	"github.com/erazemk/labshaker/internal/report"
	"github.com/erazemk/labshaker/internal/store"
)

// ReportsHandler serves the dashboard and calendar aggregates.
type ReportsHandler struct {
	Service *booking.Service
	Now     func() time.Time
}

// month reads the year and month query parameters, defaulting to the
// current month.
func (h *ReportsHandler) month(r *http.Request) (report.Period, error) {
	now := h.Now()
	year, month := now.Year(), now.Month()

	q := r.URL.Query()
	if v := q.Get("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 1 || y > 9999 {
			return report.Period{}, errors.New("invalid year")
		}
		year = y
	}
	if v := q.Get("month"); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			return report.Period{}, errors.New("invalid month")
		}
		month = time.Month(m)
	}
	return report.MonthPeriod(year, month), nil
}

// Monthly handles GET /api/reports/monthly.
func (h *ReportsHandler) Monthly(w http.ResponseWriter, r *http.Request) {
	period, err := h.month(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	f := report.Filter{
		Period:   period,
		DeviceID: r.URL.Query().Get("device_id"),
		Project:  model.Project(r.URL.Query().Get("project")),
	}
	if f.Project != "" && !f.Project.Valid() {
		jsonError(w, http.StatusBadRequest, "unknown project")
		return
	}

	snap, err := store.Load(r.Context(), h.Service.Store())
	if err != nil {
		serviceError(w, err, "loading report data")
		return
	}
	jsonResponse(w, http.StatusOK, report.Build(snap.Devices, snap.Reservations, f))
}

// Calendar handles GET /api/calendar.
func (h *ReportsHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	period, err := h.month(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	snap, err := store.Load(r.Context(), h.Service.Store())
	if err != nil {
		serviceError(w, err, "loading calendar data")
		return
	}
	jsonResponse(w, http.StatusOK, report.Calendar(snap.Devices, snap.Reservations, period))
}
