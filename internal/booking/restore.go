package booking

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/erazemk/labshaker/internal/model"
	"github.com/erazemk/labshaker/internal/store"
)

// SkippedReservation is a reservation from a snapshot that was not written
// back, with the reason.
type SkippedReservation struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// RestoreResult summarizes a RestoreSnapshot run.
type RestoreResult struct {
	Devices      int                  `json:"devices"`
	Reservations int                  `json:"reservations"`
	Kept         int                  `json:"kept"`
	Skipped      []SkippedReservation `json:"skipped,omitempty"`
}

// RestoreSnapshot upserts the snapshot's devices and reservations. Records
// missing from the snapshot are left alone. A stored reservation that is
// already cancelled or completed is kept as stored. A scheduled reservation
// is skipped when its device is gone or it overlaps a scheduled reservation
// stored now.
func (s *Service) RestoreSnapshot(ctx context.Context, snap store.Snapshot) (RestoreResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var res RestoreResult
	for _, d := range snap.Devices {
		if err := s.store.PutDevice(ctx, d); err != nil {
			return res, fmt.Errorf("restoring device %s: %w", d.ID, err)
		}
		res.Devices++
	}

	current, err := store.Load(ctx, s.store)
	if err != nil {
		return res, err
	}
	stored := make(map[string]model.Reservation, len(current.Reservations))
	for _, r := range current.Reservations {
		stored[r.ID] = r
	}

	for _, r := range snap.Reservations {
		if prev, ok := stored[r.ID]; ok && !prev.Scheduled() {
			res.Kept++
			continue
		}
		if reason, ok := restorable(current, r); !ok {
			slog.Warn("reservation not restored", "id", r.ID, "device", r.DeviceID, "reason", reason)
			res.Skipped = append(res.Skipped, SkippedReservation{ID: r.ID, Reason: reason})
			continue
		}

		if err := s.store.PutReservation(ctx, r); err != nil {
			return res, fmt.Errorf("restoring reservation %s: %w", r.ID, err)
		}
		current.Reservations = upsert(current.Reservations, r)
		res.Reservations++
	}

	slog.Info("snapshot restored", "devices", res.Devices, "reservations", res.Reservations,
		"kept", res.Kept, "skipped", len(res.Skipped))
	return res, nil
}

// restorable reports whether r can be written next to current, and if not,
// why. Only scheduled reservations are checked, and only for a missing device
// or an overlap. Activity and capacity were checked when r was booked.
func restorable(current store.Snapshot, r model.Reservation) (string, bool) {
	if !r.Scheduled() {
		return "", true
	}
	if _, ok := findDevice(current.Devices, r.DeviceID); !ok {
		return "device not found", false
	}
	a, found := overlap(current.Reservations, Request{
		DeviceID:             r.DeviceID,
		Start:                r.StartDate,
		End:                  r.EndDate,
		ExcludeReservationID: r.ID,
	})
	if found {
		return a.Reason, false
	}
	return "", true
}

func upsert(reservations []model.Reservation, r model.Reservation) []model.Reservation {
	for i := range reservations {
		if reservations[i].ID == r.ID {
			reservations[i] = r
			return reservations
		}
	}
	return append(reservations, r)
}
