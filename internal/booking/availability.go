// Package booking decides whether a device can be reserved and applies the
// reservation and device lifecycle rules on top of a store.Store.
package booking

import (
	"fmt"

	"github.com/erazemk/labshaker/internal/model"
)

// Code classifies the outcome of an availability check.
type Code string

// Availability outcomes.
const (
	CodeAvailable      Code = "available"
	CodeDeviceNotFound Code = "device_not_found"
	CodeDeviceInactive Code = "device_inactive"
	CodeOverlap        Code = "overlap"
	CodeOverCapacity   Code = "over_capacity"
)

// Request asks whether a device can be held for [Start, End]. Callers
// guarantee End is not before Start.
type Request struct {
	DeviceID string
	Start    model.Date
	End      model.Date
	Quantity int
	// ExcludeReservationID is ignored in the overlap scan, so an edited
	// reservation does not conflict with itself.
	ExcludeReservationID string
}

// Availability is the decision for a Request. Reason is user-facing and set
// whenever Available is false.
type Availability struct {
	Available bool               `json:"available"`
	Code      Code               `json:"code"`
	Reason    string             `json:"reason,omitempty"`
	Conflict  *model.Reservation `json:"conflict,omitempty"`
}

// Check decides req against a snapshot of devices and reservations. The
// checks run in order: device exists, device active, no overlapping
// scheduled reservation, quantity within capacity.
//
// Capacity bounds a single reservation. Quantities of other reservations are
// never added up because a scheduled reservation holds the whole device.
func Check(devices []model.Device, reservations []model.Reservation, req Request) Availability {
	device, ok := findDevice(devices, req.DeviceID)
	if !ok {
		return reject(CodeDeviceNotFound, "device not found")
	}

	if !device.Active {
		return reject(CodeDeviceInactive, "device unavailable (maintenance/out of service)")
	}

	if a, ok := overlap(reservations, req); ok {
		return a
	}

	if req.Quantity > device.CapacityFlasks {
		return reject(CodeOverCapacity, fmt.Sprintf(
			"requested quantity exceeds the device's total capacity (%d flasks)", device.CapacityFlasks))
	}

	return Availability{Available: true, Code: CodeAvailable}
}

// overlap finds a scheduled reservation on the requested device that shares
// a day with the requested range.
func overlap(reservations []model.Reservation, req Request) (Availability, bool) {
	for _, r := range reservations {
		if r.DeviceID != req.DeviceID || !r.Scheduled() || excluded(r, req) {
			continue
		}
		if r.Overlaps(req.Start, req.End) {
			conflict := r
			a := reject(CodeOverlap, fmt.Sprintf(
				"scheduling conflict: device is already reserved for the selected period (%s to %s)",
				r.StartDate, r.EndDate))
			a.Conflict = &conflict
			return a, true
		}
	}
	return Availability{}, false
}

func reject(code Code, reason string) Availability {
	return Availability{Code: code, Reason: reason}
}

func findDevice(devices []model.Device, id string) (model.Device, bool) {
	for _, d := range devices {
		if d.ID == id {
			return d, true
		}
	}
	return model.Device{}, false
}

func excluded(r model.Reservation, req Request) bool {
	return req.ExcludeReservationID != "" && r.ID == req.ExcludeReservationID
}
