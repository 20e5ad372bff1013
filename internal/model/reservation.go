package model

import "time"

// Reservation books one device for an inclusive range of days.
type Reservation struct {
	ID             string            `json:"id"`
	DeviceID       string            `json:"device_id"`
	StartDate      Date              `json:"start_date"`
	EndDate        Date              `json:"end_date"`
	QuantityFlasks int               `json:"quantity_flasks"`
	Microorganism  Microorganism     `json:"microorganism"`
	FlaskVolume    FlaskVolume       `json:"flask_volume_ml"`
	TemperatureC   float64           `json:"temperature_c"`
	RPM            int               `json:"rpm"`
	Project        Project           `json:"project"`
	RequesterName  string            `json:"requester_name"`
	RequesterEmail string            `json:"requester_email"`
	Notes          string            `json:"notes,omitempty"`
	Status         ReservationStatus `json:"status"`
	CreatedAt      time.Time         `json:"created_at"`
	CancelledAt    *time.Time        `json:"cancelled_at,omitempty"`
}

// Scheduled reports whether the reservation still holds its device.
func (r Reservation) Scheduled() bool {
	return r.Status == StatusScheduled
}

// Overlaps reports whether the reservation's range shares a day with [start, end].
func (r Reservation) Overlaps(start, end Date) bool {
	return Overlaps(r.StartDate, r.EndDate, start, end)
}

// Covers reports whether day falls inside the reservation's range.
func (r Reservation) Covers(day Date) bool {
	return r.Overlaps(day, day)
}
