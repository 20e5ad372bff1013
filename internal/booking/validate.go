package booking

import (
	"net/mail"
	"strings"

	"github.com/erazemk/labshaker/internal/model"
)

// NewReservation is the input for creating a reservation.
type NewReservation struct {
	DeviceID       string              `json:"device_id"`
	StartDate      model.Date          `json:"start_date"`
	EndDate        model.Date          `json:"end_date"`
	QuantityFlasks int                 `json:"quantity_flasks"`
	Microorganism  model.Microorganism `json:"microorganism"`
	FlaskVolume    model.FlaskVolume   `json:"flask_volume_ml"`
	TemperatureC   float64             `json:"temperature_c"`
	RPM            int                 `json:"rpm"`
	Project        model.Project       `json:"project"`
	RequesterName  string              `json:"requester_name"`
	RequesterEmail string              `json:"requester_email"`
	Notes          string              `json:"notes"`
}

// Validate checks the form-level rules. It returns the first problem found
// as a *ValidationError.
func (n NewReservation) Validate() error {
	switch {
	case strings.TrimSpace(n.DeviceID) == "":
		return &ValidationError{Field: "device_id", Message: "select a device"}
	case n.StartDate.IsZero():
		return &ValidationError{Field: "start_date", Message: "start date required"}
	case n.EndDate.IsZero():
		return &ValidationError{Field: "end_date", Message: "end date required"}
	case n.EndDate.Before(n.StartDate):
		return &ValidationError{Field: "end_date", Message: "end date must be on or after the start date"}
	case n.QuantityFlasks <= 0:
		return &ValidationError{Field: "quantity_flasks", Message: "quantity must be positive"}
	case !n.Microorganism.Valid():
		return &ValidationError{Field: "microorganism", Message: "unknown microorganism category"}
	case !n.FlaskVolume.Valid():
		return &ValidationError{Field: "flask_volume_ml", Message: "flask volume must be 250, 500 or 1000 mL"}
	case !n.Project.Valid():
		return &ValidationError{Field: "project", Message: "unknown project category"}
	case n.TemperatureC <= 0:
		return &ValidationError{Field: "temperature_c", Message: "temperature must be positive"}
	case n.RPM <= 0:
		return &ValidationError{Field: "rpm", Message: "rpm must be positive"}
	case strings.TrimSpace(n.RequesterName) == "":
		return &ValidationError{Field: "requester_name", Message: "requester name required"}
	}
	if _, err := mail.ParseAddress(n.RequesterEmail); err != nil {
		return &ValidationError{Field: "requester_email", Message: "valid email required"}
	}
	return nil
}

func validateDevice(d model.Device) error {
	if strings.TrimSpace(d.Name) == "" {
		return &ValidationError{Field: "name", Message: "name required"}
	}
	if d.CapacityFlasks <= 0 {
		return &ValidationError{Field: "capacity_flasks", Message: "capacity must be positive"}
	}
	return nil
}
