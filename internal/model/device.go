package model

// Device is a shaker-incubator that can be booked exclusively for a range of days.
type Device struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Brand          string `json:"brand"`
	Model          string `json:"model"`
	CapacityFlasks int    `json:"capacity_flasks"`
	Active         bool   `json:"active"`
	Notes          string `json:"notes,omitempty"`
}
