// Package store persists the two entity collections, devices and reservations.
//
// Stores are deliberately dumb: they upsert, list, and remove whatever they are
// given and perform no validation. Business rules such as the deletion guard
// live in package booking.
package store

import (
	"context"
	"fmt"

	"github.com/erazemk/labshaker/internal/model"
)

// Store is the persistence boundary used by the booking core.
type Store interface {
	ListDevices(ctx context.Context) ([]model.Device, error)
	ListReservations(ctx context.Context) ([]model.Reservation, error)
	// PutDevice inserts the device or replaces the one with the same ID.
	PutDevice(ctx context.Context, d model.Device) error
	// PutReservation inserts the reservation or replaces the one with the same ID.
	PutReservation(ctx context.Context, r model.Reservation) error
	// RemoveDevice removes the device with the given ID. Removing an unknown
	// ID is not an error.
	RemoveDevice(ctx context.Context, id string) error
}

// Snapshot is a point-in-time copy of both collections.
type Snapshot struct {
	Devices      []model.Device      `json:"devices"`
	Reservations []model.Reservation `json:"reservations"`
}

// Snapshotter is implemented by stores that can read both collections as
// of one instant.
type Snapshotter interface {
	Snapshot(ctx context.Context) (Snapshot, error)
}

// Load reads both collections from s, in one consistent read when s is a
// Snapshotter.
func Load(ctx context.Context, s Store) (Snapshot, error) {
	if ss, ok := s.(Snapshotter); ok {
		snap, err := ss.Snapshot(ctx)
		if err != nil {
			return Snapshot{}, fmt.Errorf("loading snapshot: %w", err)
		}
		return snap, nil
	}
	devices, err := s.ListDevices(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("loading devices: %w", err)
	}
	reservations, err := s.ListReservations(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("loading reservations: %w", err)
	}
	return Snapshot{Devices: devices, Reservations: reservations}, nil
}

// DefaultDevices is the device set a new store starts with.
func DefaultDevices() []model.Device {
	return []model.Device{
		{ID: "1", Name: "Shaker Principal 01", Brand: "New Brunswick", Model: "Innova 44", CapacityFlasks: 20, Active: true, Notes: "Uso geral"},
		{ID: "2", Name: "Shaker Incubadora 02", Brand: "Thermo", Model: "MaxQ 6000", CapacityFlasks: 12, Active: true, Notes: "Preferência para fungos"},
		{ID: "3", Name: "Shaker Bancada 03", Brand: "Tecnal", Model: "TE-420", CapacityFlasks: 8, Active: true, Notes: "Manutenção agendada para Dezembro"},
		{ID: "4", Name: "Shaker Antigo 04", Brand: "Tecnal", Model: "TE-420", CapacityFlasks: 8, Active: false, Notes: "Em manutenção"},
	}
}

func upsertDevice(devices []model.Device, d model.Device) []model.Device {
	for i := range devices {
		if devices[i].ID == d.ID {
			devices[i] = d
			return devices
		}
	}
	return append(devices, d)
}

func upsertReservation(reservations []model.Reservation, r model.Reservation) []model.Reservation {
	for i := range reservations {
		if reservations[i].ID == r.ID {
			reservations[i] = r
			return reservations
		}
	}
	return append(reservations, r)
}

func removeDevice(devices []model.Device, id string) []model.Device {
	kept := devices[:0]
	for _, d := range devices {
		if d.ID != id {
			kept = append(kept, d)
		}
	}
	return kept
}
