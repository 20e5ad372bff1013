package store

import (
	"context"
	"slices"
	"sync"

	"github.com/erazemk/labshaker/internal/model"
)

// Memory is an in-process Store, used by tests and as a scratch backend.
type Memory struct {
	mu           sync.Mutex
	devices      []model.Device
	reservations []model.Reservation
}

var (
	_ Store       = (*Memory)(nil)
	_ Snapshotter = (*Memory)(nil)
)

// NewMemory creates a memory store holding the given devices, or the default
// device set when none are given.
func NewMemory(devices ...model.Device) *Memory {
	if len(devices) == 0 {
		devices = DefaultDevices()
	}
	return &Memory{devices: slices.Clone(devices)}
}

// ListDevices returns a copy of the devices.
func (m *Memory) ListDevices(_ context.Context) ([]model.Device, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.devices), nil
}

// ListReservations returns a copy of the reservations.
func (m *Memory) ListReservations(_ context.Context) ([]model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reservationsLocked(), nil
}

// Snapshot copies both collections under one lock.
func (m *Memory) Snapshot(_ context.Context) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{Devices: slices.Clone(m.devices), Reservations: m.reservationsLocked()}, nil
}

func (m *Memory) reservationsLocked() []model.Reservation {
	out := make([]model.Reservation, len(m.reservations))
	for i, r := range m.reservations {
		out[i] = cloneReservation(r)
	}
	return out
}

// PutDevice upserts d.
func (m *Memory) PutDevice(_ context.Context, d model.Device) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.devices = upsertDevice(m.devices, d)
	return nil
}

// PutReservation upserts a copy of r.
func (m *Memory) PutReservation(_ context.Context, r model.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reservations = upsertReservation(m.reservations, cloneReservation(r))
	return nil
}

// RemoveDevice drops the device with the given ID, if present.
func (m *Memory) RemoveDevice(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.devices = removeDevice(m.devices, id)
	return nil
}

// cloneReservation detaches the optional timestamp so callers cannot mutate
// stored state through it.
func cloneReservation(r model.Reservation) model.Reservation {
	if r.CancelledAt != nil {
		t := *r.CancelledAt
		r.CancelledAt = &t
	}
	return r
}
