package booking

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/erazemk/labshaker/internal/model"
	"github.com/erazemk/labshaker/internal/store"
)

// Recorder observes availability decisions and status changes.
type Recorder interface {
	Checked(a Availability)
	Transitioned(status model.ReservationStatus)
}

type nopRecorder struct{}

func (nopRecorder) Checked(Availability) {}
func (nopRecorder) Transitioned(model.ReservationStatus) {}

// Service applies the booking rules on top of a store. Writes are
// serialized so a check and the write that depends on it cannot interleave
// with another writer.
type Service struct {
	mu       sync.Mutex
	store    store.Store
	recorder Recorder
	now      func() time.Time
	newID    func() string
}

// Option configures a Service.
type Option func(*Service)

// WithRecorder reports decisions and transitions to r.
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDs replaces the UUID generator.
func WithIDs(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// NewService creates a booking service over st.
func NewService(st store.Store, opts ...Option) *Service {
	s := &Service{
		store:    st,
		recorder: nopRecorder{},
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the underlying store.
func (s *Service) Store() store.Store {
	return s.store
}

// CheckAvailability runs Check against the current store contents.
func (s *Service) CheckAvailability(ctx context.Context, req Request) (Availability, error) {
	snap, err := store.Load(ctx, s.store)
	if err != nil {
		return Availability{}, err
	}
	a := Check(snap.Devices, snap.Reservations, req)
	s.recorder.Checked(a)
	return a, nil
}

// CreateReservation validates n, checks availability and stores a new
// scheduled reservation.
func (s *Service) CreateReservation(ctx context.Context, n NewReservation) (model.Reservation, error) {
	if err := n.Validate(); err != nil {
		return model.Reservation{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.CheckAvailability(ctx, Request{
		DeviceID: n.DeviceID,
		Start:    n.StartDate,
		End:      n.EndDate,
		Quantity: n.QuantityFlasks,
	})
	if err != nil {
		return model.Reservation{}, err
	}
	if !a.Available {
		return model.Reservation{}, &ConflictError{Availability: a}
	}

	r := model.Reservation{
		ID:             s.newID(),
		DeviceID:       n.DeviceID,
		StartDate:      n.StartDate,
		EndDate:        n.EndDate,
		QuantityFlasks: n.QuantityFlasks,
		Microorganism:  n.Microorganism,
		FlaskVolume:    n.FlaskVolume,
		TemperatureC:   n.TemperatureC,
		RPM:            n.RPM,
		Project:        n.Project,
		RequesterName:  n.RequesterName,
		RequesterEmail: n.RequesterEmail,
		Notes:          n.Notes,
		Status:         model.StatusScheduled,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.store.PutReservation(ctx, r); err != nil {
		return model.Reservation{}, fmt.Errorf("storing reservation: %w", err)
	}

	s.recorder.Transitioned(model.StatusScheduled)
	slog.Info("reservation created", "id", r.ID, "device", r.DeviceID,
		"start", r.StartDate.String(), "end", r.EndDate.String(), "project", string(r.Project))
	return r, nil
}

// CancelReservation releases the reservation's device. Cancelling an already
// cancelled reservation returns it unchanged.
func (s *Service) CancelReservation(ctx context.Context, id string) (model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.Reservation(ctx, id)
	if err != nil {
		return model.Reservation{}, err
	}

	switch r.Status {
	case model.StatusCancelled:
		return r, nil
	case model.StatusScheduled:
	default:
		return model.Reservation{}, fmt.Errorf("cancelling %s reservation: %w", r.Status, ErrInvalidTransition)
	}

	now := s.now().UTC()
	r.Status = model.StatusCancelled
	r.CancelledAt = &now
	if err := s.store.PutReservation(ctx, r); err != nil {
		return model.Reservation{}, fmt.Errorf("storing reservation: %w", err)
	}

	s.recorder.Transitioned(model.StatusCancelled)
	slog.Info("reservation cancelled", "id", r.ID, "device", r.DeviceID)
	return r, nil
}

// CompleteReservation marks a scheduled reservation as completed.
func (s *Service) CompleteReservation(ctx context.Context, id string) (model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.Reservation(ctx, id)
	if err != nil {
		return model.Reservation{}, err
	}
	if !r.Scheduled() {
		return model.Reservation{}, fmt.Errorf("completing %s reservation: %w", r.Status, ErrInvalidTransition)
	}

	r.Status = model.StatusCompleted
	if err := s.store.PutReservation(ctx, r); err != nil {
		return model.Reservation{}, fmt.Errorf("storing reservation: %w", err)
	}

	s.recorder.Transitioned(model.StatusCompleted)
	slog.Info("reservation completed", "id", r.ID, "device", r.DeviceID)
	return r, nil
}

// Reservation returns the reservation with the given ID.
func (s *Service) Reservation(ctx context.Context, id string) (model.Reservation, error) {
	reservations, err := s.store.ListReservations(ctx)
	if err != nil {
		return model.Reservation{}, fmt.Errorf("listing reservations: %w", err)
	}
	for _, r := range reservations {
		if r.ID == id {
			return r, nil
		}
	}
	return model.Reservation{}, ErrReservationNotFound
}

// ReservationFilter narrows ListReservations. Zero fields match everything.
type ReservationFilter struct {
	DeviceID string
	Project  model.Project
	From     model.Date
	To       model.Date
}

func (f ReservationFilter) match(r model.Reservation) bool {
	if f.DeviceID != "" && r.DeviceID != f.DeviceID {
		return false
	}
	if f.Project != "" && r.Project != f.Project {
		return false
	}
	if !f.From.IsZero() && r.EndDate.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && r.StartDate.After(f.To) {
		return false
	}
	return true
}

// ListReservations returns the reservations matching f, latest start first.
func (s *Service) ListReservations(ctx context.Context, f ReservationFilter) ([]model.Reservation, error) {
	reservations, err := s.store.ListReservations(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing reservations: %w", err)
	}

	out := make([]model.Reservation, 0, len(reservations))
	for _, r := range reservations {
		if f.match(r) {
			out = append(out, r)
		}
	}
	slices.SortStableFunc(out, func(a, b model.Reservation) int {
		if c := b.StartDate.Time().Compare(a.StartDate.Time()); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

// Devices returns all devices.
func (s *Service) Devices(ctx context.Context) ([]model.Device, error) {
	devices, err := s.store.ListDevices(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing devices: %w", err)
	}
	return devices, nil
}

// Device returns the device with the given ID.
func (s *Service) Device(ctx context.Context, id string) (model.Device, error) {
	devices, err := s.Devices(ctx)
	if err != nil {
		return model.Device{}, err
	}
	d, ok := findDevice(devices, id)
	if !ok {
		return model.Device{}, ErrDeviceNotFound
	}
	return d, nil
}

// SaveDevice inserts or replaces a device, assigning an ID to new ones.
func (s *Service) SaveDevice(ctx context.Context, d model.Device) (model.Device, error) {
	if err := validateDevice(d); err != nil {
		return model.Device{}, err
	}
	if d.ID == "" {
		d.ID = s.newID()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.PutDevice(ctx, d); err != nil {
		return model.Device{}, fmt.Errorf("storing device: %w", err)
	}
	slog.Info("device saved", "id", d.ID, "name", d.Name, "active", d.Active)
	return d, nil
}

// DeleteDevice removes a device unless a scheduled reservation still holds
// it. It reports false, without changing anything, when the device is in use.
func (s *Service) DeleteDevice(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := store.Load(ctx, s.store)
	if err != nil {
		return false, err
	}
	if _, ok := findDevice(snap.Devices, id); !ok {
		return false, ErrDeviceNotFound
	}
	for _, r := range snap.Reservations {
		if r.DeviceID == id && r.Scheduled() {
			slog.Warn("device deletion blocked", "id", id, "reservation", r.ID)
			return false, nil
		}
	}
	if err := s.store.RemoveDevice(ctx, id); err != nil {
		return false, fmt.Errorf("removing device: %w", err)
	}
	slog.Info("device deleted", "id", id)
	return true, nil
}

// IsNotFound reports whether err means a device or reservation is unknown.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrDeviceNotFound) || errors.Is(err, ErrReservationNotFound)
}
