package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/erazemk/labshaker/internal/db"
	"github.com/erazemk/labshaker/internal/model"
)

// Buckets in the state table.
const (
	bucketDevices      = "devices"
	bucketReservations = "reservations"
	bucketJWTSecret    = "jwt_secret"
)

// SQL stores each collection as a JSON array in one row of the state table.
// Every write reads the whole collection, changes one entry, and writes the
// collection back inside a transaction. That is only safe with a single
// writer process; there is no version check between processes.
type SQL struct {
	db      *sql.DB
	dialect db.Dialect
}

var (
	_ Store       = (*SQL)(nil)
	_ Snapshotter = (*SQL)(nil)
)

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// NewSQL wraps an open database whose schema has been ensured. The devices
// bucket is seeded with DefaultDevices the first time a database is used.
func NewSQL(ctx context.Context, database *sql.DB, dialect db.Dialect) (*SQL, error) {
	s := &SQL{db: database, dialect: dialect}
	if _, err := s.insertIfAbsent(ctx, s.db, bucketDevices, DefaultDevices()); err != nil {
		return nil, fmt.Errorf("seeding devices: %w", err)
	}
	return s, nil
}

// ListDevices returns every device in stored order.
func (s *SQL) ListDevices(ctx context.Context) ([]model.Device, error) {
	var devices []model.Device
	if _, err := s.read(ctx, s.db, bucketDevices, &devices); err != nil {
		return nil, fmt.Errorf("listing devices: %w", err)
	}
	return devices, nil
}

// ListReservations returns every reservation in stored order.
func (s *SQL) ListReservations(ctx context.Context) ([]model.Reservation, error) {
	var reservations []model.Reservation
	if _, err := s.read(ctx, s.db, bucketReservations, &reservations); err != nil {
		return nil, fmt.Errorf("listing reservations: %w", err)
	}
	return reservations, nil
}

// PutDevice upserts d.
func (s *SQL) PutDevice(ctx context.Context, d model.Device) error {
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var devices []model.Device
		if _, err := s.read(ctx, tx, bucketDevices, &devices); err != nil {
			return err
		}
		return s.write(ctx, tx, bucketDevices, upsertDevice(devices, d))
	})
	if err != nil {
		return fmt.Errorf("saving device: %w", err)
	}
	return nil
}

// PutReservation upserts r.
func (s *SQL) PutReservation(ctx context.Context, r model.Reservation) error {
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var reservations []model.Reservation
		if _, err := s.read(ctx, tx, bucketReservations, &reservations); err != nil {
			return err
		}
		return s.write(ctx, tx, bucketReservations, upsertReservation(reservations, r))
	})
	if err != nil {
		return fmt.Errorf("saving reservation: %w", err)
	}
	return nil
}

// RemoveDevice drops the device with the given ID, if present.
func (s *SQL) RemoveDevice(ctx context.Context, id string) error {
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var devices []model.Device
		if _, err := s.read(ctx, tx, bucketDevices, &devices); err != nil {
			return err
		}
		return s.write(ctx, tx, bucketDevices, removeDevice(devices, id))
	})
	if err != nil {
		return fmt.Errorf("removing device: %w", err)
	}
	return nil
}

// Snapshot reads both collections inside one transaction.
func (s *SQL) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	err := s.inTxOpts(ctx, s.dialect.SnapshotTxOptions(), func(tx *sql.Tx) error {
		if _, err := s.read(ctx, tx, bucketDevices, &snap.Devices); err != nil {
			return err
		}
		_, err := s.read(ctx, tx, bucketReservations, &snap.Reservations)
		return err
	})
	if err != nil {
		return Snapshot{}, fmt.Errorf("reading snapshot: %w", err)
	}
	return snap, nil
}

// Secret returns the token signing secret, generating and storing one on
// first use. Uses insert-if-absent + re-read so concurrent startups agree.
func (s *SQL) Secret(ctx context.Context) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating jwt secret: %w", err)
	}
	if _, err := s.insertIfAbsent(ctx, s.db, bucketJWTSecret, hex.EncodeToString(buf)); err != nil {
		return "", fmt.Errorf("storing jwt secret: %w", err)
	}

	var secret string
	if _, err := s.read(ctx, s.db, bucketJWTSecret, &secret); err != nil {
		return "", fmt.Errorf("querying jwt secret: %w", err)
	}
	return secret, nil
}

func (s *SQL) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	return s.inTxOpts(ctx, nil, fn)
}

func (s *SQL) inTxOpts(ctx context.Context, opts *sql.TxOptions, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// read decodes a bucket into target. It reports false, leaving target
// untouched, when the bucket does not exist yet.
func (s *SQL) read(ctx context.Context, q queryer, bucket string, target any) (bool, error) {
	var payload []byte
	err := q.QueryRowContext(ctx,
		s.dialect.Rebind(`SELECT payload FROM state WHERE bucket = ?`), bucket,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", bucket, err)
	}
	if err := json.Unmarshal(payload, target); err != nil {
		return false, fmt.Errorf("decoding %s: %w", bucket, err)
	}
	return true, nil
}

func (s *SQL) write(ctx context.Context, q queryer, bucket string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", bucket, err)
	}
	_, err = q.ExecContext(ctx, s.dialect.Rebind(
		`INSERT INTO state (bucket, payload, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (bucket) DO UPDATE SET payload = excluded.payload, updated_at = CURRENT_TIMESTAMP`),
		bucket, string(payload),
	)
	if err != nil {
		return fmt.Errorf("writing %s: %w", bucket, err)
	}
	return nil
}

func (s *SQL) insertIfAbsent(ctx context.Context, q queryer, bucket string, v any) (bool, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return false, fmt.Errorf("encoding %s: %w", bucket, err)
	}
	result, err := q.ExecContext(ctx, s.dialect.Rebind(
		`INSERT INTO state (bucket, payload) VALUES (?, ?) ON CONFLICT (bucket) DO NOTHING`),
		bucket, string(payload),
	)
	if err != nil {
		return false, fmt.Errorf("initializing %s: %w", bucket, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, nil
	}
	return n > 0, nil
}
