// Package backup exports store snapshots to a blob store and loads them back.
package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/erazemk/labshaker/internal/blob"
	"github.com/erazemk/labshaker/internal/booking"
	"github.com/erazemk/labshaker/internal/store"
)

const (
	prefix      = "backups/"
	contentType = "application/json"
	stampLayout = "20060102T150405Z"
)

// Key returns the blob key of a backup taken at t.
func Key(t time.Time) string {
	return prefix + "labshaker-" + t.UTC().Format(stampLayout) + ".json"
}

// Write stores a snapshot of st and returns its key.
func Write(ctx context.Context, st store.Store, blobs blob.Store, now time.Time) (string, error) {
	snap, err := store.Load(ctx, st)
	if err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding snapshot: %w", err)
	}

	key := Key(now)
	if err := blobs.Put(ctx, key, data, contentType); err != nil {
		return "", fmt.Errorf("writing backup: %w", err)
	}
	slog.Info("backup written", "key", key, "devices", len(snap.Devices), "reservations", len(snap.Reservations))
	return key, nil
}

// List returns the keys of all backups, oldest first.
func List(ctx context.Context, blobs blob.Store) ([]string, error) {
	keys, err := blobs.List(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("listing backups: %w", err)
	}
	return keys, nil
}

// Read loads the snapshot stored under key.
func Read(ctx context.Context, blobs blob.Store, key string) (store.Snapshot, error) {
	if !strings.HasPrefix(key, prefix) {
		return store.Snapshot{}, fmt.Errorf("%q is not a backup key", key)
	}
	obj, err := blobs.Get(ctx, key)
	if err != nil {
		return store.Snapshot{}, fmt.Errorf("reading backup: %w", err)
	}
	var snap store.Snapshot
	if err := json.Unmarshal(obj.Data, &snap); err != nil {
		return store.Snapshot{}, fmt.Errorf("decoding backup %s: %w", key, err)
	}
	return snap, nil
}

// Restore loads the backup under key into the service's store. See
// booking.Service.RestoreSnapshot for which records are written.
func Restore(ctx context.Context, blobs blob.Store, key string, svc *booking.Service) (booking.RestoreResult, error) {
	snap, err := Read(ctx, blobs, key)
	if err != nil {
		return booking.RestoreResult{}, err
	}
	res, err := svc.RestoreSnapshot(ctx, snap)
	if err != nil {
		return res, fmt.Errorf("restoring %s: %w", key, err)
	}
	slog.Info("backup restored", "key", key)
	return res, nil
}
