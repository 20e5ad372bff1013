// Package blob stores opaque objects such as device photos and backups.
package blob

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by Get for unknown keys.
var ErrNotFound = errors.New("blob not found")

// Object is a stored blob.
type Object struct {
	Data        []byte
	ContentType string
}

// Store is a flat key/value object store. Put replaces existing objects.
type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) (Object, error)
	// List returns the keys starting with prefix in lexical order.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Driver names a Store implementation.
type Driver string

const (
	DriverFS     Driver = "fs"
	DriverS3     Driver = "s3"
	DriverMemory Driver = "memory"
)

// PhotoKey is where a device's photo is stored.
func PhotoKey(deviceID string) string {
	return "devices/" + deviceID + ".jpg"
}

// checkKey rejects keys that are empty, absolute or climb out of the root.
func checkKey(key string) error {
	switch {
	case strings.TrimSpace(key) == "":
		return errors.New("empty key")
	case strings.HasPrefix(key, "/"):
		return fmt.Errorf("invalid absolute key %q", key)
	case strings.Contains(key, ".."):
		return fmt.Errorf("invalid key %q", key)
	}
	return nil
}
