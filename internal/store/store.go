// Package store persists serialized builds per owner.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when a build does not exist.
var ErrNotFound = errors.New("store: build not found")

// ErrInvalidName is returned for an empty owner or build name.
var ErrInvalidName = errors.New("store: owner and build name are required")

// Store saves builds as opaque JSON documents keyed by owner and name.
// Saving under an existing name replaces the previous build.
type Store interface {
	Save(ctx context.Context, owner, name string, data []byte) error
	Load(ctx context.Context, owner, name string) ([]byte, error)
	List(ctx context.Context, owner string) ([]string, error)
	Delete(ctx context.Context, owner, name string) error
	Close() error
}

func clean(owner, name string) (string, string, error) {
	owner, name = strings.TrimSpace(owner), strings.TrimSpace(name)
	if owner == "" || name == "" {
		return "", "", ErrInvalidName
	}
	return owner, name, nil
}

// Open returns the store for a driver name: "memory", "sqlite" or "redis".
// For sqlite dsn is a file path, for redis an address.
func Open(driver, dsn string, opts ...RedisOption) (Store, error) {
	switch driver {
	case "", "memory":
		return NewMemory(), nil
	case "sqlite":
		s, err := OpenSQLite(dsn)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "redis":
		r, err := OpenRedis(dsn, opts...)
		if err != nil {
			return nil, err
		}
		return r, nil
	default:
		return nil, fmt.Errorf("store: unknown driver %q", driver)
	}
}
