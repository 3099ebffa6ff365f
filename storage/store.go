package storage

import (
	"context"
	"errors"
	"io"
)

// ErrDisabled is returned when no object store is configured.
var ErrDisabled = errors.New("storage: object store not configured")

// ObjectStore accepts byte streams keyed by path and returns a public URL
// for each stored object.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	Remove(ctx context.Context, key string) error
}

// Disabled is an ObjectStore that rejects every operation. Used when the
// storage section of the config is empty so the rest of the API stays up.
type Disabled struct{}

func (Disabled) Put(context.Context, string, io.Reader, int64, string) (string, error) {
	return "", ErrDisabled
}

func (Disabled) Remove(context.Context, string) error {
	return ErrDisabled
}
