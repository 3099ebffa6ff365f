package storage

import (
	"context"
	"io"
	"sync"
)

// FakeStore is an in-memory ObjectStore for tests. It records every stored
// object so tests can assert on what reached the store.
type FakeStore struct {
	mu      sync.Mutex
	Objects map[string][]byte
	Err     error // returned by Put/Remove when set
}

// NewFakeStore creates an empty FakeStore.
func NewFakeStore() *FakeStore {
	return &FakeStore{Objects: make(map[string][]byte)}
}

func (f *FakeStore) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) (string, error) {
	if f.Err != nil {
		return "", f.Err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Objects[key] = data
	return "https://cdn.test/" + key, nil
}

func (f *FakeStore) Remove(_ context.Context, key string) error {
	if f.Err != nil {
		return f.Err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.Objects, key)
	return nil
}

// Len returns the number of stored objects.
func (f *FakeStore) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Objects)
}
