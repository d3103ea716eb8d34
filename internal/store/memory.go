package store

import (
	"context"
	"sort"
	"sync"
)

// Memory keeps builds in process memory.
type Memory struct {
	mu     sync.RWMutex
	builds map[string]map[string][]byte
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{builds: make(map[string]map[string][]byte)}
}

func (m *Memory) Save(ctx context.Context, owner, name string, data []byte) error {
	owner, name, err := clean(owner, name)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.builds[owner] == nil {
		m.builds[owner] = make(map[string][]byte)
	}
	m.builds[owner][name] = append([]byte(nil), data...)
	return nil
}

func (m *Memory) Load(ctx context.Context, owner, name string) ([]byte, error) {
	owner, name, err := clean(owner, name)
	if err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.builds[owner][name]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), b...), nil
}

func (m *Memory) List(ctx context.Context, owner string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.builds[owner]))
	for name := range m.builds[owner] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (m *Memory) Delete(ctx context.Context, owner, name string) error {
	owner, name, err := clean(owner, name)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.builds[owner][name]; !ok {
		return ErrNotFound
	}
	delete(m.builds[owner], name)
	return nil
}

func (m *Memory) Close() error { return nil }
