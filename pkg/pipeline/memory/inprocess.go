package memory

import (
	"fmt"
	"sync"
)

// InProcess keeps the entries in a map for the lifetime of the process.
type InProcess struct {
	entries map[string]*Entry
	mu      sync.RWMutex
}

// NewInProcess creates an empty in-process memory.
func NewInProcess() *InProcess {
	return &InProcess{
		entries: make(map[string]*Entry),
	}
}

func (m *InProcess) Location() string {
	return fmt.Sprintf("inprocess://%p", m)
}

// Get returns a copy of the stored entry. The fitted step is shared.
func (m *InProcess) Get(key string) (*Entry, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}

	return copyEntry(entry), true, nil
}

func (m *InProcess) Set(key string, entry *Entry) error {
	if err := validateKey(key); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = copyEntry(entry)

	return nil
}

func (m *InProcess) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]*Entry)

	return nil
}

// Len returns the number of stored entries.
func (m *InProcess) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.entries)
}

var _ Memory = (*InProcess)(nil)
