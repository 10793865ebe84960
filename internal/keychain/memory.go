package keychain

import (
	"fmt"
	"sync"
)

// MemoryStore is an in-memory implementation of Store for testing.
type MemoryStore struct {
	mu          sync.RWMutex
	secrets     map[string]string
	unavailable bool
}

// NewMemoryStore creates a new in-memory secret store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{secrets: make(map[string]string)}
}

// NewUnavailableStore returns a MemoryStore that reports itself unavailable,
// standing in for a host without a native keyring.
func NewUnavailableStore() *MemoryStore {
	return &MemoryStore{secrets: make(map[string]string), unavailable: true}
}

func (s *MemoryStore) Available() bool {
	return !s.unavailable
}

func (s *MemoryStore) Set(name, secret string) error {
	if s.unavailable {
		return ErrUnavailable
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.secrets[name] = secret
	return nil
}

func (s *MemoryStore) Get(name string) (string, error) {
	if s.unavailable {
		return "", ErrUnavailable
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.secrets[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return val, nil
}

func (s *MemoryStore) Delete(name string) error {
	if s.unavailable {
		return ErrUnavailable
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.secrets, name)
	return nil
}

// Len returns the number of stored secrets.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.secrets)
}
