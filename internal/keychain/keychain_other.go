//go:build !darwin && !linux && !windows

package keychain

// SystemStore is a stub for platforms without a native secret facility.
type SystemStore struct{}

// NewSystemStore returns a store that is never available.
func NewSystemStore(service string) *SystemStore {
	return &SystemStore{}
}

func (s *SystemStore) Available() bool { return false }

func (s *SystemStore) Get(name string) (string, error) { return "", ErrUnsupported }

func (s *SystemStore) Set(name, secret string) error { return ErrUnsupported }

func (s *SystemStore) Delete(name string) error { return ErrUnsupported }
