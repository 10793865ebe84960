// Package keychain provides per-profile secret storage backed by the
// platform's native credential facility.
//
// Secrets are stored as generic passwords with:
//   - Service: "ccprof" (all ccprof secrets share this service)
//   - Account: "profile/<name>" (e.g. "profile/work")
//
// On macOS the login Keychain is used. On Linux the Secret Service (D-Bus)
// is used and on Windows the Credential Manager. Other platforms report
// themselves unavailable.
package keychain

import "errors"

// DefaultService is the service attribute shared by every ccprof secret.
const DefaultService = "ccprof"

var (
	// ErrNotFound is returned when no secret exists for a profile.
	ErrNotFound = errors.New("secret not found")

	// ErrUnavailable is returned when the native facility could not be reached.
	ErrUnavailable = errors.New("native secret storage unavailable")

	// ErrUnsupported is returned on platforms without a native backend.
	ErrUnsupported = errors.New("native secret storage not supported on this platform")
)

// Store is the interface for secret storage operations. Implementations hold
// at most one secret per profile name.
type Store interface {
	// Available reports whether the backend can be used at all. Callers
	// must check it rather than infer availability from failed calls.
	Available() bool
	Get(name string) (string, error)
	Set(name, secret string) error
	// Delete removes a secret. Deleting a missing secret is not an error.
	Delete(name string) error
}

// Verify reports whether the store holds a non-empty secret for name.
func Verify(s Store, name string) bool {
	if !s.Available() {
		return false
	}
	val, err := s.Get(name)
	return err == nil && val != ""
}

// Account maps a profile name onto its namespaced account key.
func Account(name string) string {
	return "profile/" + name
}

// probeAccount is looked up to test whether the native store responds.
const probeAccount = "ccprof-availability-probe"
