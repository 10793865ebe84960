package secretstore

import (
	"io"
	"runtime"

	"github.com/benaskins/ccprof/internal/audit"
	"github.com/benaskins/ccprof/internal/keychain"
	"github.com/benaskins/ccprof/internal/vault"
)

// NewDefault selects a backend for the host: the platform keyring under
// service, or the vault at vaultPath. Every access is recorded in auditLog
// when it is non-nil.
func NewDefault(service, vaultPath string, auditLog *audit.Logger, actor string, warn io.Writer) (*Store, error) {
	opts := Options{
		Platform: runtime.GOOS,
		Native:   keychain.NewSystemStore(service),
		Vault: func() (keychain.Store, error) {
			key, err := vault.MachineKey()
			if err != nil {
				return nil, err
			}
			return vault.New(vaultPath, key), nil
		},
		Warn: warn,
	}
	if auditLog != nil {
		opts.Wrap = func(backend keychain.Store, label string) keychain.Store {
			return keychain.NewAuditedStore(backend, auditLog, label, actor)
		}
	}
	return New(opts)
}
