package keychain

import (
	"fmt"

	"github.com/benaskins/ccprof/internal/audit"
)

// AuditedStore wraps a Store and records every access in the audit log.
type AuditedStore struct {
	inner   Store
	audit   *audit.Logger
	backend string // "keychain" or "vault"
	actor   string // "cli" or "launcher"
}

// NewAuditedStore wraps an existing store with audit logging.
func NewAuditedStore(inner Store, auditLog *audit.Logger, backend, actor string) *AuditedStore {
	return &AuditedStore{
		inner:   inner,
		audit:   auditLog,
		backend: backend,
		actor:   actor,
	}
}

func (s *AuditedStore) Available() bool {
	return s.inner.Available()
}

func (s *AuditedStore) Set(name, secret string) error {
	if err := s.inner.Set(name, secret); err != nil {
		s.log(audit.ActionSecretWrite, name, err)
		return fmt.Errorf("audited store set: %w", err)
	}
	s.log(audit.ActionSecretWrite, name, nil)
	return nil
}

func (s *AuditedStore) Get(name string) (string, error) {
	val, err := s.inner.Get(name)
	if err != nil {
		return "", fmt.Errorf("audited store get: %w", err)
	}
	s.log(audit.ActionSecretRead, name, nil)
	return val, nil
}

func (s *AuditedStore) Delete(name string) error {
	if err := s.inner.Delete(name); err != nil {
		s.log(audit.ActionSecretDelete, name, err)
		return fmt.Errorf("audited store delete: %w", err)
	}
	s.log(audit.ActionSecretDelete, name, nil)
	return nil
}

// log is best-effort; a failure to log never blocks the operation.
func (s *AuditedStore) log(action audit.Action, name string, opErr error) {
	entry := audit.Entry{
		Action:  action,
		Profile: name,
		Backend: s.backend,
		Actor:   s.actor,
	}
	if opErr != nil {
		entry.Error = opErr.Error()
	}
	_ = s.audit.Log(entry)
}
