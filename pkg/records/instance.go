package records

import (
	"context"
	"fmt"

	"github.com/platinummonkey/visionrecords/pkg/audit"
	"github.com/platinummonkey/visionrecords/pkg/ledger"
	"github.com/platinummonkey/visionrecords/pkg/rbac"
)

// Initialize records admin as the instance administrator and gives it the admin role
func (s *Service) Initialize(ctx context.Context, admin ledger.Address) error {
	return s.mutate(ctx, "initialize", audit.EventTypeInitialized, admin, guardNone, func(c *call) error {
		c.resource(audit.ResourceTypeInstance, string(admin))

		if admin == "" {
			return fmt.Errorf("%w: empty admin address", ErrInvalidInput)
		}

		ok, err := c.initialized()
		if err != nil {
			return err
		}
		if ok {
			return ErrAlreadyInitialized
		}

		if err := c.tx.Set(adminKey, admin); err != nil {
			return err
		}
		return c.rbac.AssignRole(admin, rbac.RoleAdmin, 0)
	})
}

// GetAdmin returns the instance administrator
func (s *Service) GetAdmin(ctx context.Context) (ledger.Address, error) {
	var admin ledger.Address
	err := s.view(ctx, "get_admin", func(c *call) error {
		ok, err := c.tx.Get(adminKey, &admin)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotInitialized
		}
		return nil
	})
	return admin, err
}

// IsInitialized reports whether Initialize has run
func (s *Service) IsInitialized(ctx context.Context) (bool, error) {
	var ok bool
	err := s.view(ctx, "is_initialized", func(c *call) error {
		var err error
		ok, err = c.initialized()
		return err
	})
	return ok, err
}

// Pause stops every mutating entry point except Unpause
func (s *Service) Pause(ctx context.Context, caller ledger.Address) error {
	return s.mutate(ctx, "pause", audit.EventTypePaused, caller, guardActive, func(c *call) error {
		c.resource(audit.ResourceTypeInstance, "paused")
		if err := c.requirePermission(caller, rbac.PermissionSystemAdmin); err != nil {
			return err
		}
		return c.tx.Set(pausedKey, true)
	})
}

// Unpause resumes normal operation
func (s *Service) Unpause(ctx context.Context, caller ledger.Address) error {
	return s.mutate(ctx, "unpause", audit.EventTypeUnpaused, caller, guardInitialized, func(c *call) error {
		c.resource(audit.ResourceTypeInstance, "paused")
		if err := c.requirePermission(caller, rbac.PermissionSystemAdmin); err != nil {
			return err
		}
		return c.tx.Delete(pausedKey)
	})
}

// IsPaused reports whether the instance is paused
func (s *Service) IsPaused(ctx context.Context) (bool, error) {
	var paused bool
	err := s.view(ctx, "is_paused", func(c *call) error {
		var err error
		paused, err = c.paused()
		return err
	})
	return paused, err
}

// GetRecordCount returns how many records have been created
func (s *Service) GetRecordCount(ctx context.Context) (uint64, error) {
	var n uint64
	err := s.view(ctx, "get_record_count", func(c *call) error {
		_, err := c.tx.Get(recordCounterKey, &n)
		return err
	})
	return n, err
}

// Version returns the contract version
func (s *Service) Version() uint32 {
	return ContractVersion
}

// Status reads the instance summary in one invocation
func (s *Service) Status(ctx context.Context) (*Status, error) {
	st := &Status{Version: ContractVersion}
	err := s.view(ctx, "status", func(c *call) error {
		var err error
		if st.Initialized, err = c.initialized(); err != nil {
			return err
		}
		if st.Paused, err = c.paused(); err != nil {
			return err
		}
		_, err = c.tx.Get(recordCounterKey, &st.RecordCount)
		return err
	})
	if err != nil {
		return nil, err
	}
	return st, nil
}
