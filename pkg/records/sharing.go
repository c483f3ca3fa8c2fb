package records

import (
	"context"
	"errors"
	"fmt"

	"github.com/platinummonkey/visionrecords/pkg/access"
	"github.com/platinummonkey/visionrecords/pkg/audit"
	"github.com/platinummonkey/visionrecords/pkg/ledger"
)

func accessResourceID(patient, grantee ledger.Address) string {
	return string(patient) + "/" + string(grantee)
}

// GrantAccess shares patient's records with grantee at level for durationSeconds,
// replacing any earlier grant for the pair
func (s *Service) GrantAccess(ctx context.Context, caller, patient, grantee ledger.Address, level access.Level, durationSeconds uint64) (*access.Grant, error) {
	var grant *access.Grant
	err := s.mutate(ctx, "grant_access", audit.EventTypeAccessGranted, caller, guardActive, func(c *call) error {
		c.resource(audit.ResourceTypeAccess, accessResourceID(patient, grantee))
		c.meta("level", level.String())
		c.meta("duration_seconds", durationSeconds)

		if !level.Valid() {
			return fmt.Errorf("%w: unknown access level", ErrInvalidInput)
		}
		if patient == "" || grantee == "" {
			return fmt.Errorf("%w: patient and grantee are required", ErrInvalidInput)
		}

		ok, err := canManageAccess(c.rbac, caller, patient)
		if err := authorize(ok, err); err != nil {
			return fmt.Errorf("%w: %s may not manage access for %s", err, caller, patient)
		}

		grant, err = c.access.GrantAccess(patient, grantee, level, durationSeconds)
		if errors.Is(err, access.ErrExpiryOverflow) {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordAccessChange("grant")
	return grant, nil
}

// CheckAccess returns grantee's live access level on patient's records
func (s *Service) CheckAccess(ctx context.Context, patient, grantee ledger.Address) (access.Level, error) {
	level := access.LevelNone
	err := s.view(ctx, "check_access", func(c *call) error {
		var err error
		level, err = c.access.CheckAccess(patient, grantee)
		return err
	})
	return level, err
}

// GetAccessGrant returns the stored grant, expired or not, nil if there is none
func (s *Service) GetAccessGrant(ctx context.Context, patient, grantee ledger.Address) (*access.Grant, error) {
	var grant *access.Grant
	err := s.view(ctx, "get_access_grant", func(c *call) error {
		var err error
		grant, err = c.access.GetGrant(patient, grantee)
		return err
	})
	return grant, err
}

// RevokeAccess deletes grantee's grant on patient's records. Only the patient
// may revoke; the caller is the patient.
func (s *Service) RevokeAccess(ctx context.Context, patient, grantee ledger.Address) error {
	err := s.mutate(ctx, "revoke_access", audit.EventTypeAccessRevoked, patient, guardActive, func(c *call) error {
		c.resource(audit.ResourceTypeAccess, accessResourceID(patient, grantee))
		if grantee == "" {
			return fmt.Errorf("%w: grantee is required", ErrInvalidInput)
		}
		return c.access.RevokeAccess(patient, grantee)
	})
	if err != nil {
		return err
	}

	s.metrics.RecordAccessChange("revoke")
	return nil
}
