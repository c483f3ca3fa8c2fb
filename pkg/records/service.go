package records

import (
	"context"
	"errors"
	"fmt"

	"github.com/platinummonkey/visionrecords/pkg/access"
	"github.com/platinummonkey/visionrecords/pkg/audit"
	"github.com/platinummonkey/visionrecords/pkg/ledger"
	"github.com/platinummonkey/visionrecords/pkg/observability"
	"github.com/platinummonkey/visionrecords/pkg/rbac"
	"github.com/platinummonkey/visionrecords/pkg/versioning"
)

var (
	adminKey         = ledger.NewKey(ledger.KindInstance, "admin")
	pausedKey        = ledger.NewKey(ledger.KindInstance, "paused")
	recordCounterKey = ledger.NewKey(ledger.KindCounter, "record")
)

func userKey(user ledger.Address) ledger.Key {
	return ledger.NewKey(ledger.KindUser, string(user))
}

func recordKey(id uint64) ledger.Key {
	return ledger.NewKey(ledger.KindRecord, ledger.Uint(id))
}

func patientIndexKey(patient ledger.Address) ledger.Key {
	return ledger.NewKey(ledger.KindPatientIndex, string(patient))
}

// Service runs the vision records entry points on a ledger
type Service struct {
	ledger  *ledger.Ledger
	audit   audit.Logger
	logger  *observability.Logger
	metrics *observability.Metrics
}

// Option configures a Service
type Option func(*Service)

// WithAuditLogger sets the audit sink
func WithAuditLogger(l audit.Logger) Option {
	return func(s *Service) { s.audit = l }
}

// WithLogger sets the service logger
func WithLogger(l *observability.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithMetrics enables business metrics
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService creates a service over l
func NewService(l *ledger.Ledger, opts ...Option) *Service {
	s := &Service{
		ledger: l,
		audit:  audit.NoOpLogger{},
		logger: observability.NopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ledger returns the underlying ledger
func (s *Service) Ledger() *ledger.Ledger {
	return s.ledger
}

type guard int

const (
	// guardNone runs unconditionally
	guardNone guard = iota
	// guardInitialized requires an initialized instance
	guardInitialized
	// guardActive requires an initialized, unpaused instance
	guardActive
)

// call carries the stores of one invocation
type call struct {
	tx       *ledger.Tx
	rbac     *rbac.Store
	access   *access.Registry
	versions *versioning.Log
	event    *audit.AuditEvent
}

func newCall(tx *ledger.Tx, event *audit.AuditEvent) *call {
	return &call{
		tx:       tx,
		rbac:     rbac.NewStore(tx),
		access:   access.NewRegistry(tx),
		versions: versioning.NewLog(tx),
		event:    event,
	}
}

// mutate runs fn as a committing invocation and emits its audit event once the
// outcome is known
func (s *Service) mutate(ctx context.Context, op string, eventType audit.EventType, caller ledger.Address, g guard, fn func(c *call) error) error {
	event := audit.NewEvent(ctx, eventType, audit.EventStatusSuccess)
	event.Actor = string(caller)

	err := s.ledger.Invoke(ctx, op, func(tx *ledger.Tx) error {
		c := newCall(tx, event)
		event.LedgerTime = uint64(tx.Now())
		if err := c.checkGuard(g); err != nil {
			return err
		}
		return fn(c)
	})

	s.emit(ctx, op, event, err)
	return err
}

// view runs fn as a read-only invocation
func (s *Service) view(ctx context.Context, op string, fn func(c *call) error) error {
	return s.ledger.View(ctx, op, func(tx *ledger.Tx) error {
		return fn(newCall(tx, nil))
	})
}

func (s *Service) emit(ctx context.Context, op string, event *audit.AuditEvent, err error) {
	logger := observability.FromContext(ctx, s.logger).WithField("operation", op)

	switch {
	case err == nil:
		logger.WithField("resource_id", event.ResourceID).Debug("call committed")
	case errors.Is(err, ErrUnauthorized):
		event.Status = audit.EventStatusDenied
		event.ErrorMessage = err.Error()
		s.metrics.RecordDenial(op)
		logger.WithError(err).Warn("call denied")
	default:
		event.Status = audit.EventStatusFailure
		event.ErrorMessage = err.Error()
		if Code(err) == CodeNone {
			logger.WithError(err).Error("call failed")
		} else {
			logger.WithError(err).Info("call rejected")
		}
	}

	if aerr := s.audit.Log(ctx, event); aerr != nil {
		logger.WithError(aerr).Error("failed to write audit event")
	}
}

func (c *call) checkGuard(g guard) error {
	if g == guardNone {
		return nil
	}

	ok, err := c.initialized()
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotInitialized
	}

	if g == guardActive {
		paused, err := c.paused()
		if err != nil {
			return err
		}
		if paused {
			return ErrPaused
		}
	}
	return nil
}

func (c *call) initialized() (bool, error) {
	return c.tx.Has(adminKey)
}

func (c *call) paused() (bool, error) {
	var paused bool
	if _, err := c.tx.Get(pausedKey, &paused); err != nil {
		return false, err
	}
	return paused, nil
}

// authorize turns a decision into ErrUnauthorized
func authorize(ok bool, err error) error {
	if err != nil {
		return err
	}
	if !ok {
		return ErrUnauthorized
	}
	return nil
}

func (c *call) requirePermission(caller ledger.Address, p rbac.Permission) error {
	if err := authorize(c.rbac.HasPermission(caller, p)); err != nil {
		if errors.Is(err, ErrUnauthorized) {
			return fmt.Errorf("%w: %s lacks %s", ErrUnauthorized, caller, p)
		}
		return err
	}
	return nil
}

func (c *call) resource(rt audit.ResourceType, id string) {
	if c.event != nil {
		c.event.ResourceType = rt
		c.event.ResourceID = id
	}
}

func (c *call) meta(key string, value interface{}) {
	if c.event != nil {
		c.event.Metadata[key] = value
	}
}

// mapRBACError translates rbac errors into domain errors
func mapRBACError(err error) error {
	if errors.Is(err, rbac.ErrUserNotFound) {
		return fmt.Errorf("%w: %v", ErrUserNotFound, err)
	}
	return err
}
