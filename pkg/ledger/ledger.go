package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/platinummonkey/visionrecords/pkg/observability"
	"github.com/platinummonkey/visionrecords/pkg/storage"
)

// ErrReadOnly is returned when a view tries to write
var ErrReadOnly = errors.New("write attempted in read-only invocation")

const tracerName = "github.com/platinummonkey/visionrecords/pkg/ledger"

// Ledger serializes invocations over a storage backend
type Ledger struct {
	mu      sync.Mutex
	backend storage.Backend
	clock   Clock
	logger  *observability.Logger
	metrics *observability.Metrics
	tracer  trace.Tracer
}

// Option configures a Ledger
type Option func(*Ledger)

// WithClock sets the ledger clock
func WithClock(c Clock) Option {
	return func(l *Ledger) { l.clock = c }
}

// WithLogger sets the ledger logger
func WithLogger(logger *observability.Logger) Option {
	return func(l *Ledger) { l.logger = logger }
}

// WithMetrics enables invocation metrics
func WithMetrics(m *observability.Metrics) Option {
	return func(l *Ledger) { l.metrics = m }
}

// New creates a ledger over backend
func New(backend storage.Backend, opts ...Option) *Ledger {
	l := &Ledger{
		backend: backend,
		clock:   SystemClock{},
		logger:  observability.NopLogger(),
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Now returns the ledger clock time
func (l *Ledger) Now() Timestamp {
	return l.clock.Now()
}

// HealthCheck reports the backend health
func (l *Ledger) HealthCheck(ctx context.Context) error {
	return l.backend.HealthCheck(ctx)
}

// Close closes the backend
func (l *Ledger) Close() error {
	return l.backend.Close()
}

// Invoke runs fn with exclusive access to ledger state. Writes made through the
// Tx are committed atomically if fn returns nil and discarded otherwise.
func (l *Ledger) Invoke(ctx context.Context, op string, fn func(tx *Tx) error) error {
	return l.run(ctx, op, false, fn)
}

// View runs fn as a read-only invocation
func (l *Ledger) View(ctx context.Context, op string, fn func(tx *Tx) error) error {
	return l.run(ctx, op, true, fn)
}

func (l *Ledger) run(ctx context.Context, op string, readOnly bool, fn func(tx *Tx) error) (err error) {
	ctx, span := l.tracer.Start(ctx, "ledger."+op, trace.WithAttributes(
		attribute.String("ledger.operation", op),
		attribute.Bool("ledger.read_only", readOnly),
	))
	defer span.End()
	logger := observability.UpdateLoggerWithTraceContext(ctx, l.logger).WithField("operation", op)

	start := time.Now()
	defer func() {
		l.metrics.RecordInvocation(op, err, time.Since(start))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	l.mu.Lock()
	defer l.mu.Unlock()

	tx := &Tx{
		ctx:      ctx,
		backend:  l.backend,
		now:      l.clock.Now(),
		readOnly: readOnly,
		pending:  make(map[string]pendingWrite),
	}

	if err := fn(tx); err != nil {
		logger.WithError(err).Debug("invocation rejected")
		return err
	}

	writes := tx.writes()
	if len(writes) == 0 {
		return nil
	}

	if err := l.backend.Commit(ctx, writes); err != nil {
		logger.WithError(err).Error("ledger commit failed")
		return fmt.Errorf("failed to commit %s: %w", op, err)
	}

	span.SetAttributes(attribute.Int("ledger.writes", len(writes)))
	l.metrics.RecordCommit(len(writes))
	logger.WithFields(map[string]interface{}{
		"writes":    len(writes),
		"timestamp": uint64(tx.now),
	}).Debug("invocation committed")
	return nil
}

type pendingWrite struct {
	value   []byte
	deleted bool
}

// Tx is the view of ledger state inside one invocation
type Tx struct {
	ctx      context.Context
	backend  storage.Reader
	now      Timestamp
	readOnly bool
	pending  map[string]pendingWrite
	order    []string
}

// Context returns the invocation context
func (tx *Tx) Context() context.Context {
	return tx.ctx
}

// Now returns the ledger timestamp, fixed for the whole invocation
func (tx *Tx) Now() Timestamp {
	return tx.now
}

// Get decodes the value at key into dest. It reports false when the key is absent.
func (tx *Tx) Get(key Key, dest interface{}) (bool, error) {
	raw, ok, err := tx.raw(key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

// Has reports whether key holds a value
func (tx *Tx) Has(key Key) (bool, error) {
	_, ok, err := tx.raw(key)
	return ok, err
}

func (tx *Tx) raw(key Key) ([]byte, bool, error) {
	k := key.String()
	if w, ok := tx.pending[k]; ok {
		if w.deleted {
			return nil, false, nil
		}
		return w.value, true, nil
	}

	v, err := tx.backend.Get(tx.ctx, k)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w", k, err)
	}
	return v, true, nil
}

// Set stores value at key
func (tx *Tx) Set(key Key, value interface{}) error {
	if tx.readOnly {
		return ErrReadOnly
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	tx.stage(key.String(), pendingWrite{value: data})
	return nil
}

// Delete removes key
func (tx *Tx) Delete(key Key) error {
	if tx.readOnly {
		return ErrReadOnly
	}
	tx.stage(key.String(), pendingWrite{deleted: true})
	return nil
}

func (tx *Tx) stage(k string, w pendingWrite) {
	if _, seen := tx.pending[k]; !seen {
		tx.order = append(tx.order, k)
	}
	tx.pending[k] = w
}

func (tx *Tx) writes() []storage.Write {
	out := make([]storage.Write, 0, len(tx.order))
	for _, k := range tx.order {
		w := tx.pending[k]
		out = append(out, storage.Write{Key: k, Value: w.value, Delete: w.deleted})
	}
	return out
}
