// Package txn ejecuta cada escritura en su propia transacción: commit si todo sale
// bien, rollback en cualquier falla, y clasificación del error resultante.
package txn

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"vet-records/internal/domain/failure"
	"vet-records/internal/platform/logger"
)

type Action string

const (
	ActionCreate     Action = "create"
	ActionUpdate     Action = "update"
	ActionDelete     Action = "delete"
	ActionSoftDelete Action = "soft_delete"

	// lecturas; solo para logs de fallas
	ActionList Action = "list"
	ActionGet  Action = "get"
)

const (
	OutcomeCommitted = "committed"
	OutcomeRejected  = "rejected"
	OutcomeFatal     = "fatal"
)

// Op describe la escritura para logs y métricas.
type Op struct {
	Entity string
	Action Action
	// Fields: identidad del registro y actor; van tal cual al log.
	Fields map[string]any
}

type Result struct {
	RowsAffected int64
	ID           int64
	Message      string
}

// WriteFunc ejecuta las sentencias dentro de tx. No debe hacer commit ni rollback.
type WriteFunc func(ctx context.Context, tx *sql.Tx) (Result, error)

// Reconciler puede traducir un error crudo del store a un error de dominio.
// Devuelve nil si no lo reconoce.
type Reconciler func(err error) error

type Recorder interface {
	ObserveWrite(entity, action, outcome string, d time.Duration)
}

type Coordinator struct {
	db      *sql.DB
	log     logger.Logger
	metrics Recorder
	tracer  trace.Tracer
}

type Option func(*Coordinator)

func WithRecorder(r Recorder) Option {
	return func(c *Coordinator) { c.metrics = r }
}

func WithTracer(t trace.Tracer) Option {
	return func(c *Coordinator) {
		if t != nil {
			c.tracer = t
		}
	}
}

func NewCoordinator(db *sql.DB, log logger.Logger, opts ...Option) *Coordinator {
	if log == nil {
		log = logger.Discard()
	}
	c := &Coordinator{
		db:     db,
		log:    log,
		tracer: noop.NewTracerProvider().Tracer("txn"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Execute abre una transacción, corre write y hace commit.
// Ante cualquier error hace rollback antes de volver. Los errores de dominio
// (validación, duplicado) se devuelven tal cual; el resto como *failure.FatalError.
func (c *Coordinator) Execute(ctx context.Context, op Op, write WriteFunc, reconcile Reconciler) (res Result, err error) {
	start := time.Now()
	ctx, span := c.tracer.Start(ctx, "txn."+string(op.Action),
		trace.WithAttributes(
			attribute.String("entity", op.Entity),
			attribute.String("action", string(op.Action)),
		))
	defer span.End()

	log := c.log.With(withOp(op))

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return Result{}, c.fail(span, log, op, start, err, reconcile)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		// cubre panics dentro de write
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Error("rollback failed", map[string]any{"err": rbErr.Error()})
		}
	}()

	res, err = write(ctx, tx)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Error("rollback failed", map[string]any{"err": rbErr.Error()})
		}
		return Result{}, c.fail(span, log, op, start, err, reconcile)
	}

	if err := tx.Commit(); err != nil {
		return Result{}, c.fail(span, log, op, start, err, reconcile)
	}
	committed = true

	span.SetAttributes(attribute.Int64("rows_affected", res.RowsAffected))
	c.observe(op, OutcomeCommitted, start)
	log.Info("write committed", map[string]any{
		"rows_affected": res.RowsAffected,
		"id":            res.ID,
		"duration_ms":   time.Since(start).Milliseconds(),
	})
	return res, nil
}

// Fatal registra err con un incidente nuevo y lo devuelve envuelto.
// Para fallas de lectura, que no pasan por Execute.
func (c *Coordinator) Fatal(op Op, err error) error {
	fe := failure.NewFatal(op.Entity, string(op.Action), err)
	c.log.With(withOp(op)).Error("operation failed", map[string]any{
		"incident": fe.Incident,
		"err":      err.Error(),
	})
	return fe
}

func (c *Coordinator) fail(span trace.Span, log logger.Logger, op Op, start time.Time, err error, reconcile Reconciler) error {
	if !failure.IsDomain(err) && reconcile != nil {
		if dom := reconcile(err); dom != nil {
			log.Debug("store error reconciled", map[string]any{"err": err.Error()})
			err = dom
		}
	}

	if failure.IsDomain(err) {
		span.SetAttributes(attribute.String("outcome", OutcomeRejected))
		c.observe(op, OutcomeRejected, start)
		log.Warn("write rejected", map[string]any{"reason": err.Error()})
		return err
	}

	fe := failure.NewFatal(op.Entity, string(op.Action), err)
	span.RecordError(err)
	span.SetStatus(codes.Error, "fatal")
	span.SetAttributes(attribute.String("incident", fe.Incident))
	c.observe(op, OutcomeFatal, start)
	log.Error("write failed", map[string]any{
		"incident": fe.Incident,
		"err":      err.Error(),
	})
	return fe
}

func (c *Coordinator) observe(op Op, outcome string, start time.Time) {
	if c.metrics == nil {
		return
	}
	c.metrics.ObserveWrite(op.Entity, string(op.Action), outcome, time.Since(start))
}

func withOp(op Op) map[string]any {
	fields := make(map[string]any, len(op.Fields)+2)
	for k, v := range op.Fields {
		fields[k] = v
	}
	fields["entity"] = op.Entity
	fields["action"] = string(op.Action)
	return fields
}
