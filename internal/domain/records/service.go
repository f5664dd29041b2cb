// Package records expone los servicios de entidad (dueños, mascotas, citas y
// facturas). Cada uno compone validación, unicidad, transacción y baja lógica.
package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"vet-records/internal/domain/failure"
	"vet-records/internal/domain/schema"
	"vet-records/internal/domain/softdelete"
	"vet-records/internal/domain/txn"
	"vet-records/internal/domain/uniqueness"
	"vet-records/internal/domain/validation"
	"vet-records/internal/ports/store"
)

const (
	DefaultLimit = 5
	MaxLimit     = 100
)

// Actor es quien ejecuta la operación; solo se usa en logs.
type Actor struct {
	UserID string
	Role   string
}

type ListParams struct {
	Limit  int
	Offset int
	Filter string
}

func (p ListParams) normalize() ListParams {
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	p.Filter = strings.TrimSpace(p.Filter)
	return p
}

// DeleteResult: Soft indica baja lógica (Message trae la confirmación del store);
// si no, RowsAffected es 0 o 1.
type DeleteResult struct {
	Soft         bool
	Message      string
	RowsAffected int64
}

type Deps struct {
	DB          *sql.DB
	Dialect     store.Dialect
	Validator   *validation.Validator
	Guard       *uniqueness.Guard
	Coordinator *txn.Coordinator
	SoftDelete  *softdelete.Protocol
}

type scanner interface {
	Scan(dest ...any) error
}

// view describe cómo se leen los registros de una entidad.
type view[Out any] struct {
	// from incluye los JOINs; columns en el orden que espera scan.
	columns string
	from    string
	idExpr  string
	// active se aplica solo en List.
	active string
	filter []string
	order  string
	scan   func(scanner) (Out, error)
}

type Service[In any, Out any] struct {
	entity *schema.Entity[In]
	view   view[Out]
	deps   Deps

	insertSQL string
	updateSQL string
	deleteSQL string
}

func newService[In any, Out any](deps Deps, entity *schema.Entity[In], v view[Out]) *Service[In, Out] {
	m := entity.Meta
	cols := entity.Columns()

	marks := make([]string, len(cols))
	sets := make([]string, len(cols))
	for i, c := range cols {
		marks[i] = "?"
		sets[i] = c + " = ?"
	}

	return &Service[In, Out]{
		entity: entity,
		view:   v,
		deps:   deps,
		insertSQL: deps.Dialect.Rebind(fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
			m.Table, strings.Join(cols, ", "), strings.Join(marks, ", "), m.IDColumn)),
		updateSQL: deps.Dialect.Rebind(fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?",
			m.Table, strings.Join(sets, ", "), m.IDColumn)),
		deleteSQL: deps.Dialect.Rebind(fmt.Sprintf("DELETE FROM %s WHERE %s = ?", m.Table, m.IDColumn)),
	}
}

func (s *Service[In, Out]) Meta() *schema.Meta { return s.entity.Meta }

// List devuelve una página ordenada. Dueños y mascotas: solo activos.
func (s *Service[In, Out]) List(ctx context.Context, p ListParams) ([]Out, error) {
	p = p.normalize()

	var (
		where []string
		args  []any
	)
	if s.view.active != "" {
		where = append(where, s.view.active)
	}
	if p.Filter != "" && len(s.view.filter) > 0 {
		term := "%" + escapeLike(strings.ToLower(p.Filter)) + "%"
		ors := make([]string, len(s.view.filter))
		for i, col := range s.view.filter {
			ors[i] = fmt.Sprintf(`LOWER(%s) LIKE ? ESCAPE '\'`, col)
			args = append(args, term)
		}
		where = append(where, "("+strings.Join(ors, " OR ")+")")
	}

	q := "SELECT " + s.view.columns + " FROM " + s.view.from
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY " + s.view.order + " LIMIT ? OFFSET ?"
	args = append(args, p.Limit, p.Offset)

	rows, err := s.deps.DB.QueryContext(ctx, s.deps.Dialect.Rebind(q), args...)
	if err != nil {
		return nil, s.readFailure(txn.ActionList, err)
	}
	defer rows.Close()

	out := make([]Out, 0, p.Limit)
	for rows.Next() {
		rec, err := s.view.scan(rows)
		if err != nil {
			return nil, s.readFailure(txn.ActionList, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, s.readFailure(txn.ActionList, err)
	}
	return out, nil
}

// Get lee un registro por id, activo o no.
func (s *Service[In, Out]) Get(ctx context.Context, id int64) (Out, error) {
	var zero Out
	if id <= 0 {
		return zero, failure.ErrNotFound
	}

	q := "SELECT " + s.view.columns + " FROM " + s.view.from + " WHERE " + s.view.idExpr + " = ?"
	rec, err := s.view.scan(s.deps.DB.QueryRowContext(ctx, s.deps.Dialect.Rebind(q), id))
	if errors.Is(err, sql.ErrNoRows) {
		return zero, failure.ErrNotFound
	}
	if err != nil {
		return zero, s.readFailure(txn.ActionGet, err)
	}
	return rec, nil
}

// Create valida, verifica unicidad e inserta. Devuelve el id asignado.
func (s *Service[In, Out]) Create(ctx context.Context, actor Actor, in In) (int64, error) {
	op := s.op(txn.ActionCreate, actor, in)
	if err := s.admit(ctx, op, in, 0); err != nil {
		return 0, err
	}

	res, err := s.deps.Coordinator.Execute(ctx, op,
		txn.InsertReturning(s.insertSQL, s.entity.Args(in)...), s.reconcile)
	if err != nil {
		return 0, err
	}
	return res.ID, nil
}

// Update reemplaza todos los campos del registro id. Devuelve filas afectadas (0 si no existe).
func (s *Service[In, Out]) Update(ctx context.Context, actor Actor, id int64, in In) (int64, error) {
	m := s.entity.Meta
	if !m.Updatable {
		return 0, fmt.Errorf("%s update: %w", m.Type, failure.ErrUnsupported)
	}
	if id <= 0 {
		return 0, &failure.ValidationError{Field: "id", Reason: "must be a positive integer", Kind: failure.KindFormat}
	}

	op := s.op(txn.ActionUpdate, actor, in)
	op.Fields["id"] = id
	if err := s.admit(ctx, op, in, id); err != nil {
		return 0, err
	}

	args := append(s.entity.Args(in), id)
	res, err := s.deps.Coordinator.Execute(ctx, op, txn.Exec(s.updateSQL, args...), s.reconcile)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected, nil
}

// Delete aplica baja lógica si la entidad la soporta; si no, DELETE físico.
func (s *Service[In, Out]) Delete(ctx context.Context, actor Actor, id int64) (DeleteResult, error) {
	m := s.entity.Meta
	fields := actorFields(actor)

	if m.SoftDelete {
		msg, err := s.deps.SoftDelete.Delete(ctx, m, id, fields)
		if err != nil {
			return DeleteResult{}, err
		}
		return DeleteResult{Soft: true, Message: msg}, nil
	}

	if id <= 0 {
		return DeleteResult{}, &failure.ValidationError{Field: "id", Reason: "must be a positive integer", Kind: failure.KindFormat}
	}
	fields["id"] = id
	op := txn.Op{Entity: string(m.Type), Action: txn.ActionDelete, Fields: fields}

	res, err := s.deps.Coordinator.Execute(ctx, op, txn.Exec(s.deleteSQL, id), s.reconcileDelete(id))
	if err != nil {
		return DeleteResult{}, err
	}
	return DeleteResult{RowsAffected: res.RowsAffected}, nil
}

// admit corre validación y luego el chequeo previo de unicidad.
// Nada se escribe si alguno falla.
func (s *Service[In, Out]) admit(ctx context.Context, op txn.Op, in In, selfID int64) error {
	m := s.entity.Meta

	if err := s.deps.Validator.Validate(ctx, m, s.entity.Values(in)); err != nil {
		return s.classify(op, err)
	}
	if len(m.Unique) == 0 {
		return nil
	}
	if err := s.deps.Guard.PreCheck(ctx, m, s.entity.UniqueValues(in), selfID); err != nil {
		return s.classify(op, err)
	}
	return nil
}

func (s *Service[In, Out]) classify(op txn.Op, err error) error {
	if failure.IsDomain(err) {
		return err
	}
	return s.deps.Coordinator.Fatal(op, err)
}

func (s *Service[In, Out]) reconcile(err error) error {
	return s.deps.Guard.Reconcile(s.entity.Meta, err)
}

// reconcileDelete: un DELETE bloqueado por una FK (p.ej. cita con factura) es
// un error del llamador, no una falla del store.
func (s *Service[In, Out]) reconcileDelete(id int64) txn.Reconciler {
	return func(err error) error {
		if v, ok := s.deps.Dialect.Violation(err); ok && v.ForeignKey {
			return &failure.ValidationError{
				Field:  "id",
				Reason: fmt.Sprintf("is referenced by other records: %d", id),
				Kind:   failure.KindReference,
				RefID:  id,
			}
		}
		return nil
	}
}

func (s *Service[In, Out]) readFailure(action txn.Action, err error) error {
	return s.deps.Coordinator.Fatal(txn.Op{Entity: string(s.entity.Meta.Type), Action: action}, err)
}

func (s *Service[In, Out]) op(action txn.Action, actor Actor, in In) txn.Op {
	fields := actorFields(actor)
	for k, v := range s.entity.Identity(in) {
		fields[k] = v
	}
	return txn.Op{Entity: string(s.entity.Meta.Type), Action: action, Fields: fields}
}

func actorFields(a Actor) map[string]any {
	fields := map[string]any{}
	if a.UserID != "" {
		fields["actor"] = a.UserID
	}
	if a.Role != "" {
		fields["role"] = a.Role
	}
	return fields
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
