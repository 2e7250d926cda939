package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	pkgerrors "go-warehouse-ms/pkg/errors"
)

var (
	ErrEmptyFields      = pkgerrors.New(pkgerrors.CodeValidation, "at least one field is required")
	ErrSearchMismatch   = pkgerrors.New(pkgerrors.CodeValidation, "search columns and values must have the same non-zero length")
	ErrNoKeyReturned    = pkgerrors.New(pkgerrors.CodeExecution, "insert returned no key")
	ErrNotInTransaction = pkgerrors.New(pkgerrors.CodeInternal, "row locks require a transaction")
)

// Accessor offers table-generic CRUD over the whitelisted schema. Identifiers
// are checked before any statement text is built; only values are bound.
type Accessor struct {
	exec *Executor
	inTx bool
}

func NewAccessor(db *gorm.DB) *Accessor {
	return &Accessor{exec: NewExecutor(db)}
}

// WithTx binds the same primitives to a caller-owned transaction.
func (a *Accessor) WithTx(tx *gorm.DB) *Accessor {
	return &Accessor{exec: a.exec.WithTx(tx), inTx: true}
}

func (a *Accessor) Executor() *Executor {
	return a.exec
}

// Transaction runs fn with an Accessor bound to one database transaction.
// fn returning an error rolls everything back.
func (a *Accessor) Transaction(ctx context.Context, fn func(tx *Accessor) error) error {
	err := a.exec.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(a.WithTx(tx))
	})
	if err != nil {
		return classify(err)
	}
	return nil
}

// View returns the first row whose keyColumn equals keyValue.
func (a *Accessor) View(ctx context.Context, table Table, keyColumn string, keyValue any) (Row, bool, error) {
	if err := checkIdentifiers(table, keyColumn); err != nil {
		return nil, false, err
	}
	rows, err := a.exec.Run(ctx, viewTemplate(table, keyColumn), map[string]any{"k": keyValue}, true)
	if err != nil {
		return nil, false, err
	}
	if len(rows) == 0 {
		return nil, false, nil
	}
	return rows[0], true, nil
}

// Insert writes one row and returns its new surrogate key.
func (a *Accessor) Insert(ctx context.Context, table Table, fields map[string]any) (int64, error) {
	if len(fields) == 0 {
		return 0, ErrEmptyFields
	}
	columns := sortedColumns(fields)
	if err := checkIdentifiers(table, columns...); err != nil {
		return 0, err
	}

	rows, err := a.exec.Run(ctx, insertTemplate(table, columns), valueParams(fields), true)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, ErrNoKeyReturned
	}
	id, ok := rows[0].Int64(table.PrimaryKey())
	if !ok {
		return 0, ErrNoKeyReturned
	}
	return id, nil
}

// Update sets fields on rows matching keyColumn = keyValue. Matching zero rows is not an error.
func (a *Accessor) Update(ctx context.Context, table Table, keyColumn string, keyValue any, fields map[string]any) error {
	if len(fields) == 0 {
		return ErrEmptyFields
	}
	columns := sortedColumns(fields)
	if err := checkIdentifiers(table, append(columns, keyColumn)...); err != nil {
		return err
	}

	params := valueParams(fields)
	params["k"] = keyValue
	_, err := a.exec.Run(ctx, updateTemplate(table, keyColumn, columns), params, false)
	return err
}

// Delete removes rows matching keyColumn = keyValue. A missing key is a no-op.
func (a *Accessor) Delete(ctx context.Context, table Table, keyColumn string, keyValue any) error {
	if err := checkIdentifiers(table, keyColumn); err != nil {
		return err
	}
	_, err := a.exec.Run(ctx, deleteTemplate(table, keyColumn), map[string]any{"k": keyValue}, false)
	return err
}

// ResolveKey returns pkColumn of the first row where every searchColumns[i] equals searchValues[i].
func (a *Accessor) ResolveKey(ctx context.Context, table Table, pkColumn string, searchColumns []string, searchValues []any) (int64, bool, error) {
	if len(searchColumns) == 0 || len(searchColumns) != len(searchValues) {
		return 0, false, ErrSearchMismatch.WithDetails(map[string]any{
			"columns": len(searchColumns),
			"values":  len(searchValues),
		})
	}
	if err := checkIdentifiers(table, append([]string{pkColumn}, searchColumns...)...); err != nil {
		return 0, false, err
	}

	params := make(map[string]any, len(searchValues))
	for i, v := range searchValues {
		params[fmt.Sprintf("s%d", i)] = v
	}
	rows, err := a.exec.Run(ctx, resolveTemplate(table, pkColumn, searchColumns), params, true)
	if err != nil {
		return 0, false, err
	}
	if len(rows) == 0 {
		return 0, false, nil
	}
	id, ok := rows[0].Int64(pkColumn)
	if !ok {
		return 0, false, pkgerrors.New(pkgerrors.CodeExecution, "key column is not an integer")
	}
	return id, true, nil
}

// GetColumn returns one column of the first row where searchColumn = searchValue.
func (a *Accessor) GetColumn(ctx context.Context, table Table, column, searchColumn string, searchValue any) (any, bool, error) {
	if err := checkIdentifiers(table, column, searchColumn); err != nil {
		return nil, false, err
	}
	rows, err := a.exec.Run(ctx, columnTemplate(table, column, searchColumn), map[string]any{"k": searchValue}, true)
	if err != nil {
		return nil, false, err
	}
	if len(rows) == 0 {
		return nil, false, nil
	}
	return rows[0][column], true, nil
}

// List returns every row of table ordered by its primary key.
func (a *Accessor) List(ctx context.Context, table Table) ([]Row, error) {
	if err := checkIdentifiers(table); err != nil {
		return nil, err
	}
	return a.exec.Run(ctx, listTemplate(table), nil, true)
}

// ListInto scans every row of table into dest, a pointer to a slice of models.
func (a *Accessor) ListInto(ctx context.Context, table Table, dest any) error {
	if err := checkIdentifiers(table); err != nil {
		return err
	}
	return a.exec.Scan(ctx, listTemplate(table), nil, dest)
}

// LockRow reads the matching row with SELECT ... FOR UPDATE. Only valid inside Transaction.
func (a *Accessor) LockRow(ctx context.Context, table Table, keyColumn string, keyValue any) (Row, bool, error) {
	if !a.inTx {
		return nil, false, ErrNotInTransaction
	}
	if err := checkIdentifiers(table, keyColumn); err != nil {
		return nil, false, err
	}

	var out []map[string]any
	err := a.exec.DB().WithContext(ctx).
		Table(string(table)).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where(clause.Eq{Column: clause.Column{Name: keyColumn}, Value: keyValue}).
		Limit(1).
		Find(&out).Error
	if err != nil {
		return nil, false, classify(err)
	}
	if len(out) == 0 {
		return nil, false, nil
	}
	return Row(out[0]), true, nil
}

func valueParams(fields map[string]any) map[string]any {
	params := make(map[string]any, len(fields)+1)
	for c, v := range fields {
		params["v_"+c] = v
	}
	return params
}

// ViewAs is View decoded into a model type.
func ViewAs[T any](ctx context.Context, a *Accessor, table Table, keyColumn string, keyValue any) (*T, bool, error) {
	if err := checkIdentifiers(table, keyColumn); err != nil {
		return nil, false, err
	}
	var out []T
	if err := a.exec.Scan(ctx, viewTemplate(table, keyColumn), map[string]any{"k": keyValue}, &out); err != nil {
		return nil, false, err
	}
	if len(out) == 0 {
		return nil, false, nil
	}
	return &out[0], true, nil
}

// QueryAs runs one of the fixed statements and decodes every row into T.
func QueryAs[T any](ctx context.Context, a *Accessor, stmt Statement, params map[string]any) ([]T, error) {
	var out []T
	if err := a.exec.Scan(ctx, stmt, params, &out); err != nil {
		return nil, err
	}
	return out, nil
}
