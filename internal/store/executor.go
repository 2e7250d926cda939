package store

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	pkgerrors "go-warehouse-ms/pkg/errors"
)

// Executor runs parameterized statements. Each call is its own transaction;
// when the bound handle is already a transaction the call nests as a savepoint.
type Executor struct {
	db *gorm.DB
}

func NewExecutor(db *gorm.DB) *Executor {
	return &Executor{db: db}
}

// WithTx returns an Executor bound to tx.
func (e *Executor) WithTx(tx *gorm.DB) *Executor {
	return &Executor{db: tx}
}

// DB exposes the bound handle.
func (e *Executor) DB() *gorm.DB {
	return e.db
}

// Run executes stmt with named params. With fetch set it returns the result
// rows in order; otherwise it returns nil.
func (e *Executor) Run(ctx context.Context, stmt Statement, params map[string]any, fetch bool) ([]Row, error) {
	var rows []Row
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if !fetch {
			return tx.Exec(string(stmt), bindArgs(params)...).Error
		}
		var out []map[string]any
		if err := tx.Raw(string(stmt), bindArgs(params)...).Scan(&out).Error; err != nil {
			return err
		}
		rows = make([]Row, len(out))
		for i, m := range out {
			rows[i] = Row(m)
		}
		return nil
	})
	if err != nil {
		return nil, classify(err)
	}
	return rows, nil
}

// Scan runs a read statement and scans the result into dest, a pointer to a
// struct or slice of structs with gorm column tags.
func (e *Executor) Scan(ctx context.Context, stmt Statement, params map[string]any, dest any) error {
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Raw(string(stmt), bindArgs(params)...).Scan(dest).Error
	})
	if err != nil {
		return classify(err)
	}
	return nil
}

func bindArgs(params map[string]any) []any {
	if len(params) == 0 {
		return nil
	}
	return []any{params}
}

var (
	ErrExecution  = pkgerrors.New(pkgerrors.CodeExecution, "statement execution failed")
	ErrConstraint = pkgerrors.New(pkgerrors.CodeConstraint, "constraint violated")
)

// classify wraps a driver error as an execution or constraint error.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if typed := pkgerrors.As(err); typed != nil {
		return err
	}
	if isConstraintViolation(err) {
		return pkgerrors.Wrap(pkgerrors.CodeConstraint, err, ErrConstraint.Message())
	}
	return pkgerrors.Wrap(pkgerrors.CodeExecution, err, ErrExecution.Message())
}

func isConstraintViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// class 23: integrity constraint violation
		return strings.HasPrefix(pgErr.Code, "23")
	}
	// sqlite reports "UNIQUE constraint failed", "FOREIGN KEY constraint failed", ...
	return strings.Contains(err.Error(), "constraint failed")
}
