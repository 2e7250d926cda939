package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Diagnostics is the server-side view of a failed request. It is logged,
// never returned to clients.
type Diagnostics struct {
	Code     Code
	Status   int
	Message  string
	Chain    []string
	Postgres *PostgresFields
}

// PostgresFields holds what the server reported for a failed statement.
type PostgresFields struct {
	SQLState   string
	Constraint string
	Table      string
	Column     string
	Detail     string
	Message    string
}

// Diagnose walks err's chain and collects the code, the wrapped causes and,
// when the root is a Postgres error, the server's fields.
func Diagnose(err error) Diagnostics {
	if err == nil {
		return Diagnostics{}
	}

	code := CodeOf(err)
	d := Diagnostics{
		Code:    code,
		Status:  MetadataFor(code).HTTPStatus,
		Message: err.Error(),
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		d.Postgres = &PostgresFields{
			SQLState:   pgErr.Code,
			Constraint: pgErr.ConstraintName,
			Table:      pgErr.TableName,
			Column:     pgErr.ColumnName,
			Detail:     pgErr.Detail,
			Message:    pgErr.Message,
		}
	}
	return d
}

// Fields flattens d for structured logging. Empty Postgres fields are left out.
func (d Diagnostics) Fields() map[string]any {
	fields := map[string]any{
		"error_code":   string(d.Code),
		"error_status": d.Status,
		"error_chain":  d.Chain,
	}
	if pg := d.Postgres; pg != nil {
		for key, value := range map[string]string{
			"pg_sqlstate":   pg.SQLState,
			"pg_constraint": pg.Constraint,
			"pg_table":      pg.Table,
			"pg_column":     pg.Column,
			"pg_detail":     pg.Detail,
			"pg_message":    pg.Message,
		} {
			if value != "" {
				fields[key] = value
			}
		}
	}
	return fields
}
