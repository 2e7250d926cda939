package store

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	pkgerrors "go-warehouse-ms/pkg/errors"
)

// Table is a whitelisted table name.
type Table string

const (
	TableUsers         Table = "users"
	TableSuppliers     Table = "suppliers"
	TableProducts      Table = "products"
	TableWarehouse     Table = "warehouse"
	TableInventory     Table = "inventory"
	TableOrders        Table = "orders"
	TableOrderItems    Table = "order_items"
	TablePayments      Table = "payments"
	TableStockMovement Table = "stock_movement"
)

type tableSchema struct {
	primaryKey string
	columns    map[string]struct{}
}

func newTableSchema(pk string, columns ...string) tableSchema {
	set := make(map[string]struct{}, len(columns)+1)
	set[pk] = struct{}{}
	for _, c := range columns {
		set[c] = struct{}{}
	}
	return tableSchema{primaryKey: pk, columns: set}
}

// schema is the complete set of identifiers a statement may name.
var schema = map[Table]tableSchema{
	TableUsers:         newTableSchema("user_id", "username", "role", "email", "phone", "date_joined", "password"),
	TableSuppliers:     newTableSchema("supplier_id", "supplier_name", "supplier_phone", "supplier_email", "supplier_city"),
	TableProducts:      newTableSchema("product_id", "product_name", "category", "unit_price", "is_available", "reorder_level"),
	TableWarehouse:     newTableSchema("warehouse_id", "warehouse_city", "warehouse_total_capacity"),
	TableInventory:     newTableSchema("inventory_id", "product_id", "warehouse_id", "stock_left", "last_restocked"),
	TableOrders:        newTableSchema("order_id", "supplier_id", "order_date", "order_status", "created_by"),
	TableOrderItems:    newTableSchema("order_item_id", "order_id", "product_id", "quantity_ordered", "unit_price"),
	TablePayments:      newTableSchema("payment_id", "order_id", "amount_paid", "payment_status", "payment_date", "recorded_by"),
	TableStockMovement: newTableSchema("movement_id", "product_id", "warehouse_id", "movement_type", "quantity", "movement_date", "performed_by"),
}

var ErrUnknownIdentifier = pkgerrors.New(pkgerrors.CodeValidation, "unknown table or column")

// PrimaryKey returns the surrogate key column of t.
func (t Table) PrimaryKey() string {
	return schema[t].primaryKey
}

func (t Table) Valid() bool {
	_, ok := schema[t]
	return ok
}

// ParseTable maps raw input onto a whitelisted table.
func ParseTable(name string) (Table, error) {
	t := Table(name)
	if !t.Valid() {
		return "", ErrUnknownIdentifier.WithDetails(map[string]any{"table": name})
	}
	return t, nil
}

func checkIdentifiers(t Table, columns ...string) error {
	ts, ok := schema[t]
	if !ok {
		return ErrUnknownIdentifier.WithDetails(map[string]any{"table": string(t)})
	}
	for _, c := range columns {
		if _, ok := ts.columns[c]; !ok {
			return ErrUnknownIdentifier.WithDetails(map[string]any{"table": string(t), "column": c})
		}
	}
	return nil
}

// sortedColumns returns the keys of fields in a stable order so identical
// column sets share one cached template.
func sortedColumns(fields map[string]any) []string {
	cols := make([]string, 0, len(fields))
	for c := range fields {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}

// templates caches statement text per (operation, table, columns).
var templates sync.Map

func cachedTemplate(op string, t Table, columns []string, build func() string) Statement {
	key := op + "|" + string(t) + "|" + strings.Join(columns, ",")
	if v, ok := templates.Load(key); ok {
		return v.(Statement)
	}
	stmt := Statement(build())
	actual, _ := templates.LoadOrStore(key, stmt)
	return actual.(Statement)
}

func viewTemplate(t Table, keyColumn string) Statement {
	return cachedTemplate("view", t, []string{keyColumn}, func() string {
		return fmt.Sprintf("SELECT * FROM %s WHERE %s = @k LIMIT 1", t, keyColumn)
	})
}

func insertTemplate(t Table, columns []string) Statement {
	return cachedTemplate("insert", t, columns, func() string {
		params := make([]string, len(columns))
		for i, c := range columns {
			params[i] = "@v_" + c
		}
		return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
			t, strings.Join(columns, ", "), strings.Join(params, ", "), t.PrimaryKey())
	})
}

func updateTemplate(t Table, keyColumn string, columns []string) Statement {
	return cachedTemplate("update:"+keyColumn, t, columns, func() string {
		sets := make([]string, len(columns))
		for i, c := range columns {
			sets[i] = fmt.Sprintf("%s = @v_%s", c, c)
		}
		return fmt.Sprintf("UPDATE %s SET %s WHERE %s = @k", t, strings.Join(sets, ", "), keyColumn)
	})
}

func deleteTemplate(t Table, keyColumn string) Statement {
	return cachedTemplate("delete", t, []string{keyColumn}, func() string {
		return fmt.Sprintf("DELETE FROM %s WHERE %s = @k", t, keyColumn)
	})
}

func resolveTemplate(t Table, pkColumn string, searchColumns []string) Statement {
	return cachedTemplate("resolve:"+pkColumn, t, searchColumns, func() string {
		conds := make([]string, len(searchColumns))
		for i, c := range searchColumns {
			conds[i] = fmt.Sprintf("%s = @s%d", c, i)
		}
		return fmt.Sprintf("SELECT %s FROM %s WHERE %s LIMIT 1", pkColumn, t, strings.Join(conds, " AND "))
	})
}

func columnTemplate(t Table, column, searchColumn string) Statement {
	return cachedTemplate("column:"+column, t, []string{searchColumn}, func() string {
		return fmt.Sprintf("SELECT %s FROM %s WHERE %s = @k LIMIT 1", column, t, searchColumn)
	})
}

func listTemplate(t Table) Statement {
	return cachedTemplate("list", t, nil, func() string {
		return fmt.Sprintf("SELECT * FROM %s ORDER BY %s", t, t.PrimaryKey())
	})
}
