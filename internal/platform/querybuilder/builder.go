package querybuilder

import (
	"fmt"
	"strconv"
	"strings"
)

// sqlWriter accumulates SQL text and positional ($n) arguments.
type sqlWriter struct {
	buf  strings.Builder
	args []any
}

func (w *sqlWriter) text(parts ...string) {
	for _, p := range parts {
		w.buf.WriteString(p)
	}
}

func (w *sqlWriter) bind(value any) {
	w.args = append(w.args, value)
	w.buf.WriteString("$")
	w.buf.WriteString(strconv.Itoa(len(w.args)))
}

// expr writes raw SQL where every '?' consumes the next value.
func (w *sqlWriter) expr(sql string, values []any) {
	next := 0
	for i := 0; i < len(sql); i++ {
		if sql[i] == '?' && next < len(values) {
			w.bind(values[next])
			next++
			continue
		}
		w.buf.WriteByte(sql[i])
	}
}

func (w *sqlWriter) where(conds []Condition) {
	for i, c := range conds {
		if i == 0 {
			w.text(" WHERE ")
		} else {
			w.text(" AND ")
		}
		c.writeTo(w)
	}
}

func (w *sqlWriter) result() (string, []any) {
	return w.buf.String(), w.args
}

type Condition interface {
	writeTo(w *sqlWriter)
}

type eq struct {
	column string
	value  any
}

func Eq(column string, value any) Condition {
	return eq{column: column, value: value}
}

func (c eq) writeTo(w *sqlWriter) {
	w.text(c.column, " = ")
	w.bind(c.value)
}

type in struct {
	column string
	values []any
}

// In renders "column IN (...)". An empty list matches nothing.
func In(column string, values []any) Condition {
	return in{column: column, values: values}
}

func (c in) writeTo(w *sqlWriter) {
	if len(c.values) == 0 {
		w.text("1=0")
		return
	}
	w.text(c.column, " IN (")
	for i, v := range c.values {
		if i > 0 {
			w.text(", ")
		}
		w.bind(v)
	}
	w.text(")")
}

type rawExpr struct {
	sql  string
	args []any
}

func Expr(sql string, args ...any) Condition {
	return rawExpr{sql: sql, args: args}
}

func (c rawExpr) writeTo(w *sqlWriter) {
	w.expr(c.sql, c.args)
}

type SelectBuilder struct {
	columns   []string
	table     string
	where     []Condition
	orderBy   []string
	limit     int
	forUpdate bool
}

func Select(columns ...string) *SelectBuilder {
	return &SelectBuilder{columns: append([]string(nil), columns...)}
}

func (b *SelectBuilder) From(table string) *SelectBuilder {
	b.table = table
	return b
}

func (b *SelectBuilder) Where(conditions ...Condition) *SelectBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *SelectBuilder) OrderBy(parts ...string) *SelectBuilder {
	b.orderBy = append(b.orderBy, parts...)
	return b
}

func (b *SelectBuilder) Limit(limit int) *SelectBuilder {
	b.limit = limit
	return b
}

// ForUpdate locks the selected rows until the surrounding transaction ends.
func (b *SelectBuilder) ForUpdate() *SelectBuilder {
	b.forUpdate = true
	return b
}

func (b *SelectBuilder) ToSQL() (string, []any, error) {
	if len(b.columns) == 0 {
		return "", nil, fmt.Errorf("select columns are required")
	}
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("select table is required")
	}

	var w sqlWriter
	w.text("SELECT ", strings.Join(b.columns, ", "), " FROM ", b.table)
	w.where(b.where)
	if len(b.orderBy) > 0 {
		w.text(" ORDER BY ", strings.Join(b.orderBy, ", "))
	}
	if b.limit > 0 {
		w.text(" LIMIT ", strconv.Itoa(b.limit))
	}
	if b.forUpdate {
		w.text(" FOR UPDATE")
	}

	query, args := w.result()
	return query, args, nil
}

type InsertBuilder struct {
	table   string
	columns []string
	rows    [][]any
	suffix  string
}

func InsertInto(table string) *InsertBuilder {
	return &InsertBuilder{table: table}
}

func (b *InsertBuilder) Columns(columns ...string) *InsertBuilder {
	b.columns = append([]string(nil), columns...)
	return b
}

func (b *InsertBuilder) Values(values ...any) *InsertBuilder {
	b.rows = append(b.rows, append([]any(nil), values...))
	return b
}

// Suffix appends raw SQL such as ON CONFLICT or RETURNING clauses.
func (b *InsertBuilder) Suffix(sql string) *InsertBuilder {
	b.suffix = strings.TrimSpace(sql)
	return b
}

func (b *InsertBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("insert table is required")
	}
	if len(b.columns) == 0 {
		return "", nil, fmt.Errorf("insert columns are required")
	}
	if len(b.rows) == 0 {
		return "", nil, fmt.Errorf("insert values are required")
	}

	var w sqlWriter
	w.text("INSERT INTO ", b.table, " (", strings.Join(b.columns, ", "), ") VALUES ")
	for i, row := range b.rows {
		if len(row) != len(b.columns) {
			return "", nil, fmt.Errorf("insert row %d has %d values, expected %d", i, len(row), len(b.columns))
		}
		if i > 0 {
			w.text(", ")
		}
		w.text("(")
		for j, v := range row {
			if j > 0 {
				w.text(", ")
			}
			w.bind(v)
		}
		w.text(")")
	}
	if b.suffix != "" {
		w.text(" ", b.suffix)
	}

	query, args := w.result()
	return query, args, nil
}

type assignment struct {
	column string
	value  any
	raw    *rawExpr
}

type UpdateBuilder struct {
	table string
	sets  []assignment
	where []Condition
}

func Update(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

func (b *UpdateBuilder) Set(column string, value any) *UpdateBuilder {
	b.sets = append(b.sets, assignment{column: column, value: value})
	return b
}

// SetExpr assigns a raw SQL expression; '?' placeholders bind args.
func (b *UpdateBuilder) SetExpr(column, sql string, args ...any) *UpdateBuilder {
	b.sets = append(b.sets, assignment{column: column, raw: &rawExpr{sql: sql, args: args}})
	return b
}

func (b *UpdateBuilder) Where(conditions ...Condition) *UpdateBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *UpdateBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("update table is required")
	}
	if len(b.sets) == 0 {
		return "", nil, fmt.Errorf("update sets are required")
	}
	if len(b.where) == 0 {
		return "", nil, fmt.Errorf("update without where clause is not allowed")
	}

	var w sqlWriter
	w.text("UPDATE ", b.table, " SET ")
	for i, s := range b.sets {
		if i > 0 {
			w.text(", ")
		}
		w.text(s.column, " = ")
		if s.raw != nil {
			s.raw.writeTo(&w)
			continue
		}
		w.bind(s.value)
	}
	w.where(b.where)

	query, args := w.result()
	return query, args, nil
}
