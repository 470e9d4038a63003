// Package testutil provides an in-memory database/sql driver for the audit
// store tests. It records every statement, keeps INSERTed rows per table and
// answers single-table SELECTs with optional ORDER BY and LIMIT.
package testutil

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// StubConn records statements issued by a store under test.
type StubConn struct {
	mu        sync.Mutex
	Execs     []string
	Tables    map[string][]map[string]any
	FailPing  bool
	FailExec  bool
	FailQuery bool
	RowsErr   error
}

// NewStubDB registers a sql.DB backed by an in-memory stub connection.
func NewStubDB() (*sql.DB, *StubConn) {
	conn := &StubConn{Tables: make(map[string][]map[string]any)}
	name := fmt.Sprintf("stubpg%d", time.Now().UnixNano())
	sql.Register(name, &stubDriver{conn: conn})
	db, err := sql.Open(name, "stub")
	if err != nil {
		panic(err)
	}
	return db, conn
}

type stubDriver struct {
	conn *StubConn
}

func (d *stubDriver) Open(string) (driver.Conn, error) {
	return d.conn, nil
}

// Prepare implements driver.Conn.
func (c *StubConn) Prepare(string) (driver.Stmt, error) { return nil, fmt.Errorf("not implemented") }

// Close implements driver.Conn.
func (c *StubConn) Close() error { return nil }

// Begin implements driver.Conn.
func (c *StubConn) Begin() (driver.Tx, error) { return nil, fmt.Errorf("transactions not supported") }

// Ping implements driver.Pinger.
func (c *StubConn) Ping(_ context.Context) error {
	if c.FailPing {
		return fmt.Errorf("ping fail")
	}
	return nil
}

// ExecContext implements driver.ExecerContext.
func (c *StubConn) ExecContext(_ context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Execs = append(c.Execs, query)
	if c.FailExec {
		return nil, fmt.Errorf("exec fail")
	}
	if !strings.HasPrefix(strings.ToUpper(strings.TrimSpace(query)), "INSERT INTO") {
		return driver.RowsAffected(0), nil
	}
	table, cols, err := parseInsert(query)
	if err != nil {
		return nil, err
	}
	if len(cols) != len(args) {
		return nil, fmt.Errorf("column/arg mismatch for %s", table)
	}
	row := make(map[string]any, len(cols))
	for i, col := range cols {
		row[col] = args[i].Value
	}
	c.Tables[table] = append(c.Tables[table], row)
	return driver.RowsAffected(1), nil
}

// QueryContext implements driver.QueryerContext. A single "ORDER BY col
// [DESC]" and a "LIMIT $n" placeholder are honoured; WHERE clauses are not.
func (c *StubConn) QueryContext(_ context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.FailQuery {
		return nil, fmt.Errorf("query fail")
	}
	q, err := parseSelect(query)
	if err != nil {
		return nil, err
	}
	stored := append([]map[string]any(nil), c.Tables[q.table]...)
	if q.orderBy != "" {
		sort.SliceStable(stored, func(i, j int) bool {
			a, b := stored[i][q.orderBy], stored[j][q.orderBy]
			if q.desc {
				a, b = b, a
			}
			return lessValue(a, b)
		})
	}
	if q.limitArg > 0 {
		if q.limitArg > len(args) {
			return nil, fmt.Errorf("missing LIMIT argument $%d", q.limitArg)
		}
		n, ok := args[q.limitArg-1].Value.(int64)
		if !ok {
			return nil, fmt.Errorf("LIMIT argument must be an integer, got %T", args[q.limitArg-1].Value)
		}
		if int(n) < len(stored) {
			stored = stored[:n]
		}
	}
	values := make([][]driver.Value, 0, len(stored))
	for _, row := range stored {
		vals := make([]driver.Value, len(q.cols))
		for i, col := range q.cols {
			vals[i] = row[col]
		}
		values = append(values, vals)
	}
	return &stubRows{cols: q.cols, rows: values, err: c.RowsErr}, nil
}

func lessValue(a, b any) bool {
	switch av := a.(type) {
	case time.Time:
		bv, _ := b.(time.Time)
		return av.Before(bv)
	case int64:
		bv, _ := b.(int64)
		return av < bv
	case float64:
		bv, _ := b.(float64)
		return av < bv
	default:
		return fmt.Sprint(a) < fmt.Sprint(b)
	}
}

type stubRows struct {
	cols []string
	rows [][]driver.Value
	idx  int
	err  error
}

func (r *stubRows) Columns() []string { return r.cols }
func (r *stubRows) Close() error      { return nil }

func (r *stubRows) Next(dest []driver.Value) error {
	if r.idx >= len(r.rows) {
		if r.err != nil {
			return r.err
		}
		return io.EOF
	}
	copy(dest, r.rows[r.idx])
	r.idx++
	return nil
}

func parseInsert(query string) (string, []string, error) {
	up := strings.ToUpper(query)
	intoIdx := strings.Index(up, "INTO ")
	if intoIdx == -1 {
		return "", nil, fmt.Errorf("cannot parse insert: %s", query)
	}
	rest := strings.TrimSpace(query[intoIdx+len("INTO "):])
	open := strings.Index(rest, "(")
	closeIdx := strings.Index(rest, ")")
	if open == -1 || closeIdx == -1 || closeIdx <= open {
		return "", nil, fmt.Errorf("cannot parse insert: %s", query)
	}
	table := strings.ToLower(strings.TrimSpace(rest[:open]))
	return table, splitColumns(rest[open+1 : closeIdx]), nil
}

type selectQuery struct {
	table    string
	cols     []string
	orderBy  string
	desc     bool
	limitArg int
}

func parseSelect(query string) (selectQuery, error) {
	lower := strings.ToLower(strings.TrimSpace(query))
	if !strings.HasPrefix(lower, "select ") {
		return selectQuery{}, fmt.Errorf("cannot parse select: %s", query)
	}
	fromIdx := strings.Index(lower, " from ")
	if fromIdx == -1 {
		return selectQuery{}, fmt.Errorf("cannot parse select: %s", query)
	}
	q := selectQuery{cols: splitColumns(lower[len("select "):fromIdx])}
	tail := strings.Fields(lower[fromIdx+len(" from "):])
	if len(tail) == 0 {
		return selectQuery{}, fmt.Errorf("cannot parse select: %s", query)
	}
	q.table = tail[0]
	for i := 1; i < len(tail); i++ {
		switch {
		case tail[i] == "order" && i+2 < len(tail) && tail[i+1] == "by":
			q.orderBy = strings.TrimSuffix(tail[i+2], ",")
			i += 2
			if i+1 < len(tail) && tail[i+1] == "desc" {
				q.desc = true
				i++
			}
		case tail[i] == "limit" && i+1 < len(tail):
			n, err := strconv.Atoi(strings.TrimPrefix(tail[i+1], "$"))
			if err != nil || !strings.HasPrefix(tail[i+1], "$") {
				return selectQuery{}, fmt.Errorf("LIMIT must use a placeholder: %s", query)
			}
			q.limitArg = n
			i++
		}
	}
	return q, nil
}

func splitColumns(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		out = append(out, strings.ToLower(strings.TrimSpace(part)))
	}
	return out
}
