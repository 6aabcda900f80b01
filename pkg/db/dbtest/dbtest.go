// Package dbtest provides an in-memory pgx transaction for handler tests.
package dbtest

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Pool hands out Tx for every BeginTx and records statements run outside a
// transaction.
type Pool struct {
	Tx *Tx

	mu    sync.Mutex
	Execs []string
}

func NewPool(rows func(sql string, args []any) []any) *Pool {
	return &Pool{Tx: &Tx{Rows: rows}}
}

func (p *Pool) BeginTx(ctx context.Context, _ pgx.TxOptions) (pgx.Tx, error) {
	return p.Tx, nil
}

func (p *Pool) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	p.mu.Lock()
	p.Execs = append(p.Execs, compact(sql))
	p.mu.Unlock()
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

// Tx records every statement in order. Rows supplies the column values for
// a QueryRow; a nil result scans as pgx.ErrNoRows. Methods not overridden
// here panic through the nil embedded interface.
type Tx struct {
	pgx.Tx

	Rows func(sql string, args []any) []any

	mu         sync.Mutex
	Statements []string
	Committed  bool
	RolledBack bool
}

func (t *Tx) record(sql string) {
	t.mu.Lock()
	t.Statements = append(t.Statements, compact(sql))
	t.mu.Unlock()
}

func (t *Tx) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	t.record(sql)
	return pgconn.NewCommandTag("UPDATE 1"), nil
}

func (t *Tx) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	t.record(sql)
	if t.Rows == nil {
		return row(nil)
	}
	return row(t.Rows(sql, args))
}

func (t *Tx) Commit(context.Context) error {
	t.Committed = true
	return nil
}

func (t *Tx) Rollback(context.Context) error {
	if !t.Committed {
		t.RolledBack = true
	}
	return nil
}

// Matching returns the recorded statements containing all of parts.
func (t *Tx) Matching(parts ...string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []string
	for _, s := range t.Statements {
		if containsAll(s, parts) {
			out = append(out, s)
		}
	}
	return out
}

// Index returns the position of the first statement containing all of
// parts, or -1.
func (t *Tx) Index(parts ...string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, s := range t.Statements {
		if containsAll(s, parts) {
			return i
		}
	}
	return -1
}

type row []any

func (r row) Scan(dest ...any) error {
	if r == nil {
		return pgx.ErrNoRows
	}
	if len(dest) != len(r) {
		return fmt.Errorf("dbtest: scan into %d targets, row has %d values", len(dest), len(r))
	}
	for i, d := range dest {
		target := reflect.ValueOf(d).Elem()
		if r[i] == nil {
			target.Set(reflect.Zero(target.Type()))
			continue
		}
		v := reflect.ValueOf(r[i])
		if !v.Type().AssignableTo(target.Type()) {
			return fmt.Errorf("dbtest: column %d: cannot assign %s to %s", i, v.Type(), target.Type())
		}
		target.Set(v)
	}
	return nil
}

func compact(sql string) string {
	return strings.Join(strings.Fields(sql), " ")
}

func containsAll(s string, parts []string) bool {
	for _, p := range parts {
		if !strings.Contains(s, p) {
			return false
		}
	}
	return true
}
