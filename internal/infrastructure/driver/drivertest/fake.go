// Package drivertest provides a scripted driver.ITransactionalDB for repository tests.
package drivertest

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pot-code/course-service/internal/infrastructure/driver"
)

// Call one statement seen by the fake
type Call struct {
	Method string
	Query  string
	Args   []interface{}
	InTx   bool
}

type response struct {
	match        string
	rows         [][]interface{}
	rowsAffected int64
	err          error
}

type state struct {
	mu         sync.Mutex
	dialect    string
	responses  []*response
	calls      []Call
	begun      int
	committed  int
	rolledBack int
	beginErr   error
}

// FakeDB records statements and answers them from scripted responses.
// Responses are matched by substring in registration order and consumed once.
type FakeDB struct {
	*state
	inTx bool
}

var _ driver.ITransactionalDB = &FakeDB{}

// New create a FakeDB speaking the given dialect
func New(dialect string) *FakeDB {
	return &FakeDB{state: &state{dialect: dialect}}
}

// OnQuery script rows for the next query containing match
func (f *FakeDB) OnQuery(match string, rows ...[]interface{}) *FakeDB {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, &response{match: match, rows: rows})
	return f
}

// OnExec script the affected row count for the next exec containing match
func (f *FakeDB) OnExec(match string, rowsAffected int64) *FakeDB {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, &response{match: match, rowsAffected: rowsAffected})
	return f
}

// OnError script a failure for the next statement containing match
func (f *FakeDB) OnError(match string, err error) *FakeDB {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, &response{match: match, err: err})
	return f
}

// FailBegin make BeginTx fail
func (f *FakeDB) FailBegin(err error) *FakeDB {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.beginErr = err
	return f
}

// Calls statements executed so far
func (f *FakeDB) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// CallsMatching statements containing match
func (f *FakeDB) CallsMatching(match string) []Call {
	var result []Call
	for _, c := range f.Calls() {
		if strings.Contains(c.Query, match) {
			result = append(result, c)
		}
	}
	return result
}

// TxStats number of begun, committed and rolled back transactions
func (f *FakeDB) TxStats() (begun, committed, rolledBack int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.begun, f.committed, f.rolledBack
}

func (f *FakeDB) take(query string) *response {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, r := range f.responses {
		if strings.Contains(query, r.match) {
			f.responses = append(f.responses[:i], f.responses[i+1:]...)
			return r
		}
	}
	return nil
}

func (f *FakeDB) record(method, query string, args []interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Method: method, Query: query, Args: args, InTx: f.inTx})
}

func (f *FakeDB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	f.record("Exec", query, args)
	r := f.take(query)
	if r == nil {
		return result(1), nil
	}
	if r.err != nil {
		return nil, r.err
	}
	return result(r.rowsAffected), nil
}

func (f *FakeDB) QueryContext(ctx context.Context, query string, args ...interface{}) (driver.ISQLRows, error) {
	f.record("Query", query, args)
	r := f.take(query)
	if r == nil {
		return &Rows{}, nil
	}
	if r.err != nil {
		return nil, r.err
	}
	return &Rows{rows: r.rows, pos: -1}, nil
}

func (f *FakeDB) BeginTx(ctx context.Context, opts *driver.TxOptions) (driver.ITransactionalDB, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.inTx {
		panic("create transaction inside a transaction")
	}
	if f.beginErr != nil {
		return nil, f.beginErr
	}
	f.begun++
	return &FakeDB{state: f.state, inTx: true}, nil
}

func (f *FakeDB) Commit(ctx context.Context) error {
	if f.inTx {
		f.mu.Lock()
		f.committed++
		f.mu.Unlock()
	}
	return nil
}

func (f *FakeDB) Rollback(ctx context.Context) error {
	if f.inTx {
		f.mu.Lock()
		f.rolledBack++
		f.mu.Unlock()
	}
	return nil
}

func (f *FakeDB) Close(ctx context.Context) error { return nil }

func (f *FakeDB) Ping(ctx context.Context) error { return nil }

func (f *FakeDB) Dialect() string { return f.dialect }

func (f *FakeDB) InTx() bool { return f.inTx }

type result int64

func (r result) LastInsertId() (int64, error) { return 0, nil }

func (r result) RowsAffected() (int64, error) { return int64(r), nil }

// Rows scripted result set
type Rows struct {
	rows [][]interface{}
	pos  int
}

func (r *Rows) Next() bool {
	if r.rows == nil {
		return false
	}
	r.pos++
	return r.pos < len(r.rows)
}

func (r *Rows) Err() error { return nil }

func (r *Rows) Close() error { return nil }

// Scan copies the current row into dest, supporting the types repositories scan into
func (r *Rows) Scan(dest ...interface{}) error {
	row := r.rows[r.pos]
	if len(row) != len(dest) {
		return fmt.Errorf("drivertest: row has %d columns, scan wants %d", len(row), len(dest))
	}
	for i, src := range row {
		if err := assign(dest[i], src); err != nil {
			return fmt.Errorf("drivertest: column %d: %w", i, err)
		}
	}
	return nil
}

func assign(dest, src interface{}) error {
	switch d := dest.(type) {
	case *string:
		v, ok := src.(string)
		if !ok {
			return fmt.Errorf("cannot scan %T into *string", src)
		}
		*d = v
	case *int:
		v, ok := src.(int)
		if !ok {
			return fmt.Errorf("cannot scan %T into *int", src)
		}
		*d = v
	case *int64:
		switch v := src.(type) {
		case int64:
			*d = v
		case int:
			*d = int64(v)
		default:
			return fmt.Errorf("cannot scan %T into *int64", src)
		}
	case *bool:
		v, ok := src.(bool)
		if !ok {
			return fmt.Errorf("cannot scan %T into *bool", src)
		}
		*d = v
	case *time.Time:
		v, ok := src.(time.Time)
		if !ok {
			return fmt.Errorf("cannot scan %T into *time.Time", src)
		}
		*d = v
	case *[]byte:
		switch v := src.(type) {
		case []byte:
			*d = v
		case string:
			*d = []byte(v)
		default:
			return fmt.Errorf("cannot scan %T into *[]byte", src)
		}
	case *sql.NullString:
		switch v := src.(type) {
		case nil:
			*d = sql.NullString{}
		case string:
			*d = sql.NullString{String: v, Valid: true}
		default:
			return fmt.Errorf("cannot scan %T into *sql.NullString", src)
		}
	default:
		return fmt.Errorf("unsupported scan destination %T", dest)
	}
	return nil
}
