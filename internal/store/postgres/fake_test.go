package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// fakeDB interprets the store's statements against an in-memory table.
// Each transaction works on a copy that Commit publishes.
type fakeDB struct {
	mu      sync.Mutex
	records map[string]fakeRecord
	execed  []string

	beginErr  error
	commitErr error
	queryErr  error
}

type fakeRecord struct {
	kind, name, description, summary string
	readOnly                         bool
	rules                            []byte
	version                          int64
	uid                              string
	createdAt                        time.Time
}

func newFakeDB() *fakeDB {
	return &fakeDB{records: make(map[string]fakeRecord)}
}

func (db *fakeDB) Begin(context.Context) (pgx.Tx, error) {
	if db.beginErr != nil {
		return nil, db.beginErr
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	snapshot := make(map[string]fakeRecord, len(db.records))
	for k, v := range db.records {
		snapshot[k] = v
	}
	return &fakeTx{db: db, records: snapshot}, nil
}

type fakeTx struct {
	db      *fakeDB
	records map[string]fakeRecord
	done    bool
}

func recordKey(kind, name any) string {
	return fmt.Sprintf("%s/%s", kind, name)
}

func (t *fakeTx) Commit(context.Context) error {
	if t.db.commitErr != nil {
		return t.db.commitErr
	}
	t.db.mu.Lock()
	defer t.db.mu.Unlock()
	t.db.records = t.records
	t.done = true
	return nil
}

func (t *fakeTx) Rollback(context.Context) error {
	t.done = true
	return nil
}

func (t *fakeTx) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	t.db.mu.Lock()
	t.db.execed = append(t.db.execed, sql)
	t.db.mu.Unlock()

	switch sql {
	case schemaSQL:
		return pgconn.NewCommandTag("CREATE TABLE"), nil
	case deletePolicySQL:
		key := recordKey(args[0], args[1])
		r, ok := t.records[key]
		if !ok || r.version != args[2].(int64) {
			return pgconn.NewCommandTag("DELETE 0"), nil
		}
		delete(t.records, key)
		return pgconn.NewCommandTag("DELETE 1"), nil
	}
	return pgconn.CommandTag{}, fmt.Errorf("unexpected exec: %s", sql)
}

func (t *fakeTx) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	switch sql {
	case selectPolicySQL:
		r, ok := t.records[recordKey(args[0], args[1])]
		if !ok {
			return fakeRow{err: pgx.ErrNoRows}
		}
		return r.row()

	case insertPolicySQL:
		key := recordKey(args[0], args[1])
		if _, ok := t.records[key]; ok {
			return fakeRow{err: &pgconn.PgError{Code: "23505", ConstraintName: "policies_pkey"}}
		}
		r := fakeRecord{
			kind:        args[0].(string),
			name:        args[1].(string),
			description: args[2].(string),
			summary:     args[3].(string),
			readOnly:    args[4].(bool),
			rules:       []byte(args[5].(string)),
			version:     1,
			uid:         args[6].(string),
			createdAt:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		}
		t.records[key] = r
		return r.row()

	case updatePolicySQL:
		key := recordKey(args[0], args[1])
		r, ok := t.records[key]
		if !ok || r.version != args[5].(int64) {
			return fakeRow{err: pgx.ErrNoRows}
		}
		r.description = args[2].(string)
		r.summary = args[3].(string)
		r.rules = []byte(args[4].(string))
		r.version++
		t.records[key] = r
		return r.row()

	case currentVersionSQL:
		r, ok := t.records[recordKey(args[0], args[1])]
		if !ok {
			return fakeRow{err: pgx.ErrNoRows}
		}
		return fakeRow{vals: []any{r.version}}
	}
	return fakeRow{err: fmt.Errorf("unexpected query: %s", sql)}
}

func (t *fakeTx) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	if t.db.queryErr != nil {
		return nil, t.db.queryErr
	}
	if sql != listPoliciesSQL {
		return nil, fmt.Errorf("unexpected query: %s", sql)
	}
	kind := args[0].(string)
	var matched []fakeRecord
	for _, r := range t.records {
		if kind == "" || r.kind == kind {
			matched = append(matched, r)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].kind != matched[j].kind {
			return matched[i].kind < matched[j].kind
		}
		return matched[i].name < matched[j].name
	})
	rows := &fakeRows{}
	for _, r := range matched {
		rows.records = append(rows.records, r.row().vals)
	}
	return rows, nil
}

func (t *fakeTx) Begin(context.Context) (pgx.Tx, error) { return t, nil }
func (t *fakeTx) CopyFrom(context.Context, pgx.Identifier, []string, pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *fakeTx) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults { return nil }
func (t *fakeTx) LargeObjects() pgx.LargeObjects                         { return pgx.LargeObjects{} }
func (t *fakeTx) Prepare(context.Context, string, string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *fakeTx) Conn() *pgx.Conn { return nil }

func (r fakeRecord) row() fakeRow {
	return fakeRow{vals: []any{
		r.kind, r.name, r.description, r.summary, r.readOnly, r.rules, r.version, r.uid, r.createdAt,
	}}
}

type fakeRow struct {
	vals []any
	err  error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return assignScanValues(dest, r.vals)
}

type fakeRows struct {
	records [][]any
	idx     int
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Next() bool {
	if r.idx >= len(r.records) {
		return false
	}
	r.idx++
	return true
}
func (r *fakeRows) Scan(dest ...any) error { return assignScanValues(dest, r.records[r.idx-1]) }
func (r *fakeRows) Values() ([]any, error) { return r.records[r.idx-1], nil }
func (r *fakeRows) RawValues() [][]byte    { return nil }
func (r *fakeRows) Conn() *pgx.Conn        { return nil }

func assignScanValues(dest []any, vals []any) error {
	if len(dest) != len(vals) {
		return fmt.Errorf("scan: %d destinations for %d values", len(dest), len(vals))
	}
	for i := range dest {
		switch d := dest[i].(type) {
		case *string:
			*d = vals[i].(string)
		case *bool:
			*d = vals[i].(bool)
		case *int64:
			*d = vals[i].(int64)
		case *[]byte:
			*d = append([]byte(nil), vals[i].([]byte)...)
		case *time.Time:
			*d = vals[i].(time.Time)
		default:
			return errors.New("unsupported scan dest type")
		}
	}
	return nil
}
