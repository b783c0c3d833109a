// Package sqlite writes tables into a SQLite database, one SQL table per
// declared header.
//
// Scalars are stored as-is; sequences and mappings are stored as JSON text.
// Two bookkeeping tables describe the output: memscope_tables lists each
// table with its section and column declarations, memscope_text holds free
// text and section markers in emission order.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/arthur-debert/memscope/pkg/errors"
	"github.com/arthur-debert/memscope/pkg/types"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS memscope_tables (
	name    TEXT PRIMARY KEY,
	section TEXT,
	columns TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS memscope_text (
	seq     INTEGER PRIMARY KEY AUTOINCREMENT,
	kind    TEXT NOT NULL,
	section TEXT,
	text    TEXT NOT NULL
);`

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// Renderer writes rows through one transaction per table.
type Renderer struct {
	db      *sql.DB
	ownsDB  bool
	tx      *sql.Tx
	insert  *sql.Stmt
	columns []types.Column
	tables  int
	section string
}

// Open opens or creates the database at path.
func Open(path string) (*Renderer, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrBackendIO, "failed to open sqlite database %s", path)
	}
	r, err := New(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	r.ownsDB = true
	return r, nil
}

// New writes into an already open database. The caller keeps ownership.
func New(db *sql.DB) (*Renderer, error) {
	// One connection keeps in-memory databases and the open transaction on
	// the same handle.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		return nil, errors.Wrap(err, errors.ErrBackendIO, "failed to create sqlite schema")
	}

	var existing int
	if err := db.QueryRow(`SELECT COUNT(*) FROM memscope_tables`).Scan(&existing); err != nil {
		return nil, errors.Wrap(err, errors.ErrBackendIO, "failed to inspect sqlite schema")
	}
	return &Renderer{db: db, tables: existing}, nil
}

// Name implements ui.Backend.
func (r *Renderer) Name() string { return types.SQLiteBackend }

func (r *Renderer) execer() execer {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// TableName returns the SQL name of the n-th table (1 based).
func TableName(n int) string {
	return fmt.Sprintf("table_%d", n)
}

// BeginTable creates the table and starts its transaction.
func (r *Renderer) BeginTable(columns []types.Column) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}

	r.tables++
	name := TableName(r.tables)
	defs := make([]string, len(columns))
	marks := make([]string, len(columns))
	decl := make([]map[string]any, len(columns))
	for i, c := range columns {
		defs[i] = quote(c.Key())
		marks[i] = "?"
		decl[i] = map[string]any{"name": c.Title(), "cname": c.Key(), "type": c.Type, "format": c.Format}
	}

	declJSON, err := json.Marshal(decl)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	stmts := []struct {
		query string
		args  []any
	}{
		{fmt.Sprintf("CREATE TABLE %s (%s)", quote(name), strings.Join(defs, ", ")), nil},
		{`INSERT INTO memscope_tables (name, section, columns) VALUES (?, ?, ?)`, []any{name, r.section, string(declJSON)}},
	}
	for _, s := range stmts {
		if _, err := tx.Exec(s.query, s.args...); err != nil {
			_ = tx.Rollback()
			return err
		}
	}

	insert, err := tx.Prepare(fmt.Sprintf("INSERT INTO %s VALUES (%s)", quote(name), strings.Join(marks, ", ")))
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	r.tx, r.insert, r.columns = tx, insert, columns
	return nil
}

// WriteValues inserts a row.
func (r *Renderer) WriteValues(values []types.SafeValue) error {
	if r.insert == nil {
		return errors.New(errors.ErrOutputState, "sqlite: row written outside a table")
	}
	args := make([]any, len(values))
	for i, v := range values {
		arg, err := sqlValue(v)
		if err != nil {
			return err
		}
		args[i] = arg
	}
	_, err := r.insert.Exec(args...)
	return err
}

func sqlValue(v types.SafeValue) (any, error) {
	switch t := v.(type) {
	case nil, bool, int64, float64, string:
		return t, nil
	case uint64:
		if t > math.MaxInt64 {
			return strconv.FormatUint(t, 10), nil
		}
		return int64(t), nil
	default:
		data, err := json.Marshal(t)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrNotSafe, "sqlite: cannot store %T", v)
		}
		return string(data), nil
	}
}

// EndTable commits the table.
func (r *Renderer) EndTable() error {
	if r.tx == nil {
		return nil
	}
	tx := r.tx
	if err := r.insert.Close(); err != nil {
		_ = tx.Rollback()
		r.tx, r.insert = nil, nil
		return err
	}
	r.tx, r.insert, r.columns = nil, nil, nil
	return tx.Commit()
}

// FreeText records text.
func (r *Renderer) FreeText(text string) error {
	_, err := r.execer().Exec(`INSERT INTO memscope_text (kind, section, text) VALUES ('text', ?, ?)`, r.section, text)
	return err
}

// Section records a section marker; following tables belong to it.
func (r *Renderer) Section(label string) error {
	r.section = label
	_, err := r.execer().Exec(`INSERT INTO memscope_text (kind, section, text) VALUES ('section', ?, ?)`, label, label)
	return err
}

// Close commits any open table and closes the database if it was opened
// by Open.
func (r *Renderer) Close() error {
	err := r.EndTable()
	if r.ownsDB {
		if cerr := r.db.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}
