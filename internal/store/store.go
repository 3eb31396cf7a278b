package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/shiptrace/internal/ir"
	"github.com/roach88/shiptrace/internal/querysql"
)

// tableName is the single table a Store holds.
const tableName = "source"

// Store is an in-memory SQLite database holding one source.
type Store struct {
	db     *sql.DB
	schema ir.Schema
	phys   map[string]string
}

// Open creates an empty in-memory database.
//
// The pool is capped at one connection: every new connection to ":memory:"
// would otherwise see its own empty database.
func Open(ctx context.Context) (*Store, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Load creates the source table and inserts records in order.
// Load may be called once per Store.
func (s *Store) Load(ctx context.Context, schema ir.Schema, records []ir.Record) error {
	if s.phys != nil {
		return fmt.Errorf("store already loaded")
	}

	phys := make(map[string]string, len(schema.Columns))
	cols := make([]string, len(schema.Columns))
	for i, c := range schema.Columns {
		name := physicalName(i)
		phys[c.Name] = name
		cols[i] = querysql.QuoteIdent(name)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin load: %w", err)
	}
	defer tx.Rollback()

	create := fmt.Sprintf("CREATE TABLE %s (%s)", querysql.QuoteIdent(tableName), strings.Join(cols, ", "))
	if len(cols) == 0 {
		// SQLite requires at least one column.
		create = fmt.Sprintf("CREATE TABLE %s (_empty)", querysql.QuoteIdent(tableName))
	}
	if _, err := tx.ExecContext(ctx, create); err != nil {
		return fmt.Errorf("create table: %w", err)
	}

	if len(cols) > 0 && len(records) > 0 {
		insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			querysql.QuoteIdent(tableName),
			strings.Join(cols, ", "),
			strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", "))

		stmt, err := tx.PrepareContext(ctx, insert)
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer stmt.Close()

		args := make([]any, len(cols))
		for n, rec := range records {
			for i, c := range schema.Columns {
				v, _ := rec.Get(c.Name)
				args[i] = toParam(v)
			}
			if _, err := stmt.ExecContext(ctx, args...); err != nil {
				return fmt.Errorf("insert row %d: %w", n, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit load: %w", err)
	}

	s.schema = schema
	s.phys = phys
	return nil
}

// Compiler returns a SQL compiler bound to the loaded table and columns.
func (s *Store) Compiler() *querysql.SQLCompiler {
	c := querysql.NewSQLCompiler(tableName)
	c.Columns = s.phys
	return c
}

// Query executes a query and returns the resulting rows.
// Callers are responsible for closing the returned rows.
func (s *Store) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, query, args...)
}

// physicalName is the SQL column name for the i-th source column.
func physicalName(i int) string {
	return fmt.Sprintf("c%d", i)
}

// toParam converts a cell to a driver parameter.
func toParam(v ir.Value) any {
	switch val := v.(type) {
	case ir.Bool:
		if val {
			return int64(1)
		}
		return int64(0)
	default:
		return ir.Native(v)
	}
}
