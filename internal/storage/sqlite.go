package storage

import (
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaFS embed.FS

// SQLiteStorage implements Storage with SQLite backend
type SQLiteStorage struct {
	mu   sync.RWMutex
	db   *sql.DB
	path string
}

// NewSQLiteStorage opens (creating if needed) the ipam database in dataDir
func NewSQLiteStorage(dataDir string) (*SQLiteStorage, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dataDir, "ipam.db")

	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	// SQLite works best with a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ss := &SQLiteStorage{
		db:   db,
		path: dbPath,
	}

	if err := ss.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return ss, nil
}

func (ss *SQLiteStorage) initSchema() error {
	schema, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("reading schema: %w", err)
	}

	_, err = ss.db.Exec(string(schema))
	return err
}

// Close closes the database connection
func (ss *SQLiteStorage) Close() error {
	return ss.db.Close()
}

// GetDatabasePath returns the database file path
func (ss *SQLiteStorage) GetDatabasePath() string {
	return ss.path
}

// cond accumulates WHERE clauses and their arguments while a list query is
// assembled from a filter.
type cond struct {
	clauses []string
	args    []interface{}
}

func (c *cond) add(clause string, args ...interface{}) {
	c.clauses = append(c.clauses, clause)
	c.args = append(c.args, args...)
}

// addIn appends an "expr IN (...)" clause when values is non-empty
func (c *cond) addIn(expr string, values []string) {
	if len(values) == 0 {
		return
	}
	c.clauses = append(c.clauses, fmt.Sprintf("%s IN (%s)", expr, placeholders(len(values))))
	for _, v := range values {
		c.args = append(c.args, v)
	}
}

// addInInts appends an "expr IN (...)" clause for integer values
func (c *cond) addInInts(expr string, values []int) {
	if len(values) == 0 {
		return
	}
	c.clauses = append(c.clauses, fmt.Sprintf("%s IN (%s)", expr, placeholders(len(values))))
	for _, v := range values {
		c.args = append(c.args, v)
	}
}

// addInSelect appends a "col IN (SELECT id FROM table WHERE field IN (...))"
// clause, the lookup used to filter by a related object's slug or name.
// The identifiers are always compile-time constants.
func (c *cond) addInSelect(col, table, field string, values []string) {
	if len(values) == 0 {
		return
	}
	c.clauses = append(c.clauses,
		fmt.Sprintf("%s IN (SELECT id FROM %s WHERE %s IN (%s))", col, table, field, placeholders(len(values))))
	for _, v := range values {
		c.args = append(c.args, v)
	}
}

// where renders the accumulated clauses, or an empty string when there are none
func (c *cond) where() string {
	if len(c.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(c.clauses, " AND ")
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// isUniqueErr reports whether err is a SQLite unique constraint violation
func isUniqueErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// nullStr maps an empty string to NULL so optional foreign keys stay unset
func nullStr(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// strOrEmpty maps a NULL column back to an empty string
type nullString struct {
	sql.NullString
}

func (n *nullString) value() string {
	if n.Valid {
		return n.String
	}
	return ""
}
