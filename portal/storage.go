package portal

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	jsoniter "github.com/json-iterator/go"
	_ "github.com/mattn/go-sqlite3"
)

// Keys under which the session stores its persisted state. Kept flat with
// no namespacing; one database holds exactly one member session.
const (
	KeyCurrentUser   = "currentUser"
	KeyBorrowedBooks = "userBorrowedBooks"
	KeyReservedBooks = "userReservedBooks"
	KeyNotifications = "userNotifications"
	KeyUsers         = "users"
)

var json = jsoniter.ConfigFastest

// Storage is the persistence port: a string-keyed store of JSON-encoded
// values. Load reports false when the key has never been saved.
type Storage interface {
	Load(key string, into any) (bool, error)
	Save(key string, value any) error
	Delete(key string) error
	Close() error
}

// SQLiteStorage keeps entries in a single key/value table.
type SQLiteStorage struct {
	db *sql.DB

	saveStmt   *sql.Stmt
	loadStmt   *sql.Stmt
	deleteStmt *sql.Stmt
}

// OpenSQLiteStorage opens (or creates) the database at dbPath, applies
// schema migrations, and prepares the entry statements.
func OpenSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	// Ensure directory exists so first-run succeeds.
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	// Enable busy_timeout and foreign keys.
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=1", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := applyMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	storage := &SQLiteStorage{db: db}
	if err := storage.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}
	return storage, nil
}

// Close releases prepared statements and closes the DB.
func (s *SQLiteStorage) Close() error {
	for _, stmt := range []*sql.Stmt{s.saveStmt, s.loadStmt, s.deleteStmt} {
		if stmt != nil {
			stmt.Close()
		}
	}
	return s.db.Close()
}

// ---------------------------------------------------------------------------
// Schema migration
// ---------------------------------------------------------------------------

const schemaVersion = 1

func applyMigrations(db *sql.DB) error {
	// WAL improves write concurrency.
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return fmt.Errorf("enable WAL: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);`); err != nil {
		return err
	}

	var current int
	_ = db.QueryRow(`SELECT value FROM meta WHERE key='schema_version';`).Scan(&current)
	if current >= schemaVersion {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`CREATE TABLE IF NOT EXISTS entries (
            key TEXT PRIMARY KEY,
            value TEXT NOT NULL
        );`); err != nil {
		return fmt.Errorf("apply migration: %w", err)
	}
	if _, err := tx.Exec(`INSERT INTO meta(key,value) VALUES('schema_version',?)
            ON CONFLICT(key) DO UPDATE SET value=excluded.value;`, schemaVersion); err != nil {
		return fmt.Errorf("apply migration: %w", err)
	}

	return tx.Commit()
}

func (s *SQLiteStorage) prepareStatements() error {
	var err error
	if s.saveStmt, err = s.db.Prepare(`INSERT INTO entries(key,value) VALUES(?,?)
        ON CONFLICT(key) DO UPDATE SET value=excluded.value`); err != nil {
		return err
	}
	if s.loadStmt, err = s.db.Prepare(`SELECT value FROM entries WHERE key=?`); err != nil {
		return err
	}
	if s.deleteStmt, err = s.db.Prepare(`DELETE FROM entries WHERE key=?`); err != nil {
		return err
	}
	return nil
}

// ---------------------------------------------------------------------------
// Entry access
// ---------------------------------------------------------------------------

// Save encodes value as JSON and upserts it under key.
func (s *SQLiteStorage) Save(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if _, err := s.saveStmt.Exec(key, string(raw)); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Load decodes the value stored under key into into. The bool is false when
// the key does not exist; into is left untouched in that case.
func (s *SQLiteStorage) Load(key string, into any) (bool, error) {
	var raw string
	err := s.loadStmt.QueryRow(key).Scan(&raw)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(raw), into); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// Delete removes the entry under key. Missing keys are not an error.
func (s *SQLiteStorage) Delete(key string) error {
	if _, err := s.deleteStmt.Exec(key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
