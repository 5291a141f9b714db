package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/MrEthical07/goSignIn/token"
	_ "modernc.org/sqlite"
)

const (
	recordAuth = "auth"
	recordUser = "user"
)

const createRecordsTable = `CREATE TABLE IF NOT EXISTS signin_records (
	name       TEXT PRIMARY KEY,
	payload    BLOB NOT NULL,
	updated_at INTEGER NOT NULL
)`

// SQLite persists records in a single key/value table.
type SQLite struct {
	sqlDB *sql.DB
}

// OpenSQLite opens and migrates a SQLite store at path.
func OpenSQLite(path string) (*SQLite, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(createRecordsTable); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &SQLite{sqlDB: sqlDB}, nil
}

// Close releases the underlying connection.
func (s *SQLite) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// LoadAuth returns the stored Auth, or nil when absent.
func (s *SQLite) LoadAuth(ctx context.Context) (*token.Auth, error) {
	data, err := s.get(ctx, recordAuth)
	if err != nil || data == nil {
		return nil, err
	}
	return DecodeAuth(data)
}

// LoadUser returns the stored User, or nil when absent.
func (s *SQLite) LoadUser(ctx context.Context) (*token.User, error) {
	data, err := s.get(ctx, recordUser)
	if err != nil || data == nil {
		return nil, err
	}
	return DecodeUser(data)
}

// SaveAuth upserts a. A nil value removes the record.
func (s *SQLite) SaveAuth(ctx context.Context, a *token.Auth) error {
	if a == nil {
		return s.delete(ctx, recordAuth)
	}
	data, err := EncodeAuth(a)
	if err != nil {
		return err
	}
	return s.put(ctx, recordAuth, data)
}

// SaveUser upserts u. A nil value removes the record.
func (s *SQLite) SaveUser(ctx context.Context, u *token.User) error {
	if u == nil {
		return s.delete(ctx, recordUser)
	}
	data, err := EncodeUser(u)
	if err != nil {
		return err
	}
	return s.put(ctx, recordUser, data)
}

// Clear removes both records.
func (s *SQLite) Clear(ctx context.Context) error {
	return s.delete(ctx, recordAuth, recordUser)
}

func (s *SQLite) get(ctx context.Context, name string) ([]byte, error) {
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	var payload []byte
	err := s.sqlDB.QueryRowContext(ctx, `SELECT payload FROM signin_records WHERE name = ?`, name).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get %s record: %w", name, err)
	}
	return payload, nil
}

func (s *SQLite) put(ctx context.Context, name string, payload []byte) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO signin_records (name, payload, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		name, payload, time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("put %s record: %w", name, err)
	}
	return nil
}

func (s *SQLite) delete(ctx context.Context, names ...string) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	for _, name := range names {
		if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM signin_records WHERE name = ?`, name); err != nil {
			return fmt.Errorf("delete %s record: %w", name, err)
		}
	}
	return nil
}
