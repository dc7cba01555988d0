package db

import (
	"path/filepath"
	"testing"
)

func testDBPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "test.db")
}

func TestNewSQLiteConnection(t *testing.T) {
	conn, err := NewSQLiteConnectionWithDefaults(testDBPath(t))
	if err != nil {
		t.Fatalf("NewSQLiteConnection failed: %v", err)
	}
	defer conn.Close()

	if err := conn.Ping(); err != nil {
		t.Errorf("ping failed: %v", err)
	}

	var journalMode string
	if err := conn.QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		t.Fatalf("querying journal mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("expected WAL journal mode, got %q", journalMode)
	}

	var foreignKeys int
	if err := conn.QueryRow("PRAGMA foreign_keys").Scan(&foreignKeys); err != nil {
		t.Fatalf("querying foreign_keys: %v", err)
	}
	if foreignKeys != 1 {
		t.Error("expected foreign keys enabled")
	}
}

func TestNewSQLiteConnection_EmptyPath(t *testing.T) {
	if _, err := NewSQLiteConnection(ConnectionConfig{}); err == nil {
		t.Error("expected error for empty path")
	}
}

func TestDefaultConnectionConfig(t *testing.T) {
	cfg := DefaultConnectionConfig("x.db")
	if cfg.Path != "x.db" {
		t.Errorf("unexpected path: %q", cfg.Path)
	}
	if cfg.BusyTimeout != 5000 {
		t.Errorf("unexpected busy timeout: %d", cfg.BusyTimeout)
	}
	if cfg.MaxOpenConns != 1 {
		t.Errorf("expected single writer, got %d", cfg.MaxOpenConns)
	}
}
