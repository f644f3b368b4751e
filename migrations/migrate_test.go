// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package migrations

import (
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	_ "github.com/mattn/go-sqlite3"
)

func TestMigrate_DBError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	_ = mock // goose talks to the DB itself; no expectations means every call fails

	err = Migrate(db)
	if err == nil {
		t.Fatal("expected error from Migrate, got nil")
	}

	if !strings.Contains(err.Error(), "migration error") {
		t.Errorf("expected wrapped migration error, got: %v", err)
	}
}

func TestMigrate_NilDB(t *testing.T) {
	var db *sql.DB

	err := Migrate(db)
	if err == nil {
		t.Fatal("expected error when db is nil, got nil")
	}

	if !strings.Contains(err.Error(), "db is nil") {
		t.Errorf("expected 'db is nil' error, got: %v", err)
	}
}

func TestMigrate_SQLiteCreatesTables(t *testing.T) {
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	defer db.Close()

	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	// second run is a no-op
	if err := Migrate(db); err != nil {
		t.Fatalf("repeated migrate: %v", err)
	}

	for _, table := range []string{"local_records", "mutation_queue", "dead_letters", "sync_meta"} {
		var name string
		row := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table)
		if err := row.Scan(&name); err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}

	var columns int
	row := db.QueryRow(`SELECT COUNT(*) FROM pragma_table_info('mutation_queue') WHERE name = 'seq'`)
	if err := row.Scan(&columns); err != nil || columns != 1 {
		t.Errorf("mutation_queue.seq missing: count=%d err=%v", columns, err)
	}
}
