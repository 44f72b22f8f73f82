package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hpungsan/lexicon/internal/config"
	_ "modernc.org/sqlite"
)

// CurrentSchemaVersion is the latest schema version.
// Bump this when adding migrations.
const CurrentSchemaVersion = 2

// FileName is the database file created inside the base directory.
const FileName = "lexicon.db"

// Init initializes the SQLite index at baseDir/lexicon.db.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.lexicon.
func Init(baseDir string) (*sql.DB, error) {
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	// Best-effort, may not work on all platforms
	_ = os.Chmod(baseDir, 0700)

	// Pragmas in the connection string apply to every pooled connection
	dbPath := filepath.Join(baseDir, FileName)
	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := verifyWALMode(db); err != nil {
		db.Close()
		return nil, err
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	_ = os.Chmod(dbPath, 0600)

	return db, nil
}

// ConfigurePool applies connection pool settings from config.
// Only sets limits if explicitly configured (non-zero values).
func ConfigurePool(db *sql.DB, cfg *config.Config) {
	if cfg == nil {
		return
	}
	if cfg.DBMaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	}
	if cfg.DBMaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	}
}

// migrate applies schema migrations based on user_version.
func migrate(db *sql.DB) error {
	version, err := GetUserVersion(db)
	if err != nil {
		return err
	}

	// Migration 0 -> 1: builds + terms
	if version < 1 {
		schema := `
		CREATE TABLE IF NOT EXISTS builds (
		  id          TEXT PRIMARY KEY,
		  source      TEXT NOT NULL,
		  digest      TEXT NOT NULL,
		  term_count  INTEGER NOT NULL,
		  created_at  INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_builds_created
		ON builds(created_at DESC);

		CREATE TABLE IF NOT EXISTS terms (
		  build_id    TEXT NOT NULL,
		  ordinal     INTEGER NOT NULL,
		  name        TEXT NOT NULL,
		  name_norm   TEXT NOT NULL,
		  description TEXT NOT NULL,
		  tags_json   TEXT NOT NULL,
		  cells_json  TEXT NOT NULL,
		  width       INTEGER NOT NULL,
		  height      INTEGER NOT NULL,
		  PRIMARY KEY (build_id, ordinal)
		);

		CREATE INDEX IF NOT EXISTS idx_terms_build_name
		ON terms(build_id, name);

		CREATE INDEX IF NOT EXISTS idx_terms_build_name_norm
		ON terms(build_id, name_norm);
		`
		if _, err := db.Exec(schema); err != nil {
			return fmt.Errorf("migration 1 failed: %w", err)
		}
		if err := SetUserVersion(db, 1); err != nil {
			return err
		}
	}

	// Migration 1 -> 2: description_norm, the description lowercased with
	// full Unicode case folding
	if version < 2 {
		if _, err := db.Exec(`ALTER TABLE terms ADD COLUMN description_norm TEXT NOT NULL DEFAULT ''`); err != nil {
			return fmt.Errorf("migration 2 failed: %w", err)
		}
		if err := backfillDescriptionNorm(db); err != nil {
			return fmt.Errorf("migration 2 failed: %w", err)
		}
		if err := SetUserVersion(db, 2); err != nil {
			return err
		}
	}

	return nil
}

// backfillDescriptionNorm fills description_norm for rows indexed before
// the column existed.
func backfillDescriptionNorm(db *sql.DB) error {
	rows, err := db.Query(`SELECT rowid, description FROM terms`)
	if err != nil {
		return err
	}
	type pending struct {
		rowid int64
		norm  string
	}
	var updates []pending
	for rows.Next() {
		var (
			rowid int64
			desc  string
		)
		if err := rows.Scan(&rowid, &desc); err != nil {
			rows.Close()
			return err
		}
		updates = append(updates, pending{rowid: rowid, norm: strings.ToLower(desc)})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, u := range updates {
		if _, err := db.Exec(`UPDATE terms SET description_norm = ? WHERE rowid = ?`, u.norm, u.rowid); err != nil {
			return err
		}
	}
	return nil
}

// verifyWALMode checks that WAL mode is active (set via connection string).
func verifyWALMode(db *sql.DB) error {
	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode;").Scan(&journalMode); err != nil {
		return fmt.Errorf("failed to verify journal mode: %w", err)
	}
	if journalMode != "wal" {
		return fmt.Errorf("expected WAL mode, got %s", journalMode)
	}
	return nil
}

// GetUserVersion returns the current schema version (user_version pragma).
func GetUserVersion(db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRow("PRAGMA user_version;").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get user_version: %w", err)
	}
	return version, nil
}

// SetUserVersion sets the schema version (user_version pragma).
func SetUserVersion(db *sql.DB, version int) error {
	_, err := db.Exec(fmt.Sprintf("PRAGMA user_version=%d", version))
	if err != nil {
		return fmt.Errorf("failed to set user_version: %w", err)
	}
	return nil
}
