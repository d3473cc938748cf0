package store

import (
	"fmt"
	"log/slog"
)

const schemaVersion = 2

// migrate brings the schema up to the current version. Each step runs at
// most once per database file.
func (s *Store) migrate() error {
	if _, err := s.conn.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`); err != nil {
		return fmt.Errorf("failed to create version table: %w", err)
	}

	var version int
	err := s.conn.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&version)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}
	if version < 2 {
		if err := s.migrateV2(); err != nil {
			return err
		}
	}

	if version < schemaVersion {
		if _, err := s.conn.Exec(`DELETE FROM schema_version`); err != nil {
			return fmt.Errorf("failed to clear schema version: %w", err)
		}
		if _, err := s.conn.Exec(`INSERT INTO schema_version (version) VALUES (?)`, schemaVersion); err != nil {
			return fmt.Errorf("failed to record schema version: %w", err)
		}
		slog.Info("Schema migrated", "from", version, "to", schemaVersion)
	}

	return nil
}

// migrateV1 creates the base tables
func (s *Store) migrateV1() error {
	schema := `
	CREATE TABLE IF NOT EXISTS rules (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		position INTEGER NOT NULL,
		type TEXT NOT NULL,
		value TEXT NOT NULL,
		folder TEXT NOT NULL,
		priority REAL DEFAULT 2.0,
		enabled BOOLEAN DEFAULT TRUE,
		UNIQUE(type, value)
	);

	CREATE INDEX IF NOT EXISTS idx_rules_position ON rules(position);

	CREATE TABLE IF NOT EXISTS groups (
		name TEXT PRIMARY KEY,
		extensions TEXT NOT NULL,
		folder TEXT NOT NULL,
		priority REAL DEFAULT 3.0,
		enabled BOOLEAN DEFAULT TRUE,
		override_domain_rules BOOLEAN DEFAULT FALSE
	);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`

	if _, err := s.conn.Exec(schema); err != nil {
		return fmt.Errorf("failed to create base schema: %w", err)
	}
	return nil
}

// migrateV2 backfills priority and enabled on rows written before those
// columns carried defaults
func (s *Store) migrateV2() error {
	fixes := []string{
		`UPDATE rules SET priority = 2.0 WHERE priority IS NULL OR priority <= 0`,
		`UPDATE rules SET enabled = TRUE WHERE enabled IS NULL`,
		`UPDATE groups SET priority = 3.0 WHERE priority IS NULL OR priority <= 0`,
		`UPDATE groups SET enabled = TRUE WHERE enabled IS NULL`,
	}

	for _, fix := range fixes {
		if _, err := s.conn.Exec(fix); err != nil {
			return fmt.Errorf("failed to backfill legacy rows: %w", err)
		}
	}
	return nil
}
