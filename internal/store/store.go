// Package store provides SQLite-backed persistence for rules, groups,
// settings and statistics
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"download-router/pkg/models"

	_ "modernc.org/sqlite"
)

const (
	settingsKey        = "settings"
	statsKey           = "downloadStats"
	companionStatusKey = "companionAppStatus"
)

// Store wraps the SQLite database connection
type Store struct {
	conn *sql.DB
}

// New creates a new store and runs pending schema migrations
func New(dbPath string) (*Store, error) {
	// Add connection parameters to help with concurrent access
	connString := dbPath
	if dbPath != ":memory:" {
		connString = dbPath + "?_busy_timeout=30000&_journal_mode=WAL&_synchronous=NORMAL"
	}

	conn, err := sql.Open("sqlite", connString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't handle concurrent writes well
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	s := &Store{conn: conn}

	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.conn.Close()
}

// Rules returns all stored rules in position order
func (s *Store) Rules() ([]models.Rule, error) {
	query := `
	SELECT id, type, value, folder, priority, enabled
	FROM rules ORDER BY position ASC, id ASC
	`

	rows, err := s.conn.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}
	defer rows.Close()

	var rules []models.Rule
	for rows.Next() {
		var rule models.Rule
		if err := rows.Scan(&rule.ID, &rule.Type, &rule.Value, &rule.Folder, &rule.Priority, &rule.Enabled); err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		rules = append(rules, rule)
	}

	return rules, rows.Err()
}

// UpsertRule adds a rule, or overwrites the existing rule with the same
// (type, value) pair in place so its position is preserved.
func (s *Store) UpsertRule(rule models.Rule) error {
	rule.Priority = models.PriorityOrDefault(rule.Priority, models.DefaultRulePriority)

	var id int64
	err := s.conn.QueryRow(
		`SELECT id FROM rules WHERE type = ? AND value = ?`,
		rule.Type, rule.Value,
	).Scan(&id)

	switch {
	case err == nil:
		_, err = s.conn.Exec(
			`UPDATE rules SET folder = ?, priority = ?, enabled = ? WHERE id = ?`,
			rule.Folder, rule.Priority, rule.Enabled, id,
		)
		if err != nil {
			return fmt.Errorf("failed to update rule: %w", err)
		}
		return nil
	case err == sql.ErrNoRows:
		_, err = s.conn.Exec(
			`INSERT INTO rules (position, type, value, folder, priority, enabled)
			 VALUES ((SELECT COALESCE(MAX(position), 0) + 1 FROM rules), ?, ?, ?, ?, ?)`,
			rule.Type, rule.Value, rule.Folder, rule.Priority, rule.Enabled,
		)
		if err != nil {
			return fmt.Errorf("failed to insert rule: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("failed to look up rule: %w", err)
	}
}

// SaveRules replaces the whole rule set, keeping the given order
func (s *Store) SaveRules(rules []models.Rule) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM rules`); err != nil {
		return fmt.Errorf("failed to clear rules: %w", err)
	}

	for i, rule := range rules {
		priority := models.PriorityOrDefault(rule.Priority, models.DefaultRulePriority)
		_, err := tx.Exec(
			`INSERT INTO rules (position, type, value, folder, priority, enabled) VALUES (?, ?, ?, ?, ?, ?)`,
			i, rule.Type, rule.Value, rule.Folder, priority, rule.Enabled,
		)
		if err != nil {
			return fmt.Errorf("failed to insert rule: %w", err)
		}
	}

	return tx.Commit()
}

// Groups returns the stored file-type groups, or the built-in defaults when
// the user has never saved any.
func (s *Store) Groups() (map[string]models.Group, error) {
	query := `
	SELECT name, extensions, folder, priority, enabled, override_domain_rules
	FROM groups
	`

	rows, err := s.conn.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	groups := make(map[string]models.Group)
	for rows.Next() {
		var group models.Group
		if err := rows.Scan(&group.Name, &group.Extensions, &group.Folder, &group.Priority, &group.Enabled, &group.OverrideDomainRules); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups[group.Name] = group
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(groups) == 0 {
		return models.DefaultGroups(), nil
	}
	return groups, nil
}

// SaveGroups replaces the whole group set
func (s *Store) SaveGroups(groups map[string]models.Group) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM groups`); err != nil {
		return fmt.Errorf("failed to clear groups: %w", err)
	}

	for name, group := range groups {
		priority := models.PriorityOrDefault(group.Priority, models.DefaultGroupPriority)
		_, err := tx.Exec(
			`INSERT INTO groups (name, extensions, folder, priority, enabled, override_domain_rules) VALUES (?, ?, ?, ?, ?, ?)`,
			name, group.Extensions, group.Folder, priority, group.Enabled, group.OverrideDomainRules,
		)
		if err != nil {
			return fmt.Errorf("failed to insert group: %w", err)
		}
	}

	return tx.Commit()
}

// AddExtensionToGroup appends an extension to a group's comma list if it is
// not already present. Unknown group names against an unsaved store start
// from the built-in defaults.
func (s *Store) AddExtensionToGroup(name, extension string) error {
	extension = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(extension, ".")))
	if extension == "" {
		return fmt.Errorf("extension cannot be empty")
	}

	groups, err := s.Groups()
	if err != nil {
		return err
	}

	group, ok := groups[name]
	if !ok {
		return fmt.Errorf("group not found: %s", name)
	}

	for _, existing := range strings.Split(group.Extensions, ",") {
		if strings.TrimSpace(strings.ToLower(existing)) == extension {
			return nil
		}
	}

	if group.Extensions == "" {
		group.Extensions = extension
	} else {
		group.Extensions = group.Extensions + "," + extension
	}
	groups[name] = group

	return s.SaveGroups(groups)
}

// Settings returns the stored settings, or defaults when none were saved
func (s *Store) Settings() (models.Settings, error) {
	settings := models.DefaultSettings()
	found, err := s.getJSON(settingsKey, &settings)
	if err != nil {
		return models.DefaultSettings(), err
	}
	if !found {
		return models.DefaultSettings(), nil
	}
	return settings, nil
}

// SaveSettings persists the settings
func (s *Store) SaveSettings(settings models.Settings) error {
	return s.putJSON(settingsKey, settings)
}

// Stats returns the stored download statistics
func (s *Store) Stats() (models.Stats, error) {
	var stats models.Stats
	if _, err := s.getJSON(statsKey, &stats); err != nil {
		return models.Stats{}, err
	}
	return stats, nil
}

// SaveStats persists the download statistics
func (s *Store) SaveStats(stats models.Stats) error {
	return s.putJSON(statsKey, stats)
}

// CompanionStatus returns the cached companion app status mirror
func (s *Store) CompanionStatus() (models.CompanionAppStatus, bool, error) {
	var status models.CompanionAppStatus
	found, err := s.getJSON(companionStatusKey, &status)
	if err != nil {
		return models.CompanionAppStatus{}, false, err
	}
	return status, found, nil
}

// SaveCompanionStatus persists the companion app status cache mirror
func (s *Store) SaveCompanionStatus(status models.CompanionAppStatus) error {
	return s.putJSON(companionStatusKey, status)
}

func (s *Store) getJSON(key string, out any) (bool, error) {
	var raw string
	err := s.conn.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&raw)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}

	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

func (s *Store) putJSON(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}

	_, err = s.conn.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, string(raw),
	)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}
