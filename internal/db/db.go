// Package db persists operator-facing configuration: marker presets and
// confirmed calibration label mappings. Session history is deliberately
// not stored.
package db

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/stride-data/gait.report/internal/marker"
)

// DB wraps the sqlite connection.
type DB struct {
	*sql.DB
}

// Open opens (or creates) the sqlite database at path. The schema is
// managed by migrations; call MigrateUp after opening.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// modernc sqlite is not safe for concurrent writers over one connection.
	conn.SetMaxOpenConns(1)
	return &DB{conn}, nil
}

// SaveMarkerPreset stores a named marker configuration set, replacing any
// existing preset with the same name. The config list is validated first.
func (db *DB) SaveMarkerPreset(name string, configs []marker.Config) error {
	if name == "" {
		return fmt.Errorf("preset name must not be empty")
	}
	if err := marker.ValidateConfigs(configs); err != nil {
		return fmt.Errorf("invalid preset %q: %w", name, err)
	}

	blob, err := json.Marshal(configs)
	if err != nil {
		return fmt.Errorf("failed to encode preset %q: %w", name, err)
	}

	_, err = db.Exec(`
		INSERT INTO marker_presets (name, configs, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET
			configs = excluded.configs,
			updated_at = CURRENT_TIMESTAMP
	`, name, string(blob))
	if err != nil {
		return fmt.Errorf("failed to save preset %q: %w", name, err)
	}
	return nil
}

// GetMarkerPreset loads a named preset. Returns sql.ErrNoRows if absent.
func (db *DB) GetMarkerPreset(name string) ([]marker.Config, error) {
	var blob string
	err := db.QueryRow(`SELECT configs FROM marker_presets WHERE name = ?`, name).Scan(&blob)
	if err != nil {
		return nil, err
	}

	var configs []marker.Config
	if err := json.Unmarshal([]byte(blob), &configs); err != nil {
		return nil, fmt.Errorf("corrupt preset %q: %w", name, err)
	}
	return configs, nil
}

// ListMarkerPresets returns the stored preset names, sorted.
func (db *DB) ListMarkerPresets() ([]string, error) {
	rows, err := db.Query(`SELECT name FROM marker_presets ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list presets: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// DeleteMarkerPreset removes a named preset. Deleting an absent preset is
// not an error.
func (db *DB) DeleteMarkerPreset(name string) error {
	_, err := db.Exec(`DELETE FROM marker_presets WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete preset %q: %w", name, err)
	}
	return nil
}

// SaveCalibrationLabels replaces the confirmed color -> joint mapping.
func (db *DB) SaveCalibrationLabels(labels map[string]string) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(`DELETE FROM calibration_labels`); err != nil {
		return fmt.Errorf("failed to clear calibration labels: %w", err)
	}
	for color, joint := range labels {
		if _, err := tx.Exec(
			`INSERT INTO calibration_labels (color_name, joint_name) VALUES (?, ?)`,
			color, joint,
		); err != nil {
			return fmt.Errorf("failed to save label %s -> %s: %w", color, joint, err)
		}
	}
	return tx.Commit()
}

// LoadCalibrationLabels returns the confirmed color -> joint mapping.
// Returns an empty map when no labels were confirmed.
func (db *DB) LoadCalibrationLabels() (map[string]string, error) {
	rows, err := db.Query(`SELECT color_name, joint_name FROM calibration_labels`)
	if err != nil {
		return nil, fmt.Errorf("failed to load calibration labels: %w", err)
	}
	defer rows.Close()

	labels := make(map[string]string)
	for rows.Next() {
		var color, joint string
		if err := rows.Scan(&color, &joint); err != nil {
			return nil, err
		}
		labels[color] = joint
	}
	return labels, rows.Err()
}
