// Package history implements the bulk import of past daily-energy files
// from an inverter into a local SQLite database.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Store wraps a SQLite connection holding imported daily energy rows.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the history database at path and prepares
// the connection. Call [Store.Init] on the returned store to install the
// schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	return New(db)
}

// New creates a Store on an existing connection and applies the pragmas the
// store relies on.
func New(db *sql.DB) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	// WAL allows the serve path to read while an import writes
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	// retry briefly instead of failing on a locked database
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	return &Store{db: db}, nil
}

// Init installs the database schema. Safe to call multiple times; every
// statement uses IF NOT EXISTS guards.
func (s *Store) Init(ctx context.Context) error {
	const schema = `
		CREATE TABLE IF NOT EXISTS daily_energy (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			inverter TEXT NOT NULL,
			day TEXT NOT NULL,
			energy_kwh REAL NOT NULL,
			energy_sum_kwh REAL NOT NULL,
			serial TEXT,
			model TEXT,
			imported_at TIMESTAMP NOT NULL,
			UNIQUE (inverter, day)
		)`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply history schema: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DailyEnergy is one imported day of production.
type DailyEnergy struct {
	Inverter   string
	Day        time.Time // date only, stored as YYYY-MM-DD
	EnergyKWh  float64
	EnergySum  float64 // running total across the imported range
	Serial     string
	Model      string
	ImportedAt time.Time
}

// UpsertDay records one day of production, replacing any previous row for
// the same inverter and date. Re-running an import is therefore idempotent.
func (s *Store) UpsertDay(ctx context.Context, row DailyEnergy) error {
	if row.Inverter == "" {
		return fmt.Errorf("inverter name is required")
	}
	if row.ImportedAt.IsZero() {
		row.ImportedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO daily_energy (inverter, day, energy_kwh, energy_sum_kwh, serial, model, imported_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (inverter, day) DO UPDATE SET
			energy_kwh = excluded.energy_kwh,
			energy_sum_kwh = excluded.energy_sum_kwh,
			serial = excluded.serial,
			model = excluded.model,
			imported_at = excluded.imported_at
	`, row.Inverter, row.Day.Format("2006-01-02"), row.EnergyKWh, row.EnergySum,
		row.Serial, row.Model, row.ImportedAt)
	if err != nil {
		return fmt.Errorf("upsert daily energy: %w", err)
	}
	return nil
}

// ListDays returns all imported rows for one inverter, oldest first.
func (s *Store) ListDays(ctx context.Context, inverter string) ([]DailyEnergy, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT inverter, day, energy_kwh, energy_sum_kwh, serial, model, imported_at
		FROM daily_energy
		WHERE inverter = ?
		ORDER BY day ASC
	`, inverter)
	if err != nil {
		return nil, fmt.Errorf("list daily energy: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []DailyEnergy
	for rows.Next() {
		var row DailyEnergy
		var day string
		var serial, model sql.NullString
		if err := rows.Scan(&row.Inverter, &day, &row.EnergyKWh, &row.EnergySum, &serial, &model, &row.ImportedAt); err != nil {
			return nil, fmt.Errorf("scan daily energy row: %w", err)
		}
		row.Day, err = time.Parse("2006-01-02", day)
		if err != nil {
			return nil, fmt.Errorf("parse stored day %q: %w", day, err)
		}
		row.Serial = serial.String
		row.Model = model.String
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily energy rows: %w", err)
	}
	return out, nil
}
