// Package storage assembles volumes into a ring, routes writes to the
// active one, advances the ring on overflow, and fans searches out
// across it.
package storage

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// MetadataStorage is the sqlite3-backed home for everything a Storage
// needs to reopen itself: the ordered volume path list, freeform
// configuration values, and the series dictionary.
type MetadataStorage struct {
	db *sql.DB
}

// OpenMetadataStorage opens (creating if absent) the sqlite3 database
// at path and ensures its tables exist.
func OpenMetadataStorage(path string) (*MetadataStorage, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	m := &MetadataStorage{db: db}
	if err := m.createTables(); err != nil {
		db.Close()

		return nil, err
	}

	return m, nil
}

func (m *MetadataStorage) createTables() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS akumuli_volumes(
			id INTEGER UNIQUE,
			path TEXT UNIQUE
		);`,
		`CREATE TABLE IF NOT EXISTS akumuli_configuration(
			name TEXT UNIQUE,
			value TEXT,
			comment TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS akumuli_series(
			id INTEGER PRIMARY KEY UNIQUE,
			series_id TEXT,
			keyslist TEXT,
			storage_id INTEGER UNIQUE
		);`,
	}

	for _, stmt := range stmts {
		if _, err := m.db.Exec(stmt); err != nil {
			return fmt.Errorf("storage: create tables: %w", err)
		}
	}

	return nil
}

// Close closes the underlying database handle.
func (m *MetadataStorage) Close() error {
	return m.db.Close()
}

// VolumeDesc is one row of the volume ring: its index and file path.
type VolumeDesc struct {
	Index int
	Path  string
}

// InitVolumes records the initial ring order. Called once, at
// creation time; existing rows are left alone on conflict.
func (m *MetadataStorage) InitVolumes(volumes []VolumeDesc) error {
	stmt, err := m.db.Prepare(`INSERT OR IGNORE INTO akumuli_volumes (id, path) VALUES (?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, v := range volumes {
		if _, err := stmt.Exec(v.Index, v.Path); err != nil {
			return err
		}
	}

	return nil
}

// Volumes returns the ring in index order.
func (m *MetadataStorage) Volumes() ([]VolumeDesc, error) {
	rows, err := m.db.Query(`SELECT id, path FROM akumuli_volumes ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []VolumeDesc

	for rows.Next() {
		var v VolumeDesc
		if err := rows.Scan(&v.Index, &v.Path); err != nil {
			return nil, err
		}

		out = append(out, v)
	}

	return out, rows.Err()
}

// SetConfig upserts a named configuration value with an optional
// human-readable comment.
func (m *MetadataStorage) SetConfig(name, value, comment string) error {
	_, err := m.db.Exec(
		`INSERT INTO akumuli_configuration (name, value, comment) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET value = excluded.value, comment = excluded.comment`,
		name, value, comment,
	)

	return err
}

// Config reads back a named configuration value. The second return
// value is false if no row with that name exists.
func (m *MetadataStorage) Config(name string) (string, bool, error) {
	var value string

	err := m.db.QueryRow(`SELECT value FROM akumuli_configuration WHERE name = ?`, name).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}

	if err != nil {
		return "", false, err
	}

	return value, true, nil
}

// SeriesRow is one entry of the persisted series dictionary: the
// series name as written, a tag-key list (Storage leaves it empty), and
// the matcher id it was assigned.
type SeriesRow struct {
	SeriesID  string
	KeysList  string
	StorageID uint64
}

// PersistSeries appends new series rows, the matcher's
// PullNewNames() output translated into this table's shape.
func (m *MetadataStorage) PersistSeries(rows []SeriesRow) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := m.db.Begin()
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT OR IGNORE INTO akumuli_series (series_id, keyslist, storage_id) VALUES (?, ?, ?)`)
	if err != nil {
		tx.Rollback()

		return err
	}

	for _, r := range rows {
		if _, err := stmt.Exec(r.SeriesID, r.KeysList, r.StorageID); err != nil {
			stmt.Close()
			tx.Rollback()

			return err
		}
	}

	stmt.Close()

	return tx.Commit()
}

// AllSeries loads the full persisted series dictionary, used to
// rebuild the in-memory matcher on startup.
func (m *MetadataStorage) AllSeries() ([]SeriesRow, error) {
	rows, err := m.db.Query(`SELECT series_id, keyslist, storage_id FROM akumuli_series`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SeriesRow

	for rows.Next() {
		var r SeriesRow
		if err := rows.Scan(&r.SeriesID, &r.KeysList, &r.StorageID); err != nil {
			return nil, err
		}

		out = append(out, r)
	}

	return out, rows.Err()
}
