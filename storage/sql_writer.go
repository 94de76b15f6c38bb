package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"suumo-scraper/models"
	"suumo-scraper/utils"
)

// dialect covers the differences between the supported databases.
type dialect struct {
	name        string
	idColumn    string
	placeholder func(n int) string
}

var dialects = map[string]dialect{
	"postgres": {
		name:        "postgres",
		idColumn:    "id SERIAL PRIMARY KEY",
		placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
	},
	"sqlite": {
		name:        "sqlite",
		idColumn:    "id INTEGER PRIMARY KEY AUTOINCREMENT",
		placeholder: func(int) string { return "?" },
	},
}

// SQLWriter persists listings to a relational table. Inserts are
// append-only; earlier runs are never cleared.
type SQLWriter struct {
	db      *sql.DB
	dialect dialect
}

// NewSQLWriter opens a connection for driver ("postgres" or "sqlite"),
// waits for the database to answer and creates the listings table.
func NewSQLWriter(ctx context.Context, driver, dsn string, logger *utils.Logger) (*SQLWriter, error) {
	if _, ok := dialects[driver]; !ok {
		return nil, &models.PersistenceError{Sink: sinkName(driver), Err: fmt.Errorf("unsupported driver %q", driver)}
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, &models.PersistenceError{Sink: sinkName(driver), Err: fmt.Errorf("open: %w", err)}
	}

	retry := utils.RetryConfig{MaxAttempts: 5, BaseDelay: 500 * time.Millisecond, Logger: logger}
	if err := retry.Do(ctx, "ping "+driver, func() error { return db.PingContext(ctx) }); err != nil {
		_ = db.Close()
		return nil, &models.PersistenceError{Sink: sinkName(driver), Err: err}
	}

	return NewSQLWriterFromDB(ctx, db, driver)
}

// NewSQLWriterFromDB wraps an already opened database.
func NewSQLWriterFromDB(ctx context.Context, db *sql.DB, driver string) (*SQLWriter, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, &models.PersistenceError{Sink: sinkName(driver), Err: fmt.Errorf("unsupported driver %q", driver)}
	}
	w := &SQLWriter{db: db, dialect: d}
	if err := w.migrate(ctx); err != nil {
		return nil, w.fail(fmt.Errorf("migrate: %w", err))
	}
	return w, nil
}

func (w *SQLWriter) migrate(ctx context.Context) error {
	_, err := w.db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS listings (
			%s,
			building_name    TEXT    NOT NULL,
			station_distance TEXT    NOT NULL DEFAULT '',
			rent             NUMERIC NOT NULL DEFAULT 0,
			floor_plan       TEXT    NOT NULL DEFAULT '',
			size             NUMERIC NOT NULL DEFAULT 0
		)`, w.dialect.idColumn))
	return err
}

// Write inserts all listings in one transaction. Nothing is stored if any
// insert fails.
func (w *SQLWriter) Write(ctx context.Context, listings []*models.Listing) error {
	if len(listings) == 0 {
		return nil
	}

	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return w.fail(fmt.Errorf("begin: %w", err))
	}
	defer tx.Rollback()

	ph := make([]string, 5)
	for i := range ph {
		ph[i] = w.dialect.placeholder(i + 1)
	}
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"INSERT INTO listings (building_name, station_distance, rent, floor_plan, size) VALUES (%s)",
		strings.Join(ph, ", ")))
	if err != nil {
		return w.fail(fmt.Errorf("prepare: %w", err))
	}
	defer stmt.Close()

	for _, l := range listings {
		if _, err := stmt.ExecContext(ctx, l.BuildingName, l.StationText, l.Rent, string(l.FloorPlan), l.SizeM2); err != nil {
			return w.fail(fmt.Errorf("insert %q: %w", l.BuildingName, err))
		}
	}

	if err := tx.Commit(); err != nil {
		return w.fail(fmt.Errorf("commit: %w", err))
	}
	return nil
}

// FetchAll retrieves every stored listing in insertion order.
func (w *SQLWriter) FetchAll(ctx context.Context) ([]*models.Listing, error) {
	rows, err := w.db.QueryContext(ctx, `
		SELECT id, building_name, station_distance, rent, floor_plan, size
		FROM listings
		ORDER BY id
	`)
	if err != nil {
		return nil, w.fail(fmt.Errorf("fetch all: %w", err))
	}
	defer rows.Close()

	var listings []*models.Listing
	for rows.Next() {
		l := &models.Listing{}
		var plan string
		if err := rows.Scan(&l.ID, &l.BuildingName, &l.StationText, &l.Rent, &plan, &l.SizeM2); err != nil {
			return nil, w.fail(fmt.Errorf("scan row: %w", err))
		}
		l.FloorPlan = models.FloorPlan(plan)
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, w.fail(err)
	}
	return listings, nil
}

func (w *SQLWriter) Close() error {
	return w.db.Close()
}

func (w *SQLWriter) fail(err error) error {
	return &models.PersistenceError{Sink: sinkName(w.dialect.name), Err: err}
}

func sinkName(driver string) string {
	return "sql/" + driver
}
