package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"

	"ticket-bot/internal/common/logger"
	"ticket-bot/internal/common/metrics"
	"ticket-bot/internal/models"
)

const flightsTable = "flights"

var schema = []string{
	`CREATE TABLE IF NOT EXISTS flights (
		id           BIGSERIAL PRIMARY KEY,
		origin       VARCHAR(100) NOT NULL,
		destination  VARCHAR(100) NOT NULL,
		departure_at TIMESTAMPTZ NOT NULL,
		price        NUMERIC(10, 2) NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_flights_route ON flights (origin, destination, departure_at)`,
}

// PostgresCatalog serves the flight inventory from PostgreSQL.
type PostgresCatalog struct {
	db     *sql.DB
	now    Clock
	logger logger.Logger
}

// NewPostgresCatalog queries the flights table through db.
func NewPostgresCatalog(db *sql.DB, now Clock, log logger.Logger) *PostgresCatalog {
	if now == nil {
		now = time.Now
	}
	return &PostgresCatalog{
		db:     db,
		now:    now,
		logger: log.WithFields(map[string]interface{}{"component": "catalog"}),
	}
}

// Migrate creates the flights table and its route index.
func (c *PostgresCatalog) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := c.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%w: migrate: %v", ErrSeedFailed, err)
		}
	}
	return nil
}

// Reset removes every flight and restarts id numbering.
func (c *PostgresCatalog) Reset(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, `TRUNCATE flights RESTART IDENTITY`); err != nil {
		return fmt.Errorf("%w: reset: %v", ErrSeedFailed, err)
	}
	return nil
}

// Seed bulk-loads flights with COPY inside one transaction.
func (c *PostgresCatalog) Seed(ctx context.Context, flights []models.Flight) (int, error) {
	start := time.Now()

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: begin: %v", ErrSeedFailed, err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn(flightsTable, "origin", "destination", "departure_at", "price"))
	if err != nil {
		return 0, fmt.Errorf("%w: prepare copy: %v", ErrSeedFailed, err)
	}

	for _, f := range flights {
		if _, err := stmt.ExecContext(ctx, f.Origin, f.Destination, f.Departure, f.Price); err != nil {
			stmt.Close()
			return 0, fmt.Errorf("%w: copy row: %v", ErrSeedFailed, err)
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		stmt.Close()
		return 0, fmt.Errorf("%w: flush copy: %v", ErrSeedFailed, err)
	}
	if err := stmt.Close(); err != nil {
		return 0, fmt.Errorf("%w: close copy: %v", ErrSeedFailed, err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%w: commit: %v", ErrSeedFailed, err)
	}

	c.logger.Info("catalog seeded", map[string]interface{}{
		"flights":    len(flights),
		"durationMs": time.Since(start).Milliseconds(),
	})
	return len(flights), nil
}

func (c *PostgresCatalog) GetTickets(ctx context.Context, q Query) ([]models.Flight, error) {
	defer observe("get_tickets", time.Now())

	args := []interface{}{EffectiveAsOf(c.now(), q.When)}
	where := []string{"departure_at > $1"}
	if q.Origin != "" {
		args = append(args, q.Origin)
		where = append(where, "origin = $"+strconv.Itoa(len(args)))
	}
	if q.Destination != "" {
		args = append(args, q.Destination)
		where = append(where, "destination = $"+strconv.Itoa(len(args)))
	}

	query := `SELECT id, origin, destination, departure_at, price FROM flights WHERE ` +
		strings.Join(where, " AND ") +
		` ORDER BY origin ASC, price ASC, departure_at ASC, id ASC`
	if q.Limit > 0 {
		args = append(args, q.Limit)
		query += " LIMIT $" + strconv.Itoa(len(args))
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: get tickets: %v", ErrQueryFailed, err)
	}
	defer rows.Close()

	var flights []models.Flight
	for rows.Next() {
		var f models.Flight
		if err := rows.Scan(&f.ID, &f.Origin, &f.Destination, &f.Departure, &f.Price); err != nil {
			return nil, fmt.Errorf("%w: scan ticket: %v", ErrQueryFailed, err)
		}
		flights = append(flights, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: get tickets: %v", ErrQueryFailed, err)
	}
	return flights, nil
}

func (c *PostgresCatalog) GetDepartureLocations(ctx context.Context, q LocationQuery) ([]string, error) {
	defer observe("get_departure_locations", time.Now())
	return c.locations(ctx, "origin", q)
}

func (c *PostgresCatalog) GetArrivalLocations(ctx context.Context, q LocationQuery) ([]string, error) {
	defer observe("get_arrival_locations", time.Now())
	return c.locations(ctx, "destination", q)
}

// column is one of the two fixed column names, never user input.
func (c *PostgresCatalog) locations(ctx context.Context, column string, q LocationQuery) ([]string, error) {
	args := []interface{}{EffectiveAsOf(c.now(), q.When)}
	query := fmt.Sprintf(`SELECT %[1]s FROM flights WHERE departure_at > $1 GROUP BY %[1]s ORDER BY %[1]s ASC`, column)
	if q.Limit > 0 {
		args = append(args, q.Limit)
		query += " LIMIT $2"
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s locations: %v", ErrQueryFailed, column, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("%w: scan location: %v", ErrQueryFailed, err)
		}
		out = append(out, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s locations: %v", ErrQueryFailed, column, err)
	}
	return out, nil
}

func (c *PostgresCatalog) IsRouteAvailable(ctx context.Context, origin, destination string, when time.Time) (bool, error) {
	defer observe("is_route_available", time.Now())

	var exists bool
	err := c.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM flights
			WHERE origin = $1 AND destination = $2 AND departure_at > $3
		)`, origin, destination, EffectiveAsOf(c.now(), when)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%w: route availability: %v", ErrQueryFailed, err)
	}
	return exists, nil
}

func observe(query string, start time.Time) {
	metrics.CatalogQueryDuration.WithLabelValues(query).Observe(time.Since(start).Seconds())
}
