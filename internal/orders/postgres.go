package orders

import (
	"context"
	"database/sql"
	"fmt"

	"ticket-bot/internal/models"
)

const schema = `CREATE TABLE IF NOT EXISTS orders (
	id           UUID PRIMARY KEY,
	user_id      VARCHAR(100) NOT NULL,
	scenario_id  VARCHAR(50) NOT NULL,
	flight_id    BIGINT NOT NULL,
	origin       VARCHAR(100) NOT NULL,
	destination  VARCHAR(100) NOT NULL,
	departure_at TIMESTAMPTZ NOT NULL,
	price        NUMERIC(10, 2) NOT NULL,
	ticket_qty   INTEGER NOT NULL,
	total        NUMERIC(12, 2) NOT NULL,
	comment      TEXT NOT NULL DEFAULT '',
	phone        VARCHAR(20) NOT NULL,
	summary      TEXT NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL
)`

const insertOrder = `
	INSERT INTO orders (
		id, user_id, scenario_id, flight_id, origin, destination, departure_at,
		price, ticket_qty, total, comment, phone, summary, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	ON CONFLICT (id) DO NOTHING`

// PostgresSink stores orders in the orders table. An order id that is already
// stored is left as it is.
type PostgresSink struct {
	db *sql.DB
}

// NewPostgresSink writes orders through db.
func NewPostgresSink(db *sql.DB) *PostgresSink {
	return &PostgresSink{db: db}
}

func (s *PostgresSink) Name() string { return "postgres" }

// Migrate creates the orders table.
func (s *PostgresSink) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create orders table: %w", err)
	}
	return nil
}

func (s *PostgresSink) Record(ctx context.Context, o models.Order) error {
	_, err := s.db.ExecContext(ctx, insertOrder,
		o.ID, o.UserID, o.ScenarioID, o.FlightID, o.Origin, o.Destination, o.DepartureAt,
		o.Price, o.TicketQty, o.Total, o.Comment, o.Phone, o.Summary, o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order %s: %w", o.ID, err)
	}
	return nil
}
