package repositories

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/giovaniif/coffee-machine/infra"
	protocols "github.com/giovaniif/coffee-machine/protocols"
)

const createSalesTable = `
CREATE TABLE IF NOT EXISTS sales (
	order_id       TEXT PRIMARY KEY,
	drink          TEXT NOT NULL,
	price_cents    BIGINT NOT NULL,
	tendered_cents BIGINT NOT NULL,
	change_cents   BIGINT NOT NULL,
	message        TEXT NOT NULL,
	sold_at        TIMESTAMPTZ NOT NULL
)`

const insertSale = `
INSERT INTO sales (order_id, drink, price_cents, tendered_cents, change_cents, message, sold_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (order_id) DO NOTHING`

// SalesJournalPostgres appends completed sales to an audit table. It is never read back
// into machine state.
type SalesJournalPostgres struct {
	db *sql.DB
}

func NewSalesJournalPostgres(ctx context.Context, dsn string) (*SalesJournalPostgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, infra.Classify("ping postgres", err)
	}
	if _, err := db.ExecContext(ctx, createSalesTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("create sales table: %w", err)
	}
	return &SalesJournalPostgres{db: db}, nil
}

func (r *SalesJournalPostgres) Record(ctx context.Context, sale protocols.Sale) error {
	_, err := r.db.ExecContext(ctx, insertSale,
		sale.OrderId,
		sale.Drink,
		sale.Price.Cents(),
		sale.Tendered.Cents(),
		sale.Change.Cents(),
		sale.Message,
		sale.SoldAt,
	)
	return infra.Classify("insert sale", err)
}

func (r *SalesJournalPostgres) Close() error {
	return r.db.Close()
}
