package db

import (
	"context"
	"fmt"

	"feed_notifier/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS deliveries (
	id SERIAL PRIMARY KEY,
	cycle_id TEXT NOT NULL,
	chat_id TEXT NOT NULL,
	title TEXT NOT NULL,
	link VARCHAR(2048) NOT NULL,
	status TEXT NOT NULL,
	error TEXT,
	delivered_at TIMESTAMP WITH TIME ZONE NOT NULL
)`

// Database инкапсулирует пул соединений к PostgreSQL с журналом доставок.
// Журнал только пишется и читается для просмотра; выбор новых записей
// на него не опирается.
type Database struct {
	Pool *pgxpool.Pool
}

// NewDB создаёт новый пул соединений по connString и возвращает Database.
func NewDB(ctx context.Context, connString string) (*Database, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}
	return &Database{Pool: pool}, nil
}

// Close закрывает пул соединений.
func (db *Database) Close() {
	db.Pool.Close()
}

func (db *Database) Ping(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}

// Migrate создаёт таблицу журнала, если её нет.
func (db *Database) Migrate(ctx context.Context) error {
	_, err := db.Pool.Exec(ctx, schema)
	return err
}

// RecordDelivery сохраняет результат одной отправки.
func (db *Database) RecordDelivery(ctx context.Context, d models.Delivery) error {
	var errText *string
	if d.Error != "" {
		errText = &d.Error
	}
	_, err := db.Pool.Exec(ctx, `
        INSERT INTO deliveries (cycle_id, chat_id, title, link, status, error, delivered_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `, d.CycleID, d.ChatID, d.Title, d.Link, string(d.Status), errText, d.DeliveredAt)
	return err
}

// RecentDeliveries возвращает последние limit записей журнала, новые первыми.
func (db *Database) RecentDeliveries(ctx context.Context, limit int) ([]models.Delivery, error) {
	rows, err := db.Pool.Query(ctx, `
        SELECT cycle_id, chat_id, title, link, status, COALESCE(error, ''), delivered_at
        FROM deliveries
        ORDER BY delivered_at DESC, id DESC
        LIMIT $1
    `, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deliveries []models.Delivery
	for rows.Next() {
		var (
			d      models.Delivery
			status string
		)
		if err := rows.Scan(&d.CycleID, &d.ChatID, &d.Title, &d.Link, &status, &d.Error, &d.DeliveredAt); err != nil {
			return nil, err
		}
		d.Status = models.DeliveryStatus(status)
		deliveries = append(deliveries, d)
	}
	return deliveries, rows.Err()
}
