package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"TradeDeck/internal/domain/models"
	drepo "TradeDeck/internal/domain/repository"
)

// Schema holds the DDL for the candle history table.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS candles_1m (
		bucket DateTime,
		symbol LowCardinality(String),
		open   Float64,
		high   Float64,
		low    Float64,
		close  Float64,
		volume Float64
	) ENGINE = ReplacingMergeTree
	ORDER BY (symbol, bucket)`,
}

// ClickHouseCandleStore implements HistoryStore over a ClickHouse
// candles table.
type ClickHouseCandleStore struct {
	db    *sql.DB
	table string
}

func NewClickHouseCandleStore(db *sql.DB, table string) drepo.HistoryStore {
	if table == "" {
		table = "candles_1m"
	}
	return &ClickHouseCandleStore{db: db, table: table}
}

// StoreCandles batch-inserts bars using a multi-row VALUES list to
// keep round-trips down.
func (s *ClickHouseCandleStore) StoreCandles(ctx context.Context, candles []models.Candle) error {
	if len(candles) == 0 {
		return nil
	}
	const chunkSize = 2000
	for start := 0; start < len(candles); start += chunkSize {
		end := start + chunkSize
		if end > len(candles) {
			end = len(candles)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*7)
		for _, c := range candles[start:end] {
			if c.Symbol == "" || c.Bucket.IsZero() {
				continue
			}
			values = append(values, "(?, ?, ?, ?, ?, ?, ?)")
			args = append(args, c.Bucket, c.Symbol, c.Open, c.High, c.Low, c.Close, c.Volume)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (bucket, symbol, open, high, low, close, volume) VALUES %s",
			s.table, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("store candles: %w", err)
		}
	}
	return nil
}

// LatestCandles returns up to n most recent bars for symbol, reordered
// oldest to newest as the regime classifier expects.
func (s *ClickHouseCandleStore) LatestCandles(ctx context.Context, symbol string, n int) ([]models.Candle, error) {
	q := fmt.Sprintf(
		"SELECT bucket, symbol, open, high, low, close, volume FROM %s FINAL WHERE symbol = ? ORDER BY bucket DESC LIMIT ?",
		s.table)
	rows, err := s.db.QueryContext(ctx, q, symbol, n)
	if err != nil {
		return nil, fmt.Errorf("latest candles: %w", err)
	}
	defer rows.Close()

	var candles []models.Candle
	for rows.Next() {
		var c models.Candle
		if err := rows.Scan(&c.Bucket, &c.Symbol, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return nil, err
		}
		candles = append(candles, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(candles, func(i, j int) bool { return candles[i].Bucket.Before(candles[j].Bucket) })
	return candles, nil
}

func (s *ClickHouseCandleStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseCandleStore) Close() error {
	return nil // connection owned by pkg client
}
