package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"RiskGate/internal/domain/models"
	domrepo "RiskGate/internal/domain/repository"
	pkgch "RiskGate/pkg/clickhouse"
	applogger "RiskGate/pkg/logger"
)

// barColumns is the column order shared by the table DDL, every SELECT,
// and the batch INSERT.
const barColumns = "bucket, symbol, open, high, low, close, vol"

// SchemaDDL returns the statements that provision the bar database and one
// MergeTree table per timeframe.
func SchemaDDL(database string) []string {
	table := "(symbol String, bucket DateTime, open Float64, high Float64, low Float64, close Float64, vol Float64) ENGINE=MergeTree ORDER BY (symbol, bucket)"
	return []string{
		"CREATE DATABASE IF NOT EXISTS " + database,
		"CREATE TABLE IF NOT EXISTS " + database + ".bars_1s " + table,
		"CREATE TABLE IF NOT EXISTS " + database + ".bars_1m " + table,
		"CREATE TABLE IF NOT EXISTS " + database + ".bars_5m " + table,
	}
}

// CHBarStore implements BarStore backed by ClickHouse.
type CHBarStore struct {
	db       *sql.DB
	database string
	l        *applogger.Logger
}

func NewCHBarStore(ch *pkgch.Client, database string) *CHBarStore {
	return &CHBarStore{db: ch.DB(), database: database}
}

// SetLogger injects a structured logger.
func (s *CHBarStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHBarStore) tableForTF(tf domrepo.Timeframe) (string, error) {
	switch tf {
	case domrepo.TF1s:
		return s.database + ".bars_1s", nil
	case domrepo.TF1m:
		return s.database + ".bars_1m", nil
	case domrepo.TF5m:
		return s.database + ".bars_5m", nil
	default:
		return "", fmt.Errorf("unsupported timeframe %q", tf)
	}
}

func (s *CHBarStore) GetCandles(ctx context.Context, symbol string, from, to time.Time, tf domrepo.Timeframe) ([]models.Candle, error) {
	table, err := s.tableForTF(tf)
	if err != nil {
		return nil, err
	}
	q := fmt.Sprintf(`
        SELECT %s
        FROM %s
        WHERE symbol = ? AND bucket >= ? AND bucket <= ?
        ORDER BY bucket ASC
    `, barColumns, table)
	rows, err := s.db.QueryContext(ctx, q, symbol, from, to)
	if err != nil {
		s.logErr("get_candles query error", table, symbol, err)
		return nil, fmt.Errorf("get candles: %w", err)
	}
	defer rows.Close()
	return s.scanCandles(rows, table, symbol)
}

func (s *CHBarStore) GetLatestNCandles(ctx context.Context, symbol string, n int, tf domrepo.Timeframe) ([]models.Candle, error) {
	table, err := s.tableForTF(tf)
	if err != nil {
		return nil, err
	}
	// Latest N in ascending order for feature extraction.
	q := fmt.Sprintf(`
        SELECT %s
        FROM (
            SELECT %s
            FROM %s
            WHERE symbol = ?
            ORDER BY bucket DESC
            LIMIT ?
        )
        ORDER BY bucket ASC
    `, barColumns, barColumns, table)
	rows, err := s.db.QueryContext(ctx, q, symbol, n)
	if err != nil {
		s.logErr("get_latest query error", table, symbol, err)
		return nil, fmt.Errorf("get latest candles: %w", err)
	}
	defer rows.Close()
	return s.scanCandles(rows, table, symbol)
}

func (s *CHBarStore) scanCandles(rows *sql.Rows, table, symbol string) ([]models.Candle, error) {
	out := make([]models.Candle, 0, 1024)
	for rows.Next() {
		var c models.Candle
		if err := rows.Scan(&c.Bucket, &c.Symbol, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			s.logErr("scan error", table, symbol, err)
			return nil, fmt.Errorf("scan candle: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		s.logErr("rows error", table, symbol, err)
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (s *CHBarStore) StoreBatch(ctx context.Context, candles []models.Candle) error {
	if len(candles) == 0 {
		return nil
	}
	table := s.database + ".bars_1m"
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
		q := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
			table, barColumns, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("store candles: %w", err)
		}
	}
	return nil
}

func (s *CHBarStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *CHBarStore) logErr(msg, table, symbol string, err error) {
	if s.l == nil {
		return
	}
	s.l.Error("clickhouse "+msg,
		applogger.String("table", table),
		applogger.String("symbol", symbol),
		applogger.Error(err),
	)
}

var _ domrepo.BarStore = (*CHBarStore)(nil)
