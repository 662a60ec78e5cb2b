package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"SignalDesk/internal/domain/models"
	applogger "SignalDesk/pkg/logger"
	pkgsqlite "SignalDesk/pkg/sqlite"
)

const dayLayout = "2006-01-02"

// SQLitePriceStore is the single-file backend for local runs and tests.
type SQLitePriceStore struct {
	client *pkgsqlite.Client
	db     *sql.DB
	l      *applogger.Logger
	now    func() time.Time
}

// NewSQLitePriceStore migrates the schema and returns the store.
func NewSQLitePriceStore(ctx context.Context, c *pkgsqlite.Client, l *applogger.Logger) (*SQLitePriceStore, error) {
	if l == nil {
		l = applogger.Nop()
	}
	if err := c.Migrate(ctx, pkgsqlite.PriceSchema()); err != nil {
		return nil, fmt.Errorf("migrate price schema: %w", err)
	}
	l.Info("sqlite price store ready", applogger.String("path", c.Path()))
	return &SQLitePriceStore{client: c, db: c.DB(), l: l, now: time.Now}, nil
}

func (s *SQLitePriceStore) GetSeries(ctx context.Context, isin string, lookbackDays int) (models.PriceSeries, error) {
	from := s.now().UTC().AddDate(0, 0, -lookbackDays).Format(dayLayout)
	rows, err := s.db.QueryContext(ctx, `
		SELECT day, open, high, low, close, volume
		FROM daily_bars
		WHERE isin = ? AND day >= ?
		ORDER BY day ASC`, isin, from)
	if err != nil {
		s.l.Error("sqlite get_series query error", applogger.String("isin", isin), applogger.Error(err))
		return models.PriceSeries{}, fmt.Errorf("get series %s: %w", isin, err)
	}
	defer rows.Close()

	var pts []models.PricePoint
	for rows.Next() {
		var (
			day string
			p   models.PricePoint
		)
		if err := rows.Scan(&day, &p.Open, &p.High, &p.Low, &p.Close, &p.Volume); err != nil {
			return models.PriceSeries{}, fmt.Errorf("scan bar %s: %w", isin, err)
		}
		if p.Date, err = time.Parse(dayLayout, day); err != nil {
			return models.PriceSeries{}, fmt.Errorf("bar %s has bad day %q: %w", isin, day, err)
		}
		pts = append(pts, p)
	}
	if err := rows.Err(); err != nil {
		return models.PriceSeries{}, fmt.Errorf("rows %s: %w", isin, err)
	}
	return models.NormalizeSeries(isin, pts), nil
}

func (s *SQLitePriceStore) ListInstruments(ctx context.Context) ([]models.Instrument, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT isin, name, ticker, sector, venue
		FROM instruments
		WHERE active = 1
		ORDER BY isin ASC`)
	if err != nil {
		return nil, fmt.Errorf("list instruments: %w", err)
	}
	defer rows.Close()
	return scanInstruments(rows)
}

// UpsertInstruments inserts or replaces reference data.
func (s *SQLitePriceStore) UpsertInstruments(ctx context.Context, instruments []models.Instrument) error {
	return s.inTx(ctx, `
		INSERT INTO instruments (isin, name, ticker, sector, venue, active)
		VALUES (?, ?, ?, ?, ?, 1)
		ON CONFLICT(isin) DO UPDATE SET
			name = excluded.name, ticker = excluded.ticker,
			sector = excluded.sector, venue = excluded.venue, active = 1`,
		len(instruments), func(stmt *sql.Stmt, i int) error {
			in := instruments[i]
			_, err := stmt.ExecContext(ctx, in.ISIN, in.Name, in.Ticker, in.Sector, in.Venue)
			return err
		})
}

// UpsertBars writes daily bars; a bar for an existing day replaces it.
func (s *SQLitePriceStore) UpsertBars(ctx context.Context, isin string, points []models.PricePoint) error {
	return s.inTx(ctx, `
		INSERT INTO daily_bars (isin, day, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(isin, day) DO UPDATE SET
			open = excluded.open, high = excluded.high, low = excluded.low,
			close = excluded.close, volume = excluded.volume`,
		len(points), func(stmt *sql.Stmt, i int) error {
			p := points[i]
			_, err := stmt.ExecContext(ctx, isin, p.Date.UTC().Format(dayLayout), p.Open, p.High, p.Low, p.Close, p.Volume)
			return err
		})
}

func (s *SQLitePriceStore) inTx(ctx context.Context, query string, n int, exec func(*sql.Stmt, int) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()
	for i := 0; i < n; i++ {
		if err := exec(stmt, i); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("row %d: %w", i, err)
		}
	}
	return tx.Commit()
}

func (s *SQLitePriceStore) Health(ctx context.Context) error { return s.client.Health(ctx) }

func (s *SQLitePriceStore) Close() error { return s.client.Close() }
