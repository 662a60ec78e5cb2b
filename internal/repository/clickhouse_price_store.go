package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"SignalDesk/internal/domain/models"
	pkgch "SignalDesk/pkg/clickhouse"
	applogger "SignalDesk/pkg/logger"
)

// CHPriceStore serves daily bars and the instrument universe from ClickHouse.
type CHPriceStore struct {
	client   *pkgch.Client
	db       *sql.DB
	database string
	l        *applogger.Logger
	now      func() time.Time
}

func NewCHPriceStore(ch *pkgch.Client, l *applogger.Logger) *CHPriceStore {
	if l == nil {
		l = applogger.Nop()
	}
	return &CHPriceStore{client: ch, db: ch.DB(), database: ch.Database(), l: l, now: time.Now}
}

func (s *CHPriceStore) GetSeries(ctx context.Context, isin string, lookbackDays int) (models.PriceSeries, error) {
	start := time.Now()
	from := s.now().UTC().AddDate(0, 0, -lookbackDays)
	q := fmt.Sprintf(`
        SELECT day, open, high, low, close, volume
        FROM %s.daily_bars FINAL
        WHERE isin = ? AND day >= ?
        ORDER BY day ASC
    `, s.database)

	rows, err := s.db.QueryContext(ctx, q, isin, from)
	if err != nil {
		s.l.Error("clickhouse get_series query error", applogger.String("isin", isin), applogger.Error(err))
		return models.PriceSeries{}, fmt.Errorf("get series %s: %w", isin, err)
	}
	defer rows.Close()

	pts := make([]models.PricePoint, 0, lookbackDays)
	for rows.Next() {
		var p models.PricePoint
		if err := rows.Scan(&p.Date, &p.Open, &p.High, &p.Low, &p.Close, &p.Volume); err != nil {
			s.l.Error("clickhouse get_series scan error", applogger.String("isin", isin), applogger.Error(err))
			return models.PriceSeries{}, fmt.Errorf("scan bar %s: %w", isin, err)
		}
		pts = append(pts, p)
	}
	if err := rows.Err(); err != nil {
		return models.PriceSeries{}, fmt.Errorf("rows %s: %w", isin, err)
	}

	s.l.Debug("clickhouse get_series ok",
		applogger.String("isin", isin),
		applogger.Int("rows", len(pts)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return models.NormalizeSeries(isin, pts), nil
}

func (s *CHPriceStore) ListInstruments(ctx context.Context) ([]models.Instrument, error) {
	q := fmt.Sprintf(`
        SELECT isin, name, ticker, sector, venue
        FROM %s.instruments FINAL
        WHERE active = 1
        ORDER BY isin ASC
    `, s.database)
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		s.l.Error("clickhouse list_instruments query error", applogger.Error(err))
		return nil, fmt.Errorf("list instruments: %w", err)
	}
	defer rows.Close()
	return scanInstruments(rows)
}

func (s *CHPriceStore) Health(ctx context.Context) error { return s.client.Health(ctx) }

func (s *CHPriceStore) Close() error { return s.client.Close() }

func scanInstruments(rows *sql.Rows) ([]models.Instrument, error) {
	var out []models.Instrument
	for rows.Next() {
		var in models.Instrument
		if err := rows.Scan(&in.ISIN, &in.Name, &in.Ticker, &in.Sector, &in.Venue); err != nil {
			return nil, fmt.Errorf("scan instrument: %w", err)
		}
		out = append(out, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}
