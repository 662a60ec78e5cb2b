package clickhouse

import "fmt"

// PriceSchema returns the DDL for the instrument universe and daily bars.
// ReplacingMergeTree keeps the latest version of a re-ingested bar.
func PriceSchema(database string) []string {
	return []string{
		fmt.Sprintf(`CREATE DATABASE IF NOT EXISTS %s`, database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.instruments (
    isin       String,
    name       String,
    ticker     String,
    sector     String,
    venue      String,
    active     UInt8 DEFAULT 1,
    updated_at DateTime DEFAULT now()
) ENGINE = ReplacingMergeTree(updated_at)
ORDER BY isin`, database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.daily_bars (
    isin       String,
    day        Date,
    open       Float64,
    high       Float64,
    low        Float64,
    close      Float64,
    volume     Float64,
    ingested_at DateTime DEFAULT now()
) ENGINE = ReplacingMergeTree(ingested_at)
PARTITION BY toYear(day)
ORDER BY (isin, day)`, database),
	}
}
