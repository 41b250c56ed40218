// Package repository persists observations to the SQLite archive. The
// archive exists so rainfall windows (hour, 24 hours, since midnight)
// can be summed when the station does not report them directly.
package repository

import (
	"database/sql"
	_ "embed"
	"fmt"
)

//go:embed sql/insert-observation.sql
var insertObservationSQL string

//go:embed sql/rain-in-period.sql
var rainInPeriodSQL string

//go:embed sql/prune-before.sql
var pruneBeforeSQL string

// ObservationArchive stores canonical-unit observations and answers
// rainfall window queries.
type ObservationArchive interface {
	InsertObservation(ts int64, windDir, windSpeed, windGust, temperature, humidity, pressure, rain *float64) error
	RainInPeriod(start, stop int64) (*float64, error)
	PruneBefore(ts int64) error
}

type archiveImpl struct {
	db *sql.DB
}

func NewArchive(db *sql.DB) ObservationArchive {
	return &archiveImpl{db: db}
}

// InsertObservation stores one observation keyed by its timestamp.
// Values are expected in canonical units (degrees F, mph, inches,
// millibars); nil sensor values are stored as NULL. A repeated timestamp
// replaces the earlier row.
func (a *archiveImpl) InsertObservation(ts int64, windDir, windSpeed, windGust, temperature, humidity, pressure, rain *float64) error {
	_, err := a.db.Exec(insertObservationSQL,
		ts,
		nullable(windDir),
		nullable(windSpeed),
		nullable(windGust),
		nullable(temperature),
		nullable(humidity),
		nullable(pressure),
		nullable(rain),
	)
	if err != nil {
		return fmt.Errorf("insert observation: %w", err)
	}
	return nil
}

// RainInPeriod sums archived per-observation rainfall over
// (start, stop], in inches. Returns nil when the archive holds no rain
// data for the window.
func (a *archiveImpl) RainInPeriod(start, stop int64) (*float64, error) {
	var total sql.NullFloat64
	if err := a.db.QueryRow(rainInPeriodSQL, start, stop).Scan(&total); err != nil {
		return nil, fmt.Errorf("rain in period: %w", err)
	}
	if !total.Valid {
		return nil, nil
	}
	return &total.Float64, nil
}

// PruneBefore drops observations older than ts. The archive only needs
// to cover the longest rainfall window, so callers prune on a rolling
// basis.
func (a *archiveImpl) PruneBefore(ts int64) error {
	if _, err := a.db.Exec(pruneBeforeSQL, ts); err != nil {
		return fmt.Errorf("prune observations: %w", err)
	}
	return nil
}

func nullable(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
