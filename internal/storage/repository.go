package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotConfigured indicates the storage pool was not initialised.
	ErrNotConfigured = errors.New("storage: pool not configured")
)

const (
	upsertDemandHourSQL = `INSERT INTO demand_hours (
        ba,
        ts,
        demand_mw
    ) VALUES (
        $1,$2,$3
    )
    ON CONFLICT (ba, ts) DO UPDATE
    SET demand_mw = EXCLUDED.demand_mw;`

	listDemandHoursSQL = `SELECT
        ba,
        ts,
        demand_mw,
        created_at
    FROM demand_hours
    WHERE ba = $1
      AND ts >= $2
      AND ts < $3
    ORDER BY ts;`

	countDemandHoursSQL = `SELECT COUNT(*) FROM demand_hours WHERE ba = $1;`

	insertResultSQL = `INSERT INTO headroom_results (
        ba,
        target_rate,
        load_addition_mw,
        curtailment_rate,
        total_curtailment_mwh,
        curtailed_hours,
        avg_event_duration_hours,
        max_event_duration_hours,
        avg_load_retention,
        summer_curtailed_hours,
        winter_curtailed_hours,
        load_factor,
        summer_peak_mw,
        winter_peak_mw
    ) VALUES (
        $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14
    )
    ON CONFLICT (ba, target_rate) DO UPDATE
    SET load_addition_mw         = EXCLUDED.load_addition_mw,
        curtailment_rate         = EXCLUDED.curtailment_rate,
        total_curtailment_mwh    = EXCLUDED.total_curtailment_mwh,
        curtailed_hours          = EXCLUDED.curtailed_hours,
        avg_event_duration_hours = EXCLUDED.avg_event_duration_hours,
        max_event_duration_hours = EXCLUDED.max_event_duration_hours,
        avg_load_retention       = EXCLUDED.avg_load_retention,
        summer_curtailed_hours   = EXCLUDED.summer_curtailed_hours,
        winter_curtailed_hours   = EXCLUDED.winter_curtailed_hours,
        load_factor              = EXCLUDED.load_factor,
        summer_peak_mw           = EXCLUDED.summer_peak_mw,
        winter_peak_mw           = EXCLUDED.winter_peak_mw
    RETURNING id;`

	listResultsByBASQL = `SELECT
        id, ba, target_rate, load_addition_mw, curtailment_rate,
        total_curtailment_mwh, curtailed_hours, avg_event_duration_hours,
        max_event_duration_hours, avg_load_retention,
        summer_curtailed_hours, winter_curtailed_hours,
        load_factor, summer_peak_mw, winter_peak_mw, created_at
    FROM headroom_results
    WHERE ba = $1
    ORDER BY target_rate;`

	listRecentResultsSQL = `SELECT
        id, ba, target_rate, load_addition_mw, curtailment_rate,
        total_curtailment_mwh, curtailed_hours, avg_event_duration_hours,
        max_event_duration_hours, avg_load_retention,
        summer_curtailed_hours, winter_curtailed_hours,
        load_factor, summer_peak_mw, winter_peak_mw, created_at
    FROM headroom_results
    ORDER BY created_at DESC, ba, target_rate
    LIMIT $1;`
)

// DemandStore defines operations for hourly demand persistence.
type DemandStore interface {
	UpsertDemandHours(ctx context.Context, hours []DemandHour) (int64, error)
	ListDemandHours(ctx context.Context, ba string, from, to time.Time) ([]DemandHour, error)
	CountDemandHours(ctx context.Context, ba string) (int64, error)
}

// ResultStore defines operations for analysis result persistence.
type ResultStore interface {
	UpsertResults(ctx context.Context, results []HeadroomResult) error
	ListResultsByBA(ctx context.Context, ba string) ([]HeadroomResult, error)
	ListRecentResults(ctx context.Context, limit int) ([]HeadroomResult, error)
}

// Store aggregates access to demand hours and analysis results.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wires a pgx pool into a Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

func (s *Store) getPool() (*pgxpool.Pool, error) {
	if s == nil || s.pool == nil {
		return nil, ErrNotConfigured
	}
	return s.pool, nil
}

// UpsertDemandHours writes cleaned observations in one batch, returning the
// number of rows sent.
func (s *Store) UpsertDemandHours(ctx context.Context, hours []DemandHour) (int64, error) {
	pool, err := s.getPool()
	if err != nil {
		return 0, err
	}

	batch := &pgx.Batch{}
	for _, h := range hours {
		batch.Queue(upsertDemandHourSQL, h.BA, h.TS, h.DemandMW)
	}

	results := pool.SendBatch(ctx, batch)
	defer results.Close()

	for range hours {
		if _, err := results.Exec(); err != nil {
			return 0, fmt.Errorf("upsert demand hour: %w", err)
		}
	}
	return int64(len(hours)), nil
}

// ListDemandHours returns one BA's rows over [from, to).
func (s *Store) ListDemandHours(ctx context.Context, ba string, from, to time.Time) ([]DemandHour, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, err := pool.Query(ctx, listDemandHoursSQL, ba, from, to)
	if err != nil {
		return nil, fmt.Errorf("list demand hours: %w", err)
	}
	defer rows.Close()

	var out []DemandHour
	for rows.Next() {
		var h DemandHour
		if err := rows.Scan(&h.BA, &h.TS, &h.DemandMW, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan demand hour: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// CountDemandHours returns the stored row count for a BA.
func (s *Store) CountDemandHours(ctx context.Context, ba string) (int64, error) {
	pool, err := s.getPool()
	if err != nil {
		return 0, err
	}
	var count int64
	if err := pool.QueryRow(ctx, countDemandHoursSQL, ba).Scan(&count); err != nil {
		return 0, fmt.Errorf("count demand hours: %w", err)
	}
	return count, nil
}

// UpsertResults persists analysis rows, replacing earlier runs of the same
// (BA, target rate) combination.
func (s *Store) UpsertResults(ctx context.Context, results []HeadroomResult) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}

	for _, r := range results {
		var id int64
		err := pool.QueryRow(ctx, insertResultSQL,
			r.BA, r.TargetRate, r.LoadAdditionMW, r.CurtailmentRate,
			r.TotalCurtailmentMWh, r.CurtailedHours, r.AvgEventDurationHours,
			r.MaxEventDurationHours, r.AvgLoadRetention,
			r.SummerCurtailedHours, r.WinterCurtailedHours,
			r.LoadFactor, r.SummerPeakMW, r.WinterPeakMW,
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("upsert result %s@%s: %w", r.BA, r.TargetRate.String(), err)
		}
	}
	return nil
}

// ListResultsByBA returns stored results for one BA ordered by target rate.
func (s *Store) ListResultsByBA(ctx context.Context, ba string) ([]HeadroomResult, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}
	rows, err := pool.Query(ctx, listResultsByBASQL, ba)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()
	return scanResults(rows)
}

// ListRecentResults returns the newest stored results.
func (s *Store) ListRecentResults(ctx context.Context, limit int) ([]HeadroomResult, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}
	rows, err := pool.Query(ctx, listRecentResultsSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent results: %w", err)
	}
	defer rows.Close()
	return scanResults(rows)
}

func scanResults(rows pgx.Rows) ([]HeadroomResult, error) {
	var out []HeadroomResult
	for rows.Next() {
		var r HeadroomResult
		err := rows.Scan(
			&r.ID, &r.BA, &r.TargetRate, &r.LoadAdditionMW, &r.CurtailmentRate,
			&r.TotalCurtailmentMWh, &r.CurtailedHours, &r.AvgEventDurationHours,
			&r.MaxEventDurationHours, &r.AvgLoadRetention,
			&r.SummerCurtailedHours, &r.WinterCurtailedHours,
			&r.LoadFactor, &r.SummerPeakMW, &r.WinterPeakMW, &r.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
