package sql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sig-0/harvest/storage/types"
)

const (
	insertRecordQuery = `
INSERT INTO records (provider_id, payload, fetched_at)
VALUES ($1, $2, $3)`

	insertRunReportQuery = `
INSERT INTO run_reports (id, shard_index, shard_total, started_at, finished_at, status, outcomes)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO UPDATE
SET shard_index = EXCLUDED.shard_index,
    shard_total = EXCLUDED.shard_total,
    started_at  = EXCLUDED.started_at,
    finished_at = EXCLUDED.finished_at,
    status      = EXCLUDED.status,
    outcomes    = EXCLUDED.outcomes`

	selectRunReportsQuery = `
SELECT id, shard_index, shard_total, started_at, finished_at, status, outcomes,
       COUNT(*) OVER () AS total
FROM run_reports
ORDER BY started_at DESC
LIMIT $1 OFFSET $2`

	selectRunReportQuery = `
SELECT id, shard_index, shard_total, started_at, finished_at, status, outcomes
FROM run_reports
WHERE id = $1`

	selectProvidersQuery = `
SELECT DISTINCT provider_id
FROM records
ORDER BY provider_id`
)

// Storage is the Postgres storage adapter. Record payloads are kept
// opaque as JSONB
type Storage struct {
	pool *pgxpool.Pool
}

func NewStorage(pool *pgxpool.Pool) *Storage {
	return &Storage{
		pool: pool,
	}
}

func (s *Storage) WriteRecords(
	ctx context.Context,
	providerID string,
	records []types.Record,
) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	// Marshal all payloads up front, so a bad record
	// never produces a half-queued batch
	payloads := make([][]byte, 0, len(records))

	for _, record := range records {
		payload, err := json.Marshal(record)
		if err != nil {
			return 0, fmt.Errorf("unable to marshal record payload: %w", err)
		}

		payloads = append(payloads, payload)
	}

	var (
		fetchedAt = timeToTimestampz(time.Now().UTC())
		batch     = &pgx.Batch{}
	)

	for _, payload := range payloads {
		batch.Queue(insertRecordQuery, providerID, payload, fetchedAt)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()

	written := 0

	for range payloads {
		if _, err := results.Exec(); err != nil {
			return written, fmt.Errorf("unable to write record: %w", err)
		}

		written++
	}

	return written, nil
}

func (s *Storage) SaveRunReport(ctx context.Context, report *types.RunReport) error {
	outcomes, err := json.Marshal(report.Outcomes)
	if err != nil {
		return fmt.Errorf("unable to marshal run outcomes: %w", err)
	}

	_, err = s.pool.Exec(
		ctx,
		insertRunReportQuery,
		report.ID,
		report.ShardIndex,
		report.ShardTotal,
		timeToTimestampz(report.StartedAt),
		timeToTimestampz(report.FinishedAt),
		report.Status.String(),
		outcomes,
	)
	if err != nil {
		return fmt.Errorf("unable to save run report: %w", err)
	}

	return nil
}

func (s *Storage) RunReports(
	ctx context.Context,
	limit int32,
	offset int64,
) (*types.Page[*types.RunReport], error) {
	rows, err := s.pool.Query(ctx, selectRunReportsQuery, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch run reports: %w", err)
	}
	defer rows.Close()

	var (
		reports []*types.RunReport
		total   int64
	)

	for rows.Next() {
		var (
			report      types.RunReport
			startedAt   pgtype.Timestamptz
			finishedAt  pgtype.Timestamptz
			status      string
			outcomesRaw []byte
		)

		err = rows.Scan(
			&report.ID,
			&report.ShardIndex,
			&report.ShardTotal,
			&startedAt,
			&finishedAt,
			&status,
			&outcomesRaw,
			&total,
		)
		if err != nil {
			return nil, fmt.Errorf("unable to scan run report: %w", err)
		}

		report.StartedAt = timestampzToTime(startedAt)
		report.FinishedAt = timestampzToTime(finishedAt)
		report.Status = types.RunStatus(status)

		if err = json.Unmarshal(outcomesRaw, &report.Outcomes); err != nil {
			return nil, fmt.Errorf("unable to parse run outcomes: %w", err)
		}

		reports = append(reports, &report)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("unable to read run reports: %w", err)
	}

	return &types.Page[*types.RunReport]{
		Results: reports,
		Total:   total,
	}, nil
}

func (s *Storage) RunReport(ctx context.Context, id string) (*types.RunReport, error) {
	var (
		report      types.RunReport
		startedAt   pgtype.Timestamptz
		finishedAt  pgtype.Timestamptz
		status      string
		outcomesRaw []byte
	)

	err := s.pool.QueryRow(ctx, selectRunReportQuery, id).Scan(
		&report.ID,
		&report.ShardIndex,
		&report.ShardTotal,
		&startedAt,
		&finishedAt,
		&status,
		&outcomesRaw,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil //nolint:nilnil // valid case
		}

		return nil, fmt.Errorf("unable to fetch run report: %w", err)
	}

	report.StartedAt = timestampzToTime(startedAt)
	report.FinishedAt = timestampzToTime(finishedAt)
	report.Status = types.RunStatus(status)

	if err = json.Unmarshal(outcomesRaw, &report.Outcomes); err != nil {
		return nil, fmt.Errorf("unable to parse run outcomes: %w", err)
	}

	return &report, nil
}

func (s *Storage) ListProviders(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, selectProvidersQuery)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch providers: %w", err)
	}
	defer rows.Close()

	var out []string

	for rows.Next() {
		var id string

		if err = rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("unable to scan provider: %w", err)
		}

		out = append(out, id)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("unable to read providers: %w", err)
	}

	return out, nil
}

// timeToTimestampz converts the time value to postgres timestamp
func timeToTimestampz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{
		Time:  t.UTC(),
		Valid: true,
	}
}

// timestampzToTime converts the postgres timestamp value to time
func timestampzToTime(ts pgtype.Timestamptz) time.Time {
	if !ts.Valid {
		return time.Time{}
	}

	return ts.Time
}
