package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/bnema/gregify/internal/domain/entity"
	"github.com/bnema/gregify/internal/domain/repository"
	"github.com/bnema/gregify/internal/logging"
)

const (
	insertUsage = `INSERT INTO usage_log (kind, fingerprint, input_chars, success, latency_ms, created_at)
VALUES (?, ?, ?, ?, ?, ?)`

	listRecentUsage = `SELECT id, kind, fingerprint, input_chars, success, latency_ms, created_at
FROM usage_log
ORDER BY created_at DESC, id DESC
LIMIT ?`

	summarizeUsage = `SELECT kind, COUNT(*), COALESCE(SUM(success), 0), COALESCE(AVG(latency_ms), 0), MAX(created_at)
FROM usage_log
WHERE created_at >= ?
GROUP BY kind
ORDER BY kind`
)

type usageRepo struct {
	db *sql.DB
}

// NewUsageRepository creates a new SQLite-backed usage repository.
func NewUsageRepository(db *sql.DB) repository.UsageRepository {
	return &usageRepo{db: db}
}

func (r *usageRepo) Record(ctx context.Context, rec *entity.UsageRecord) error {
	log := logging.FromContext(ctx)
	log.Trace().Str("kind", string(rec.Kind)).Bool("success", rec.Success).Msg("recording usage")

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	res, err := r.db.ExecContext(ctx, insertUsage,
		string(rec.Kind),
		rec.Fingerprint,
		rec.InputChars,
		boolToInt(rec.Success),
		rec.Latency.Milliseconds(),
		createdAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert usage record: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		rec.ID = id
	}
	return nil
}

func (r *usageRepo) Recent(ctx context.Context, limit int) ([]*entity.UsageRecord, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := r.db.QueryContext(ctx, listRecentUsage, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list usage: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*entity.UsageRecord
	for rows.Next() {
		var (
			rec       entity.UsageRecord
			kind      string
			success   int64
			latencyMs int64
			createdAt int64
		)
		if err := rows.Scan(&rec.ID, &kind, &rec.Fingerprint, &rec.InputChars, &success, &latencyMs, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan usage record: %w", err)
		}
		rec.Kind = entity.UsageKind(kind)
		rec.Success = success != 0
		rec.Latency = time.Duration(latencyMs) * time.Millisecond
		rec.CreatedAt = time.UnixMilli(createdAt)
		out = append(out, &rec)
	}
	return out, rows.Err()
}

func (r *usageRepo) Summaries(ctx context.Context, since time.Time) ([]entity.UsageSummary, error) {
	rows, err := r.db.QueryContext(ctx, summarizeUsage, since.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("failed to summarize usage: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []entity.UsageSummary
	for rows.Next() {
		var (
			s       entity.UsageSummary
			kind    string
			avgMs   float64
			lastAct int64
		)
		if err := rows.Scan(&kind, &s.Total, &s.Succeeded, &avgMs, &lastAct); err != nil {
			return nil, fmt.Errorf("failed to scan usage summary: %w", err)
		}
		s.Kind = entity.UsageKind(kind)
		s.AvgLatency = time.Duration(avgMs * float64(time.Millisecond))
		s.LastActivity = time.UnixMilli(lastAct)
		out = append(out, s)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
