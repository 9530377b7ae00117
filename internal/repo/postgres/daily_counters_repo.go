package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventwall/photowall/internal/domain/enums"
	"github.com/eventwall/photowall/internal/domain/errs"
	"github.com/eventwall/photowall/internal/domain/model"
)

type DailyCountersRepo struct {
	pool *pgxpool.Pool
}

func NewDailyCountersRepo(pool *pgxpool.Pool) *DailyCountersRepo {
	return &DailyCountersRepo{pool: pool}
}

func (r *DailyCountersRepo) Increment(ctx context.Context, eventID, day string, field enums.CounterField) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if !field.Valid() {
		return fmt.Errorf("%w: unknown counter %q", errs.ErrInvalidRequest, field)
	}

	delta := model.DailyCounter{}
	delta.Add(field, 1)

	_, err := r.pool.Exec(ctx, `
INSERT INTO daily_analytics (
	event_id,
	day_key,
	uploads,
	views,
	qr_scans,
	approved,
	rejected,
	archived,
	updated_at
) VALUES ($1, $2::date, $3, $4, $5, $6, $7, $8, NOW())
ON CONFLICT (event_id, day_key) DO UPDATE SET
	uploads = daily_analytics.uploads + EXCLUDED.uploads,
	views = daily_analytics.views + EXCLUDED.views,
	qr_scans = daily_analytics.qr_scans + EXCLUDED.qr_scans,
	approved = daily_analytics.approved + EXCLUDED.approved,
	rejected = daily_analytics.rejected + EXCLUDED.rejected,
	archived = daily_analytics.archived + EXCLUDED.archived,
	updated_at = NOW()
`,
		eventID,
		day,
		delta.Uploads,
		delta.Views,
		delta.QRScans,
		delta.Approved,
		delta.Rejected,
		delta.Archived,
	)
	if err != nil {
		return fmt.Errorf("increment daily analytics: %w", err)
	}

	return nil
}

func (r *DailyCountersRepo) ListDaily(ctx context.Context, eventID string, from, to time.Time) ([]model.DailyCounter, error) {
	if r.pool == nil {
		return []model.DailyCounter{}, nil
	}
	if from.IsZero() || to.IsZero() {
		return nil, fmt.Errorf("%w: from/to are required", errs.ErrInvalidRequest)
	}

	rows, err := r.pool.Query(ctx, `
SELECT
	event_id,
	to_char(day_key, 'YYYY-MM-DD'),
	uploads,
	views,
	qr_scans,
	approved,
	rejected,
	archived
FROM daily_analytics
WHERE event_id = $1
  AND day_key BETWEEN $2::date AND $3::date
ORDER BY day_key ASC
`, eventID, from.Format("2006-01-02"), to.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("list daily analytics: %w", err)
	}
	defer rows.Close()

	items := make([]model.DailyCounter, 0)
	for rows.Next() {
		var item model.DailyCounter
		if err := rows.Scan(
			&item.EventID,
			&item.Day,
			&item.Uploads,
			&item.Views,
			&item.QRScans,
			&item.Approved,
			&item.Rejected,
			&item.Archived,
		); err != nil {
			return nil, fmt.Errorf("scan daily analytics row: %w", err)
		}
		items = append(items, item)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate daily analytics rows: %w", rows.Err())
	}

	return items, nil
}
