package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventwall/photowall/internal/domain/enums"
	"github.com/eventwall/photowall/internal/domain/errs"
	"github.com/eventwall/photowall/internal/domain/model"
	"github.com/eventwall/photowall/internal/domain/rules"
)

const photoColumns = `id::text, event_id, status, display_order, submitter_name, caption, original_path, created_at, updated_at`

const uniqueViolation = "23505"

type PhotoRepo struct {
	pool *pgxpool.Pool
}

func NewPhotoRepo(pool *pgxpool.Pool) *PhotoRepo {
	return &PhotoRepo{pool: pool}
}

func (r *PhotoRepo) CreatePhoto(ctx context.Context, photo model.Photo) (model.Photo, error) {
	if r.pool == nil {
		return model.Photo{}, fmt.Errorf("postgres pool is nil")
	}
	eventID := strings.TrimSpace(photo.EventID)
	if eventID == "" {
		return model.Photo{}, fmt.Errorf("%w: event id is required", errs.ErrInvalidRequest)
	}
	if strings.TrimSpace(photo.ID) == "" {
		photo.ID = uuid.NewString()
	}

	created, err := scanPhoto(r.pool.QueryRow(ctx, `
INSERT INTO photos (
	id,
	event_id,
	status,
	display_order,
	submitter_name,
	caption,
	original_path,
	created_at,
	updated_at
) VALUES ($1::uuid, $2, 'pending', NULL, $3, $4, $5, NOW(), NOW())
RETURNING `+photoColumns,
		photo.ID, eventID, photo.SubmitterName, photo.Caption, photo.OriginalPath,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return model.Photo{}, fmt.Errorf("%w: photo %s already exists", errs.ErrInvalidRequest, photo.ID)
		}
		return model.Photo{}, fmt.Errorf("insert photo: %w", err)
	}

	return created, nil
}

func (r *PhotoRepo) GetPhoto(ctx context.Context, photoID string) (model.Photo, error) {
	if r.pool == nil {
		return model.Photo{}, fmt.Errorf("postgres pool is nil")
	}
	if _, err := uuid.Parse(photoID); err != nil {
		return model.Photo{}, fmt.Errorf("%w: photo %s", errs.ErrNotFound, photoID)
	}

	photo, err := scanPhoto(r.pool.QueryRow(ctx, `
SELECT `+photoColumns+`
FROM photos
WHERE id = $1::uuid
`, photoID))
	if err != nil {
		return model.Photo{}, notFoundOr(err, photoID, "get photo")
	}
	return photo, nil
}

func (r *PhotoRepo) ListPhotos(ctx context.Context, eventID string, status enums.PhotoStatus) ([]model.Photo, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT `+photoColumns+`
FROM photos
WHERE event_id = $1
  AND ($2::text = '' OR status = $2::text)
ORDER BY created_at DESC, id ASC
`, eventID, string(status))
	if err != nil {
		return nil, fmt.Errorf("list photos: %w", err)
	}
	return collectPhotos(rows)
}

func (r *PhotoRepo) ListApproved(ctx context.Context, eventID string) ([]model.Photo, error) {
	return r.ListPhotos(ctx, eventID, enums.PhotoStatusApproved)
}

func (r *PhotoRepo) CountByStatus(ctx context.Context, eventID string) (model.StatusCounts, error) {
	if r.pool == nil {
		return model.StatusCounts{}, fmt.Errorf("postgres pool is nil")
	}

	var counts model.StatusCounts
	if err := r.pool.QueryRow(ctx, `
SELECT
	COUNT(*) FILTER (WHERE status = 'pending'),
	COUNT(*) FILTER (WHERE status = 'approved'),
	COUNT(*) FILTER (WHERE status = 'rejected'),
	COUNT(*) FILTER (WHERE status = 'archived')
FROM photos
WHERE event_id = $1
`, eventID).Scan(&counts.Pending, &counts.Approved, &counts.Rejected, &counts.Archived); err != nil {
		return model.StatusCounts{}, fmt.Errorf("count photos by status: %w", err)
	}
	return counts, nil
}

// SetStatus runs under the event's advisory lock so the order handed to a
// newly approved photo cannot collide with a concurrent approval or reorder.
func (r *PhotoRepo) SetStatus(ctx context.Context, photoID string, status enums.PhotoStatus) (model.Photo, error) {
	current, err := r.GetPhoto(ctx, photoID)
	if err != nil {
		return model.Photo{}, err
	}

	var updated model.Photo
	err = WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		if err := lockEvent(ctx, tx, current.EventID); err != nil {
			return err
		}

		photo, err := scanPhoto(tx.QueryRow(ctx, `
SELECT `+photoColumns+`
FROM photos
WHERE id = $1::uuid
FOR UPDATE
`, photoID))
		if err != nil {
			return notFoundOr(err, photoID, "lock photo")
		}
		if !rules.CanTransition(photo.Status, status) {
			return fmt.Errorf("%w: %s -> %s", errs.ErrInvalidState, photo.Status, status)
		}

		updated, err = scanPhoto(tx.QueryRow(ctx, `
UPDATE photos
SET
	status = $2::text,
	display_order = CASE
		WHEN $2::text = 'approved' AND display_order IS NULL THEN (
			SELECT COALESCE(MAX(p.display_order) + 1, 0)
			FROM photos p
			WHERE p.event_id = photos.event_id
			  AND p.status = 'approved'
		)
		ELSE display_order
	END,
	updated_at = NOW()
WHERE id = $1::uuid
RETURNING `+photoColumns,
			photoID, string(status),
		))
		if err != nil {
			return fmt.Errorf("update photo status: %w", err)
		}
		return nil
	})
	if err != nil {
		return model.Photo{}, err
	}

	return updated, nil
}

// ApplyOrders writes the whole batch in one transaction. Ids that do not parse
// or do not exist are skipped; a repeated id keeps its last order.
func (r *PhotoRepo) ApplyOrders(ctx context.Context, assignments []model.OrderAssignment) ([]model.Photo, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	final := make(map[string]int, len(assignments))
	order := make([]string, 0, len(assignments))
	for _, a := range assignments {
		if _, err := uuid.Parse(a.PhotoID); err != nil {
			continue
		}
		if _, seen := final[a.PhotoID]; !seen {
			order = append(order, a.PhotoID)
		}
		final[a.PhotoID] = a.DisplayOrder
	}
	if len(order) == 0 {
		return []model.Photo{}, nil
	}

	out := make([]model.Photo, 0, len(order))
	err := WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
SELECT DISTINCT event_id
FROM photos
WHERE id = ANY($1::uuid[])
ORDER BY event_id
`, order)
		if err != nil {
			return fmt.Errorf("resolve reorder events: %w", err)
		}
		events, err := pgx.CollectRows(rows, pgx.RowTo[string])
		if err != nil {
			return fmt.Errorf("collect reorder events: %w", err)
		}
		for _, eventID := range events {
			if err := lockEvent(ctx, tx, eventID); err != nil {
				return err
			}
		}

		batch := &pgx.Batch{}
		for _, id := range order {
			batch.Queue(`
UPDATE photos
SET display_order = $2, updated_at = NOW()
WHERE id = $1::uuid
RETURNING `+photoColumns, id, final[id])
		}

		results := tx.SendBatch(ctx, batch)
		for i := range order {
			photo, err := scanPhoto(results.QueryRow())
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					continue
				}
				_ = results.Close()
				return fmt.Errorf("apply display order #%d: %w", i, err)
			}
			out = append(out, photo)
		}
		return results.Close()
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *PhotoRepo) PromoteToFront(ctx context.Context, photoID string) (model.Photo, error) {
	current, err := r.GetPhoto(ctx, photoID)
	if err != nil {
		return model.Photo{}, err
	}

	var promoted model.Photo
	err = WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		if err := lockEvent(ctx, tx, current.EventID); err != nil {
			return err
		}

		var status string
		if err := tx.QueryRow(ctx, `
SELECT status FROM photos WHERE id = $1::uuid FOR UPDATE
`, photoID).Scan(&status); err != nil {
			return notFoundOr(err, photoID, "lock photo")
		}
		if enums.PhotoStatus(status) != enums.PhotoStatusApproved {
			return fmt.Errorf("%w: photo %s is %s, not approved", errs.ErrInvalidState, photoID, status)
		}

		if _, err := tx.Exec(ctx, `
UPDATE photos
SET display_order = display_order + 1, updated_at = NOW()
WHERE event_id = $1
  AND status = 'approved'
  AND display_order IS NOT NULL
  AND id <> $2::uuid
`, current.EventID, photoID); err != nil {
			return fmt.Errorf("shift display orders: %w", err)
		}

		promoted, err = scanPhoto(tx.QueryRow(ctx, `
UPDATE photos
SET display_order = 0, updated_at = NOW()
WHERE id = $1::uuid
RETURNING `+photoColumns, photoID))
		if err != nil {
			return fmt.Errorf("promote photo: %w", err)
		}
		return nil
	})
	if err != nil {
		return model.Photo{}, err
	}

	return promoted, nil
}

func lockEvent(ctx context.Context, tx pgx.Tx, eventID string) error {
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext('photowall:event:' || $1))`, eventID); err != nil {
		return fmt.Errorf("lock event %s: %w", eventID, err)
	}
	return nil
}

func scanPhoto(row pgx.Row) (model.Photo, error) {
	var (
		photo  model.Photo
		status string
		order  *int32
	)
	if err := row.Scan(
		&photo.ID,
		&photo.EventID,
		&status,
		&order,
		&photo.SubmitterName,
		&photo.Caption,
		&photo.OriginalPath,
		&photo.CreatedAt,
		&photo.UpdatedAt,
	); err != nil {
		return model.Photo{}, err
	}

	photo.Status = enums.PhotoStatus(status)
	if order != nil {
		photo.DisplayOrder = model.IntPtr(int(*order))
	}
	return photo, nil
}

func collectPhotos(rows pgx.Rows) ([]model.Photo, error) {
	defer rows.Close()

	items := make([]model.Photo, 0)
	for rows.Next() {
		photo, err := scanPhoto(rows)
		if err != nil {
			return nil, fmt.Errorf("scan photo row: %w", err)
		}
		items = append(items, photo)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate photo rows: %w", rows.Err())
	}
	return items, nil
}

func notFoundOr(err error, photoID, op string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: photo %s", errs.ErrNotFound, photoID)
	}
	return fmt.Errorf("%s: %w", op, err)
}
