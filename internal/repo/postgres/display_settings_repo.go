package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventwall/photowall/internal/domain/model"
)

const settingsColumns = `event_id, auto_rotate, slide_interval, transition, show_captions, show_submitter, background_color, updated_at`

type DisplaySettingsRepo struct {
	pool *pgxpool.Pool
}

func NewDisplaySettingsRepo(pool *pgxpool.Pool) *DisplaySettingsRepo {
	return &DisplaySettingsRepo{pool: pool}
}

func (r *DisplaySettingsRepo) GetOrCreate(ctx context.Context, eventID string, defaults model.DisplaySettings) (model.DisplaySettings, error) {
	if r.pool == nil {
		return model.DisplaySettings{}, fmt.Errorf("postgres pool is nil")
	}

	var settings model.DisplaySettings
	err := WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		if err := insertDefaults(ctx, tx, eventID, defaults); err != nil {
			return err
		}
		s, err := scanSettings(tx.QueryRow(ctx, `
SELECT `+settingsColumns+`
FROM display_settings
WHERE event_id = $1
`, eventID))
		if err != nil {
			return fmt.Errorf("get display settings: %w", err)
		}
		settings = s
		return nil
	})
	if err != nil {
		return model.DisplaySettings{}, err
	}
	return settings, nil
}

func (r *DisplaySettingsRepo) Update(ctx context.Context, eventID string, patch model.DisplaySettingsPatch, defaults model.DisplaySettings) (model.DisplaySettings, error) {
	if r.pool == nil {
		return model.DisplaySettings{}, fmt.Errorf("postgres pool is nil")
	}

	var settings model.DisplaySettings
	err := WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		if err := insertDefaults(ctx, tx, eventID, defaults); err != nil {
			return err
		}
		s, err := scanSettings(tx.QueryRow(ctx, `
UPDATE display_settings
SET
	auto_rotate = COALESCE($2, auto_rotate),
	slide_interval = COALESCE($3, slide_interval),
	transition = COALESCE($4, transition),
	show_captions = COALESCE($5, show_captions),
	show_submitter = COALESCE($6, show_submitter),
	background_color = COALESCE($7, background_color),
	updated_at = NOW()
WHERE event_id = $1
RETURNING `+settingsColumns,
			eventID,
			patch.AutoRotate,
			patch.SlideInterval,
			patch.Transition,
			patch.ShowCaptions,
			patch.ShowSubmitter,
			patch.BackgroundColor,
		))
		if err != nil {
			return fmt.Errorf("update display settings: %w", err)
		}
		settings = s
		return nil
	})
	if err != nil {
		return model.DisplaySettings{}, err
	}
	return settings, nil
}

func insertDefaults(ctx context.Context, tx pgx.Tx, eventID string, defaults model.DisplaySettings) error {
	if _, err := tx.Exec(ctx, `
INSERT INTO display_settings (
	event_id,
	auto_rotate,
	slide_interval,
	transition,
	show_captions,
	show_submitter,
	background_color,
	updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
ON CONFLICT (event_id) DO NOTHING
`,
		eventID,
		defaults.AutoRotate,
		defaults.SlideInterval,
		defaults.Transition,
		defaults.ShowCaptions,
		defaults.ShowSubmitter,
		defaults.BackgroundColor,
	); err != nil {
		return fmt.Errorf("insert default display settings: %w", err)
	}
	return nil
}

func scanSettings(row pgx.Row) (model.DisplaySettings, error) {
	var s model.DisplaySettings
	if err := row.Scan(
		&s.EventID,
		&s.AutoRotate,
		&s.SlideInterval,
		&s.Transition,
		&s.ShowCaptions,
		&s.ShowSubmitter,
		&s.BackgroundColor,
		&s.UpdatedAt,
	); err != nil {
		return model.DisplaySettings{}, err
	}
	return s, nil
}
