package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"messaging-service/internal/models"
)

// SettingsRepository owns per-participant chat display configuration.
type SettingsRepository interface {
	UpsertSettings(ctx context.Context, settings models.ChatSettings) error
	GetSettings(ctx context.Context, chatID int, userID int) (models.ChatSettings, error)
}

// SettingsRepo is a sqlx implementation of SettingsRepository.
type SettingsRepo struct {
	db *sqlx.DB
}

// NewSettingsRepo constructs a SettingsRepo.
func NewSettingsRepo(db *sqlx.DB) *SettingsRepo {
	return &SettingsRepo{db: db}
}

// UpsertSettings writes one participant's settings slot, creating the row
// lazily when the chat predates the settings table.
func (r *SettingsRepo) UpsertSettings(ctx context.Context, settings models.ChatSettings) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO chat_settings (chat_id, user_id, background, bubble_color, custom_background_url)
         VALUES ($1, $2, $3, $4, $5)
         ON CONFLICT (chat_id, user_id) DO UPDATE
         SET background = EXCLUDED.background,
             bubble_color = EXCLUDED.bubble_color,
             custom_background_url = EXCLUDED.custom_background_url`,
		settings.ChatID, settings.UserID, settings.Background, settings.BubbleColor, settings.CustomBackgroundURL)
	return err
}

// GetSettings returns the participant's slot, falling back to defaults when
// no row exists yet.
func (r *SettingsRepo) GetSettings(ctx context.Context, chatID int, userID int) (models.ChatSettings, error) {
	var settings models.ChatSettings
	err := r.db.GetContext(ctx, &settings,
		`SELECT chat_id, user_id, background, bubble_color, custom_background_url
         FROM chat_settings WHERE chat_id=$1 AND user_id=$2`, chatID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ChatSettings{
			ChatID:      chatID,
			UserID:      userID,
			Background:  models.DefaultBackground,
			BubbleColor: models.DefaultBubbleColor,
		}, nil
	}
	return settings, err
}
