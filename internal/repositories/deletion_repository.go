package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// DeletionRepository owns the per-viewer soft-deletion records layered on top
// of the message log.
type DeletionRepository interface {
	HideForViewer(ctx context.Context, messageID int, viewerID int) error
	HiddenMessageIDs(ctx context.Context, chatID int, viewerID int) (map[int]struct{}, error)
}

// DeletionRepo is a sqlx implementation of DeletionRepository.
type DeletionRepo struct {
	db *sqlx.DB
}

// NewDeletionRepo constructs a DeletionRepo.
func NewDeletionRepo(db *sqlx.DB) *DeletionRepo {
	return &DeletionRepo{db: db}
}

// HideForViewer records that the viewer no longer sees the message. Hiding an
// already-hidden message is a no-op.
func (r *DeletionRepo) HideForViewer(ctx context.Context, messageID int, viewerID int) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO message_deletions (message_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		messageID, viewerID)
	return err
}

// HiddenMessageIDs returns the ids of every message in the chat hidden for
// the viewer.
func (r *DeletionRepo) HiddenMessageIDs(ctx context.Context, chatID int, viewerID int) (map[int]struct{}, error) {
	var ids []int
	err := r.db.SelectContext(ctx, &ids,
		`SELECT d.message_id FROM message_deletions d
         JOIN messages m ON m.id = d.message_id
         WHERE m.chat_id=$1 AND d.user_id=$2`, chatID, viewerID)
	if err != nil {
		return nil, err
	}
	hidden := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		hidden[id] = struct{}{}
	}
	return hidden, nil
}
