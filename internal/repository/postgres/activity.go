package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/craftlane/storefront/internal/domain"
)

type activityRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewActivityRepository creates a new activity repository
func NewActivityRepository(db *sql.DB, logger *zap.Logger) *activityRepository {
	return &activityRepository{
		db:     db,
		logger: logger,
	}
}

func (r *activityRepository) Create(ctx context.Context, entry *domain.ActivityLogEntry) error {
	query := `
		INSERT INTO activity_log (id, creator_id, activity_type, entity_type, entity_id, description, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	metadata, err := json.Marshal(entry.Metadata)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, query,
		entry.ID,
		entry.CreatorID,
		entry.ActivityType,
		entry.EntityType,
		entry.EntityID,
		entry.Description,
		metadata,
		entry.CreatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to create activity entry", zap.Error(err))
		return err
	}

	return nil
}

func (r *activityRepository) ListByCreator(ctx context.Context, creatorID uuid.UUID, limit, offset int) ([]*domain.ActivityLogEntry, error) {
	query := `
		SELECT id, creator_id, activity_type, entity_type, entity_id, description, metadata, created_at
		FROM activity_log
		WHERE creator_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, creatorID, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list activity entries", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.ActivityLogEntry
	for rows.Next() {
		var entry domain.ActivityLogEntry
		var metadata []byte

		err := rows.Scan(
			&entry.ID,
			&entry.CreatorID,
			&entry.ActivityType,
			&entry.EntityType,
			&entry.EntityID,
			&entry.Description,
			&metadata,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &entry.Metadata); err != nil {
				r.logger.Warn("Failed to decode activity metadata",
					zap.String("entry_id", entry.ID.String()), zap.Error(err))
			}
		}

		entries = append(entries, &entry)
	}

	return entries, rows.Err()
}
