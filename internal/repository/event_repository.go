package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/01moynul/carlisting-golang/internal/models"
)

// EventRepository is the append-only Event Store. It never updates or deletes.
type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	CountByItem(ctx context.Context, userID *uuid.UUID) ([]models.ItemPopularity, error)
}

type eventRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewEventRepository(db *sqlx.DB, logger *zap.Logger) EventRepository {
	return &eventRepository{
		db:     db,
		logger: logger,
	}
}

func (r *eventRepository) Create(ctx context.Context, event *models.Event) error {
	query := `
		INSERT INTO events (id, user_id, item_id, event_type, event_value, timestamp)
		VALUES (:id, :user_id, :item_id, :event_type, :event_value, :timestamp)`

	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		r.logger.Error("Failed to create event", zap.Error(err))
		return fmt.Errorf("failed to create event: %w", err)
	}

	r.logger.Debug("Event created",
		zap.String("event_id", event.ID.String()),
		zap.String("event_type", event.EventType),
	)
	return nil
}

// CountByItem groups events by item, optionally restricted to one user's events.
func (r *eventRepository) CountByItem(ctx context.Context, userID *uuid.UUID) ([]models.ItemPopularity, error) {
	query := `
		SELECT item_id, COUNT(id) AS event_count
		FROM events
		WHERE item_id IS NOT NULL`
	var args []any
	if userID != nil {
		query += ` AND user_id = ?`
		args = append(args, *userID)
	}
	query += ` GROUP BY item_id ORDER BY event_count DESC`

	counts := []models.ItemPopularity{}
	if err := r.db.SelectContext(ctx, &counts, query, args...); err != nil {
		return nil, fmt.Errorf("failed to count events by item: %w", err)
	}
	return counts, nil
}
