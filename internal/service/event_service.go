package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/01moynul/carlisting-golang/internal/models"
	"github.com/01moynul/carlisting-golang/internal/repository"
)

// Publisher fans recorded events out to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, key string, value any) error
}

type EventService struct {
	repo      repository.EventRepository
	publisher Publisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewEventService wires the event log. publisher may be nil when fan-out
// is disabled.
func NewEventService(repo repository.EventRepository, publisher Publisher, logger *zap.Logger) *EventService {
	return &EventService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Record stores a new event stamped with the server time. Publishing is
// best effort and never fails the call.
func (s *EventService) Record(ctx context.Context, in models.EventCreate) (*models.Event, error) {
	event := &models.Event{
		ID:         uuid.New(),
		UserID:     in.UserID,
		ItemID:     in.ItemID,
		EventType:  in.EventType,
		EventValue: in.EventValue,
		Timestamp:  s.now(),
	}

	if err := s.repo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to record event: %w", err)
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, partitionKey(event), event); err != nil {
			s.logger.Error("Failed to publish event",
				zap.String("event_id", event.ID.String()),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("Event recorded",
		zap.String("event_id", event.ID.String()),
		zap.String("event_type", event.EventType),
	)
	return event, nil
}

// Popularity returns per-item event counts, most active first.
func (s *EventService) Popularity(ctx context.Context, userID *uuid.UUID) ([]models.ItemPopularity, error) {
	counts, err := s.repo.CountByItem(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count events: %w", err)
	}
	return counts, nil
}

// partitionKey keeps events about one item on one partition.
func partitionKey(e *models.Event) string {
	switch {
	case e.ItemID != nil:
		return e.ItemID.String()
	case e.UserID != nil:
		return e.UserID.String()
	}
	return e.ID.String()
}
