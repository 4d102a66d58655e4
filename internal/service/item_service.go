// Package service holds the business rules between the HTTP handlers and
// the repositories: ownership checks, item lifecycle and event recording.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/01moynul/carlisting-golang/internal/filter"
	"github.com/01moynul/carlisting-golang/internal/models"
	"github.com/01moynul/carlisting-golang/internal/repository"
)

type ItemService struct {
	repo   repository.ItemRepository
	logger *zap.Logger
	now    func() time.Time
}

func NewItemService(repo repository.ItemRepository, logger *zap.Logger) *ItemService {
	return &ItemService{
		repo:   repo,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// List returns a page of the items visible to actor and the total number
// of visible items: superusers see every listing, sellers their own.
func (s *ItemService) List(ctx context.Context, actor Actor, skip, limit int) (*models.ItemsPublic, error) {
	p := filter.All()
	if !actor.IsSuperuser {
		p = p.And(filter.SellerID, filter.Eq, actor.ID)
	}

	count, err := s.repo.Count(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("failed to count items: %w", err)
	}
	items, err := s.repo.List(ctx, p, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return &models.ItemsPublic{Data: items, Count: count}, nil
}

func (s *ItemService) Get(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return item, nil
}

func (s *ItemService) Create(ctx context.Context, actor Actor, in models.ItemCreate) (*models.Item, error) {
	item := in.NewItem(actor.ID, s.now())
	if err := s.repo.Create(ctx, item); err != nil {
		s.logger.Error("Failed to create item", zap.Error(err), zap.String("seller_id", actor.ID.String()))
		return nil, fmt.Errorf("failed to create item: %w", err)
	}

	s.logger.Info("Item created",
		zap.String("item_id", item.ID.String()),
		zap.String("seller_id", actor.ID.String()),
	)
	return item, nil
}

// Update applies the fields present in in. The stored item is untouched
// when the actor does not own it.
func (s *ItemService) Update(ctx context.Context, actor Actor, id uuid.UUID, in models.ItemUpdate) (*models.Item, error) {
	item, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	in.Apply(item)
	item.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to update item: %w", err)
	}

	s.logger.Info("Item updated", zap.String("item_id", id.String()), zap.String("actor_id", actor.ID.String()))
	return item, nil
}

func (s *ItemService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	if _, err := s.owned(ctx, actor, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrItemNotFound
		}
		return fmt.Errorf("failed to delete item: %w", err)
	}

	s.logger.Info("Item deleted", zap.String("item_id", id.String()), zap.String("actor_id", actor.ID.String()))
	return nil
}

// MarkSold records the sale of an item. An item can only be sold once.
func (s *ItemService) MarkSold(ctx context.Context, actor Actor, id uuid.UUID, sale models.ItemSale) (*models.Item, error) {
	item, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if item.SoldAt != nil {
		return nil, ErrItemAlreadySold
	}

	now := s.now()
	item.SoldAt = &now
	item.FinalPrice = sale.FinalPrice
	if item.FinalPrice == nil {
		item.FinalPrice = item.SellingPrice
	}
	item.UpdatedAt = now
	if err := s.repo.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to mark item sold: %w", err)
	}

	s.logger.Info("Item sold", zap.String("item_id", id.String()), zap.Any("final_price", item.FinalPrice))
	return item, nil
}

func (s *ItemService) owned(ctx context.Context, actor Actor, id uuid.UUID) (*models.Item, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.canModify(item) {
		s.logger.Warn("Permission denied",
			zap.String("item_id", id.String()),
			zap.String("actor_id", actor.ID.String()),
		)
		return nil, ErrPermissionDenied
	}
	return item, nil
}
