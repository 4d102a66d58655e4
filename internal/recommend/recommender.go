// Package recommend ranks and filters listings for the recommendation endpoints.
//
// Similarity is attribute-range filtering: a candidate is "similar" to a
// reference item when it is at least as new, no more expensive, no more
// driven and uses the same fuel. Popularity is the number of recorded events
// per item; an under-filled popularity page is padded with arbitrary items.
package recommend

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/01moynul/carlisting-golang/internal/filter"
	"github.com/01moynul/carlisting-golang/internal/models"
	"github.com/01moynul/carlisting-golang/internal/repository"
)

// ItemStore is the subset of the item repository the recommender reads.
type ItemStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error)
	List(ctx context.Context, p filter.Predicate, offset, limit int) ([]models.Item, error)
	ListByPopularity(ctx context.Context, userID *uuid.UUID, offset, limit int) ([]models.Item, error)
}

// Observer is notified about every served recommendation; see metrics.
type Observer interface {
	RecommendationServed(kind string, returned int)
	PopularityPadded(missing int)
}

type Recommender struct {
	items    ItemStore
	observer Observer
	logger   *zap.Logger
}

func NewRecommender(items ItemStore, observer Observer, logger *zap.Logger) *Recommender {
	if observer == nil {
		observer = nopObserver{}
	}
	return &Recommender{
		items:    items,
		observer: observer,
		logger:   logger,
	}
}

// FindSimilarQuery returns items matching every present field of query,
// paginated in store order. userID is accepted for API symmetry and does
// not affect the result.
func (r *Recommender) FindSimilarQuery(
	ctx context.Context,
	query models.ItemQuery,
	limit, offset int,
	userID *uuid.UUID,
) ([]models.Item, error) {
	items, err := r.items.List(ctx, filter.FromQuery(query), offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to find similar items: %w", err)
	}

	r.observer.RecommendationServed("similar_query", len(items))
	return items, nil
}

// FindSimilarItems derives a query from the reference item and delegates to
// FindSimilarQuery. An unknown item yields an empty result.
func (r *Recommender) FindSimilarItems(
	ctx context.Context,
	itemID uuid.UUID,
	limit, offset int,
	userID *uuid.UUID,
) ([]models.Item, error) {
	item, err := r.items.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			r.logger.Debug("Reference item not found", zap.String("item_id", itemID.String()))
			return []models.Item{}, nil
		}
		return nil, fmt.Errorf("failed to load reference item: %w", err)
	}

	minPrice := 0.0
	query := models.ItemQuery{
		MinYear:     item.Year,
		MinPrice:    &minPrice,
		MaxPrice:    item.SellingPrice,
		MaxKmDriven: item.KmDriven,
		FuelType:    item.FuelType,
	}
	return r.FindSimilarQuery(ctx, query, limit, offset, userID)
}

// FindMostPopularItems ranks items by event count, counting only userID's
// events when given. A page shorter than limit is padded with an unordered
// fetch of the missing number of items; padding is not de-duplicated
// against the ranked part.
func (r *Recommender) FindMostPopularItems(
	ctx context.Context,
	limit, offset int,
	userID *uuid.UUID,
) ([]models.Item, error) {
	results, err := r.items.ListByPopularity(ctx, userID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to rank popular items: %w", err)
	}

	if missing := limit - len(results); missing > 0 {
		padding, err := r.items.List(ctx, filter.All(), 0, missing)
		if err != nil {
			return nil, fmt.Errorf("failed to pad popular items: %w", err)
		}
		r.logger.Debug("Padding popular items",
			zap.Int("ranked", len(results)),
			zap.Int("missing", missing),
			zap.Int("padded", len(padding)),
		)
		r.observer.PopularityPadded(missing)
		results = append(results, padding...)
	}

	r.observer.RecommendationServed("most_popular", len(results))
	return results, nil
}

type nopObserver struct{}

func (nopObserver) RecommendationServed(string, int) {}
func (nopObserver) PopularityPadded(int)             {}
