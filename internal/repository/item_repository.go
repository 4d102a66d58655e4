package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/01moynul/carlisting-golang/internal/filter"
	"github.com/01moynul/carlisting-golang/internal/models"
)

const itemColumns = `i.id, i.name, i.year, i.selling_price, i.km_driven, i.fuel_type, i.transmission,
	i.owner_type, i.mileage, i.engine, i.max_power, i.torque, i.seats,
	i.seller_id, i.created_at, i.updated_at, i.sold_at, i.final_price`

const insertItem = `
	INSERT INTO items
	(id, name, year, selling_price, km_driven, fuel_type, transmission,
	owner_type, mileage, engine, max_power, torque, seats,
	seller_id, created_at, updated_at, sold_at, final_price)
	VALUES
	(:id, :name, :year, :selling_price, :km_driven, :fuel_type, :transmission,
	:owner_type, :mileage, :engine, :max_power, :torque, :seats,
	:seller_id, :created_at, :updated_at, :sold_at, :final_price)`

// ItemRepository is the Item Store.
type ItemRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error)
	Create(ctx context.Context, item *models.Item) error
	CreateBatch(ctx context.Context, items []*models.Item) error
	Update(ctx context.Context, item *models.Item) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, p filter.Predicate, offset, limit int) ([]models.Item, error)
	Count(ctx context.Context, p filter.Predicate) (int64, error)
	ListByPopularity(ctx context.Context, userID *uuid.UUID, offset, limit int) ([]models.Item, error)
}

type itemRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewItemRepository(db *sqlx.DB, logger *zap.Logger) ItemRepository {
	return &itemRepository{
		db:     db,
		logger: logger,
	}
}

func (r *itemRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items i WHERE i.id = ?`

	var item models.Item
	if err := r.db.GetContext(ctx, &item, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return &item, nil
}

func (r *itemRepository) Create(ctx context.Context, item *models.Item) error {
	if _, err := r.db.NamedExecContext(ctx, insertItem, item); err != nil {
		r.logger.Error("Failed to create item", zap.Error(err))
		return fmt.Errorf("failed to create item: %w", err)
	}

	r.logger.Debug("Item created",
		zap.String("item_id", item.ID.String()),
		zap.String("seller_id", item.SellerID.String()),
	)
	return nil
}

// CreateBatch inserts all items in one transaction. A single failing row
// rolls back the whole batch.
func (r *itemRepository) CreateBatch(ctx context.Context, items []*models.Item) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareNamedContext(ctx, insertItem)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, item := range items {
		if _, err := stmt.ExecContext(ctx, item); err != nil {
			r.logger.Error("Failed to insert item in batch",
				zap.Int("row", i),
				zap.Error(err),
			)
			return fmt.Errorf("failed to insert item %d of %d: %w", i+1, len(items), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.logger.Info("Batch insert completed", zap.Int("total", len(items)))
	return nil
}

// Update rewrites every mutable column of the stored row. Concurrent
// writers are last-write-wins.
func (r *itemRepository) Update(ctx context.Context, item *models.Item) error {
	query := `
		UPDATE items SET
			name = :name, year = :year, selling_price = :selling_price, km_driven = :km_driven,
			fuel_type = :fuel_type, transmission = :transmission, owner_type = :owner_type,
			mileage = :mileage, engine = :engine, max_power = :max_power, torque = :torque,
			seats = :seats, updated_at = :updated_at, sold_at = :sold_at, final_price = :final_price
		WHERE id = :id`

	if _, err := r.db.NamedExecContext(ctx, query, item); err != nil {
		r.logger.Error("Failed to update item", zap.String("item_id", item.ID.String()), zap.Error(err))
		return fmt.Errorf("failed to update item: %w", err)
	}
	return nil
}

func (r *itemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns items matching p in the store's natural order.
func (r *itemRepository) List(ctx context.Context, p filter.Predicate, offset, limit int) ([]models.Item, error) {
	where, args, err := p.SQL("i")
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + itemColumns + ` FROM items i WHERE ` + where + ` LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	items := []models.Item{}
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		r.logger.Error("Failed to list items", zap.Error(err))
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return items, nil
}

func (r *itemRepository) Count(ctx context.Context, p filter.Predicate) (int64, error) {
	where, args, err := p.SQL("i")
	if err != nil {
		return 0, err
	}

	var count int64
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM items i WHERE `+where, args...); err != nil {
		return 0, fmt.Errorf("failed to count items: %w", err)
	}
	return count, nil
}

// ListByPopularity joins items with their event counts and orders by the
// count, highest first. Items without events are not returned.
func (r *itemRepository) ListByPopularity(ctx context.Context, userID *uuid.UUID, offset, limit int) ([]models.Item, error) {
	var args []any
	userClause := ""
	if userID != nil {
		userClause = " AND e.user_id = ?"
		args = append(args, *userID)
	}

	query := `
		SELECT ` + itemColumns + `
		FROM items i
		JOIN (
			SELECT e.item_id, COUNT(e.id) AS popularity
			FROM events e
			WHERE e.item_id IS NOT NULL` + userClause + `
			GROUP BY e.item_id
		) p ON p.item_id = i.id
		ORDER BY p.popularity DESC
		LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	items := []models.Item{}
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		r.logger.Error("Failed to list popular items", zap.Error(err))
		return nil, fmt.Errorf("failed to list popular items: %w", err)
	}
	return items, nil
}
