// Package csvimport turns an uploaded vehicle CSV into item listings.
package csvimport

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/01moynul/carlisting-golang/internal/models"
)

// BatchInserter stores a whole import atomically.
type BatchInserter interface {
	CreateBatch(ctx context.Context, items []*models.Item) error
}

type Importer struct {
	items  BatchInserter
	logger *zap.Logger
	now    func() time.Time
}

func NewImporter(items BatchInserter, logger *zap.Logger) *Importer {
	return &Importer{
		items:  items,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Import reads the CSV at path and inserts one item per distinct row, owned
// by sellerID. Read and transform failures wrap ErrMalformedInput and insert
// nothing; insert failures are returned as-is. The file is left in place.
func (im *Importer) Import(ctx context.Context, path string, sellerID uuid.UUID) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	items, err := im.Parse(f, sellerID)
	if err != nil {
		return 0, err
	}
	if len(items) == 0 {
		im.logger.Info("CSV import had no rows", zap.String("seller_id", sellerID.String()))
		return 0, nil
	}

	if err := im.items.CreateBatch(ctx, items); err != nil {
		return 0, fmt.Errorf("failed to insert imported items: %w", err)
	}

	im.logger.Info("CSV import completed",
		zap.String("seller_id", sellerID.String()),
		zap.Int("items", len(items)),
	)
	return len(items), nil
}

// Parse runs the transform pipeline over r without touching the store.
func (im *Importer) Parse(r io.Reader, sellerID uuid.UUID) ([]*models.Item, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty file", ErrMalformedInput)
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}

	fr, err := newFrame(header, records)
	if err != nil {
		return nil, err
	}
	fr.dropDuplicates()
	fr.stripNumeric("mileage")
	fr.stripNumeric("max_power")
	fr.fillSeats()

	now := im.now()
	items := make([]*models.Item, 0, len(fr.rows))
	for i, row := range fr.rows {
		in, err := row.toItem(i + 1)
		if err != nil {
			return nil, err
		}
		items = append(items, in.NewItem(sellerID, now))
	}
	return items, nil
}
