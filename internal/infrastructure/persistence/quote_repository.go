package persistence

import (
	"context"

	"github.com/bizledger/backend/internal/domain/sales"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormQuoteRepository implements QuoteRepository using GORM
type GormQuoteRepository struct {
	db *gorm.DB
}

// NewGormQuoteRepository creates a new GormQuoteRepository
func NewGormQuoteRepository(db *gorm.DB) *GormQuoteRepository {
	return &GormQuoteRepository{db: db}
}

// FindByID finds a quote with its lines
func (r *GormQuoteRepository) FindByID(ctx context.Context, id uuid.UUID) (*sales.Quote, error) {
	var quote sales.Quote
	if err := r.db.WithContext(ctx).Preload("Lines", orderByLineNo).First(&quote, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &quote, nil
}

// ExistsByNumber checks whether a quote number is taken
func (r *GormQuoteRepository) ExistsByNumber(ctx context.Context, number string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&sales.Quote{}).Where("quote_number = ?", number).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts the header and every line
func (r *GormQuoteRepository) Create(ctx context.Context, quote *sales.Quote) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(quote).Error; err != nil {
			return translate(err)
		}
		if len(quote.Lines) == 0 {
			return nil
		}
		return translate(tx.Create(&quote.Lines).Error)
	})
}

// ReplaceLines deletes all stored lines, inserts the current set and updates the header
func (r *GormQuoteRepository) ReplaceLines(ctx context.Context, quote *sales.Quote) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.saveHeader(tx, quote); err != nil {
			return err
		}
		if err := tx.Where("quote_id = ?", quote.ID).Delete(&sales.QuoteLine{}).Error; err != nil {
			return err
		}
		if len(quote.Lines) == 0 {
			return nil
		}
		return translate(tx.Create(&quote.Lines).Error)
	})
}

// SaveWithLock updates header fields, checking the previous version
func (r *GormQuoteRepository) SaveWithLock(ctx context.Context, quote *sales.Quote) error {
	return r.saveHeader(r.db.WithContext(ctx), quote)
}

func (r *GormQuoteRepository) saveHeader(db *gorm.DB, quote *sales.Quote) error {
	result := db.Model(&sales.Quote{}).
		Where("id = ? AND version = ?", quote.ID, quote.Version-1).
		Updates(map[string]any{
			"valid_until":          quote.ValidUntil,
			"status":               quote.Status,
			"subtotal":             quote.Subtotal,
			"vat_amount":           quote.VATAmount,
			"total_amount":         quote.TotalAmount,
			"converted_invoice_id": quote.ConvertedInvoiceID,
			"notes":                quote.Notes,
			"version":              quote.Version,
			"updated_at":           quote.UpdatedAt,
		})
	return checkVersioned(result, &sales.Quote{}, quote.ID)
}

var _ sales.QuoteRepository = (*GormQuoteRepository)(nil)
