package persistence

import (
	"context"

	"github.com/bizledger/backend/internal/domain/sales"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormInvoiceRepository implements InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

func orderByLineNo(db *gorm.DB) *gorm.DB {
	return db.Order("line_no ASC")
}

// FindByID finds an invoice with its lines
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*sales.Invoice, error) {
	var invoice sales.Invoice
	if err := r.db.WithContext(ctx).Preload("Lines", orderByLineNo).First(&invoice, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &invoice, nil
}

// FindByClient returns a client's invoices ordered by date, then creation time.
// Lines are not loaded.
func (r *GormInvoiceRepository) FindByClient(ctx context.Context, clientID uuid.UUID) ([]sales.Invoice, error) {
	var invoices []sales.Invoice
	err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("date ASC, created_at ASC").
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

// ExistsByNumber checks whether an invoice number is taken
func (r *GormInvoiceRepository) ExistsByNumber(ctx context.Context, number string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&sales.Invoice{}).Where("invoice_number = ?", number).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts the header and every line
func (r *GormInvoiceRepository) Create(ctx context.Context, invoice *sales.Invoice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(invoice).Error; err != nil {
			return translate(err)
		}
		if len(invoice.Lines) == 0 {
			return nil
		}
		return translate(tx.Create(&invoice.Lines).Error)
	})
}

// ReplaceLines deletes all stored lines, inserts the current set and updates the header
func (r *GormInvoiceRepository) ReplaceLines(ctx context.Context, invoice *sales.Invoice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.saveHeader(tx, invoice); err != nil {
			return err
		}
		if err := tx.Where("invoice_id = ?", invoice.ID).Delete(&sales.InvoiceLine{}).Error; err != nil {
			return err
		}
		if len(invoice.Lines) == 0 {
			return nil
		}
		return translate(tx.Create(&invoice.Lines).Error)
	})
}

// SaveWithLock updates header fields, checking the previous version
func (r *GormInvoiceRepository) SaveWithLock(ctx context.Context, invoice *sales.Invoice) error {
	return r.saveHeader(r.db.WithContext(ctx), invoice)
}

func (r *GormInvoiceRepository) saveHeader(db *gorm.DB, invoice *sales.Invoice) error {
	result := db.Model(&sales.Invoice{}).
		Where("id = ? AND version = ?", invoice.ID, invoice.Version-1).
		Updates(map[string]any{
			"due_date":       invoice.DueDate,
			"status":         invoice.Status,
			"is_vat_invoice": invoice.IsVATInvoice,
			"subtotal":       invoice.Subtotal,
			"vat_amount":     invoice.VATAmount,
			"total_amount":   invoice.TotalAmount,
			"amount_paid":    invoice.AmountPaid,
			"notes":          invoice.Notes,
			"version":        invoice.Version,
			"updated_at":     invoice.UpdatedAt,
		})
	return checkVersioned(result, &sales.Invoice{}, invoice.ID)
}

var _ sales.InvoiceRepository = (*GormInvoiceRepository)(nil)
