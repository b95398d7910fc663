package persistence

import (
	"context"
	"time"

	"github.com/bizledger/backend/internal/domain/partner"
	"github.com/bizledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormSupplierRepository implements SupplierRepository using GORM
type GormSupplierRepository struct {
	db *gorm.DB
}

// NewGormSupplierRepository creates a new GormSupplierRepository
func NewGormSupplierRepository(db *gorm.DB) *GormSupplierRepository {
	return &GormSupplierRepository{db: db}
}

// FindByID finds a supplier by its ID
func (r *GormSupplierRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Supplier, error) {
	var supplier partner.Supplier
	if err := r.db.WithContext(ctx).First(&supplier, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &supplier, nil
}

// FindAll returns every supplier ordered by name
func (r *GormSupplierRepository) FindAll(ctx context.Context) ([]partner.Supplier, error) {
	var suppliers []partner.Supplier
	if err := r.db.WithContext(ctx).Order("name ASC, id ASC").Find(&suppliers).Error; err != nil {
		return nil, err
	}
	return suppliers, nil
}

// Create inserts a new supplier
func (r *GormSupplierRepository) Create(ctx context.Context, supplier *partner.Supplier) error {
	return translate(r.db.WithContext(ctx).Create(supplier).Error)
}

// SaveWithLock updates contact fields, checking the previous version.
// Balances are not written here.
func (r *GormSupplierRepository) SaveWithLock(ctx context.Context, supplier *partner.Supplier) error {
	result := r.db.WithContext(ctx).
		Model(&partner.Supplier{}).
		Where("id = ? AND version = ?", supplier.ID, supplier.Version-1).
		Updates(map[string]any{
			"name":           supplier.Name,
			"contact_person": supplier.ContactPerson,
			"email":          supplier.Email,
			"phone":          supplier.Phone,
			"version":        supplier.Version,
			"updated_at":     supplier.UpdatedAt,
		})
	return checkVersioned(result, &partner.Supplier{}, supplier.ID)
}

// IncrementBalance atomically adds delta to current_balance
func (r *GormSupplierRepository) IncrementBalance(ctx context.Context, id uuid.UUID, delta decimal.Decimal) error {
	result := r.db.WithContext(ctx).
		Model(&partner.Supplier{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"current_balance": gorm.Expr("current_balance + ?", delta),
			"updated_at":      time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ partner.SupplierRepository = (*GormSupplierRepository)(nil)

// GormClientRepository implements ClientRepository using GORM
type GormClientRepository struct {
	db *gorm.DB
}

// NewGormClientRepository creates a new GormClientRepository
func NewGormClientRepository(db *gorm.DB) *GormClientRepository {
	return &GormClientRepository{db: db}
}

// FindByID finds a client by its ID
func (r *GormClientRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Client, error) {
	var client partner.Client
	if err := r.db.WithContext(ctx).First(&client, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &client, nil
}

// Create inserts a new client
func (r *GormClientRepository) Create(ctx context.Context, client *partner.Client) error {
	return translate(r.db.WithContext(ctx).Create(client).Error)
}

var _ partner.ClientRepository = (*GormClientRepository)(nil)
