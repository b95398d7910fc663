package persistence

import (
	"context"
	"strings"

	"github.com/bizledger/backend/internal/domain/purchasing"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormGrvRepository implements GrvRepository using GORM
type GormGrvRepository struct {
	db *gorm.DB
}

// NewGormGrvRepository creates a new GormGrvRepository
func NewGormGrvRepository(db *gorm.DB) *GormGrvRepository {
	return &GormGrvRepository{db: db}
}

// FindByID finds a GRV with its items in line order
func (r *GormGrvRepository) FindByID(ctx context.Context, id uuid.UUID) (*purchasing.Grv, error) {
	var grv purchasing.Grv
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("line_no ASC") }).
		First(&grv, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &grv, nil
}

// ExistsByReference checks for a recorded GRV with the same supplier reference, ignoring case
func (r *GormGrvRepository) ExistsByReference(ctx context.Context, supplierID uuid.UUID, reference string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&purchasing.Grv{}).
		Where("supplier_id = ? AND LOWER(reference) = ?", supplierID, strings.ToLower(strings.TrimSpace(reference))).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateHeader inserts the GRV header only. The (supplier, reference) unique
// index turns a concurrent duplicate into shared.ErrAlreadyExists.
func (r *GormGrvRepository) CreateHeader(ctx context.Context, grv *purchasing.Grv) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(grv).Error)
}

// CreateItems inserts the GRV items
func (r *GormGrvRepository) CreateItems(ctx context.Context, items []purchasing.GrvItem) error {
	if len(items) == 0 {
		return nil
	}
	return translate(r.db.WithContext(ctx).Create(&items).Error)
}

var _ purchasing.GrvRepository = (*GormGrvRepository)(nil)
