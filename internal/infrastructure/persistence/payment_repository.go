package persistence

import (
	"context"

	"github.com/bizledger/backend/internal/domain/sales"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPaymentRepository implements PaymentRepository using GORM. Payments are append-only.
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByID finds a payment by its ID
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*sales.Payment, error) {
	var payment sales.Payment
	if err := r.db.WithContext(ctx).First(&payment, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &payment, nil
}

// FindByClient returns a client's payments ordered by date, then creation time
func (r *GormPaymentRepository) FindByClient(ctx context.Context, clientID uuid.UUID) ([]sales.Payment, error) {
	var payments []sales.Payment
	err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("date ASC, created_at ASC").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}

// Create inserts a payment
func (r *GormPaymentRepository) Create(ctx context.Context, payment *sales.Payment) error {
	return translate(r.db.WithContext(ctx).Create(payment).Error)
}

var _ sales.PaymentRepository = (*GormPaymentRepository)(nil)
