package purchasing

import (
	"context"

	"github.com/google/uuid"
)

// GrvRepository defines the interface for GRV persistence. GRVs are append-only.
type GrvRepository interface {
	// FindByID finds a GRV with its items
	FindByID(ctx context.Context, id uuid.UUID) (*Grv, error)

	// ExistsByReference checks for a recorded GRV with the same supplier reference
	ExistsByReference(ctx context.Context, supplierID uuid.UUID, reference string) (bool, error)

	// CreateHeader inserts the GRV header only
	CreateHeader(ctx context.Context, grv *Grv) error

	// CreateItems inserts the GRV items
	CreateItems(ctx context.Context, items []GrvItem) error
}
