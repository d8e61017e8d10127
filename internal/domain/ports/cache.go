package ports

import (
	"context"

	"exdollarium-calculator/internal/domain/model"
)

// CatalogCache stores the last fetched catalog snapshot.
type CatalogCache interface {
	Get(ctx context.Context) (*model.CatalogSnapshot, bool)
	Set(ctx context.Context, snapshot *model.CatalogSnapshot) error
	Invalidate(ctx context.Context) error
}
