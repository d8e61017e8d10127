package ports

import (
	"context"

	"exdollarium-calculator/internal/domain/model"
)

// CatalogRepository reads the service catalog from the remote API.
type CatalogRepository interface {
	FetchServices(ctx context.Context) ([]model.Service, error)
}
