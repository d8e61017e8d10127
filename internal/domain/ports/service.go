package ports

import (
	"context"

	"exdollarium-calculator/internal/domain/model"
)

type CatalogService interface {
	LoadCatalog(ctx context.Context) ([]model.Service, error)
	Catalog(ctx context.Context) []model.Service
	Refresh(ctx context.Context) error
	ResolveRate(ctx context.Context, serviceName string, currency model.Currency) (float64, error)
	Calculate(ctx context.Context, request model.CalculationRequest) (*model.CalculationResult, error)
}
