package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"exdollarium-calculator/internal/calculator"
	"exdollarium-calculator/internal/domain/model"
	"exdollarium-calculator/internal/domain/ports"
	"exdollarium-calculator/internal/metrics"
	"exdollarium-calculator/pkg/logger"
)

var ErrCatalogUnavailable = errors.New("service catalog unavailable")

const fetchKey = "catalog"

// CatalogService loads the service catalog and runs calculations against
// it. Concurrent loads share a single upstream request.
type CatalogService struct {
	repository ports.CatalogRepository
	cache      ports.CatalogCache
	metrics    *metrics.Metrics
	log        *logger.Logger
	group      singleflight.Group
	now        func() time.Time
}

// NewCatalogService wires the service; metrics may be nil.
func NewCatalogService(repository ports.CatalogRepository, cache ports.CatalogCache, m *metrics.Metrics, log *logger.Logger) *CatalogService {
	return &CatalogService{
		repository: repository,
		cache:      cache,
		metrics:    m,
		log:        log,
		now:        time.Now,
	}
}

// LoadCatalog returns the cached snapshot or fetches a fresh one.
func (s *CatalogService) LoadCatalog(ctx context.Context) ([]model.Service, error) {
	if snapshot, found := s.cache.Get(ctx); found {
		return snapshot.Services, nil
	}
	return s.fetch(ctx)
}

// Catalog is LoadCatalog with failures degraded to an empty catalog.
func (s *CatalogService) Catalog(ctx context.Context) []model.Service {
	services, err := s.LoadCatalog(ctx)
	if err != nil {
		s.log.Error("Failed to load service catalog, continuing with empty catalog", "error", err)
		return []model.Service{}
	}
	return services
}

// Refresh replaces the snapshot with a fresh fetch. On failure the previous
// snapshot is left in place.
func (s *CatalogService) Refresh(ctx context.Context) error {
	s.log.Info("Refreshing service catalog")

	services, err := s.fetch(ctx)
	if err != nil {
		return err
	}

	s.log.Info("Successfully refreshed service catalog", "services", len(services))
	return nil
}

func (s *CatalogService) fetch(ctx context.Context) ([]model.Service, error) {
	v, err, shared := s.group.Do(fetchKey, func() (interface{}, error) {
		services, err := s.repository.FetchServices(ctx)
		s.metrics.ObserveCatalogFetch(err, len(services))
		if err != nil {
			return nil, err
		}

		snapshot := &model.CatalogSnapshot{Services: services, FetchedAt: s.now()}
		if err := s.cache.Set(ctx, snapshot); err != nil {
			s.log.Error("Failed to cache service catalog", "error", err)
		}
		return services, nil
	})
	if err != nil {
		s.log.Error("Failed to fetch service catalog", "error", err, "shared", shared)
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}

	return model.CloneServices(v.([]model.Service)), nil
}

// ResolveRate looks up the live rate of a service for currency.
func (s *CatalogService) ResolveRate(ctx context.Context, serviceName string, currency model.Currency) (float64, error) {
	catalog := s.Catalog(ctx)

	service, err := calculator.SelectService(catalog, serviceName)
	if err != nil {
		return 0, err
	}
	return calculator.ResolveRate(service, currency)
}

func (s *CatalogService) Calculate(ctx context.Context, request model.CalculationRequest) (*model.CalculationResult, error) {
	catalog := s.Catalog(ctx)

	result, err := calculator.ComputeEquivalent(catalog, request)
	kind, _ := calculator.KindOf(err)
	s.metrics.ObserveCalculation(string(kind))
	if err != nil {
		s.log.Debug("Calculation rejected", "kind", kind, "service", request.Service, "currency", request.Currency)
		return nil, err
	}

	return result, nil
}
