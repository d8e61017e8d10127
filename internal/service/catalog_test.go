package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"exdollarium-calculator/internal/calculator"
	"exdollarium-calculator/internal/domain/model"
	"exdollarium-calculator/internal/metrics"
	"exdollarium-calculator/pkg/logger"
)

type MockCatalogCache struct {
	GetFunc        func(ctx context.Context) (*model.CatalogSnapshot, bool)
	SetFunc        func(ctx context.Context, snapshot *model.CatalogSnapshot) error
	InvalidateFunc func(ctx context.Context) error
}

func (m *MockCatalogCache) Get(ctx context.Context) (*model.CatalogSnapshot, bool) {
	if m.GetFunc == nil {
		return nil, false
	}
	return m.GetFunc(ctx)
}

func (m *MockCatalogCache) Set(ctx context.Context, snapshot *model.CatalogSnapshot) error {
	if m.SetFunc == nil {
		return nil
	}
	return m.SetFunc(ctx, snapshot)
}

func (m *MockCatalogCache) Invalidate(ctx context.Context) error {
	if m.InvalidateFunc == nil {
		return nil
	}
	return m.InvalidateFunc(ctx)
}

type MockCatalogRepository struct {
	FetchServicesFunc func(ctx context.Context) ([]model.Service, error)
}

func (m *MockCatalogRepository) FetchServices(ctx context.Context) ([]model.Service, error) {
	return m.FetchServicesFunc(ctx)
}

func testServices() []model.Service {
	return []model.Service{
		{
			Name:          "PayPal Exchange",
			ExchangeRates: map[model.Currency]float64{model.USD: 1500, model.EUR: 1600, model.GBP: 1800},
		},
		{
			Name:          model.WebsiteRecharge,
			ExchangeRates: map[model.Currency]float64{model.USD: 1500},
		},
	}
}

func TestCatalogService_LoadCatalog(t *testing.T) {
	log := logger.Nop()
	upstreamErr := errors.New("connection refused")

	testCases := []struct {
		name           string
		mockCache      MockCatalogCache
		mockRepository MockCatalogRepository
		expectedLen    int
		expectedError  error
	}{
		{
			name: "Success - Cache Hit",
			mockCache: MockCatalogCache{
				GetFunc: func(ctx context.Context) (*model.CatalogSnapshot, bool) {
					return &model.CatalogSnapshot{Services: testServices()[:1]}, true
				},
			},
			mockRepository: MockCatalogRepository{},
			expectedLen:    1,
		},
		{
			name:      "Success - Cache Miss, Repository Hit",
			mockCache: MockCatalogCache{},
			mockRepository: MockCatalogRepository{
				FetchServicesFunc: func(ctx context.Context) ([]model.Service, error) {
					return testServices(), nil
				},
			},
			expectedLen: 2,
		},
		{
			name: "Success - Cache Set Failure Is Ignored",
			mockCache: MockCatalogCache{
				SetFunc: func(ctx context.Context, snapshot *model.CatalogSnapshot) error {
					return errors.New("redis down")
				},
			},
			mockRepository: MockCatalogRepository{
				FetchServicesFunc: func(ctx context.Context) ([]model.Service, error) {
					return testServices(), nil
				},
			},
			expectedLen: 2,
		},
		{
			name:      "Error - Repository Error",
			mockCache: MockCatalogCache{},
			mockRepository: MockCatalogRepository{
				FetchServicesFunc: func(ctx context.Context) ([]model.Service, error) {
					return nil, upstreamErr
				},
			},
			expectedError: ErrCatalogUnavailable,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewCatalogService(&tc.mockRepository, &tc.mockCache, nil, log)

			services, err := svc.LoadCatalog(context.Background())

			if tc.expectedError != nil {
				assert.ErrorIs(t, err, tc.expectedError)
				assert.Nil(t, services)
				return
			}

			require.NoError(t, err)
			assert.Len(t, services, tc.expectedLen)
		})
	}
}

func TestCatalogService_CatalogFailsOpen(t *testing.T) {
	m := metrics.NewMetricsWithRegistry(prometheus.NewRegistry())
	repo := &MockCatalogRepository{
		FetchServicesFunc: func(ctx context.Context) ([]model.Service, error) {
			return nil, errors.New("timeout")
		},
	}
	svc := NewCatalogService(repo, &MockCatalogCache{}, m, logger.Nop())

	services := svc.Catalog(context.Background())

	assert.NotNil(t, services)
	assert.Empty(t, services)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CatalogFetchesTotal.WithLabelValues("failure")))
}

func TestCatalogService_CachesFetchedSnapshot(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	var stored *model.CatalogSnapshot
	cache := &MockCatalogCache{
		GetFunc: func(ctx context.Context) (*model.CatalogSnapshot, bool) {
			return stored, stored != nil
		},
		SetFunc: func(ctx context.Context, snapshot *model.CatalogSnapshot) error {
			stored = snapshot
			return nil
		},
	}
	var calls int32
	repo := &MockCatalogRepository{
		FetchServicesFunc: func(ctx context.Context) ([]model.Service, error) {
			atomic.AddInt32(&calls, 1)
			return testServices(), nil
		},
	}
	svc := NewCatalogService(repo, cache, nil, logger.Nop())
	svc.now = func() time.Time { return now }

	_, err := svc.LoadCatalog(context.Background())
	require.NoError(t, err)
	_, err = svc.LoadCatalog(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	require.NotNil(t, stored)
	assert.Equal(t, now, stored.FetchedAt)
}

func TestCatalogService_ConcurrentLoadsShareFetch(t *testing.T) {
	release := make(chan struct{})
	var calls int32
	repo := &MockCatalogRepository{
		FetchServicesFunc: func(ctx context.Context) ([]model.Service, error) {
			atomic.AddInt32(&calls, 1)
			<-release
			return testServices(), nil
		},
	}
	svc := NewCatalogService(repo, &MockCatalogCache{}, nil, logger.Nop())

	const callers = 8
	var started, done sync.WaitGroup
	started.Add(callers)
	done.Add(callers)
	for i := 0; i < callers; i++ {
		go func() {
			defer done.Done()
			started.Done()
			services, err := svc.LoadCatalog(context.Background())
			assert.NoError(t, err)
			assert.Len(t, services, 2)
		}()
	}

	started.Wait()
	time.Sleep(20 * time.Millisecond)
	close(release)
	done.Wait()

	assert.Less(t, atomic.LoadInt32(&calls), int32(callers))
	assert.GreaterOrEqual(t, atomic.LoadInt32(&calls), int32(1))
}

func TestCatalogService_RefreshKeepsSnapshotOnFailure(t *testing.T) {
	var stored *model.CatalogSnapshot
	cache := &MockCatalogCache{
		GetFunc: func(ctx context.Context) (*model.CatalogSnapshot, bool) {
			return stored, stored != nil
		},
		SetFunc: func(ctx context.Context, snapshot *model.CatalogSnapshot) error {
			stored = snapshot
			return nil
		},
	}
	fail := false
	repo := &MockCatalogRepository{
		FetchServicesFunc: func(ctx context.Context) ([]model.Service, error) {
			if fail {
				return nil, errors.New("502")
			}
			return testServices(), nil
		},
	}
	svc := NewCatalogService(repo, cache, nil, logger.Nop())

	require.NoError(t, svc.Refresh(context.Background()))

	fail = true
	err := svc.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrCatalogUnavailable)

	services := svc.Catalog(context.Background())
	assert.Len(t, services, 2)
}

func TestCatalogService_Calculate(t *testing.T) {
	m := metrics.NewMetricsWithRegistry(prometheus.NewRegistry())
	repo := &MockCatalogRepository{
		FetchServicesFunc: func(ctx context.Context) ([]model.Service, error) {
			return testServices(), nil
		},
	}
	svc := NewCatalogService(repo, &MockCatalogCache{}, m, logger.Nop())

	testCases := []struct {
		name          string
		request       model.CalculationRequest
		expectedNGN   float64
		expectedError error
	}{
		{
			name:        "Success - Linear",
			request:     model.CalculationRequest{Service: "PayPal Exchange", Currency: model.USD, Amount: "10"},
			expectedNGN: 15000,
		},
		{
			name:        "Success - Tiered",
			request:     model.CalculationRequest{Service: model.WebsiteRecharge, Currency: model.USD, Amount: "20"},
			expectedNGN: 4500,
		},
		{
			name:          "Error - Below Minimum",
			request:       model.CalculationRequest{Service: model.WebsiteRecharge, Currency: model.USD, Amount: "3"},
			expectedError: calculator.ErrBelowMinimum,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := svc.Calculate(context.Background(), tc.request)

			if tc.expectedError != nil {
				assert.ErrorIs(t, err, tc.expectedError)
				assert.Nil(t, result)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expectedNGN, result.NGNEquivalent)
		})
	}

	assert.Equal(t, 3.0, testutil.ToFloat64(m.CalculationRequestsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CalculationErrorsTotal.WithLabelValues(string(calculator.KindBelowMinimum))))
}

func TestCatalogService_CalculateWithEmptyCatalog(t *testing.T) {
	repo := &MockCatalogRepository{
		FetchServicesFunc: func(ctx context.Context) ([]model.Service, error) {
			return nil, errors.New("unreachable")
		},
	}
	svc := NewCatalogService(repo, &MockCatalogCache{}, nil, logger.Nop())

	_, err := svc.Calculate(context.Background(), model.CalculationRequest{
		Service:  "PayPal Exchange",
		Currency: model.USD,
		Amount:   "10",
	})
	assert.ErrorIs(t, err, calculator.ErrServiceNotFound)
}

func TestCatalogService_ResolveRate(t *testing.T) {
	repo := &MockCatalogRepository{
		FetchServicesFunc: func(ctx context.Context) ([]model.Service, error) {
			return testServices(), nil
		},
	}
	svc := NewCatalogService(repo, &MockCatalogCache{}, nil, logger.Nop())

	rate, err := svc.ResolveRate(context.Background(), "PayPal Exchange", model.EUR)
	require.NoError(t, err)
	assert.Equal(t, 1600.0, rate)

	_, err = svc.ResolveRate(context.Background(), model.WebsiteRecharge, model.GBP)
	assert.ErrorIs(t, err, calculator.ErrRateUnavailable)

	_, err = svc.ResolveRate(context.Background(), "Missing", model.USD)
	assert.ErrorIs(t, err, calculator.ErrServiceNotFound)
}
