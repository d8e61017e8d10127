package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/eapache/go-resiliency/retrier"
	"github.com/tidwall/gjson"

	"exdollarium-calculator/internal/domain/model"
	"exdollarium-calculator/pkg/logger"
)

const servicesPath = "/api/services"

var (
	ErrMalformedCatalog = errors.New("malformed catalog response")
	ErrUpstreamStatus   = errors.New("catalog API returned non-OK status")
)

// CatalogAPI reads the service catalog from GET {baseURL}/api/services.
type CatalogAPI struct {
	baseURL    string
	httpClient *http.Client
	retrier    *retrier.Retrier
	log        *logger.Logger
}

// NewCatalogAPI builds a client for baseURL. A zero timeout leaves requests
// unbounded; maxRetries of zero makes a single attempt.
func NewCatalogAPI(baseURL string, timeout time.Duration, maxRetries int, log *logger.Logger) *CatalogAPI {
	return &CatalogAPI{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		retrier: retrier.New(retrier.ExponentialBackoff(maxRetries, 100*time.Millisecond), retryClassifier{}),
		log:     log,
	}
}

func (c *CatalogAPI) URL() string {
	return c.baseURL + servicesPath
}

func (c *CatalogAPI) FetchServices(ctx context.Context) ([]model.Service, error) {
	var body []byte
	attempt := 0

	err := c.retrier.RunCtx(ctx, func(ctx context.Context) error {
		attempt++
		var err error
		body, err = c.fetch(ctx)
		if err != nil {
			c.log.Warn("Catalog fetch attempt failed", "attempt", attempt, "error", err)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	services, err := parseServices(body)
	if err != nil {
		return nil, err
	}

	c.log.Debug("Fetched service catalog", "services", len(services), "attempts", attempt)
	return services, nil
}

func (c *CatalogAPI) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, retryable(fmt.Errorf("failed to send request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("%w: %d", ErrUpstreamStatus, resp.StatusCode)
		if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
			return nil, retryable(err)
		}
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, retryable(fmt.Errorf("failed to read response: %w", err))
	}
	return body, nil
}

// parseServices accepts either a bare array of services or an object with
// the array under "data" or "services".
func parseServices(body []byte) ([]model.Service, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrMalformedCatalog)
	}

	list := gjson.ParseBytes(body)
	if !list.IsArray() {
		list = gjson.GetBytes(body, "data")
		if !list.IsArray() {
			list = gjson.GetBytes(body, "services")
		}
		if !list.IsArray() {
			return nil, fmt.Errorf("%w: expected an array of services", ErrMalformedCatalog)
		}
	}

	services := make([]model.Service, 0)
	list.ForEach(func(_, item gjson.Result) bool {
		name := item.Get("name")
		if name.Type != gjson.String || name.Str == "" {
			return true
		}

		service := model.Service{
			ID:            item.Get("_id").String(),
			Name:          name.Str,
			ExchangeRates: make(map[model.Currency]float64),
		}
		item.Get("exchangeRates").ForEach(func(code, value gjson.Result) bool {
			if rate, ok := parseRate(value); ok {
				service.ExchangeRates[model.ParseCurrency(code.String())] = rate
			}
			return true
		})

		services = append(services, service)
		return true
	})

	return services, nil
}

// parseRate accepts JSON numbers and numeric strings; null, non-finite
// values and anything else are treated as an absent rate.
func parseRate(value gjson.Result) (float64, bool) {
	switch value.Type {
	case gjson.Number:
		return value.Num, true
	case gjson.String:
		rate, err := strconv.ParseFloat(strings.TrimSpace(value.Str), 64)
		if err != nil || math.IsNaN(rate) || math.IsInf(rate, 0) {
			return 0, false
		}
		return rate, true
	}
	return 0, false
}

type retryableError struct {
	err error
}

func (e *retryableError) Error() string { return e.err.Error() }

func (e *retryableError) Unwrap() error { return e.err }

func retryable(err error) error {
	return &retryableError{err: err}
}

type retryClassifier struct{}

func (retryClassifier) Classify(err error) retrier.Action {
	if err == nil {
		return retrier.Succeed
	}
	var re *retryableError
	if errors.As(err, &re) {
		return retrier.Retry
	}
	return retrier.Fail
}
