package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"exdollarium-calculator/internal/calculator"
	"exdollarium-calculator/internal/domain/model"
	"exdollarium-calculator/internal/domain/ports"
	"exdollarium-calculator/internal/metrics"
	"exdollarium-calculator/internal/service"
	"exdollarium-calculator/pkg/logger"
)

const degradedHeader = "X-Catalog-Degraded"

// maxBodyBytes bounds a POST calculate body.
const maxBodyBytes = 64 << 10

type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Kind    string      `json:"kind,omitempty"`
}

type Handler struct {
	service   ports.CatalogService
	formatter *calculator.Formatter
	log       *logger.Logger
	metrics   *metrics.Metrics
}

func NewHandler(service ports.CatalogService, formatter *calculator.Formatter, log *logger.Logger, metrics *metrics.Metrics) *Handler {
	return &Handler{
		service:   service,
		formatter: formatter,
		log:       log,
		metrics:   metrics,
	}
}

type ratePreview struct {
	Rate    float64 `json:"rate"`
	Display string  `json:"display"`
}

type serviceView struct {
	ID    string                         `json:"_id,omitempty"`
	Name  string                         `json:"name"`
	Rates map[model.Currency]ratePreview `json:"rates"`
	Tiers []float64                      `json:"tiers,omitempty"`
}

type rateView struct {
	Service  string         `json:"service"`
	Currency model.Currency `json:"currency"`
	Rate     float64        `json:"rate"`
	Display  string         `json:"display"`
}

type calculationView struct {
	*model.CalculationResult
	Formatted string `json:"formatted"`
}

// ListServicesHandler serves the catalog with live-rate previews. An
// unreachable upstream degrades to an empty list.
func (h *Handler) ListServicesHandler(w http.ResponseWriter, r *http.Request) {
	services, err := h.service.LoadCatalog(r.Context())
	if err != nil {
		h.log.Warn("Serving empty catalog", "error", err)
		w.Header().Set(degradedHeader, "true")
		services = []model.Service{}
	}

	views := make([]serviceView, 0, len(services))
	for _, s := range services {
		view := serviceView{
			ID:    s.ID,
			Name:  s.Name,
			Rates: make(map[model.Currency]ratePreview),
		}
		for _, c := range model.SupportedCurrencies {
			rate, err := calculator.ResolveRate(s, c)
			if err != nil {
				continue
			}
			view.Rates[c] = ratePreview{Rate: rate, Display: h.formatter.FormatRate(rate)}
		}
		if s.Name == model.WebsiteRecharge {
			view.Tiers = calculator.RechargeTiers()
		}
		views = append(views, view)
	}

	h.sendSuccessResponse(w, views)
}

func (h *Handler) GetRateHandler(w http.ResponseWriter, r *http.Request) {
	h.metrics.RateRequestsTotal.Inc()

	name := r.URL.Query().Get("service")
	currency := model.ParseCurrency(r.URL.Query().Get("currency"))

	if name == "" || currency == "" {
		h.sendErrorResponse(w, http.StatusBadRequest, "missing required parameters: service and currency", "")
		return
	}

	rate, err := h.service.ResolveRate(r.Context(), name, currency)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.sendSuccessResponse(w, rateView{
		Service:  name,
		Currency: currency,
		Rate:     rate,
		Display:  h.formatter.FormatRate(rate),
	})
}

// CalculateHandler accepts the inputs as query parameters (GET) or as a JSON
// body (POST) where amount may be a string or a number.
func (h *Handler) CalculateHandler(w http.ResponseWriter, r *http.Request) {
	var request model.CalculationRequest

	if r.Method == http.MethodPost {
		var err error
		request, err = decodeCalculationRequest(w, r)
		if err != nil {
			h.sendErrorResponse(w, http.StatusBadRequest, "invalid request body", "")
			return
		}
	} else {
		q := r.URL.Query()
		request = model.CalculationRequest{
			Service:  q.Get("service"),
			Currency: model.ParseCurrency(q.Get("currency")),
			Amount:   q.Get("amount"),
		}
	}

	result, err := h.service.Calculate(r.Context(), request)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.sendSuccessResponse(w, calculationView{
		CalculationResult: result,
		Formatted:         h.formatter.FormatResult(result.NGNEquivalent),
	})
}

func (h *Handler) RefreshHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Refresh(r.Context()); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.sendSuccessResponse(w, map[string]int{
		"services": len(h.service.Catalog(r.Context())),
	})
}

type calculationBody struct {
	Service  string          `json:"service"`
	Currency string          `json:"currency"`
	Amount   json.RawMessage `json:"amount"`
}

func decodeCalculationRequest(w http.ResponseWriter, r *http.Request) (model.CalculationRequest, error) {
	var body calculationBody
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		return model.CalculationRequest{}, err
	}

	amount := ""
	raw := bytes.TrimSpace(body.Amount)
	switch {
	case len(raw) == 0 || bytes.Equal(raw, []byte("null")):
	case raw[0] == '"':
		if err := json.Unmarshal(raw, &amount); err != nil {
			return model.CalculationRequest{}, err
		}
	default:
		amount = string(raw)
	}

	return model.CalculationRequest{
		Service:  body.Service,
		Currency: model.ParseCurrency(body.Currency),
		Amount:   strings.TrimSpace(amount),
	}, nil
}

func (h *Handler) sendSuccessResponse(w http.ResponseWriter, data interface{}) {
	response := Response{
		Success: true,
		Data:    data,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.log.Error("Failed to encode response", "error", err)
	}
}

func (h *Handler) sendErrorResponse(w http.ResponseWriter, statusCode int, message string, kind calculator.Kind) {
	response := Response{
		Success: false,
		Error:   message,
		Kind:    string(kind),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.log.Error("Failed to encode error response", "error", err)
	}
}

func (h *Handler) handleServiceError(w http.ResponseWriter, err error) {
	if kind, ok := calculator.KindOf(err); ok {
		statusCode := http.StatusUnprocessableEntity
		if kind == calculator.KindServiceNotFound {
			statusCode = http.StatusNotFound
		}
		h.log.Debug("Calculation validation error", "kind", kind, "status_code", statusCode)
		h.sendErrorResponse(w, statusCode, calculator.Message(err), kind)
		return
	}

	statusCode := http.StatusInternalServerError
	errorMessage := "internal server error"

	if errors.Is(err, service.ErrCatalogUnavailable) {
		statusCode = http.StatusServiceUnavailable
		errorMessage = "service catalog unavailable"
	}

	h.log.Error("Service error", "error", err, "status_code", statusCode)
	h.sendErrorResponse(w, statusCode, errorMessage, "")
}
