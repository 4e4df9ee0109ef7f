package country

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/de-tools/funding-atlas/pkg/adapters"
	"github.com/de-tools/funding-atlas/pkg/models/api"
	"github.com/de-tools/funding-atlas/pkg/services/catalog"
	"github.com/de-tools/funding-atlas/pkg/services/reconcile"
	"github.com/de-tools/funding-atlas/pkg/services/workflow"
)

const defaultRunsLimit = 50

type Handler struct {
	catalog  catalog.Service
	workflow workflow.Controller
}

func NewHandler(catalog catalog.Service, workflow workflow.Controller) *Handler {
	return &Handler{
		catalog:  catalog,
		workflow: workflow,
	}
}

func (h *Handler) ListCountries(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	countries, err := h.catalog.ListCountries(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("failed to list countries")
		http.Error(w, "failed to list countries", http.StatusBadGateway)
		return
	}

	response := make([]api.Country, 0, len(countries))
	for _, c := range countries {
		response = append(response, adapters.MapCountryDomainToApi(c))
	}
	writeJSON(w, logger, response)
}

func (h *Handler) GetTables(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := chi.URLParam(r, "country")
	logger := zerolog.Ctx(ctx).With().Str("query", query).Logger()

	country, err := h.catalog.Lookup(ctx, query)
	if err != nil {
		if errors.Is(err, catalog.ErrUnknownCountry) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		logger.Error().Err(err).Msg("failed to look up country")
		http.Error(w, "failed to look up country", http.StatusBadGateway)
		return
	}

	result, _, err := h.workflow.RunCountry(ctx, country)
	switch {
	case err == nil:
	case errors.Is(err, reconcile.ErrNoData):
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	case errors.Is(err, workflow.ErrRunInProgress):
		http.Error(w, err.Error(), http.StatusConflict)
		return
	default:
		logger.Error().Err(err).Msg("failed to generate tables")
		http.Error(w, "failed to generate tables", http.StatusInternalServerError)
		return
	}

	writeJSON(w, &logger, adapters.MapCountryResultDomainToApi(result))
}

func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	limit := defaultRunsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			http.Error(w, "invalid 'limit'. Expected a non-negative integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	runs, err := h.workflow.ListRuns(ctx, r.URL.Query()["country"], limit)
	if err != nil {
		logger.Error().Err(err).Msg("failed to list runs")
		http.Error(w, "failed to list runs", http.StatusInternalServerError)
		return
	}

	response := make([]api.Run, 0, len(runs))
	for _, run := range runs {
		response = append(response, adapters.MapRunDomainToApi(run))
	}
	writeJSON(w, logger, response)
}

func writeJSON(w http.ResponseWriter, logger *zerolog.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error().Err(err).Msg("failed to encode response")
	}
}
