package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apierrors "prognoza/internal/errors"
	"prognoza/internal/exporter"
	"prognoza/internal/services"
	"prognoza/internal/shaper"
)

// ForecastHandler handles forecast HTTP requests with RFC 7807 compliance
type ForecastHandler struct {
	service      *services.ForecastService
	excelWriter  *exporter.ExcelWriter
	validate     *validator.Validate
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewForecastHandler creates a new forecast handler with RFC 7807 error handling
func NewForecastHandler(service *services.ForecastService, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ForecastHandler {
	return &ForecastHandler{
		service:      service,
		excelWriter:  exporter.NewExcelWriter(),
		validate:     validator.New(),
		logger:       logger.With(slog.String("component", "forecast_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the forecast routes
func (h *ForecastHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.RunForecast)
	r.Post("/export", h.ExportForecast)

	return r
}

// RunForecast handles POST /api/forecast
func (h *ForecastHandler) RunForecast(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}

	resp, err := h.service.Run(r.Context(), req)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "forecast run failed",
			slog.String("error", err.Error()),
		)
		h.errorHandler.HandleError(w, r, apierrors.New(
			http.StatusInternalServerError,
			"FORECAST_FAILED",
			"Forecast run failed",
		))
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, resp)
}

// ExportForecast handles POST /api/forecast/export: it runs the forecast
// and streams the result as an xlsx workbook.
func (h *ForecastHandler) ExportForecast(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}

	resp, err := h.service.Run(r.Context(), req)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "forecast export failed",
			slog.String("error", err.Error()),
		)
		h.errorHandler.HandleError(w, r, apierrors.New(
			http.StatusInternalServerError,
			"FORECAST_FAILED",
			"Forecast run failed",
		))
		return
	}

	w.Header().Set("Content-Type", exporter.SpreadsheetMIME)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="%s"`, exporter.DefaultWorkbookName))

	if err := h.excelWriter.Write(resp.Table, w); err != nil {
		// Headers are already sent; all we can do is log.
		h.logger.ErrorContext(r.Context(), "failed to stream workbook",
			slog.String("error", err.Error()),
		)
	}
}

// decodeRequest parses and validates the request body. An empty body is a
// valid request for the default forecast.
func (h *ForecastHandler) decodeRequest(w http.ResponseWriter, r *http.Request) (services.ForecastRequest, bool) {
	var req services.ForecastRequest

	if r.ContentLength != 0 {
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
				http.StatusBadRequest,
				"INVALID_REQUEST",
				"Invalid request body",
				err.Error(),
			))
			return req, false
		}
	}

	if err := h.validate.Struct(req); err != nil {
		h.errorHandler.HandleError(w, r, validationError(err))
		return req, false
	}

	if req.Mode != "" && !req.Mode.IsValid() {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("mode",
			fmt.Sprintf("unknown mode %q, want %q or %q", req.Mode, shaper.ModeAggregate, shaper.ModeMonthly)))
		return req, false
	}

	return req, true
}

// validationError flattens validator errors into a single API error.
func validationError(err error) *apierrors.APIError {
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		first := verrs[0]
		return apierrors.ErrValidation(first.Field(),
			fmt.Sprintf("failed %q validation", first.Tag()))
	}
	return apierrors.ErrValidationFailed
}
