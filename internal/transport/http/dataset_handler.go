package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "prognoza/internal/errors"
	"prognoza/internal/filter"
	"prognoza/internal/services"
)

// DatasetHandler handles dataset HTTP requests: uploads, info and the
// drill-down options behind the selection UI.
type DatasetHandler struct {
	service        *services.DatasetService
	logger         *slog.Logger
	errorHandler   *apierrors.ErrorHandler
	maxUploadBytes int64
}

// NewDatasetHandler creates a new dataset handler
func NewDatasetHandler(service *services.DatasetService, logger *slog.Logger, errorHandler *apierrors.ErrorHandler, maxUploadBytes int64) *DatasetHandler {
	return &DatasetHandler{
		service:        service,
		logger:         logger.With(slog.String("component", "dataset_handler")),
		errorHandler:   errorHandler,
		maxUploadBytes: maxUploadBytes,
	}
}

// Routes returns the dataset routes
func (h *DatasetHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.GetInfo)
	r.Post("/", h.Upload)
	r.Post("/options", h.GetOptions)

	return r
}

// GetInfo handles GET /api/dataset
func (h *DatasetHandler) GetInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.Info()
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrDatasetNotFound)
		return
	}

	render.JSON(w, r, info)
}

// Upload handles POST /api/dataset as a multipart upload with a "file"
// part holding the CSV export.
func (h *DatasetHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.errorHandler.HandleError(w, r, apierrors.ErrPayloadTooLarge)
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
			http.StatusBadRequest,
			"INVALID_REQUEST",
			"Invalid multipart form",
			err.Error(),
		))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("file", "CSV file is required"))
		return
	}
	defer file.Close()

	h.logger.InfoContext(r.Context(), "dataset upload received",
		slog.String("filename", header.Filename),
		slog.Int64("size", header.Size),
	)

	info, err := h.service.Upload(r.Context(), file, header.Filename)
	if err != nil {
		h.logger.WarnContext(r.Context(), "dataset upload rejected",
			slog.String("filename", header.Filename),
			slog.String("error", err.Error()),
		)
		if errors.Is(err, services.ErrNoUsableRows) {
			h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
				http.StatusUnprocessableEntity,
				"INVALID_DATASET",
				"Dataset contains no usable rows",
				err.Error(),
			))
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.ErrSchema(err))
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, info)
}

// GetOptions handles POST /api/dataset/options. The body carries the
// selection made so far; the response lists what each stage can offer.
func (h *DatasetHandler) GetOptions(w http.ResponseWriter, r *http.Request) {
	sel := filter.SelectAll()

	if r.ContentLength != 0 {
		var body struct {
			Selection filter.Selection `json:"selection"`
		}
		if err := render.DecodeJSON(r.Body, &body); err != nil {
			h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
				http.StatusBadRequest,
				"INVALID_REQUEST",
				"Invalid request body",
				err.Error(),
			))
			return
		}
		sel = body.Selection
	}

	opts, err := h.service.Options(sel)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrDatasetNotFound)
		return
	}

	render.JSON(w, r, opts)
}
