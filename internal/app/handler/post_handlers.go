package handler

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/atinyakov/linkshort/internal/app/service"
	"github.com/atinyakov/linkshort/internal/models"
)

type PostHandler struct {
	service service.LinkServiceIface
	logger  *zap.Logger
}

func NewPost(s service.LinkServiceIface, l *zap.Logger) *PostHandler {
	return &PostHandler{
		service: s,
		logger:  l,
	}
}

// Create handles POST /api/links.
func (h *PostHandler) Create(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), requestTimeout)
	defer cancel()

	var request models.CreateRequest

	err := decodeJSONBody(res, req, &request)
	if err != nil {
		var mr *malformedRequest
		if errors.As(err, &mr) {
			writeJSON(res, h.logger, mr.status, models.ErrorResponse{Error: mr.msg})
			return
		}

		h.logger.Error("cannot decode request", zap.Error(err))
		http.Error(res, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	link, err := h.service.Create(ctx, request.URL, request.Code)
	if err != nil {
		status := createErrorStatus(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("unable to create link", zap.String("url", request.URL), zap.Error(err))
			writeJSON(res, h.logger, status, models.ErrorResponse{Error: http.StatusText(status)})
			return
		}

		h.logger.Info("link rejected", zap.String("url", request.URL), zap.String("code", request.Code), zap.Error(err))
		writeJSON(res, h.logger, status, models.ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(res, h.logger, http.StatusCreated, models.CreateResponse{
		Code:     link.Code,
		URL:      link.TargetURL,
		ShortURL: h.service.ShortURL(link.Code),
	})
}

func createErrorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidURL), errors.Is(err, service.ErrInvalidFormat):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrCodeConflict):
		return http.StatusConflict
	case errors.Is(err, service.ErrAllocationExhausted):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
