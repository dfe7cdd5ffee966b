package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/atinyakov/linkshort/internal/app/service"
	"github.com/atinyakov/linkshort/internal/models"
)

type GetHandler struct {
	service service.LinkServiceIface
	logger  *zap.Logger
}

func NewGet(s service.LinkServiceIface, l *zap.Logger) *GetHandler {
	return &GetHandler{
		service: s,
		logger:  l,
	}
}

// Redirect handles GET /{code}: it answers 302 to the target URL.
func (h *GetHandler) Redirect(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), requestTimeout)
	defer cancel()

	code := chi.URLParam(req, "code")

	target, err := h.service.Redirect(ctx, code)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			http.Error(res, "Not found", http.StatusNotFound)
			return
		}

		h.logger.Error("redirect failed", zap.String("code", code), zap.Error(err))
		http.Error(res, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	http.Redirect(res, req, target, http.StatusFound)
}

// List handles GET /api/links.
func (h *GetHandler) List(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), requestTimeout)
	defer cancel()

	links, err := h.service.List(ctx)
	if err != nil {
		h.logger.Error("cannot list links", zap.Error(err))
		writeJSON(res, h.logger, http.StatusInternalServerError, models.ErrorResponse{Error: http.StatusText(http.StatusInternalServerError)})
		return
	}

	writeJSON(res, h.logger, http.StatusOK, links)
}

// ByCode handles GET /api/links/{code}.
func (h *GetHandler) ByCode(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), requestTimeout)
	defer cancel()

	code := chi.URLParam(req, "code")

	link, err := h.service.Get(ctx, code)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			writeJSON(res, h.logger, http.StatusNotFound, models.ErrorResponse{Error: "Not found"})
			return
		}

		h.logger.Error("cannot load link", zap.String("code", code), zap.Error(err))
		writeJSON(res, h.logger, http.StatusInternalServerError, models.ErrorResponse{Error: http.StatusText(http.StatusInternalServerError)})
		return
	}

	writeJSON(res, h.logger, http.StatusOK, link)
}

func (h *GetHandler) PingDB(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), requestTimeout)
	defer cancel()

	if err := h.service.PingContext(ctx); err != nil {
		http.Error(res, err.Error(), http.StatusInternalServerError)
		return
	}

	res.WriteHeader(http.StatusOK)
}
