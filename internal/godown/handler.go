package godown

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/loomline-erp/loomline-erp/internal/platform/httpx"
	"github.com/loomline-erp/loomline-erp/internal/shared"
)

// Service abstracts the engine operations the handler needs.
type Service interface {
	Godowns() []Godown
	CreateGodown(ctx context.Context, actor string, g Godown) (Godown, error)
	UpdateGodown(ctx context.Context, actor string, g Godown) (Godown, error)
	DeleteGodown(ctx context.Context, actor, id string) error
}

// Handler wires godown endpoints.
type Handler struct {
	logger   *slog.Logger
	service  Service
	validate *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers godown routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/godowns", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
}

type godownRequest struct {
	Name string `json:"name" validate:"required,max=120"`
	Role Role   `json:"role" validate:"omitempty,oneof=INTAKE CUTTING_WIP SEWING_WIP FINISHING_WIP"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.service.Godowns())
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req godownRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	g, err := h.service.CreateGodown(r.Context(), shared.ActorFromContext(r.Context()), Godown{Name: req.Name, Role: req.Role})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, g)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req godownRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	g := Godown{ID: chi.URLParam(r, "id"), Name: req.Name, Role: req.Role}
	g, err := h.service.UpdateGodown(r.Context(), shared.ActorFromContext(r.Context()), g)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, g)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteGodown(r.Context(), shared.ActorFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrDuplicateName), errors.Is(err, ErrInUse):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, ErrAmbiguousRole), errors.Is(err, ErrUnknownRole):
		httpx.Problem(w, http.StatusBadRequest, "Invalid Role", err.Error())
	default:
		h.logger.Error("godown request failed", "error", err)
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
