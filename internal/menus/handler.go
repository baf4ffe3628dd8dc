package menus

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/gatewarden/gatewarden/internal/access"
	"github.com/gatewarden/gatewarden/internal/platform/httpx"
	"github.com/gatewarden/gatewarden/internal/shared"
)

// Handler wires HTTP endpoints for the menu hierarchy.
type Handler struct {
	logger     *slog.Logger
	service    *Service
	guard      *access.Guard
	production bool
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, guard *access.Guard, production bool) *Handler {
	return &Handler{logger: logger, service: service, guard: guard, production: production}
}

// MountRoutes registers menu routes on the provided router. The my-menus
// route is ungated: it already scopes itself to the caller's role.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/me", h.accessibleTree)
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(access.ActionView))
		r.Get("/", h.list)
		r.Get("/tree", h.tree)
		r.Get("/{id}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(access.ActionCreate))
		r.Post("/", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(access.ActionUpdate))
		r.Put("/{id}", h.update)
		r.Put("/{id}/parent", h.reparent)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(access.ActionDelete))
		r.Delete("/{id}", h.delete)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := ListMenusRequest{Search: q.Get("search"), Status: q.Get("status")}
	req.Page, _ = strconv.Atoi(q.Get("page"))
	req.Limit, _ = strconv.Atoi(q.Get("limit"))

	menus, pagination, err := h.service.List(r.Context(), req)
	if err != nil {
		h.logger.Error("list menus", slog.Any("error", err))
		httpx.RespondError(w, err, h.production)
		return
	}
	httpx.Paginated(w, "Menus retrieved successfully", menus, pagination)
}

func (h *Handler) tree(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status == "" {
		status = StatusActive
	}
	tree, err := h.service.Tree(r.Context(), status)
	if err != nil {
		h.logger.Error("build menu tree", slog.Any("error", err))
		httpx.RespondError(w, err, h.production)
		return
	}
	httpx.OK(w, http.StatusOK, "Menu tree retrieved successfully", tree)
}

func (h *Handler) accessibleTree(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.Fail(w, http.StatusUnauthorized, "Access token is required")
		return
	}
	tree, err := h.service.AccessibleTree(r.Context(), principal.RoleID)
	if err != nil {
		h.logger.Error("build accessible menu tree", slog.Any("error", err))
		httpx.RespondError(w, err, h.production)
		return
	}
	httpx.OK(w, http.StatusOK, "User menus retrieved successfully", tree)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid menu ID")
		return
	}
	menu, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err, h.production)
		return
	}
	httpx.OK(w, http.StatusOK, "Menu retrieved successfully", menu)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateMenuRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err, h.production)
		return
	}
	if verr := shared.ValidateStruct(req); verr != nil {
		httpx.RespondError(w, verr, h.production)
		return
	}
	menu, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.logger.Error("create menu", slog.Any("error", err))
		httpx.RespondError(w, err, h.production)
		return
	}
	httpx.OK(w, http.StatusCreated, "Menu created successfully", menu)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid menu ID")
		return
	}
	var req UpdateMenuRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err, h.production)
		return
	}
	if verr := shared.ValidateStruct(req); verr != nil {
		httpx.RespondError(w, verr, h.production)
		return
	}
	menu, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		httpx.RespondError(w, err, h.production)
		return
	}
	httpx.OK(w, http.StatusOK, "Menu updated successfully", menu)
}

func (h *Handler) reparent(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid menu ID")
		return
	}
	var req ReparentMenuRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err, h.production)
		return
	}
	menu, err := h.service.Reparent(r.Context(), id, req)
	if err != nil {
		httpx.RespondError(w, err, h.production)
		return
	}
	httpx.OK(w, http.StatusOK, "Menu moved successfully", menu)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid menu ID")
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.RespondError(w, err, h.production)
		return
	}
	httpx.OK(w, http.StatusOK, "Menu deleted successfully", nil)
}
