package users

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/gatewarden/gatewarden/internal/access"
	"github.com/gatewarden/gatewarden/internal/platform/httpx"
	"github.com/gatewarden/gatewarden/internal/shared"
)

// Handler wires HTTP endpoints for user management.
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

// MountRoutes registers user routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(access.ActionView))
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
		r.Get("/{id}/roles", h.listRoles)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(access.ActionCreate))
		r.Post("/", h.create)
		r.Post("/{id}/roles", h.assignRole)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(access.ActionUpdate))
		r.Put("/{id}", h.update)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(access.ActionDelete))
		r.Delete("/{id}", h.delete)
		r.Delete("/{id}/roles/{roleId}", h.removeRole)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := ListUsersRequest{Search: q.Get("search"), Status: q.Get("status")}
	req.Page, _ = strconv.Atoi(q.Get("page"))
	req.Limit, _ = strconv.Atoi(q.Get("limit"))

	users, pagination, err := h.service.List(r.Context(), req)
	if err != nil {
		h.logger.Error("list users", slog.Any("error", err))
		httpx.RespondError(w, err, h.production)
		return
	}
	httpx.Paginated(w, "Users retrieved successfully", users, pagination)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid user ID")
		return
	}
	user, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err, h.production)
		return
	}
	httpx.OK(w, http.StatusOK, "User retrieved successfully", user)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err, h.production)
		return
	}
	if verr := shared.ValidateStruct(req); verr != nil {
		httpx.RespondError(w, verr, h.production)
		return
	}
	user, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.logger.Error("create user", slog.Any("error", err))
		httpx.RespondError(w, err, h.production)
		return
	}
	httpx.OK(w, http.StatusCreated, "User created successfully", user)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid user ID")
		return
	}
	var req UpdateUserRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err, h.production)
		return
	}
	if verr := shared.ValidateStruct(req); verr != nil {
		httpx.RespondError(w, verr, h.production)
		return
	}
	user, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		httpx.RespondError(w, err, h.production)
		return
	}
	httpx.OK(w, http.StatusOK, "User updated successfully", user)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid user ID")
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.RespondError(w, err, h.production)
		return
	}
	httpx.OK(w, http.StatusOK, "User deleted successfully", nil)
}

func (h *Handler) listRoles(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid user ID")
		return
	}
	roles, err := h.service.ListRoles(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err, h.production)
		return
	}
	httpx.OK(w, http.StatusOK, "User roles retrieved successfully", roles)
}

func (h *Handler) assignRole(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid user ID")
		return
	}
	var req AssignRoleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err, h.production)
		return
	}
	if verr := shared.ValidateStruct(req); verr != nil {
		httpx.RespondError(w, verr, h.production)
		return
	}
	if err := h.service.AssignRole(r.Context(), id, req); err != nil {
		h.logger.Error("assign role", slog.Any("error", err))
		httpx.RespondError(w, err, h.production)
		return
	}
	httpx.OK(w, http.StatusCreated, "Role assigned successfully", nil)
}

func (h *Handler) removeRole(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid user ID")
		return
	}
	roleID, err := strconv.ParseInt(chi.URLParam(r, "roleId"), 10, 64)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid role ID")
		return
	}
	if err := h.service.RemoveRole(r.Context(), id, roleID); err != nil {
		httpx.RespondError(w, err, h.production)
		return
	}
	httpx.OK(w, http.StatusOK, "Role removed successfully", nil)
}
