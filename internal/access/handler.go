package access

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/gatewarden/gatewarden/internal/platform/httpx"
	"github.com/gatewarden/gatewarden/internal/shared"
)

// Handler wires HTTP endpoints for the permission matrix.
type Handler struct {
	logger     *slog.Logger
	service    *Service
	guard      *Guard
	production bool
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, guard *Guard, production bool) *Handler {
	return &Handler{logger: logger, service: service, guard: guard, production: production}
}

// MountRoutes registers permission matrix routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(ActionView))
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(ActionCreate))
		r.Post("/", h.grant)
		r.Post("/bulk", h.bulkGrant)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(ActionUpdate))
		r.Put("/{id}", h.update)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(ActionDelete))
		r.Delete("/{id}", h.revoke)
		r.Delete("/roles/{roleId}", h.revokeAllForRole)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := ListAccessRequest{}
	req.Page, _ = strconv.Atoi(q.Get("page"))
	req.Limit, _ = strconv.Atoi(q.Get("limit"))
	req.RoleID, _ = strconv.ParseInt(q.Get("role_id"), 10, 64)
	req.MenuID, _ = strconv.ParseInt(q.Get("menu_id"), 10, 64)

	rows, pagination, err := h.service.List(r.Context(), req)
	if err != nil {
		h.logger.Error("list access", slog.Any("error", err))
		httpx.RespondError(w, err, h.production)
		return
	}
	httpx.Paginated(w, "Access list retrieved successfully", rows, pagination)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid access ID")
		return
	}
	row, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err, h.production)
		return
	}
	httpx.OK(w, http.StatusOK, "Access retrieved successfully", row)
}

func (h *Handler) grant(w http.ResponseWriter, r *http.Request) {
	var req GrantRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err, h.production)
		return
	}
	if verr := shared.ValidateStruct(req); verr != nil {
		httpx.RespondError(w, verr, h.production)
		return
	}
	granted, err := h.service.Grant(r.Context(), req)
	if err != nil {
		httpx.RespondError(w, err, h.production)
		return
	}
	httpx.OK(w, http.StatusCreated, "Access assigned successfully", granted)
}

func (h *Handler) bulkGrant(w http.ResponseWriter, r *http.Request) {
	var req BulkGrantRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err, h.production)
		return
	}
	if verr := shared.ValidateStruct(req); verr != nil {
		httpx.RespondError(w, verr, h.production)
		return
	}
	result, err := h.service.BulkGrant(r.Context(), req)
	if err != nil {
		httpx.RespondError(w, err, h.production)
		return
	}
	httpx.OK(w, http.StatusCreated, "Bulk access assignment completed", result)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid access ID")
		return
	}
	var req UpdateAccessRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err, h.production)
		return
	}
	row, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		httpx.RespondError(w, err, h.production)
		return
	}
	httpx.OK(w, http.StatusOK, "Access updated successfully", row)
}

func (h *Handler) revoke(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid access ID")
		return
	}
	if err := h.service.Revoke(r.Context(), id); err != nil {
		httpx.RespondError(w, err, h.production)
		return
	}
	httpx.OK(w, http.StatusOK, "Access revoked successfully", nil)
}

func (h *Handler) revokeAllForRole(w http.ResponseWriter, r *http.Request) {
	roleID, err := strconv.ParseInt(chi.URLParam(r, "roleId"), 10, 64)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid role ID")
		return
	}
	removed, err := h.service.RevokeAllForRole(r.Context(), roleID)
	if err != nil {
		httpx.RespondError(w, err, h.production)
		return
	}
	httpx.OK(w, http.StatusOK,
		fmt.Sprintf("All access for role removed successfully (%d records deleted)", removed),
		map[string]int64{"deleted_count": removed})
}
