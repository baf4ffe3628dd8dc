package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gatewarden/gatewarden/internal/platform/httpx"
	"github.com/gatewarden/gatewarden/internal/shared"
)

// Handler wires HTTP endpoints for the session engine.
type Handler struct {
	logger     *slog.Logger
	service    *Service
	production bool
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, production bool) *Handler {
	return &Handler{logger: logger, service: service, production: production}
}

// MountPublicRoutes registers the unauthenticated session routes. Rate
// limiting for login is applied by the router.
func (h *Handler) MountPublicRoutes(r chi.Router) {
	r.Post("/login", h.login)
	r.Post("/select-role", h.selectRole)
	r.Post("/refresh", h.refresh)
	r.Post("/logout", h.logout)
}

// MountProtectedRoutes registers session routes that require a principal.
func (h *Handler) MountProtectedRoutes(r chi.Router) {
	r.Get("/me", h.me)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err, h.production)
		return
	}
	if verr := shared.ValidateStruct(req); verr != nil {
		httpx.RespondError(w, verr, h.production)
		return
	}
	result, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.logger.Info("login rejected", slog.String("username", req.Username), slog.Any("error", err))
		httpx.RespondError(w, err, h.production)
		return
	}
	if result.RequiresRoleSelection {
		httpx.OK(w, http.StatusOK, "Please select a role to continue", result)
		return
	}
	httpx.OK(w, http.StatusOK, "Login successful", result)
}

func (h *Handler) selectRole(w http.ResponseWriter, r *http.Request) {
	var req SelectRoleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err, h.production)
		return
	}
	if verr := shared.ValidateStruct(req); verr != nil {
		httpx.RespondError(w, verr, h.production)
		return
	}
	pair, err := h.service.SelectRole(r.Context(), req.UserID, req.RoleID)
	if err != nil {
		httpx.RespondError(w, err, h.production)
		return
	}
	httpx.OK(w, http.StatusOK, "Login successful", pair)
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err, h.production)
		return
	}
	access, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		httpx.RespondError(w, err, h.production)
		return
	}
	httpx.OK(w, http.StatusOK, "Token refreshed successfully", map[string]string{"access_token": access})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	// Logout is idempotent; an absent or malformed body just means there
	// is no persisted token to discard.
	var req LogoutRequest
	_ = httpx.DecodeJSON(r, &req)
	if err := h.service.Logout(r.Context(), req.RefreshToken); err != nil {
		h.logger.Error("logout", slog.Any("error", err))
		httpx.RespondError(w, err, h.production)
		return
	}
	httpx.OK(w, http.StatusOK, "Logged out successfully", nil)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.Fail(w, http.StatusUnauthorized, "Access token is required")
		return
	}
	profile, err := h.service.Me(r.Context(), principal)
	if err != nil {
		httpx.RespondError(w, err, h.production)
		return
	}
	httpx.OK(w, http.StatusOK, "Profile retrieved successfully", profile)
}
