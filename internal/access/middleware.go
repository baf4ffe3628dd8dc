package access

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gatewarden/gatewarden/internal/platform/httpx"
	"github.com/gatewarden/gatewarden/internal/shared"
)

// MenuResolver maps a request path to the menu controlling it.
type MenuResolver interface {
	FindIDByPath(ctx context.Context, path string) (int64, bool, error)
}

// Decider answers allow/deny for (role, menu, action).
type Decider interface {
	Decide(ctx context.Context, roleID, menuID int64, action string) (bool, error)
}

// Guard is the request-time access decision gate. It assumes authentication
// already ran: the principal must be present in the request context.
type Guard struct {
	menus   MenuResolver
	decider Decider
	logger  *slog.Logger
}

// NewGuard constructs the decision gate.
func NewGuard(menus MenuResolver, decider Decider, logger *slog.Logger) *Guard {
	return &Guard{menus: menus, decider: decider, logger: logger}
}

// Require authorizes the tagged action against the permission matrix row of
// the principal's role and the menu matching the request path. Paths mapped
// to no menu are not access-controlled.
func (g *Guard) Require(action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := shared.PrincipalFromContext(r.Context())
			if principal == nil {
				httpx.Fail(w, http.StatusUnauthorized, "Access token is required")
				return
			}

			menuID, found, err := g.resolveMenu(r.Context(), r.URL.Path)
			if err != nil {
				g.logger.Error("resolve menu for path", slog.String("path", r.URL.Path), slog.Any("error", err))
				httpx.Fail(w, http.StatusInternalServerError, "Internal server error")
				return
			}
			if !found {
				next.ServeHTTP(w, r)
				return
			}

			allowed, err := g.decider.Decide(r.Context(), principal.RoleID, menuID, action)
			if err != nil {
				g.logger.Error("access decision", slog.Any("error", err))
				httpx.Fail(w, http.StatusInternalServerError, "Internal server error")
				return
			}
			if !allowed {
				httpx.Fail(w, http.StatusForbidden, "You don't have permission to "+action+" this resource")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// resolveMenu finds the menu governing a request path. Resource identifiers
// ride on the end of the canonical path, so trailing segments are trimmed
// until a menu matches.
func (g *Guard) resolveMenu(ctx context.Context, path string) (int64, bool, error) {
	for path != "" && path != "/" {
		menuID, found, err := g.menus.FindIDByPath(ctx, path)
		if err != nil || found {
			return menuID, found, err
		}
		idx := strings.LastIndexByte(path, '/')
		if idx <= 0 {
			break
		}
		path = path[:idx]
	}
	return 0, false, nil
}
