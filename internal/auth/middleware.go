package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gatewarden/gatewarden/internal/platform/httpx"
	"github.com/gatewarden/gatewarden/internal/shared"
)

// CredentialSource resolves the current state of a token's subject. Tokens
// outlive account changes, so every request re-checks the user row.
type CredentialSource interface {
	FindCredentialByID(ctx context.Context, userID int64) (Credential, error)
}

// Authenticate verifies the bearer access token, re-checks that its subject
// still exists and is active, and stores the principal in the request
// context for downstream permission checks.
func Authenticate(tokens *TokenManager, source CredentialSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				httpx.Fail(w, http.StatusUnauthorized, "Access token is required")
				return
			}
			claims, err := tokens.VerifyAccess(raw)
			if err != nil {
				httpx.Fail(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}
			cred, err := source.FindCredentialByID(r.Context(), claims.UserID)
			if err != nil {
				if errors.Is(err, shared.ErrNotFound) {
					httpx.Fail(w, http.StatusUnauthorized, "User no longer exists")
					return
				}
				httpx.Fail(w, http.StatusInternalServerError, "Something went wrong")
				return
			}
			if cred.Status != "active" {
				httpx.Fail(w, http.StatusForbidden, "Account is inactive")
				return
			}

			principal := &shared.Principal{
				UserID:   claims.UserID,
				Username: claims.Username,
				RoleID:   claims.RoleID,
				RoleName: claims.RoleName,
			}
			next.ServeHTTP(w, r.WithContext(shared.ContextWithPrincipal(r.Context(), principal)))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
