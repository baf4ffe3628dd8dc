package access

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gatewarden/gatewarden/internal/shared"
	_ "github.com/gatewarden/gatewarden/internal/testing/guard"
)

type stubResolver struct {
	byPath map[string]int64
}

func (s stubResolver) FindIDByPath(ctx context.Context, path string) (int64, bool, error) {
	id, ok := s.byPath[path]
	return id, ok, nil
}

type stubDecider struct {
	allow map[int64]bool
}

func (s stubDecider) Decide(ctx context.Context, roleID, menuID int64, action string) (bool, error) {
	return s.allow[menuID], nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func requestWithPrincipal(method, path string) *http.Request {
	r := httptest.NewRequest(method, path, nil)
	principal := &shared.Principal{UserID: 1, Username: "alice", RoleID: 7, RoleName: "Editor"}
	return r.WithContext(shared.ContextWithPrincipal(r.Context(), principal))
}

func TestGuardRequiresPrincipal(t *testing.T) {
	guard := NewGuard(stubResolver{}, stubDecider{}, testLogger())
	handler := guard.Require(ActionView)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/users", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGuardPermissiveForUnmappedPath(t *testing.T) {
	guard := NewGuard(stubResolver{byPath: map[string]int64{}}, stubDecider{}, testLogger())
	called := false
	handler := guard.Require(ActionView)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, requestWithPrincipal(http.MethodGet, "/api/v1/reports"))
	require.True(t, called)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestGuardForbidsDeniedAction(t *testing.T) {
	guard := NewGuard(
		stubResolver{byPath: map[string]int64{"/api/v1/users": 10}},
		stubDecider{allow: map[int64]bool{10: false}},
		testLogger(),
	)
	handler := guard.Require(ActionDelete)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, requestWithPrincipal(http.MethodDelete, "/api/v1/users"))
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGuardResolvesMenuByPathPrefix(t *testing.T) {
	guard := NewGuard(
		stubResolver{byPath: map[string]int64{"/api/v1/users": 10}},
		stubDecider{allow: map[int64]bool{10: true}},
		testLogger(),
	)
	called := false
	handler := guard.Require(ActionUpdate)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	// The resource ID rides on the end of the canonical path.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, requestWithPrincipal(http.MethodPut, "/api/v1/users/42"))
	require.True(t, called)
	require.Equal(t, http.StatusOK, rec.Code)
}
