package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gatewarden/gatewarden/internal/shared"
	_ "github.com/gatewarden/gatewarden/testing"
)

func TestAuthenticateRejectsMissingAndMalformedHeaders(t *testing.T) {
	tm := testTokenManager(time.Hour, 168*time.Hour)
	mw := Authenticate(tm, newFakeRepo())
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for _, header := range []string{"", "Bearer", "Basic abc", "token-without-scheme"} {
		r := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
		if header != "" {
			r.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, r)
		require.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
	}
}

func TestAuthenticateSetsPrincipal(t *testing.T) {
	tm := testTokenManager(time.Hour, 168*time.Hour)
	repo := newFakeRepo()
	cred := repo.addUser(t, "alice", "pw", "active", RoleOption{RoleID: 7, RoleName: "Editor"})

	raw, err := tm.MintAccess(cred.UserID, "alice", 7, "Editor")
	require.NoError(t, err)

	var seen *shared.Principal
	handler := Authenticate(tm, repo)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = shared.PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	r := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	r.Header.Set("Authorization", "Bearer "+raw)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	require.Equal(t, cred.UserID, seen.UserID)
	require.Equal(t, int64(7), seen.RoleID)
	require.Equal(t, "Editor", seen.RoleName)
}

func TestAuthenticateRechecksUserState(t *testing.T) {
	tm := testTokenManager(time.Hour, 168*time.Hour)
	repo := newFakeRepo()
	cred := repo.addUser(t, "alice", "pw", "inactive", RoleOption{RoleID: 7, RoleName: "Editor"})

	raw, err := tm.MintAccess(cred.UserID, "alice", 7, "Editor")
	require.NoError(t, err)

	handler := Authenticate(tm, repo)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// Inactive account: token verifies but the request is forbidden.
	r := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	r.Header.Set("Authorization", "Bearer "+raw)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)
	require.Equal(t, http.StatusForbidden, rec.Code)

	// Deleted account: unauthorized.
	delete(repo.credentials, "alice")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, r)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
