package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessClaims are the JWT claims carried by an access token. The role
// fields identify the single role the session operates under.
type AccessClaims struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	RoleID   int64  `json:"role_id"`
	RoleName string `json:"role_name"`
	jwt.RegisteredClaims
}

// RefreshClaims are the JWT claims carried by a refresh token.
type RefreshClaims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// RefreshToken is a persisted refresh token record.
type RefreshToken struct {
	ID        int64
	UserID    int64
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// RoleOption is a role a user may pick during a multi-role login.
type RoleOption struct {
	RoleID    int64  `json:"role_id"`
	RoleName  string `json:"role_name"`
	IsDefault bool   `json:"is_default"`
}

// LoginResult is the outcome of a credential check. When the user holds
// more than one role no tokens are issued and Roles lists the candidates.
type LoginResult struct {
	RequiresRoleSelection bool         `json:"requires_role_selection"`
	UserID                int64        `json:"user_id,omitempty"`
	Roles                 []RoleOption `json:"roles,omitempty"`
	AccessToken           string       `json:"access_token,omitempty"`
	RefreshToken          string       `json:"refresh_token,omitempty"`
}

// TokenPair is a freshly minted access and refresh token.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Profile is the current-session view returned by Me.
type Profile struct {
	UserID      int64        `json:"user_id"`
	Username    string       `json:"username"`
	Email       *string      `json:"email"`
	FullName    string       `json:"full_name"`
	CurrentRole RoleOption   `json:"current_role"`
	Roles       []RoleOption `json:"roles"`
}
