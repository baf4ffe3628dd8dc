package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/gatewarden/gatewarden/internal/shared"
)

// Repository defines the persistence surface the session engine needs.
type Repository interface {
	FindCredentialByUsername(ctx context.Context, username string) (Credential, error)
	FindCredentialByID(ctx context.Context, userID int64) (Credential, error)
	ListRoleOptions(ctx context.Context, userID int64) ([]RoleOption, error)
	FindRoleOption(ctx context.Context, userID, roleID int64) (RoleOption, error)
	SaveRefreshToken(ctx context.Context, userID int64, token string, expiresAt time.Time) error
	FindRefreshToken(ctx context.Context, userID int64, token string) (RefreshToken, error)
	DeleteRefreshToken(ctx context.Context, token string) error
	DeleteExpiredRefreshTokens(ctx context.Context) (int64, error)
}

// Service implements login, role selection, token refresh and logout.
type Service struct {
	repo   Repository
	tokens *TokenManager
}

// NewService builds a Service instance.
func NewService(repo Repository, tokens *TokenManager) *Service {
	return &Service{repo: repo, tokens: tokens}
}

// Login verifies credentials and resolves the role to embed in the session.
// Unknown user, wrong password and inactive account all collapse into the
// same Unauthorized so callers cannot probe which usernames exist. One role
// mints a token pair; several return the candidate set without tokens.
func (s *Service) Login(ctx context.Context, username, password string) (LoginResult, error) {
	cred, err := s.repo.FindCredentialByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return LoginResult{}, fmt.Errorf("%w: invalid username or password", shared.ErrUnauthorized)
		}
		return LoginResult{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)) != nil {
		return LoginResult{}, fmt.Errorf("%w: invalid username or password", shared.ErrUnauthorized)
	}
	if cred.Status != "active" {
		return LoginResult{}, fmt.Errorf("%w: invalid username or password", shared.ErrUnauthorized)
	}

	options, err := s.repo.ListRoleOptions(ctx, cred.UserID)
	if err != nil {
		return LoginResult{}, err
	}
	switch len(options) {
	case 0:
		return LoginResult{}, fmt.Errorf("%w: no roles assigned to this account", shared.ErrForbidden)
	case 1:
		pair, err := s.mint(ctx, cred, options[0])
		if err != nil {
			return LoginResult{}, err
		}
		return LoginResult{
			UserID:       cred.UserID,
			AccessToken:  pair.AccessToken,
			RefreshToken: pair.RefreshToken,
		}, nil
	default:
		return LoginResult{
			RequiresRoleSelection: true,
			UserID:                cred.UserID,
			Roles:                 options,
		}, nil
	}
}

// SelectRole completes a multi-role login by minting a token pair for a
// role the user actually holds.
func (s *Service) SelectRole(ctx context.Context, userID, roleID int64) (TokenPair, error) {
	cred, err := s.repo.FindCredentialByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return TokenPair{}, fmt.Errorf("%w: user not found", shared.ErrUnauthorized)
		}
		return TokenPair{}, err
	}
	option, err := s.repo.FindRoleOption(ctx, userID, roleID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return TokenPair{}, fmt.Errorf("%w: role is not assigned to this user", shared.ErrForbidden)
		}
		return TokenPair{}, err
	}
	return s.mint(ctx, cred, option)
}

// Refresh exchanges a valid persisted refresh token for a new access token.
// The refresh token itself is not rotated. An expired record is deleted on
// sight so it can never be presented again.
func (s *Service) Refresh(ctx context.Context, raw string) (string, error) {
	if raw == "" {
		return "", fmt.Errorf("%w: refresh token is required", shared.ErrBadRequest)
	}
	claims, err := s.tokens.VerifyRefresh(raw)
	if err != nil {
		return "", err
	}
	record, err := s.repo.FindRefreshToken(ctx, claims.UserID, raw)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return "", fmt.Errorf("%w: refresh token not recognized", shared.ErrUnauthorized)
		}
		return "", err
	}
	if time.Now().After(record.ExpiresAt) {
		if err := s.repo.DeleteRefreshToken(ctx, raw); err != nil {
			return "", err
		}
		return "", fmt.Errorf("%w: refresh token expired", shared.ErrUnauthorized)
	}

	cred, err := s.repo.FindCredentialByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return "", fmt.Errorf("%w: user not found", shared.ErrUnauthorized)
		}
		return "", err
	}
	role, err := s.defaultRole(ctx, claims.UserID)
	if err != nil {
		return "", err
	}
	return s.tokens.MintAccess(cred.UserID, cred.Username, role.RoleID, role.RoleName)
}

// Logout discards a persisted refresh token. Unknown tokens are not an
// error; logout always succeeds.
func (s *Service) Logout(ctx context.Context, raw string) error {
	if raw == "" {
		return nil
	}
	return s.repo.DeleteRefreshToken(ctx, raw)
}

// Me returns the profile for the authenticated principal, including every
// held role and the role the current token is scoped to.
func (s *Service) Me(ctx context.Context, principal *shared.Principal) (Profile, error) {
	cred, err := s.repo.FindCredentialByID(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return Profile{}, fmt.Errorf("%w: user not found", shared.ErrUnauthorized)
		}
		return Profile{}, err
	}
	options, err := s.repo.ListRoleOptions(ctx, principal.UserID)
	if err != nil {
		return Profile{}, err
	}
	current := RoleOption{RoleID: principal.RoleID, RoleName: principal.RoleName}
	for _, o := range options {
		if o.RoleID == principal.RoleID {
			current = o
			break
		}
	}
	return Profile{
		UserID:      cred.UserID,
		Username:    cred.Username,
		Email:       cred.Email,
		FullName:    cred.FullName,
		CurrentRole: current,
		Roles:       options,
	}, nil
}

// PurgeExpiredTokens deletes every refresh token past its expiry.
func (s *Service) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpiredRefreshTokens(ctx)
}

func (s *Service) mint(ctx context.Context, cred Credential, role RoleOption) (TokenPair, error) {
	access, err := s.tokens.MintAccess(cred.UserID, cred.Username, role.RoleID, role.RoleName)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, expiresAt, err := s.tokens.MintRefresh(cred.UserID)
	if err != nil {
		return TokenPair{}, err
	}
	if err := s.repo.SaveRefreshToken(ctx, cred.UserID, refresh, expiresAt); err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *Service) defaultRole(ctx context.Context, userID int64) (RoleOption, error) {
	options, err := s.repo.ListRoleOptions(ctx, userID)
	if err != nil {
		return RoleOption{}, err
	}
	for _, o := range options {
		if o.IsDefault {
			return o, nil
		}
	}
	return RoleOption{}, fmt.Errorf("%w: no default role configured for this user", shared.ErrNotFound)
}
