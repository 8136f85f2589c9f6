package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
)

type Service struct {
	Store    StoreAPI
	Secret   string
	TokenTTL time.Duration
}

func NewService(store StoreAPI, secret string, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	return &Service{Store: store, Secret: secret, TokenTTL: ttl}
}

// Login checks the password and issues a token bound to the user's company membership.
func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	user, err := s.Store.FindActiveUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}
	if err := CheckPassword(user.PasswordHash, password); err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}
	if user.CompanyID == "" || !CanRead(user.Role) {
		return LoginResult{}, ErrNoMembership
	}

	token, err := GenerateToken(s.Secret, Claims{UserID: user.ID, CompanyID: user.CompanyID, Role: user.Role}, s.TokenTTL)
	if err != nil {
		return LoginResult{}, err
	}
	if err := s.Store.UpdateLastLogin(ctx, user.ID); err != nil {
		slog.Warn("update last_login failed", "userId", user.ID, "err", err)
	}
	return LoginResult{
		Token: token,
		User:  CurrentUser{ID: user.ID, Email: user.Email, CompanyID: user.CompanyID, Role: user.Role},
	}, nil
}

// CurrentUser returns the caller, or ErrUserNotFound once the membership is gone.
func (s *Service) CurrentUser(ctx context.Context, user UserContext) (CurrentUser, error) {
	return s.Store.CurrentUser(ctx, user.UserID, user.CompanyID)
}
