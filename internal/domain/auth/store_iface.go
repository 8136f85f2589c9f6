package auth

import "context"

type StoreAPI interface {
	FindActiveUserByEmail(ctx context.Context, email string) (AuthUser, error)
	UpdateLastLogin(ctx context.Context, userID string) error
	CurrentUser(ctx context.Context, userID, companyID string) (CurrentUser, error)
}
