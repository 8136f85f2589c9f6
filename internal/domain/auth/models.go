package auth

import "time"

// UserContext is the authenticated caller attached to a request.
type UserContext struct {
	UserID    string
	CompanyID string
	Role      string
}

type AuthUser struct {
	ID           string
	Email        string
	PasswordHash string
	CompanyID    string
	Role         string
}

type CurrentUser struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	CompanyID   string     `json:"companyId"`
	CompanyName string     `json:"companyName"`
	Role        string     `json:"role"`
	LastLogin   *time.Time `json:"lastLogin,omitempty"`
}

type LoginResult struct {
	Token string      `json:"token"`
	User  CurrentUser `json:"user"`
}
