package auth

import (
	"time"

	"fitcoach/internal/model/auth"
)

// ErrorResponse is the error body shared by the auth endpoints.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// UserInfo is the account shape returned to clients.
type UserInfo struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	LastLoginAt string `json:"last_login_at,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
}

func toUserInfo(user *auth.User) UserInfo {
	info := UserInfo{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
	}

	if user.LastLoginAt != nil {
		info.LastLoginAt = user.LastLoginAt.Format(time.RFC3339)
	}
	info.CreatedAt = user.CreatedAt.Format(time.RFC3339)

	return info
}
