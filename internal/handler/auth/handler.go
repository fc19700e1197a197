package auth

import (
	"fitcoach/internal/service"
)

// Handler serves the auth endpoints. Every method goes through the
// AuthService; no persistence is touched here.
type Handler struct {
	authService *service.AuthService
}

// NewHandler creates the auth handler.
func NewHandler(authService *service.AuthService) *Handler {
	return &Handler{
		authService: authService,
	}
}
