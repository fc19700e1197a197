package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// LogoutRequest is the logout body.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Logout revokes a refresh token.
// @Summary      Log out
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      LogoutRequest  true  "logout request"
// @Success      200      {object}  map[string]interface{}
// @Failure      400      {object}  ErrorResponse
// @Router       /api/v1/auth/logout [post]
func (h *Handler) Logout(c *gin.Context) {
	var req LogoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "Invalid request body",
			Detail:  err.Error(),
		})
		return
	}

	// Revoking an already-revoked token is not an error.
	_ = h.authService.Logout(c.Request.Context(), req.RefreshToken)

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "logged out",
	})
}
