package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"fitcoach/internal/model"
	"fitcoach/internal/service"
)

// AdminHandler serves the admin panel endpoints.
type AdminHandler struct {
	adminService *service.AdminService
}

// NewAdminHandler creates the admin handler.
func NewAdminHandler(adminService *service.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// ListUsers returns every registered user.
// @Summary      List users
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  model.UserListResponse
// @Failure      500  {object}  model.ErrorResponse
// @Router       /api/v1/admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.adminService.ListUsers(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list users")
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, model.UserListResponse{
		Users: users,
		Total: len(users),
	})
}

// GetConversation returns one user's message history verbatim.
// @Summary      View a user's conversation
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "user id"
// @Success      200  {object}  model.ConversationResponse
// @Failure      500  {object}  model.ErrorResponse
// @Router       /api/v1/admin/users/{id}/conversation [get]
func (h *AdminHandler) GetConversation(c *gin.Context) {
	userID := c.Param("id")

	messages, err := h.adminService.GetConversation(c.Request.Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("failed to load conversation")
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, model.ConversationResponse{
		UserID:   userID,
		Messages: messages,
	})
}

// DeleteUser removes a user and every document keyed by their id. The
// acting admin comes from the request body and is re-verified against the
// marker collection regardless of middleware.
// @Summary      Delete a user
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        request  body      model.DeleteUserRequest  true  "acting admin and deletion target"
// @Success      200      {object}  model.MessageResponse
// @Failure      400      {object}  model.ErrorResponse
// @Failure      403      {object}  model.ErrorResponse
// @Failure      500      {object}  model.ErrorResponse
// @Router       /api/v1/admin/users [delete]
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	var req model.DeleteUserRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.AdminID == "" || req.UserIDToDelete == "" {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Missing adminId or userIdToDelete"})
		return
	}

	err := h.adminService.DeleteUser(c.Request.Context(), req.AdminID, req.UserIDToDelete)
	if err != nil {
		var stepErr *service.DeleteUserError
		switch {
		case errors.Is(err, service.ErrUnauthorized):
			c.JSON(http.StatusForbidden, model.ErrorResponse{Error: "Unauthorized"})
		case errors.As(err, &stepErr):
			// Partial failure: earlier steps already took effect.
			log.Error().Err(err).
				Str("admin_id", req.AdminID).
				Str("user_id", req.UserIDToDelete).
				Str("failed_step", stepErr.Step).
				Msg("user deletion failed mid-sequence")
			c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Internal server error"})
		default:
			log.Error().Err(err).Str("user_id", req.UserIDToDelete).Msg("user deletion failed")
			c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, model.MessageResponse{Message: "User deleted successfully"})
}
