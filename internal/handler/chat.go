package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"fitcoach/internal/ai"
	"fitcoach/internal/model"
	"fitcoach/internal/pkg/ctxutil"
	"fitcoach/internal/service"
)

// User-facing rejection texts. The client renders these verbatim as an
// assistant bubble, so they are written in the coaching language.
const (
	msgLimitReached     = "오늘의 질문 한도에 도달했습니다. 내일 다시 시도해주세요."
	msgQuotaExceeded    = "AI 서비스 사용량이 초과되었습니다. 잠시 후 다시 시도해주세요."
	msgModelUnavailable = "AI 모델을 일시적으로 사용할 수 없습니다. 잠시 후 다시 시도해주세요."
)

// ChatHandler serves the conversation endpoints.
type ChatHandler struct {
	chatService *service.ChatService
}

// NewChatHandler creates the conversation handler.
func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// Generate handles one chat message.
// @Summary      Generate a coaching reply
// @Description  Sends one user message to the coach and returns the reply. Subject to the daily question cap.
// @Tags         chat
// @Accept       json
// @Produce      json
// @Param        request  body      model.GenerateRequest  true  "user id and message"
// @Success      200      {object}  model.GenerateResponse
// @Failure      400      {object}  model.ErrorResponse
// @Failure      429      {object}  model.ErrorResponse
// @Failure      503      {object}  model.ErrorResponse
// @Failure      500      {object}  model.ErrorResponse
// @Router       /api/v1/chat/generate [post]
func (h *ChatHandler) Generate(c *gin.Context) {
	var req model.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.UserID == "" || req.Message == "" {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Missing userId or message"})
		return
	}

	if !callerMayActFor(c, req.UserID) {
		c.JSON(http.StatusForbidden, model.ErrorResponse{Error: "Token does not match userId"})
		return
	}

	reply, err := h.chatService.Generate(c.Request.Context(), req.UserID, req.Message)
	if err != nil {
		writeChatError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.GenerateResponse{Response: reply})
}

// Stream handles one chat message with an SSE-streamed reply.
// @Summary      Stream a coaching reply
// @Description  Same contract as /chat/generate, with the reply streamed as SSE message events.
// @Tags         chat
// @Accept       json
// @Produce      text/event-stream
// @Param        request  body      model.GenerateRequest  true  "user id and message"
// @Success      200      {string}  string  "SSE stream"
// @Failure      400      {object}  model.ErrorResponse
// @Failure      429      {object}  model.ErrorResponse
// @Router       /api/v1/chat/stream [post]
func (h *ChatHandler) Stream(c *gin.Context) {
	var req model.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.UserID == "" || req.Message == "" {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Missing userId or message"})
		return
	}

	if !callerMayActFor(c, req.UserID) {
		c.JSON(http.StatusForbidden, model.ErrorResponse{Error: "Token does not match userId"})
		return
	}

	chunks, err := h.chatService.Stream(c.Request.Context(), req.UserID, req.Message)
	if err != nil {
		writeChatError(c, err)
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	c.Stream(func(w io.Writer) bool {
		chunk, ok := <-chunks
		if !ok {
			return false
		}
		switch {
		case chunk.Err != nil:
			// Detail stays in the logs; the client gets the generic text.
			log.Error().Err(chunk.Err).Str("path", c.Request.URL.Path).Msg("chat stream failed")
			c.SSEvent("error", gin.H{"error": "Internal server error"})
			return false
		case chunk.Done:
			c.SSEvent("done", gin.H{})
			return false
		default:
			c.SSEvent("message", gin.H{"content": chunk.Content})
			return true
		}
	})
}

// callerMayActFor allows anonymous callers (the chat endpoints are public)
// but rejects a token holder speaking for someone else.
func callerMayActFor(c *gin.Context, userID string) bool {
	authedID, ok := ctxutil.GetUserID(c.Request.Context())
	if !ok {
		return true
	}
	return authedID == userID
}

func writeChatError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrMissingFields):
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Missing userId or message"})
	case errors.Is(err, service.ErrDailyLimitReached):
		c.JSON(http.StatusTooManyRequests, model.ErrorResponse{
			Error:          msgLimitReached,
			IsLimitReached: true,
		})
	case errors.Is(err, ai.ErrQuotaExceeded):
		c.JSON(http.StatusServiceUnavailable, model.ErrorResponse{
			Error:        msgQuotaExceeded,
			IsQuotaError: true,
		})
	case errors.Is(err, ai.ErrModelUnavailable):
		c.JSON(http.StatusServiceUnavailable, model.ErrorResponse{
			Error:        msgModelUnavailable,
			IsModelError: true,
		})
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("chat request failed")
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Internal server error"})
	}
}
