package model

// GenerateResponse is the success body of the conversation endpoint.
type GenerateResponse struct {
	Response string `json:"response"`
}

// ErrorResponse is the error body shared by the chat and admin endpoints.
// The boolean flags are machine-checkable so the client can branch without
// parsing the message text.
type ErrorResponse struct {
	Error          string `json:"error"`
	IsLimitReached bool   `json:"isLimitReached,omitempty"`
	IsQuotaError   bool   `json:"isQuotaError,omitempty"`
	IsModelError   bool   `json:"isModelError,omitempty"`
}

// MessageResponse is a generic success body carrying a human-readable note.
type MessageResponse struct {
	Message string `json:"message"`
}

// ConversationResponse is the admin view of one user's message history.
type ConversationResponse struct {
	UserID   string    `json:"userId"`
	Messages []Message `json:"messages"`
}

// UserListResponse is the admin user listing.
type UserListResponse struct {
	Users []*UserProfile `json:"users"`
	Total int            `json:"total"`
}
