package model

// GenerateRequest is the body of the conversation endpoint. Both fields are
// required; the handler rejects the request with 400 when either is blank.
type GenerateRequest struct {
	UserID  string `json:"userId"`
	Message string `json:"message"`
}

// DeleteUserRequest is the body of the admin delete endpoint.
type DeleteUserRequest struct {
	AdminID        string `json:"adminId"`
	UserIDToDelete string `json:"userIdToDelete"`
}
