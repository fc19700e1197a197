package model

import (
	"time"
)

// Message roles. Only these two roles ever appear in a conversation; the
// system prompt is injected at call time and never stored.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single utterance in a conversation. Immutable once appended.
type Message struct {
	Role      string    `bson:"role" json:"role"`
	Content   string    `bson:"content" json:"content"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

// Conversation holds the full message history of one user. There is exactly
// one document per user, keyed by the user id. It grows without bound in
// storage; only a bounded tail is ever read into a completion call.
type Conversation struct {
	UserID      string    `bson:"_id" json:"userId"`
	Messages    []Message `bson:"messages" json:"messages"`
	LastUpdated time.Time `bson:"last_updated" json:"lastUpdated"`
}

// UserStats is the per-user daily usage counter. LastQuestionDate is a civil
// date label ("2006-01-02") in the configured fixed timezone; when it differs
// from today the count is treated as zero without being rewritten.
type UserStats struct {
	UserID             string `bson:"_id" json:"userId"`
	LastQuestionDate   string `bson:"lastQuestionDate" json:"lastQuestionDate"`
	DailyQuestionCount int    `bson:"dailyQuestionCount" json:"dailyQuestionCount"`
}

// AdminMarker grants administrator privilege by its mere presence. Written
// only by the make-admin provisioning command, never by request flow.
type AdminMarker struct {
	UserID  string    `bson:"_id" json:"userId"`
	Email   string    `bson:"email" json:"email"`
	Role    string    `bson:"role" json:"role"`
	AddedAt time.Time `bson:"addedAt" json:"addedAt"`
	AddedBy string    `bson:"addedBy" json:"addedBy"`
}

// UserProfile is the mirror document written at registration and read by the
// admin user listing. The identity record itself lives in the accounts
// collection and is owned by the auth service.
type UserProfile struct {
	UserID    string    `bson:"_id" json:"id"`
	Email     string    `bson:"email" json:"email"`
	Name      string    `bson:"name" json:"name"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}
