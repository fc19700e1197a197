package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"fitcoach/internal/ai"
	"fitcoach/internal/config"
	"fitcoach/internal/model"
	"fitcoach/internal/pkg/cache"
	"fitcoach/internal/pkg/civildate"
)

var (
	// ErrMissingFields rejects a request without a user id or message.
	ErrMissingFields = errors.New("missing userId or message")

	// ErrDailyLimitReached rejects a message over the daily cap.
	ErrDailyLimitReached = errors.New("daily question limit reached")
)

// Oracle is the completion capability the chat flow depends on. Implemented
// by ai.Client; tests substitute fakes.
type Oracle interface {
	Complete(ctx context.Context, system string, history []model.Message) (string, error)
	Stream(ctx context.Context, system string, history []model.Message) (<-chan ai.StreamChunk, error)
}

// ConversationStore reads and merge-writes per-user conversations.
type ConversationStore interface {
	Find(ctx context.Context, userID string) (*model.Conversation, error)
	Save(ctx context.Context, userID string, messages []model.Message) error
}

// StatsStore reads and writes the per-user daily counters.
type StatsStore interface {
	Find(ctx context.Context, userID string) (*model.UserStats, error)
	Save(ctx context.Context, stats *model.UserStats) error
}

// ConversationCache invalidates cached conversation views after writes.
type ConversationCache interface {
	Delete(ctx context.Context, keys ...string) error
}

// ChatService runs the per-message coaching flow: usage-cap check, history
// read, completion call, history append and counter bump. It is stateless;
// every invocation stands alone.
//
// Concurrent requests for the same user race on both the counter and the
// conversation document (read-modify-write, last write wins). Known and
// accepted; see DESIGN.md.
type ChatService struct {
	oracle    Oracle
	convStore ConversationStore
	statsStor StatsStore
	cache     ConversationCache
	cfg       config.ChatConfig
	loc       *time.Location
}

// NewChatService wires the chat flow. cache may be nil.
func NewChatService(
	oracle Oracle,
	convStore ConversationStore,
	statsStore StatsStore,
	convCache ConversationCache,
	cfg config.ChatConfig,
) (*ChatService, error) {
	if oracle == nil {
		return nil, errors.New("chat service: oracle must not be nil")
	}
	if convStore == nil || statsStore == nil {
		return nil, errors.New("chat service: stores must not be nil")
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, err
	}

	return &ChatService{
		oracle:    oracle,
		convStore: convStore,
		statsStor: statsStore,
		cache:     convCache,
		cfg:       cfg,
		loc:       loc,
	}, nil
}

// Generate handles one user message and returns the assistant reply.
//
// Nothing is persisted until the completion call has succeeded: a failed
// call leaves the conversation and the counter exactly as they were, and no
// step is ever retried.
func (s *ChatService) Generate(ctx context.Context, userID, message string) (string, error) {
	if userID == "" || message == "" {
		return "", ErrMissingFields
	}

	window, conv, stats, err := s.prepare(ctx, userID, message)
	if err != nil {
		return "", err
	}

	reply, err := s.oracle.Complete(ctx, s.cfg.SystemPrompt, window)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("completion failed")
		return "", err
	}
	if reply == "" {
		reply = s.cfg.FallbackReply
	}

	if err := s.persistExchange(ctx, userID, conv, stats, reply); err != nil {
		return "", err
	}

	return reply, nil
}

// Stream handles one user message with a streamed reply. Pre-checks are
// identical to Generate; the concatenation of all content chunks is what
// gets persisted, after the stream has completed cleanly.
func (s *ChatService) Stream(ctx context.Context, userID, message string) (<-chan ai.StreamChunk, error) {
	if userID == "" || message == "" {
		return nil, ErrMissingFields
	}

	window, conv, stats, err := s.prepare(ctx, userID, message)
	if err != nil {
		return nil, err
	}

	upstream, err := s.oracle.Stream(ctx, s.cfg.SystemPrompt, window)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("streaming completion failed")
		return nil, err
	}

	out := make(chan ai.StreamChunk, 8)
	go func() {
		defer close(out)

		var reply []byte
		for chunk := range upstream {
			if chunk.Err != nil {
				log.Error().Err(chunk.Err).Str("user_id", userID).Msg("stream aborted")
				out <- chunk
				return
			}
			if chunk.Done {
				full := string(reply)
				if full == "" {
					full = s.cfg.FallbackReply
					out <- ai.StreamChunk{Content: full}
				}
				// The request context may already be cancelled once the
				// client has the full reply; save with a fresh context.
				if err := s.persistExchange(context.Background(), userID, conv, stats, full); err != nil {
					out <- ai.StreamChunk{Err: err}
					return
				}
				out <- chunk
				return
			}
			reply = append(reply, chunk.Content...)
			out <- chunk
		}
	}()

	return out, nil
}

// prepare runs the shared pre-completion steps: cap check, conversation
// read, in-memory user-message append and window build. Nothing is written.
func (s *ChatService) prepare(ctx context.Context, userID, message string) ([]model.Message, *model.Conversation, *model.UserStats, error) {
	today := civildate.Today(s.loc)

	stats, err := s.statsStor.Find(ctx, userID)
	if err != nil {
		return nil, nil, nil, err
	}

	// Lazy reset: a stale day label means an effective count of zero, but
	// the stored document is left untouched until a message is accepted.
	effective := 0
	if stats != nil && stats.LastQuestionDate == today {
		effective = stats.DailyQuestionCount
	}
	if effective >= s.cfg.DailyLimit {
		return nil, nil, nil, ErrDailyLimitReached
	}

	conv, err := s.convStore.Find(ctx, userID)
	if err != nil {
		return nil, nil, nil, err
	}

	conv.Messages = append(conv.Messages, model.Message{
		Role:      model.RoleUser,
		Content:   message,
		Timestamp: time.Now(),
	})

	window := conv.Messages
	if len(window) > s.cfg.HistoryWindow {
		window = window[len(window)-s.cfg.HistoryWindow:]
	}

	next := &model.UserStats{
		UserID:             userID,
		LastQuestionDate:   today,
		DailyQuestionCount: effective + 1,
	}

	return window, conv, next, nil
}

// persistExchange appends the assistant reply and writes conversation then
// counter. Non-transactional; a failure between the two writes surfaces to
// the caller without compensation.
func (s *ChatService) persistExchange(ctx context.Context, userID string, conv *model.Conversation, stats *model.UserStats, reply string) error {
	conv.Messages = append(conv.Messages, model.Message{
		Role:      model.RoleAssistant,
		Content:   reply,
		Timestamp: time.Now(),
	})

	if err := s.convStore.Save(ctx, userID, conv.Messages); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("failed to save conversation")
		return err
	}

	if err := s.statsStor.Save(ctx, stats); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("failed to save usage counter")
		return err
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, cache.ConversationKey(userID)); err != nil {
			// Stale cache only affects the admin view; not worth failing
			// the exchange over.
			log.Warn().Err(err).Str("user_id", userID).Msg("failed to invalidate conversation cache")
		}
	}

	log.Info().
		Str("user_id", userID).
		Int("daily_count", stats.DailyQuestionCount).
		Int("history_len", len(conv.Messages)).
		Msg("exchange completed")

	return nil
}
