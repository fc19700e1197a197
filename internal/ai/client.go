package ai

import (
	"context"
	"errors"
	"io"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"fitcoach/internal/ai/component"
	"fitcoach/internal/config"
	"fitcoach/internal/model"
)

// Client is the completion capability layer. It owns the chat model handle
// and translates between stored messages and the model wire format; it never
// sees rate limits, counters or persistence.
type Client struct {
	cfg       *config.AIConfig
	chatModel einomodel.ChatModel
}

// NewClient creates the client for the configured provider.
func NewClient(ctx context.Context, cfg *config.AIConfig) (*Client, error) {
	chatModel, err := component.NewChatModel(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return &Client{
		cfg:       cfg,
		chatModel: chatModel,
	}, nil
}

// StreamChunk is one piece of a streaming completion.
type StreamChunk struct {
	Content string
	Done    bool
	Err     error
}

// Complete runs one completion over the system instruction and the bounded
// history window. Returns the generated text; failures are classified into
// ErrQuotaExceeded / ErrModelUnavailable where recognizable.
func (c *Client) Complete(ctx context.Context, system string, history []model.Message) (string, error) {
	out, err := c.chatModel.Generate(ctx, toSchemaMessages(system, history))
	if err != nil {
		return "", classify(err)
	}
	return out.Content, nil
}

// Stream runs one streaming completion. The returned channel is closed after
// the Done (or Err) chunk.
func (c *Client) Stream(ctx context.Context, system string, history []model.Message) (<-chan StreamChunk, error) {
	reader, err := c.chatModel.Stream(ctx, toSchemaMessages(system, history))
	if err != nil {
		return nil, classify(err)
	}

	ch := make(chan StreamChunk, 8)
	go func() {
		defer close(ch)
		defer reader.Close()

		for {
			chunk, err := reader.Recv()
			if err != nil {
				if errors.Is(err, io.EOF) {
					ch <- StreamChunk{Done: true}
				} else {
					ch <- StreamChunk{Err: classify(err)}
				}
				return
			}

			select {
			case <-ctx.Done():
				ch <- StreamChunk{Err: ctx.Err()}
				return
			case ch <- StreamChunk{Content: chunk.Content}:
			}
		}
	}()

	return ch, nil
}

func toSchemaMessages(system string, history []model.Message) []*schema.Message {
	msgs := make([]*schema.Message, 0, len(history)+1)
	msgs = append(msgs, schema.SystemMessage(system))

	for _, m := range history {
		switch m.Role {
		case model.RoleAssistant:
			msgs = append(msgs, schema.AssistantMessage(m.Content, nil))
		default:
			msgs = append(msgs, schema.UserMessage(m.Content))
		}
	}

	return msgs
}
