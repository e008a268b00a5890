package telegram

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog"

	"telegram-subscription-tracker/internal/domain/ports/adapter"
)

var _ adapter.Messenger = (*NoopBotAdapter)(nil)

// NoopBotAdapter implements adapter.Messenger for local/dev runs without a
// bot token. It logs outgoing traffic instead of calling Telegram.
type NoopBotAdapter struct {
	lastID atomic.Int64
	log    *zerolog.Logger
}

func NewNoopBotAdapter(logger *zerolog.Logger) *NoopBotAdapter {
	l := logger.With().Str("component", "NoopBot").Logger()
	return &NoopBotAdapter{log: &l}
}

func (b *NoopBotAdapter) SendMessage(ctx context.Context, chatID int64, text string, kb adapter.Keyboard) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	id := int(b.lastID.Add(1))
	b.log.Info().Int64("chat_id", chatID).Int("message_id", id).Int("rows", len(kb)).Str("text", text).Msg("send")
	return id, nil
}

func (b *NoopBotAdapter) EditMessage(ctx context.Context, chatID int64, messageID int, text string, kb adapter.Keyboard) error {
	b.log.Info().Int64("chat_id", chatID).Int("message_id", messageID).Int("rows", len(kb)).Str("text", text).Msg("edit")
	return ctx.Err()
}

func (b *NoopBotAdapter) EditKeyboard(ctx context.Context, chatID int64, messageID int, kb adapter.Keyboard) error {
	b.log.Info().Int64("chat_id", chatID).Int("message_id", messageID).Int("rows", len(kb)).Msg("edit keyboard")
	return ctx.Err()
}

func (b *NoopBotAdapter) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	b.log.Info().Int64("chat_id", chatID).Int("message_id", messageID).Msg("delete")
	return ctx.Err()
}

func (b *NoopBotAdapter) AnswerCallback(ctx context.Context, callbackID, text string, alert bool) error {
	b.log.Debug().Str("callback_id", callbackID).Str("text", text).Bool("alert", alert).Msg("answer callback")
	return nil
}
