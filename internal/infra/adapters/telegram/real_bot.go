package telegram

import (
	"context"
	"errors"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"telegram-subscription-tracker/internal/config"
	"telegram-subscription-tracker/internal/dialogue"
	"telegram-subscription-tracker/internal/domain/ports/adapter"
	"telegram-subscription-tracker/internal/infra/metrics"
	red "telegram-subscription-tracker/internal/infra/redis"
	"telegram-subscription-tracker/internal/infra/worker"
	"telegram-subscription-tracker/internal/session"
)

var _ adapter.Messenger = (*RealTelegramBotAdapter)(nil)

// Dispatcher turns one inbound event into the response to show.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev session.Event) session.Response
}

const msgRateLimited = "session.rate_limited"

// RealTelegramBotAdapter polls updates with tgbotapi, hands them to the
// dispatcher on the worker pool and plays the responses back.
type RealTelegramBotAdapter struct {
	bot         *tgbotapi.BotAPI
	cfg         *config.BotConfig
	limits      config.RateLimitConfig
	dispatcher  Dispatcher
	rateLimiter *red.RateLimiter
	pool        *worker.Pool
	t           session.Translator
	log         *zerolog.Logger
}

func NewRealTelegramBotAdapter(
	cfg *config.BotConfig,
	limits config.RateLimitConfig,
	rateLimiter *red.RateLimiter,
	pool *worker.Pool,
	t session.Translator,
	logger *zerolog.Logger,
) (*RealTelegramBotAdapter, error) {
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}
	if pool == nil {
		return nil, errors.New("worker pool is nil")
	}
	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, err
	}
	l := logger.With().Str("component", "TelegramBot").Str("bot", bot.Self.UserName).Logger()
	return &RealTelegramBotAdapter{
		bot:         bot,
		cfg:         cfg,
		limits:      limits,
		rateLimiter: rateLimiter,
		pool:        pool,
		t:           t,
		log:         &l,
	}, nil
}

// SetDispatcher completes the wiring; the dispatcher's handlers need the
// adapter as their Messenger, so it cannot be a constructor argument.
func (r *RealTelegramBotAdapter) SetDispatcher(d Dispatcher) { r.dispatcher = d }

// SetMenuCommands publishes the slash commands shown in the client menu.
func (r *RealTelegramBotAdapter) SetMenuCommands(ctx context.Context) error {
	cmds := tgbotapi.NewSetMyCommands(
		tgbotapi.BotCommand{Command: strings.TrimPrefix(dialogue.CmdStart, "/"), Description: r.t.T("command.start")},
		tgbotapi.BotCommand{Command: strings.TrimPrefix(dialogue.CmdList, "/"), Description: r.t.T("command.list")},
		tgbotapi.BotCommand{Command: strings.TrimPrefix(dialogue.CmdCancel, "/"), Description: r.t.T("command.cancel")},
	)
	_, err := r.bot.Request(cmds)
	return err
}

// StartPolling blocks until ctx is done.
func (r *RealTelegramBotAdapter) StartPolling(ctx context.Context) error {
	if r.dispatcher == nil {
		return errors.New("dispatcher is not set")
	}
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := r.bot.GetUpdatesChan(u)
	defer r.bot.StopReceivingUpdates()

	r.log.Info().Msg("polling started")
	for {
		select {
		case <-ctx.Done():
			r.log.Info().Msg("polling stopped")
			return ctx.Err()
		case up, ok := <-updates:
			if !ok {
				return nil
			}
			ev, ok := EventFromUpdate(up)
			if !ok {
				continue
			}
			if err := r.pool.SubmitWait(ctx, func(ctx context.Context) error {
				return r.handleEvent(ctx, ev)
			}); err != nil {
				r.log.Warn().Err(err).Int("update_id", up.UpdateID).Msg("failed to queue update")
			}
		}
	}
}

func (r *RealTelegramBotAdapter) handleEvent(ctx context.Context, ev session.Event) error {
	metrics.IncTelegramCommand(commandLabel(ev))

	if allowed := r.allow(ctx, ev); !allowed {
		metrics.IncRateLimitTriggered()
		return session.Deliver(ctx, r, ev, session.Notice(r.t.T(msgRateLimited)))
	}

	resp := r.dispatcher.Dispatch(ctx, ev)
	return session.Deliver(ctx, r, ev, resp)
}

func (r *RealTelegramBotAdapter) allow(ctx context.Context, ev session.Event) bool {
	if r.rateLimiter == nil {
		return true
	}
	kind, limit := "message", r.limits.MessagesPerMinute
	if ev.IsCallback() {
		kind, limit = "callback", r.limits.CallbacksPerMinute
	}
	ok, err := r.rateLimiter.Allow(ctx, red.UserCommandKey(ev.UserID, kind), limit, time.Minute)
	if err != nil {
		r.log.Warn().Err(err).Int64("tg_id", ev.UserID).Msg("rate limiter unavailable")
		return true
	}
	return ok
}

// EventFromUpdate reduces an update to a session event. Updates that are
// neither a text message nor a callback query are skipped.
func EventFromUpdate(up tgbotapi.Update) (session.Event, bool) {
	if q := up.CallbackQuery; q != nil {
		if q.From == nil {
			return session.Event{}, false
		}
		ev := session.Event{
			Kind:       session.EventCallback,
			UserID:     q.From.ID,
			ChatID:     q.From.ID,
			FirstName:  q.From.FirstName,
			CallbackID: q.ID,
			Data:       strings.TrimSpace(q.Data),
		}
		if q.Message != nil {
			ev.MessageID = q.Message.MessageID
			if q.Message.Chat != nil {
				ev.ChatID = q.Message.Chat.ID
			}
		}
		return ev, true
	}

	m := up.Message
	if m == nil || m.From == nil || m.Chat == nil || m.Text == "" {
		return session.Event{}, false
	}
	return session.Event{
		Kind:      session.EventText,
		UserID:    m.From.ID,
		ChatID:    m.Chat.ID,
		FirstName: m.From.FirstName,
		MessageID: m.MessageID,
		Text:      m.Text,
	}, true
}

// commandLabel keeps the metric label set small: commands by name, the rest by kind.
func commandLabel(ev session.Event) string {
	if ev.IsCallback() {
		return "callback"
	}
	f := strings.Fields(ev.Text)
	if len(f) == 0 || !strings.HasPrefix(f[0], "/") {
		return "message"
	}
	cmd := f[0]
	if i := strings.IndexByte(cmd, '@'); i > 0 {
		cmd = cmd[:i]
	}
	if strings.HasPrefix(cmd, session.ViewLinkPrefix) {
		return session.ViewLinkPrefix
	}
	return cmd
}

// ---- adapter.Messenger ----

func (r *RealTelegramBotAdapter) SendMessage(ctx context.Context, chatID int64, text string, kb adapter.Keyboard) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	msg := tgbotapi.NewMessage(chatID, text)
	if len(kb) > 0 {
		msg.ReplyMarkup = toMarkup(kb)
	}
	sent, err := r.bot.Send(msg)
	if err != nil {
		metrics.IncTelegramSendError("send")
		return 0, err
	}
	return sent.MessageID, nil
}

// EditMessage replaces text and keyboard. A nil kb removes the keyboard.
func (r *RealTelegramBotAdapter) EditMessage(ctx context.Context, chatID int64, messageID int, text string, kb adapter.Keyboard) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var c tgbotapi.Chattable
	if len(kb) > 0 {
		c = tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, toMarkup(kb))
	} else {
		c = tgbotapi.NewEditMessageText(chatID, messageID, text)
	}
	return r.request("edit", c)
}

func (r *RealTelegramBotAdapter) EditKeyboard(ctx context.Context, chatID int64, messageID int, kb adapter.Keyboard) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.request("edit_keyboard", tgbotapi.NewEditMessageReplyMarkup(chatID, messageID, toMarkup(kb)))
}

func (r *RealTelegramBotAdapter) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.request("delete", tgbotapi.NewDeleteMessage(chatID, messageID))
}

func (r *RealTelegramBotAdapter) AnswerCallback(ctx context.Context, callbackID, text string, alert bool) error {
	if callbackID == "" {
		return nil
	}
	cb := tgbotapi.NewCallback(callbackID, text)
	if alert {
		cb = tgbotapi.NewCallbackWithAlert(callbackID, text)
	}
	return r.request("answer_callback", cb)
}

func (r *RealTelegramBotAdapter) request(op string, c tgbotapi.Chattable) error {
	if _, err := r.bot.Request(c); err != nil {
		if isNotModified(err) {
			return nil
		}
		metrics.IncTelegramSendError(op)
		return err
	}
	return nil
}

// isNotModified matches the error Telegram returns when an edit changes nothing.
func isNotModified(err error) bool {
	return err != nil && strings.Contains(err.Error(), "message is not modified")
}

// toMarkup converts a port keyboard. URL buttons open links, the rest send
// callback data; a button without either falls back to its label.
func toMarkup(kb adapter.Keyboard) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(kb))
	for _, row := range kb {
		if len(row) == 0 {
			continue
		}
		out := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			label := strings.TrimSpace(btn.Text)
			if label == "" {
				label = "•"
			}
			switch {
			case btn.URL != "":
				out = append(out, tgbotapi.NewInlineKeyboardButtonURL(label, btn.URL))
			case btn.Data != "":
				out = append(out, tgbotapi.NewInlineKeyboardButtonData(label, btn.Data))
			default:
				out = append(out, tgbotapi.NewInlineKeyboardButtonData(label, label))
			}
		}
		rows = append(rows, out)
	}
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}
