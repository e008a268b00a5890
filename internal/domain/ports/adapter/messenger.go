package adapter

import "context"

type InlineButton struct {
	Text string
	Data string
	URL  string
}

// Keyboard is an inline keyboard, one slice per row.
type Keyboard [][]InlineButton

// Messenger is the outbound side of the chat transport.
type Messenger interface {
	// SendMessage posts a new message and returns its id.
	SendMessage(ctx context.Context, chatID int64, text string, kb Keyboard) (int, error)
	EditMessage(ctx context.Context, chatID int64, messageID int, text string, kb Keyboard) error
	// EditKeyboard replaces only the inline keyboard of a message.
	EditKeyboard(ctx context.Context, chatID int64, messageID int, kb Keyboard) error
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
	AnswerCallback(ctx context.Context, callbackID, text string, alert bool) error
}
