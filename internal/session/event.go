// Package session routes inbound chat events to dialogue handlers and
// describes the replies they produce.
package session

import (
	"context"

	"telegram-subscription-tracker/internal/domain/ports/adapter"
)

type EventKind int

const (
	EventText EventKind = iota
	EventCallback
)

func (k EventKind) String() string {
	if k == EventCallback {
		return "callback"
	}
	return "text"
}

// Event is one inbound update reduced to what handlers need.
type Event struct {
	ID         string // ULID assigned on dispatch
	Kind       EventKind
	UserID     int64
	ChatID     int64
	FirstName  string
	MessageID  int    // the text message, or the message carrying the tapped keyboard
	CallbackID string // callbacks only
	Data       string // callback token
	Text       string
}

func (e Event) IsCallback() bool { return e.Kind == EventCallback }

type ResponseKind int

const (
	// ResponseNone sends nothing besides Notice and Delete.
	ResponseNone ResponseKind = iota
	ResponseSend
	ResponseEdit
	ResponseEditKeyboard
)

// Response is what a handler wants shown. Delete runs first, then the
// Send/Edit, then the notice.
type Response struct {
	Kind      ResponseKind
	Text      string
	Keyboard  adapter.Keyboard
	MessageID int // target of Edit and EditKeyboard

	Notice string // callback toast, or a plain message for text events
	Alert  bool

	Delete []int
}

func Send(text string, kb adapter.Keyboard) Response {
	return Response{Kind: ResponseSend, Text: text, Keyboard: kb}
}

func Edit(messageID int, text string, kb adapter.Keyboard) Response {
	return Response{Kind: ResponseEdit, MessageID: messageID, Text: text, Keyboard: kb}
}

func EditKeyboard(messageID int, kb adapter.Keyboard) Response {
	return Response{Kind: ResponseEditKeyboard, MessageID: messageID, Keyboard: kb}
}

func Notice(text string) Response { return Response{Notice: text} }

func Alert(text string) Response { return Response{Notice: text, Alert: true} }

// WithNotice returns a copy of r carrying a notice.
func (r Response) WithNotice(text string) Response {
	r.Notice = text
	return r
}

// WithDelete returns a copy of r that first deletes the given messages.
// Zero ids are skipped.
func (r Response) WithDelete(ids ...int) Response {
	for _, id := range ids {
		if id != 0 {
			r.Delete = append(r.Delete, id)
		}
	}
	return r
}

// Deliver plays a Response through the messenger. Callbacks are always
// answered so the client stops its spinner, even when a step failed.
func Deliver(ctx context.Context, m adapter.Messenger, ev Event, r Response) error {
	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	for _, id := range r.Delete {
		keep(m.DeleteMessage(ctx, ev.ChatID, id))
	}

	switch r.Kind {
	case ResponseSend:
		_, err := m.SendMessage(ctx, ev.ChatID, r.Text, r.Keyboard)
		keep(err)
	case ResponseEdit:
		keep(m.EditMessage(ctx, ev.ChatID, r.MessageID, r.Text, r.Keyboard))
	case ResponseEditKeyboard:
		keep(m.EditKeyboard(ctx, ev.ChatID, r.MessageID, r.Keyboard))
	}

	if ev.IsCallback() {
		keep(m.AnswerCallback(ctx, ev.CallbackID, r.Notice, r.Alert))
	} else if r.Notice != "" {
		_, err := m.SendMessage(ctx, ev.ChatID, r.Notice, nil)
		keep(err)
	}
	return firstErr
}
