package dialogue

import (
	"context"

	"telegram-subscription-tracker/internal/session"
)

func (h *Handlers) start(ctx context.Context, ev session.Event) (session.Response, error) {
	if err := h.store.EndDialogue(ctx, ev.UserID); err != nil {
		return session.Response{}, err
	}
	u, err := h.owner(ctx, ev)
	if err != nil {
		return session.Response{}, err
	}
	return session.Send(h.welcome(u.FirstName), h.mainMenu()), nil
}

func (h *Handlers) listCommand(ctx context.Context, ev session.Event) (session.Response, error) {
	u, err := h.owner(ctx, ev)
	if err != nil {
		return session.Response{}, err
	}
	return h.renderPage(ctx, ev, u, 0, false)
}

func (h *Handlers) cancelCommand(ctx context.Context, ev session.Event) (session.Response, error) {
	if err := h.store.EndDialogue(ctx, ev.UserID); err != nil {
		return session.Response{}, err
	}
	return session.Send(h.t.T("dialogue.cancelled"), h.mainMenu()), nil
}

// viewLink opens the record behind a /view_<token> deep link. The message the
// link came from, if the token names one, is removed along with the command.
func (h *Handlers) viewLink(ctx context.Context, ev session.Event) (session.Response, error) {
	m := viewLinkRe.FindStringSubmatch(ev.Text)
	if m == nil {
		return session.Response{}, badToken(ev.Text, "view link")
	}
	id, page, msgID, err := h.codec.Decode(m[1])
	if err != nil {
		return session.Response{}, err
	}
	if id == 0 {
		return session.Response{}, badToken(ev.Text, "record id")
	}
	resp, err := h.detailResponse(ctx, ev, id, page, false)
	if err != nil {
		return session.Response{}, err
	}
	return resp.WithDelete(msgID, ev.MessageID), nil
}

// Unrecognized answers free text that no command or step claims.
func (h *Handlers) Unrecognized(_ context.Context, _ session.Event) (session.Response, error) {
	return session.Send(h.t.T("session.unrecognized"), h.mainMenu()), nil
}
