package dialogue

import (
	"context"

	"telegram-subscription-tracker/internal/domain/model"
	"telegram-subscription-tracker/internal/domain/ports/adapter"
	"telegram-subscription-tracker/internal/session"
)

func badToken(token, reason string) error {
	return &session.TokenError{Token: token, Reason: reason}
}

// activeDraft returns the draft when a dialogue is running and event may fire
// in its state. Buttons left over from an ended dialogue get ok == false.
func (h *Handlers) activeDraft(ctx context.Context, ev session.Event, event string) (*model.RecordDraft, bool, error) {
	st, found, err := h.store.GetState(ctx, ev.UserID)
	if err != nil {
		return nil, false, err
	}
	if !found || !h.machine.Can(st, event) {
		return nil, false, nil
	}
	return h.loadDraft(ctx, ev.UserID)
}

func (h *Handlers) menu(ctx context.Context, ev session.Event) (session.Response, error) {
	if err := h.store.EndDialogue(ctx, ev.UserID); err != nil {
		return session.Response{}, err
	}
	return session.Edit(ev.MessageID, h.welcome(ev.FirstName), h.mainMenu()), nil
}

func (h *Handlers) add(ctx context.Context, ev session.Event) (session.Response, error) {
	d := &model.RecordDraft{Subscription: model.NewSubscriptionDraft(), MessageID: ev.MessageID}
	if err := h.commit(ctx, ev.UserID, d, session.EvStart); err != nil {
		return session.Response{}, err
	}
	return session.Edit(ev.MessageID, h.t.T("prompt.name"), h.backToMenu()), nil
}

func (h *Handlers) restart(ctx context.Context, ev session.Event) (session.Response, error) {
	if _, ok, err := h.activeDraft(ctx, ev, session.EvRestart); err != nil {
		return session.Response{}, err
	} else if !ok {
		return h.expired(ctx, ev)
	}
	d := &model.RecordDraft{Subscription: model.NewSubscriptionDraft(), MessageID: ev.MessageID}
	if err := h.commit(ctx, ev.UserID, d, session.EvRestart); err != nil {
		return session.Response{}, err
	}
	return session.Edit(ev.MessageID, h.t.T("prompt.name"), h.backToMenu()).
		WithNotice(h.t.T("dialogue.restarted")), nil
}

// editMenu shows the summary with the field buttons.
func (h *Handlers) editMenu(ctx context.Context, ev session.Event) (session.Response, error) {
	return h.resummarize(ctx, ev, h.draftEditKeyboard)
}

func (h *Handlers) backToConfirmation(ctx context.Context, ev session.Event) (session.Response, error) {
	return h.resummarize(ctx, ev, h.summaryKeyboard)
}

func (h *Handlers) resummarize(ctx context.Context, ev session.Event, kb func(*model.RecordDraft) adapter.Keyboard) (session.Response, error) {
	d, ok, err := h.activeDraft(ctx, ev, session.EvFieldUpdated)
	if err != nil {
		return session.Response{}, err
	}
	if !ok {
		return h.expired(ctx, ev)
	}
	d.MessageID = ev.MessageID
	if err := h.commit(ctx, ev.UserID, d, session.EvFieldUpdated); err != nil {
		return session.Response{}, err
	}
	return session.Edit(ev.MessageID, h.summary(d), kb(d)), nil
}

// fieldEdit moves to a text-input state for one field and prompts for it.
func (h *Handlers) fieldEdit(event, promptKey string) session.HandlerFunc {
	return func(ctx context.Context, ev session.Event) (session.Response, error) {
		d, ok, err := h.activeDraft(ctx, ev, event)
		if err != nil {
			return session.Response{}, err
		}
		if !ok {
			return h.expired(ctx, ev)
		}
		d.MessageID = ev.MessageID
		if err := h.commit(ctx, ev.UserID, d, event); err != nil {
			return session.Response{}, err
		}
		return session.Edit(ev.MessageID, h.t.T(promptKey), h.backToEdit()), nil
	}
}

func (h *Handlers) dateEdit(ctx context.Context, ev session.Event) (session.Response, error) {
	d, ok, err := h.activeDraft(ctx, ev, session.EvEditDate)
	if err != nil {
		return session.Response{}, err
	}
	if !ok {
		return h.expired(ctx, ev)
	}
	d.MessageID = ev.MessageID
	if err := h.commit(ctx, ev.UserID, d, session.EvEditDate); err != nil {
		return session.Response{}, err
	}
	return session.Edit(ev.MessageID, h.t.T("prompt.new_date"), h.dateCalendar(d, CbBackToEdit)), nil
}

// periodEdit offers the common periods; the state changes only once one is picked.
func (h *Handlers) periodEdit(ctx context.Context, ev session.Event) (session.Response, error) {
	if _, ok, err := h.activeDraft(ctx, ev, session.EvEditPeriod); err != nil {
		return session.Response{}, err
	} else if !ok {
		return h.expired(ctx, ev)
	}
	return session.Edit(ev.MessageID, h.t.T("prompt.period"), h.periodKeyboard()), nil
}

func (h *Handlers) periodSelect(ctx context.Context, ev session.Event) (session.Response, error) {
	months, err := session.IntParam(ev.Data, PrefixPeriodSelect)
	if err != nil {
		return session.Response{}, err
	}
	if months < 1 || months > maxMonths {
		return session.Response{}, badToken(ev.Data, "period out of range")
	}
	d, ok, err := h.activeDraft(ctx, ev, session.EvFieldUpdated)
	if err != nil {
		return session.Response{}, err
	}
	if !ok {
		return h.expired(ctx, ev)
	}
	d.Subscription.RenewalMonths = months
	d.MessageID = ev.MessageID
	if err := h.commit(ctx, ev.UserID, d, session.EvFieldUpdated); err != nil {
		return session.Response{}, err
	}
	return session.Edit(ev.MessageID, h.summary(d), h.summaryKeyboard(d)), nil
}

func (h *Handlers) save(ctx context.Context, ev session.Event) (session.Response, error) {
	d, ok, err := h.activeDraft(ctx, ev, session.EvSave)
	if err != nil {
		return session.Response{}, err
	}
	if !ok {
		return h.expired(ctx, ev)
	}
	u, err := h.owner(ctx, ev)
	if err != nil {
		return session.Response{}, err
	}
	s := d.Subscription
	if err := h.subs.Save(ctx, u.ID, &s); err != nil {
		if isNotFound(err) {
			return h.notFound(ctx, ev)
		}
		return session.Response{}, err
	}
	if err := h.store.EndDialogue(ctx, ev.UserID); err != nil {
		return session.Response{}, err
	}
	resp, err := h.renderPage(ctx, ev, u, 0, false)
	if err != nil {
		return session.Response{}, err
	}
	return resp.WithDelete(ev.MessageID).WithNotice(h.t.T("record.saved")), nil
}

func (h *Handlers) cancel(ctx context.Context, ev session.Event) (session.Response, error) {
	if err := h.store.EndDialogue(ctx, ev.UserID); err != nil {
		return session.Response{}, err
	}
	u, err := h.owner(ctx, ev)
	if err != nil {
		return session.Response{}, err
	}
	resp, err := h.renderPage(ctx, ev, u, 0, false)
	if err != nil {
		return session.Response{}, err
	}
	return resp.WithDelete(ev.MessageID).WithNotice(h.t.T("dialogue.cancelled")), nil
}
