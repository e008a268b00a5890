package dialogue

import (
	"context"

	"telegram-subscription-tracker/internal/domain/model"
	"telegram-subscription-tracker/internal/session"
)

func (h *Handlers) ignore(context.Context, session.Event) (session.Response, error) {
	return session.Response{}, nil
}

func (h *Handlers) calendarNav(_ context.Context, ev session.Event) (session.Response, error) {
	nav, err := session.ParseCalNav(ev.Data)
	if err != nil {
		return session.Response{}, err
	}
	return session.EditKeyboard(ev.MessageID, h.calendarAt(nav.Month, nav.Selected, nav.Back)), nil
}

func (h *Handlers) calendarDate(_ context.Context, ev session.Event) (session.Response, error) {
	day, back, err := session.ParseCalDate(ev.Data)
	if err != nil {
		return session.Response{}, err
	}
	if day.Before(h.today()) {
		return session.Notice(h.t.T("calendar.past_date")), nil
	}
	return session.EditKeyboard(ev.MessageID, h.calendarAt(day, &day, back)), nil
}

func (h *Handlers) calendarQuick(_ context.Context, ev session.Event) (session.Response, error) {
	q, err := session.ParseCalQuick(ev.Data)
	if err != nil {
		return session.Response{}, err
	}
	target := q.Target(h.today())
	return session.EditKeyboard(ev.MessageID, h.calendarAt(target, &target, q.Back)), nil
}

// calendarApply commits the picked date to the draft of a new record or of a
// date edit. In any other state the calendar is stale.
func (h *Handlers) calendarApply(ctx context.Context, ev session.Event) (session.Response, error) {
	day, err := session.ParseCalApply(ev.Data)
	if err != nil {
		return session.Response{}, err
	}
	if day.Before(h.today()) {
		return session.Notice(h.t.T("calendar.past_date")), nil
	}
	st, _, err := h.store.GetState(ctx, ev.UserID)
	if err != nil {
		return session.Response{}, err
	}
	var event string
	switch st {
	case model.StateAwaitingDate:
		event = session.EvDateGiven
	case model.StateAwaitingNewDate:
		event = session.EvFieldUpdated
	default:
		return session.Notice(h.t.T("calendar.expired")), nil
	}
	d, ok, err := h.loadDraft(ctx, ev.UserID)
	if err != nil {
		return session.Response{}, err
	}
	if !ok {
		return h.expired(ctx, ev)
	}
	d.Subscription.PaymentDate = day
	d.MessageID = ev.MessageID
	if err := h.commit(ctx, ev.UserID, d, event); err != nil {
		return session.Response{}, err
	}
	return session.Edit(ev.MessageID, h.summary(d), h.summaryKeyboard(d)), nil
}

func (h *Handlers) calendarNotify(_ context.Context, ev session.Event) (session.Response, error) {
	kind, err := session.ParseCalNotify(ev.Data)
	if err != nil {
		return session.Response{}, err
	}
	switch kind {
	case session.NotifyPastDate:
		return session.Notice(h.t.T("calendar.past_date")), nil
	case session.NotifyNoDateSelected:
		return session.Notice(h.t.T("calendar.no_date")), nil
	}
	return session.Response{}, badToken(ev.Data, "unknown notice "+kind)
}
