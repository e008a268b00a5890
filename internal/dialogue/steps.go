package dialogue

import (
	"context"

	"telegram-subscription-tracker/internal/domain/model"
	"telegram-subscription-tracker/internal/session"
)

// Each step first checks that the draft still exists; parse errors return
// before anything is written.

func (h *Handlers) stepName(ctx context.Context, ev session.Event) (session.Response, error) {
	d, ok, err := h.loadDraft(ctx, ev.UserID)
	if err != nil {
		return session.Response{}, err
	}
	if !ok {
		return h.expired(ctx, ev)
	}
	name, err := ParseName(ev.Text)
	if err != nil {
		return session.Response{}, err
	}
	d.Subscription.Name = name
	if err := h.commit(ctx, ev.UserID, d, session.EvNameGiven); err != nil {
		return session.Response{}, err
	}
	return session.Send(h.t.T("prompt.price", h.currencyHint()), h.backToMenu()), nil
}

func (h *Handlers) stepPrice(ctx context.Context, ev session.Event) (session.Response, error) {
	d, ok, err := h.loadDraft(ctx, ev.UserID)
	if err != nil {
		return session.Response{}, err
	}
	if !ok {
		return h.expired(ctx, ev)
	}
	price, err := ParsePrice(ev.Text)
	if err != nil {
		return session.Response{}, err
	}
	d.Subscription.PriceMinor = price
	if err := h.commit(ctx, ev.UserID, d, session.EvPriceGiven); err != nil {
		return session.Response{}, err
	}
	return session.Send(h.t.T("prompt.date"), h.dateCalendar(nil, CbMenu)), nil
}

func (h *Handlers) stepDate(ctx context.Context, ev session.Event) (session.Response, error) {
	d, ok, err := h.loadDraft(ctx, ev.UserID)
	if err != nil {
		return session.Response{}, err
	}
	if !ok {
		return h.expired(ctx, ev)
	}
	date, err := ParseDate(ev.Text, h.today())
	if err != nil {
		return session.Response{}, err
	}
	d.Subscription.PaymentDate = date
	if err := h.commit(ctx, ev.UserID, d, session.EvDateGiven); err != nil {
		return session.Response{}, err
	}
	return session.Send(h.summary(d), h.summaryKeyboard(d)), nil
}

func (h *Handlers) stepConfirmation(ctx context.Context, ev session.Event) (session.Response, error) {
	if _, ok, err := h.loadDraft(ctx, ev.UserID); err != nil {
		return session.Response{}, err
	} else if !ok {
		return h.expired(ctx, ev)
	}
	return session.Notice(h.t.T("dialogue.use_buttons")), nil
}

// fieldStep builds the handler of a field-edit state. On success the user's
// message is removed and the draft message shows the updated summary.
func (h *Handlers) fieldStep(apply func(d *model.RecordDraft, raw string) error) session.HandlerFunc {
	return func(ctx context.Context, ev session.Event) (session.Response, error) {
		d, ok, err := h.loadDraft(ctx, ev.UserID)
		if err != nil {
			return session.Response{}, err
		}
		if !ok {
			return h.expired(ctx, ev)
		}
		if err := apply(d, ev.Text); err != nil {
			return session.Response{}, err
		}
		if err := h.commit(ctx, ev.UserID, d, session.EvFieldUpdated); err != nil {
			return session.Response{}, err
		}
		if d.MessageID == 0 {
			return session.Send(h.summary(d), h.summaryKeyboard(d)), nil
		}
		return session.Edit(d.MessageID, h.summary(d), h.summaryKeyboard(d)).WithDelete(ev.MessageID), nil
	}
}

func applyName(d *model.RecordDraft, raw string) error {
	name, err := ParseName(raw)
	if err != nil {
		return err
	}
	d.Subscription.Name = name
	return nil
}

func applyPrice(d *model.RecordDraft, raw string) error {
	price, err := ParsePrice(raw)
	if err != nil {
		return err
	}
	d.Subscription.PriceMinor = price
	return nil
}

func (h *Handlers) applyDate(d *model.RecordDraft, raw string) error {
	date, err := ParseDate(raw, h.today())
	if err != nil {
		return err
	}
	d.Subscription.PaymentDate = date
	return nil
}

func applyCategory(d *model.RecordDraft, raw string) error {
	c, err := ParseCategory(raw)
	if err != nil {
		return err
	}
	d.Subscription.Category = c
	return nil
}

func applyPeriod(d *model.RecordDraft, raw string) error {
	n, err := ParsePeriod(raw)
	if err != nil {
		return err
	}
	d.Subscription.RenewalMonths = n
	return nil
}

func (h *Handlers) currencyHint() string {
	if h.currency == "" {
		return ""
	}
	return " (" + h.currency + ")"
}
