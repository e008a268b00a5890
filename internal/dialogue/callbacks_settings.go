package dialogue

import (
	"context"

	"telegram-subscription-tracker/internal/domain/model"
	"telegram-subscription-tracker/internal/session"
)

func (h *Handlers) settingsResponse(ev session.Event, s *model.UserSettings) session.Response {
	return session.Edit(ev.MessageID, h.settingsText(s), h.settingsKeyboard(s))
}

func (h *Handlers) showSettings(ctx context.Context, ev session.Event) (session.Response, error) {
	u, err := h.owner(ctx, ev)
	if err != nil {
		return session.Response{}, err
	}
	s, err := h.settings.Get(ctx, u.ID)
	if err != nil {
		return session.Response{}, err
	}
	return h.settingsResponse(ev, s), nil
}

func (h *Handlers) toggleReminders(ctx context.Context, ev session.Event) (session.Response, error) {
	u, err := h.owner(ctx, ev)
	if err != nil {
		return session.Response{}, err
	}
	s, err := h.settings.ToggleReminders(ctx, u.ID)
	if err != nil {
		return session.Response{}, err
	}
	return h.settingsResponse(ev, s), nil
}

func (h *Handlers) reminderDays(ctx context.Context, ev session.Event) (session.Response, error) {
	days, err := session.IntParam(ev.Data, PrefixSettingsDays)
	if err != nil {
		return session.Response{}, err
	}
	if !model.IsValidReminderDays(days) {
		return session.Response{}, badToken(ev.Data, "reminder days")
	}
	u, err := h.owner(ctx, ev)
	if err != nil {
		return session.Response{}, err
	}
	s, err := h.settings.SetReminderDays(ctx, u.ID, days)
	if err != nil {
		return session.Response{}, err
	}
	return h.settingsResponse(ev, s), nil
}
