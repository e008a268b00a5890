package dialogue

import (
	"strconv"
	"time"

	"telegram-subscription-tracker/internal/domain/model"
	"telegram-subscription-tracker/internal/domain/ports/adapter"
	"telegram-subscription-tracker/internal/session"
)

func btn(text, data string) adapter.InlineButton {
	return adapter.InlineButton{Text: text, Data: data}
}

func row(buttons ...adapter.InlineButton) []adapter.InlineButton { return buttons }

func (h *Handlers) mainMenu() adapter.Keyboard {
	return adapter.Keyboard{
		row(btn(h.t.T("button.add"), CbAdd)),
		row(btn(h.t.T("button.my_subscriptions"), CbMySubscriptions)),
		row(btn(h.t.T("button.settings"), CbSettings)),
	}
}

func (h *Handlers) backToMenu() adapter.Keyboard {
	return adapter.Keyboard{row(btn(h.t.T("button.menu"), CbMenu))}
}

func (h *Handlers) backToEdit() adapter.Keyboard {
	return adapter.Keyboard{row(btn(h.t.T("button.back"), CbBackToEdit))}
}

// createKeyboard is shown under the summary of a new record.
func (h *Handlers) createKeyboard() adapter.Keyboard {
	return adapter.Keyboard{
		row(btn(h.t.T("button.edit"), CbEdit), btn(h.t.T("button.save"), CbSave)),
		row(btn(h.t.T("button.restart"), CbRestart), btn(h.t.T("button.cancel"), CbCancel)),
	}
}

func (h *Handlers) fieldRows() adapter.Keyboard {
	return adapter.Keyboard{
		row(btn(h.t.T("button.field.name"), CbNameEdit), btn(h.t.T("button.field.price"), CbPriceEdit)),
		row(btn(h.t.T("button.field.date"), CbDateEdit), btn(h.t.T("button.field.period"), CbPeriodEdit)),
		row(btn(h.t.T("button.field.category"), CbCategoryEdit)),
	}
}

// editKeyboard lists the editable fields; back leaves the edit menu.
func (h *Handlers) editKeyboard(back string) adapter.Keyboard {
	return append(h.fieldRows(), row(btn(h.t.T("button.back"), back)))
}

// updateKeyboard is shown under the summary of an existing record being edited.
func (h *Handlers) updateKeyboard(id int64, page int) adapter.Keyboard {
	return append(h.fieldRows(), row(
		btn(h.t.T("button.update"), session.IDPage(PrefixUpdateView, id, page)),
		btn(h.t.T("button.cancel"), session.IDPage(PrefixCancelEditView, id, page)),
	))
}

// summaryKeyboard picks the keyboard for a draft's confirmation message.
func (h *Handlers) summaryKeyboard(d *model.RecordDraft) adapter.Keyboard {
	if d.IsEdit() {
		return h.updateKeyboard(d.Subscription.ID, d.Page)
	}
	return h.createKeyboard()
}

// draftEditKeyboard is the field menu with the back action fitting the draft.
func (h *Handlers) draftEditKeyboard(d *model.RecordDraft) adapter.Keyboard {
	if d.IsEdit() {
		return h.editKeyboard(session.IDPage(PrefixBackToView, d.Subscription.ID, d.Page))
	}
	return h.editKeyboard(CbBackToConfirmation)
}

func (h *Handlers) periodKeyboard() adapter.Keyboard {
	return adapter.Keyboard{
		row(
			btn(h.t.T("button.period.monthly"), PrefixPeriodSelect+"1"),
			btn(h.t.T("button.period.yearly"), PrefixPeriodSelect+"12"),
		),
		row(btn(h.t.T("button.period.custom"), CbPeriodCustom)),
		row(btn(h.t.T("button.back"), CbBackToEdit)),
	}
}

func (h *Handlers) listKeyboard(p *model.Page, view model.ListView) adapter.Keyboard {
	var kb adapter.Keyboard
	for _, s := range p.Items {
		label := s.Name + " · " + s.PaymentDate.Format(model.DisplayDateLayout)
		kb = append(kb, row(btn(label, session.IDPage(PrefixView, s.ID, p.Number))))
	}
	if p.TotalPages > 1 {
		var nav []adapter.InlineButton
		if p.Number > 0 {
			nav = append(nav, btn("◀️", PrefixListPage+strconv.Itoa(p.Number-1)))
		}
		nav = append(nav, btn(strconv.Itoa(p.Number+1)+"/"+strconv.Itoa(p.TotalPages), CbIgnore))
		if p.Number < p.TotalPages-1 {
			nav = append(nav, btn("▶️", PrefixListPage+strconv.Itoa(p.Number+1)))
		}
		kb = append(kb, nav)
	}
	if len(p.Items) > 0 {
		kb = append(kb, row(
			btn(h.sortLabel("button.sort.date", model.SortByPaymentDate, view), sortToken(model.SortByPaymentDate, p.Number)),
			btn(h.sortLabel("button.sort.price", model.SortByPrice, view), sortToken(model.SortByPrice, p.Number)),
		))
	}
	kb = append(kb, row(btn(h.t.T("button.add"), CbAdd), btn(h.t.T("button.menu"), CbMenu)))
	return kb
}

func (h *Handlers) sortLabel(key, field string, view model.ListView) string {
	label := h.t.T(key)
	if view.SortField != field {
		return label
	}
	if view.Direction == model.SortDesc {
		return label + " ⬇️"
	}
	return label + " ⬆️"
}

func sortToken(field string, page int) string {
	return PrefixSort + field + "_" + strconv.Itoa(page)
}

func (h *Handlers) detailKeyboard(id int64, page int) adapter.Keyboard {
	return adapter.Keyboard{
		row(
			btn(h.t.T("button.edit"), session.IDPage(PrefixEditDetail, id, page)),
			btn(h.t.T("button.delete"), session.IDPage(PrefixDeleteConfirm, id, page)),
		),
		row(btn(h.t.T("button.back_to_list"), PrefixListPage+strconv.Itoa(page))),
	}
}

func (h *Handlers) deleteConfirmKeyboard(id int64, page int) adapter.Keyboard {
	return adapter.Keyboard{row(
		btn(h.t.T("button.yes"), session.IDPage(PrefixDeleteExecute, id, page)),
		btn(h.t.T("button.no"), session.IDPage(PrefixView, id, page)),
	)}
}

func (h *Handlers) settingsKeyboard(s *model.UserSettings) adapter.Keyboard {
	toggle := h.t.T("button.reminders.off")
	if s.RemindersEnabled {
		toggle = h.t.T("button.reminders.on")
	}
	days := make([]adapter.InlineButton, 0, len(model.ReminderDayOptions))
	for _, n := range model.ReminderDayOptions {
		label := h.t.T("button.days", n)
		if n == s.ReminderDaysBefore {
			label = "✅ " + label
		}
		days = append(days, btn(label, PrefixSettingsDays+strconv.Itoa(n)))
	}
	return adapter.Keyboard{
		row(btn(toggle, CbSettingsToggle)),
		days,
		row(btn(h.t.T("button.menu"), CbMenu)),
	}
}

// dateCalendar renders the picker for a draft: its date when set, else today.
func (h *Handlers) dateCalendar(d *model.RecordDraft, back string) adapter.Keyboard {
	today := h.today()
	if d == nil || d.Subscription.PaymentDate.IsZero() {
		return h.calendar.Build(today, nil, back, today)
	}
	sel := d.Subscription.PaymentDate
	return h.calendar.Build(sel, &sel, back, today)
}

func (h *Handlers) calendarAt(month time.Time, selected *time.Time, back string) adapter.Keyboard {
	return h.calendar.Build(month, selected, back, h.today())
}

func calendarLabels(t session.Translator) session.CalendarLabels {
	l := session.DefaultCalendarLabels
	for i := range l.Months {
		l.Months[i] = t.T("calendar.month." + strconv.Itoa(i+1))
	}
	for i := range l.Weekdays {
		l.Weekdays[i] = t.T("calendar.weekday." + strconv.Itoa(i+1))
	}
	l.OneMonth = t.T("calendar.quick.1m")
	l.SixMonths = t.T("calendar.quick.6m")
	l.OneYear = t.T("calendar.quick.1y")
	l.Back = t.T("button.back")
	l.Apply = t.T("calendar.apply")
	return l
}
