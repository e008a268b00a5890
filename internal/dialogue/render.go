package dialogue

import (
	"strings"

	"telegram-subscription-tracker/internal/domain/model"
)

func (h *Handlers) price(minor int64) string {
	p := model.FormatPrice(minor)
	if h.currency == "" {
		return p
	}
	return p + " " + h.currency
}

func (h *Handlers) period(months int) string {
	switch months {
	case 1:
		return h.t.T("period.monthly")
	case 12:
		return h.t.T("period.yearly")
	default:
		return h.t.T("period.months", months)
	}
}

func (h *Handlers) category(s *model.Subscription) string {
	if s.Category == "" {
		return h.t.T("category.none")
	}
	return s.Category
}

func (h *Handlers) fields(s *model.Subscription) string {
	date := "—"
	if !s.PaymentDate.IsZero() {
		date = s.PaymentDate.Format(model.DisplayDateLayout)
	}
	return h.t.T("record.fields", s.Name, h.price(s.PriceMinor), date, h.period(s.RenewalMonths), h.category(s))
}

// summary is the confirmation text of a draft.
func (h *Handlers) summary(d *model.RecordDraft) string {
	return h.t.T("summary.title") + "\n\n" + h.fields(&d.Subscription)
}

func (h *Handlers) detail(s *model.Subscription) string {
	return h.t.T("detail.title") + "\n\n" + h.fields(s)
}

func (h *Handlers) listText(p *model.Page) string {
	if p.TotalElements == 0 {
		return h.t.T("list.empty")
	}
	var b strings.Builder
	b.WriteString(h.t.T("list.title", p.TotalElements))
	for i, s := range p.Items {
		b.WriteString("\n")
		b.WriteString(h.t.T("list.item", p.Number*p.Size+i+1, s.Name, h.price(s.PriceMinor),
			s.PaymentDate.Format(model.DisplayDateLayout)))
	}
	return b.String()
}

func (h *Handlers) settingsText(s *model.UserSettings) string {
	status := h.t.T("settings.off")
	if s.RemindersEnabled {
		status = h.t.T("settings.on")
	}
	return h.t.T("settings.title", status, s.ReminderDaysBefore)
}

func (h *Handlers) welcome(firstName string) string {
	if firstName == "" {
		return h.t.T("welcome.anonymous")
	}
	return h.t.T("welcome", firstName)
}
