package session

import (
	"strconv"
	"strings"
	"time"

	"telegram-subscription-tracker/internal/domain/model"
	"telegram-subscription-tracker/internal/domain/ports/adapter"
)

// Calendar callback tokens.
const (
	CalIgnore       = "cal_ignore"
	CalNavPrefix    = "cal_nav_"
	CalDatePrefix   = "cal_date_"
	CalQuickPrefix  = "cal_quick_"
	CalApplyPrefix  = "cal_apply_"
	CalNotifyPrefix = "cal_notify_"
	CalNotifyPast   = CalNotifyPrefix + NotifyPastDate
	CalNotifyNoDate = CalNotifyPrefix + NotifyNoDateSelected
)

// Notice kinds carried by cal_notify_ tokens.
const (
	NotifyPastDate       = "past_date"
	NotifyNoDateSelected = "no_date_selected"
)

// Quick-select offsets.
const (
	QuickOneMonth  = "1m"
	QuickSixMonths = "6m"
	QuickOneYear   = "1y"
)

var quickMonths = map[string]int{QuickOneMonth: 1, QuickSixMonths: 6, QuickOneYear: 12}

type CalendarLabels struct {
	Months     [12]string
	Weekdays   [7]string // Monday first
	Prev, Next string
	OneMonth   string
	SixMonths  string
	OneYear    string
	Back       string
	Apply      string
}

var DefaultCalendarLabels = CalendarLabels{
	Months: [12]string{"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December"},
	Weekdays:  [7]string{"Mo", "Tu", "We", "Th", "Fr", "Sa", "Su"},
	Prev:      "«",
	Next:      "»",
	OneMonth:  "+1 month",
	SixMonths: "+6 months",
	OneYear:   "+1 year",
	Back:      "⬅️ Back",
	Apply:     "✅ Apply",
}

// BuildCalendar renders a month grid with DefaultCalendarLabels.
func BuildCalendar(month time.Time, selected *time.Time, back string, today time.Time) adapter.Keyboard {
	return Calendar{Labels: DefaultCalendarLabels}.Build(month, selected, back, today)
}

type Calendar struct {
	Labels CalendarLabels
}

// Build renders the date picker for month. back is carried verbatim by the
// back button and inside every token that needs to return there.
func (c Calendar) Build(month time.Time, selected *time.Time, back string, today time.Time) adapter.Keyboard {
	first := model.MonthOf(month)
	today = model.DateOf(today)
	sel := ""
	if selected != nil {
		d := model.DateOf(*selected)
		selected = &d
		sel = d.Format(model.TokenDateLayout)
	}

	kb := adapter.Keyboard{c.navRow(first, sel, back), c.weekdayRow()}
	kb = append(kb, c.grid(first, selected, back, today)...)
	kb = append(kb, c.quickRow(sel, back), c.actionRow(selected, back))
	return kb
}

func (c Calendar) navRow(first time.Time, sel, back string) []adapter.InlineButton {
	prev := first.AddDate(0, -1, 0)
	next := first.AddDate(0, 1, 0)
	label := c.Labels.Months[first.Month()-1] + " " + strconv.Itoa(first.Year())
	return []adapter.InlineButton{
		{Text: c.Labels.Prev, Data: NavToken(prev, sel, back)},
		{Text: label, Data: CalIgnore},
		{Text: c.Labels.Next, Data: NavToken(next, sel, back)},
	}
}

func (c Calendar) weekdayRow() []adapter.InlineButton {
	row := make([]adapter.InlineButton, 0, 7)
	for _, wd := range c.Labels.Weekdays {
		row = append(row, adapter.InlineButton{Text: wd, Data: CalIgnore})
	}
	return row
}

func (c Calendar) grid(first time.Time, selected *time.Time, back string, today time.Time) adapter.Keyboard {
	days := model.DaysIn(first)
	lead := (int(first.Weekday()) + 6) % 7 // Monday = 0

	var rows adapter.Keyboard
	row := make([]adapter.InlineButton, 0, 7)
	for i := 0; i < lead; i++ {
		row = append(row, placeholder())
	}
	for d := 1; d <= days; d++ {
		day := time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, time.UTC)
		row = append(row, c.dayButton(day, selected, back, today))
		if len(row) == 7 {
			rows = append(rows, row)
			row = make([]adapter.InlineButton, 0, 7)
		}
	}
	if len(row) > 0 {
		for len(row) < 7 {
			row = append(row, placeholder())
		}
		rows = append(rows, row)
	}
	return rows
}

func (c Calendar) dayButton(day time.Time, selected *time.Time, back string, today time.Time) adapter.InlineButton {
	n := strconv.Itoa(day.Day())
	switch {
	case day.Before(today):
		return adapter.InlineButton{Text: n, Data: CalNotifyPast}
	case selected != nil && day.Equal(*selected):
		return adapter.InlineButton{Text: "✅ " + n, Data: DateToken(day, back)}
	case day.Equal(today):
		return adapter.InlineButton{Text: "🔶 " + n, Data: DateToken(day, back)}
	default:
		return adapter.InlineButton{Text: n, Data: DateToken(day, back)}
	}
}

func (c Calendar) quickRow(sel, back string) []adapter.InlineButton {
	return []adapter.InlineButton{
		{Text: c.Labels.OneMonth, Data: CalQuickPrefix + QuickOneMonth + "_" + sel + "_" + back},
		{Text: c.Labels.SixMonths, Data: CalQuickPrefix + QuickSixMonths + "_" + sel + "_" + back},
		{Text: c.Labels.OneYear, Data: CalQuickPrefix + QuickOneYear + "_" + sel + "_" + back},
	}
}

func (c Calendar) actionRow(selected *time.Time, back string) []adapter.InlineButton {
	apply := CalNotifyNoDate
	if selected != nil {
		apply = CalApplyPrefix + selected.Format(model.TokenDateLayout)
	}
	return []adapter.InlineButton{
		{Text: c.Labels.Back, Data: back},
		{Text: c.Labels.Apply, Data: apply},
	}
}

func placeholder() adapter.InlineButton {
	return adapter.InlineButton{Text: " ", Data: CalIgnore}
}

func NavToken(month time.Time, sel, back string) string {
	return CalNavPrefix + month.Format(model.TokenMonthLayout) + "_" + sel + "_" + back
}

func DateToken(day time.Time, back string) string {
	return CalDatePrefix + day.Format(model.TokenDateLayout) + "_" + back
}

// CalNav is a decoded cal_nav_ token.
type CalNav struct {
	Month    time.Time
	Selected *time.Time
	Back     string
}

func ParseCalNav(token string) (CalNav, error) {
	parts, err := SplitParamsTail(token, CalNavPrefix, 3)
	if err != nil {
		return CalNav{}, err
	}
	month, err := time.Parse(model.TokenMonthLayout, parts[0])
	if err != nil {
		return CalNav{}, tokenErr(token, "month", err)
	}
	sel, err := optionalDate(token, parts[1])
	if err != nil {
		return CalNav{}, err
	}
	if parts[2] == "" {
		return CalNav{}, tokenErr(token, "empty back token", nil)
	}
	return CalNav{Month: month, Selected: sel, Back: parts[2]}, nil
}

// ParseCalDate decodes cal_date_<YYYY-MM-DD>_<back>.
func ParseCalDate(token string) (time.Time, string, error) {
	parts, err := SplitParamsTail(token, CalDatePrefix, 2)
	if err != nil {
		return time.Time{}, "", err
	}
	day, err := time.Parse(model.TokenDateLayout, parts[0])
	if err != nil {
		return time.Time{}, "", tokenErr(token, "date", err)
	}
	if parts[1] == "" {
		return time.Time{}, "", tokenErr(token, "empty back token", nil)
	}
	return day, parts[1], nil
}

// CalQuick is a decoded cal_quick_ token.
type CalQuick struct {
	Months   int
	Selected *time.Time
	Back     string
}

// Target returns the date the quick button lands on.
func (q CalQuick) Target(today time.Time) time.Time {
	base := model.DateOf(today)
	if q.Selected != nil {
		base = *q.Selected
	}
	return model.AddMonths(base, q.Months)
}

func ParseCalQuick(token string) (CalQuick, error) {
	parts, err := SplitParamsTail(token, CalQuickPrefix, 3)
	if err != nil {
		return CalQuick{}, err
	}
	months, ok := quickMonths[parts[0]]
	if !ok {
		return CalQuick{}, tokenErr(token, "unknown offset "+parts[0], nil)
	}
	sel, err := optionalDate(token, parts[1])
	if err != nil {
		return CalQuick{}, err
	}
	if parts[2] == "" {
		return CalQuick{}, tokenErr(token, "empty back token", nil)
	}
	return CalQuick{Months: months, Selected: sel, Back: parts[2]}, nil
}

func ParseCalApply(token string) (time.Time, error) {
	parts, err := SplitParams(token, CalApplyPrefix, 1)
	if err != nil {
		return time.Time{}, err
	}
	day, err := time.Parse(model.TokenDateLayout, parts[0])
	if err != nil {
		return time.Time{}, tokenErr(token, "date", err)
	}
	return day, nil
}

// ParseCalNotify returns the notice kind, e.g. past_date.
func ParseCalNotify(token string) (string, error) {
	kind, ok := strings.CutPrefix(token, CalNotifyPrefix)
	if !ok || kind == "" {
		return "", tokenErr(token, "notice kind", nil)
	}
	return kind, nil
}

func optionalDate(token, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	d, err := time.Parse(model.TokenDateLayout, s)
	if err != nil {
		return nil, tokenErr(token, "selected date", err)
	}
	return &d, nil
}
