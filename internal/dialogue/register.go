package dialogue

import (
	"regexp"

	"telegram-subscription-tracker/internal/domain/model"
	"telegram-subscription-tracker/internal/session"
)

// Literal callback tokens.
const (
	CbMenu               = "menu"
	CbAdd                = "sub_add"
	CbMySubscriptions    = "my_subscriptions"
	CbSettings           = "settings"
	CbEdit               = "sub_edit"
	CbSave               = "sub_save"
	CbRestart            = "sub_restart"
	CbCancel             = "sub_cancel"
	CbNameEdit           = "name_edit"
	CbPriceEdit          = "price_edit"
	CbDateEdit           = "date_edit"
	CbCategoryEdit       = "category_edit"
	CbPeriodEdit         = "period_edit"
	CbPeriodCustom       = "period_custom"
	CbBackToConfirmation = "back_to_confirmation"
	CbBackToEdit         = "back-to-edit"
	CbIgnore             = session.CalIgnore
	CbSettingsToggle     = "settings_toggle_reminders"
)

// Parameterised callback prefixes.
const (
	PrefixPeriodSelect   = "period_select_"
	PrefixListPage       = "sub_list_page_"
	PrefixSort           = "sub_sort_"
	PrefixView           = "sub_view_"
	PrefixEditDetail     = "sub_edit_detail_"
	PrefixBackToView     = "sub_back_to_view_"
	PrefixUpdateView     = "sub_update_view_"
	PrefixCancelEditView = "sub_cancel_edit_view_"
	PrefixDeleteConfirm  = "sub_delete_confirm_"
	PrefixDeleteExecute  = "sub_delete_execute_"
	PrefixSettingsDays   = "settings_days_"
)

const (
	CmdStart  = "/start"
	CmdList   = "/list"
	CmdCancel = "/cancel"
)

var viewLinkRe = regexp.MustCompile(`^/view_([A-Za-z0-9_-]+)$`)

// Literal tokens resolve before prefixed ones.
const (
	priorityLiteral = 10
	priorityPrefix  = 20
)

// Register wires every handler into the three registries.
func (h *Handlers) Register(callbacks, commands *session.Registry[string], steps *session.Registry[model.DialogueState]) {
	literal := func(token string, fn session.HandlerFunc) session.Entry[string] {
		return session.Entry[string]{Name: token, Priority: priorityLiteral, Match: session.Exact(token), Handle: fn}
	}
	prefix := func(p string, fn session.HandlerFunc) session.Entry[string] {
		return session.Entry[string]{Name: p, Priority: priorityPrefix, Match: session.Prefix(p), Handle: fn}
	}

	callbacks.Register(
		literal(CbMenu, h.menu),
		literal(CbAdd, h.add),
		literal(CbMySubscriptions, h.mySubscriptions),
		literal(CbSettings, h.showSettings),
		literal(CbEdit, h.editMenu),
		literal(CbSave, h.save),
		literal(CbRestart, h.restart),
		literal(CbCancel, h.cancel),
		literal(CbNameEdit, h.fieldEdit(session.EvEditName, "prompt.new_name")),
		literal(CbPriceEdit, h.fieldEdit(session.EvEditPrice, "prompt.new_price")),
		literal(CbCategoryEdit, h.fieldEdit(session.EvEditCategory, "prompt.new_category")),
		literal(CbDateEdit, h.dateEdit),
		literal(CbPeriodEdit, h.periodEdit),
		literal(CbPeriodCustom, h.fieldEdit(session.EvEditPeriod, "prompt.new_period")),
		literal(CbBackToConfirmation, h.backToConfirmation),
		literal(CbBackToEdit, h.editMenu),
		literal(CbIgnore, h.ignore),
		literal(CbSettingsToggle, h.toggleReminders),

		prefix(session.CalNavPrefix, h.calendarNav),
		prefix(session.CalDatePrefix, h.calendarDate),
		prefix(session.CalQuickPrefix, h.calendarQuick),
		prefix(session.CalApplyPrefix, h.calendarApply),
		prefix(session.CalNotifyPrefix, h.calendarNotify),
		prefix(PrefixPeriodSelect, h.periodSelect),
		prefix(PrefixListPage, h.listPage),
		prefix(PrefixSort, h.sort),
		prefix(PrefixView, h.view),
		prefix(PrefixEditDetail, h.editDetail),
		prefix(PrefixBackToView, h.backToView),
		prefix(PrefixUpdateView, h.updateView),
		prefix(PrefixCancelEditView, h.backToView),
		prefix(PrefixDeleteConfirm, h.deleteConfirm),
		prefix(PrefixDeleteExecute, h.deleteExecute),
		prefix(PrefixSettingsDays, h.reminderDays),
	)

	commands.Register(
		session.Entry[string]{Name: CmdStart, Priority: priorityLiteral, Match: session.Command(CmdStart), Handle: h.start},
		session.Entry[string]{Name: CmdList, Priority: priorityLiteral, Match: session.Command(CmdList), Handle: h.listCommand},
		session.Entry[string]{Name: CmdCancel, Priority: priorityLiteral, Match: session.Command(CmdCancel), Handle: h.cancelCommand},
		session.Entry[string]{Name: session.ViewLinkPrefix, Priority: priorityPrefix, Match: session.Pattern(viewLinkRe), Handle: h.viewLink},
	)

	step := func(st model.DialogueState, fn session.HandlerFunc) session.Entry[model.DialogueState] {
		return session.Entry[model.DialogueState]{Name: string(st), Match: session.InState(st), Handle: fn}
	}
	steps.Register(
		step(model.StateAwaitingName, h.stepName),
		step(model.StateAwaitingPrice, h.stepPrice),
		step(model.StateAwaitingDate, h.stepDate),
		step(model.StateAwaitingConfirmation, h.stepConfirmation),
		step(model.StateAwaitingNewName, h.fieldStep(applyName)),
		step(model.StateAwaitingNewPrice, h.fieldStep(applyPrice)),
		step(model.StateAwaitingNewDate, h.fieldStep(h.applyDate)),
		step(model.StateAwaitingNewCategory, h.fieldStep(applyCategory)),
		step(model.StateAwaitingNewPeriodMonths, h.fieldStep(applyPeriod)),
	)
}

// CallbackFixtures is one sample of every callback token the bot emits.
var CallbackFixtures = []string{
	CbMenu, CbAdd, CbMySubscriptions, CbSettings, CbEdit, CbSave, CbRestart, CbCancel,
	CbNameEdit, CbPriceEdit, CbDateEdit, CbCategoryEdit, CbPeriodEdit, CbPeriodCustom,
	CbBackToConfirmation, CbBackToEdit, CbIgnore, CbSettingsToggle,
	"cal_nav_2024-02_2024-02-10_back-to-edit",
	"cal_nav_2024-02__menu",
	"cal_date_2024-02-10_sub_back_to_view_7_0",
	"cal_quick_6m_2024-02-10_menu",
	"cal_apply_2024-02-10",
	session.CalNotifyPast, session.CalNotifyNoDate,
	"period_select_12",
	"sub_list_page_2",
	"sub_sort_paymentDate_0", "sub_sort_price_3",
	"sub_view_42_1",
	"sub_edit_detail_42_1",
	"sub_back_to_view_42_1",
	"sub_update_view_42_1",
	"sub_cancel_edit_view_42_1",
	"sub_delete_confirm_42_1",
	"sub_delete_execute_42_1",
	"settings_days_7",
}

// CommandFixtures is one sample of every command text.
var CommandFixtures = []string{
	"/start", "/start ref42", "/list", "/list@tracker_bot", "/cancel",
	"/view_NDI6MjoxMA", "/view_", "/settings", "hello",
}
