package model

import (
	"encoding/json"
	"errors"
	"fmt"
)

// DialogueState is the step a user is at in a multi-step exchange.
// The zero value StateIdle means no dialogue is active.
type DialogueState string

const (
	StateIdle                    DialogueState = ""
	StateAwaitingName            DialogueState = "awaiting_name"
	StateAwaitingPrice           DialogueState = "awaiting_price"
	StateAwaitingDate            DialogueState = "awaiting_date"
	StateAwaitingConfirmation    DialogueState = "awaiting_confirmation"
	StateAwaitingNewName         DialogueState = "awaiting_new_name"
	StateAwaitingNewPrice        DialogueState = "awaiting_new_price"
	StateAwaitingNewDate         DialogueState = "awaiting_new_date"
	StateAwaitingNewCategory     DialogueState = "awaiting_new_category"
	StateAwaitingNewPeriodMonths DialogueState = "awaiting_new_period_months"
)

// DialogueStates lists every non-idle state.
var DialogueStates = []DialogueState{
	StateAwaitingName,
	StateAwaitingPrice,
	StateAwaitingDate,
	StateAwaitingConfirmation,
	StateAwaitingNewName,
	StateAwaitingNewPrice,
	StateAwaitingNewDate,
	StateAwaitingNewCategory,
	StateAwaitingNewPeriodMonths,
}

// ParseDialogueState maps a stored name back to a known state.
func ParseDialogueState(s string) (DialogueState, bool) {
	for _, st := range DialogueStates {
		if string(st) == s {
			return st, true
		}
	}
	return StateIdle, false
}

// IsFieldEdit reports whether the state waits for a replacement field value.
func (s DialogueState) IsFieldEdit() bool {
	switch s {
	case StateAwaitingNewName, StateAwaitingNewPrice, StateAwaitingNewDate,
		StateAwaitingNewCategory, StateAwaitingNewPeriodMonths:
		return true
	}
	return false
}

// ContextKind is the discriminant of a stored DialogueContext.
type ContextKind string

const (
	KindRecordDraft ContextKind = "record_draft"
	KindListView    ContextKind = "list_view"
)

// RecordDraft is the record being created or edited.
// A draft whose Subscription has an ID edits an existing record.
type RecordDraft struct {
	Subscription Subscription `json:"subscription"`
	MessageID    int          `json:"message_id"` // message to edit with the next prompt
	Page         int          `json:"page"`       // list page the edit started from
}

func (d *RecordDraft) IsEdit() bool { return d != nil && !d.Subscription.IsNew() }

// Sort fields understood by the list view. The values travel inside callback tokens.
const (
	SortByPaymentDate = "paymentDate"
	SortByPrice       = "price"
)

type SortDirection string

const (
	SortAsc  SortDirection = "ASC"
	SortDesc SortDirection = "DESC"
)

// ListView is the active sort of a user's paginated record list.
type ListView struct {
	SortField string        `json:"sort_field"`
	Direction SortDirection `json:"direction"`
}

// DefaultListView is the order used when no sort was chosen.
func DefaultListView() ListView {
	return ListView{SortField: SortByPaymentDate, Direction: SortAsc}
}

func IsSortField(f string) bool { return f == SortByPaymentDate || f == SortByPrice }

// Toggle applies the sort toggle rule: choosing the active field flips its
// direction, choosing another field starts ascending.
func (v ListView) Toggle(field string) ListView {
	if v.SortField == field {
		if v.Direction == SortAsc {
			return ListView{SortField: field, Direction: SortDesc}
		}
		return ListView{SortField: field, Direction: SortAsc}
	}
	return ListView{SortField: field, Direction: SortAsc}
}

// DialogueContext is a tagged union: Kind names the single populated payload.
type DialogueContext struct {
	Kind     ContextKind  `json:"kind"`
	Draft    *RecordDraft `json:"draft,omitempty"`
	ListView *ListView    `json:"list_view,omitempty"`
}

var ErrContextMismatch = errors.New("dialogue context kind does not match payload")

func DraftContext(d RecordDraft) DialogueContext {
	return DialogueContext{Kind: KindRecordDraft, Draft: &d}
}

func ListViewContext(v ListView) DialogueContext {
	return DialogueContext{Kind: KindListView, ListView: &v}
}

// AsDraft returns the draft payload when the context holds one.
func (c DialogueContext) AsDraft() (*RecordDraft, bool) {
	if c.Kind != KindRecordDraft || c.Draft == nil {
		return nil, false
	}
	return c.Draft, true
}

// AsListView returns the list payload when the context holds one.
func (c DialogueContext) AsListView() (ListView, bool) {
	if c.Kind != KindListView || c.ListView == nil {
		return ListView{}, false
	}
	return *c.ListView, true
}

// Validate checks that exactly the payload named by Kind is present.
func (c DialogueContext) Validate() error {
	switch c.Kind {
	case KindRecordDraft:
		if c.Draft == nil || c.ListView != nil {
			return ErrContextMismatch
		}
	case KindListView:
		if c.ListView == nil || c.Draft != nil {
			return ErrContextMismatch
		}
		if !IsSortField(c.ListView.SortField) {
			return fmt.Errorf("unknown sort field %q: %w", c.ListView.SortField, ErrContextMismatch)
		}
		if c.ListView.Direction != SortAsc && c.ListView.Direction != SortDesc {
			return fmt.Errorf("unknown sort direction %q: %w", c.ListView.Direction, ErrContextMismatch)
		}
	default:
		return fmt.Errorf("unknown context kind %q: %w", c.Kind, ErrContextMismatch)
	}
	return nil
}

// MarshalContext encodes a context after checking its discriminant.
func MarshalContext(c DialogueContext) ([]byte, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(c)
}

// UnmarshalContext decodes a stored context and rejects unknown or inconsistent kinds.
func UnmarshalContext(data []byte) (DialogueContext, error) {
	var c DialogueContext
	if err := json.Unmarshal(data, &c); err != nil {
		return DialogueContext{}, err
	}
	if err := c.Validate(); err != nil {
		return DialogueContext{}, err
	}
	return c, nil
}

// Page is one slice of a user's sorted record list.
type Page struct {
	Items         []*Subscription
	Number        int // zero-based
	Size          int
	TotalPages    int
	TotalElements int
}

// TotalPages returns the page count for total items, never less than one.
func TotalPages(total, size int) int {
	if total <= 0 || size <= 0 {
		return 1
	}
	return (total + size - 1) / size
}

// ClampPage keeps page inside [0, TotalPages(total, size)-1].
func ClampPage(page, total, size int) int {
	last := TotalPages(total, size) - 1
	if page > last {
		page = last
	}
	if page < 0 {
		page = 0
	}
	return page
}
