package session

import (
	"context"
	"errors"
	"fmt"

	"telegram-subscription-tracker/internal/domain"
	"telegram-subscription-tracker/internal/domain/model"

	"github.com/looplab/fsm"
)

// Dialogue events.
const (
	EvStart        = "start"
	EvNameGiven    = "name_given"
	EvPriceGiven   = "price_given"
	EvDateGiven    = "date_given"
	EvEditName     = "edit_name"
	EvEditPrice    = "edit_price"
	EvEditDate     = "edit_date"
	EvEditCategory = "edit_category"
	EvEditPeriod   = "edit_period"
	EvFieldUpdated = "field_updated"
	EvOpenExisting = "open_existing"
	EvRestart      = "restart"
	EvSave         = "save"
	EvFinish       = "finish"
)

const idleName = "idle"

// Machine holds the dialogue transition table. It is stateless; the current
// state lives in the SessionStore.
type Machine struct {
	events fsm.Events
}

func NewMachine() *Machine {
	all := []string{idleName}
	for _, st := range model.DialogueStates {
		all = append(all, string(st))
	}
	editable := []string{string(model.StateAwaitingConfirmation)}
	for _, st := range model.DialogueStates {
		if st.IsFieldEdit() {
			editable = append(editable, string(st))
		}
	}

	return &Machine{events: fsm.Events{
		{Name: EvStart, Src: all, Dst: string(model.StateAwaitingName)},
		{Name: EvNameGiven, Src: []string{string(model.StateAwaitingName)}, Dst: string(model.StateAwaitingPrice)},
		{Name: EvPriceGiven, Src: []string{string(model.StateAwaitingPrice)}, Dst: string(model.StateAwaitingDate)},
		{Name: EvDateGiven, Src: []string{string(model.StateAwaitingDate)}, Dst: string(model.StateAwaitingConfirmation)},
		{Name: EvEditName, Src: editable, Dst: string(model.StateAwaitingNewName)},
		{Name: EvEditPrice, Src: editable, Dst: string(model.StateAwaitingNewPrice)},
		{Name: EvEditDate, Src: editable, Dst: string(model.StateAwaitingNewDate)},
		{Name: EvEditCategory, Src: editable, Dst: string(model.StateAwaitingNewCategory)},
		{Name: EvEditPeriod, Src: editable, Dst: string(model.StateAwaitingNewPeriodMonths)},
		{Name: EvFieldUpdated, Src: editable, Dst: string(model.StateAwaitingConfirmation)},
		{Name: EvOpenExisting, Src: all, Dst: string(model.StateAwaitingConfirmation)},
		{Name: EvRestart, Src: []string{string(model.StateAwaitingConfirmation)}, Dst: string(model.StateAwaitingName)},
		{Name: EvSave, Src: editable, Dst: idleName},
		{Name: EvFinish, Src: all, Dst: idleName},
	}}
}

// Next returns the state reached by firing event in from. A transition to the
// same state is allowed; an event not permitted in from wraps
// domain.ErrInvalidTransition.
func (m *Machine) Next(ctx context.Context, from model.DialogueState, event string) (model.DialogueState, error) {
	f := fsm.NewFSM(toFSM(from), m.events, fsm.Callbacks{})
	if err := f.Event(ctx, event); err != nil {
		var same fsm.NoTransitionError
		if errors.As(err, &same) {
			return from, nil
		}
		return from, fmt.Errorf("%w: %s in %q: %v", domain.ErrInvalidTransition, event, toFSM(from), err)
	}
	return fromFSM(f.Current())
}

// Can reports whether event is permitted in from.
func (m *Machine) Can(from model.DialogueState, event string) bool {
	return fsm.NewFSM(toFSM(from), m.events, fsm.Callbacks{}).Can(event)
}

func toFSM(st model.DialogueState) string {
	if st == model.StateIdle {
		return idleName
	}
	return string(st)
}

func fromFSM(name string) (model.DialogueState, error) {
	if name == idleName {
		return model.StateIdle, nil
	}
	st, ok := model.ParseDialogueState(name)
	if !ok {
		return model.StateIdle, fmt.Errorf("%w: unknown state %q", domain.ErrInvalidTransition, name)
	}
	return st, nil
}
