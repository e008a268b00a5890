package repository

import (
	"context"

	"telegram-subscription-tracker/internal/domain/model"
)

// SessionStore is the port for a user's conversational state.
// Every value expires after a fixed TTL that is re-applied on each Set and
// never extended by a Get. A missing or undecodable value reads as absent
// (found == false, err == nil); only transport failures are errors.
type SessionStore interface {
	SetState(ctx context.Context, tgID int64, state model.DialogueState) error
	GetState(ctx context.Context, tgID int64) (model.DialogueState, bool, error)
	ClearState(ctx context.Context, tgID int64) error

	SetContext(ctx context.Context, tgID int64, c model.DialogueContext) error
	GetContext(ctx context.Context, tgID int64) (model.DialogueContext, bool, error)
	ClearContext(ctx context.Context, tgID int64) error

	SetListContext(ctx context.Context, tgID int64, v model.ListView) error
	GetListContext(ctx context.Context, tgID int64) (model.ListView, bool, error)
	ClearListContext(ctx context.Context, tgID int64) error

	// EndDialogue clears state, context and list context in that order.
	EndDialogue(ctx context.Context, tgID int64) error
}
