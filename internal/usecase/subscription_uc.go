package usecase

import (
	"context"
	"errors"
	"fmt"

	"telegram-subscription-tracker/internal/domain"
	"telegram-subscription-tracker/internal/domain/model"
	"telegram-subscription-tracker/internal/domain/ports/repository"
	"telegram-subscription-tracker/internal/infra/logging"
	"telegram-subscription-tracker/internal/infra/metrics"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ SubscriptionUseCase = (*subscriptionUC)(nil)

// DefaultPageSize is the number of records on one list page.
const DefaultPageSize = 5

// SubscriptionUseCase manages a user's tracked records. Every method is
// scoped to ownerID: a record owned by someone else reads as domain.ErrNotFound.
type SubscriptionUseCase interface {
	Page(ctx context.Context, ownerID string, page int, view model.ListView) (*model.Page, error)
	Get(ctx context.Context, ownerID string, id int64) (*model.Subscription, error)
	Save(ctx context.Context, ownerID string, s *model.Subscription) error
	Delete(ctx context.Context, ownerID string, id int64) error
}

type subscriptionUC struct {
	subs     repository.SubscriptionRepository
	tm       repository.TransactionManager
	pageSize int
	log      *zerolog.Logger
}

func NewSubscriptionUseCase(subs repository.SubscriptionRepository, tm repository.TransactionManager, pageSize int, logger *zerolog.Logger) *subscriptionUC {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &subscriptionUC{subs: subs, tm: tm, pageSize: pageSize, log: logger}
}

// Page returns page n of the owner's records, clamped to the pages that exist.
func (uc *subscriptionUC) Page(ctx context.Context, ownerID string, n int, view model.ListView) (*model.Page, error) {
	defer logging.TraceDuration(uc.log, "SubscriptionUC.Page")()

	if !model.IsSortField(view.SortField) {
		view = model.DefaultListView()
	}
	var p *model.Page
	err := uc.tm.WithTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly}, func(ctx context.Context, tx repository.Tx) error {
		total, err := uc.subs.CountByUser(ctx, tx, ownerID)
		if err != nil {
			return err
		}
		n = model.ClampPage(n, total, uc.pageSize)
		items, err := uc.subs.ListByUser(ctx, tx, ownerID, n, uc.pageSize, view)
		if err != nil {
			return err
		}
		p = &model.Page{
			Items:         items,
			Number:        n,
			Size:          uc.pageSize,
			TotalPages:    model.TotalPages(total, uc.pageSize),
			TotalElements: total,
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list page %d: %w", n, err)
	}
	return p, nil
}

func (uc *subscriptionUC) Get(ctx context.Context, ownerID string, id int64) (*model.Subscription, error) {
	defer logging.TraceDuration(uc.log, "SubscriptionUC.Get")()
	return uc.owned(ctx, repository.NoTX, ownerID, id)
}

// owned loads a record and hides it unless ownerID owns it.
func (uc *subscriptionUC) owned(ctx context.Context, tx repository.Tx, ownerID string, id int64) (*model.Subscription, error) {
	s, err := uc.subs.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if s.UserID != ownerID {
		uc.log.Warn().Int64("record_id", id).Msg("record requested by a non-owner")
		return nil, domain.ErrNotFound
	}
	return s, nil
}

// Save inserts a new record for ownerID or updates one the owner already has.
func (uc *subscriptionUC) Save(ctx context.Context, ownerID string, s *model.Subscription) error {
	defer logging.TraceDuration(uc.log, "SubscriptionUC.Save")()

	if s == nil {
		return domain.ErrInvalidArgument
	}
	s.UserID = ownerID
	if err := s.Validate(); err != nil {
		return err
	}
	if s.IsNew() {
		if err := uc.subs.Save(ctx, repository.NoTX, s); err != nil {
			return fmt.Errorf("insert record: %w", err)
		}
		metrics.IncSubscriptionChange("create")
		uc.log.Info().Int64("record_id", s.ID).Str("user_id", ownerID).Msg("record created")
		return nil
	}

	err := uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if _, err := uc.owned(ctx, tx, ownerID, s.ID); err != nil {
			return err
		}
		return uc.subs.Save(ctx, tx, s)
	})
	if err != nil {
		return fmt.Errorf("update record %d: %w", s.ID, err)
	}
	metrics.IncSubscriptionChange("update")
	return nil
}

func (uc *subscriptionUC) Delete(ctx context.Context, ownerID string, id int64) error {
	defer logging.TraceDuration(uc.log, "SubscriptionUC.Delete")()

	err := uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if _, err := uc.owned(ctx, tx, ownerID, id); err != nil {
			return err
		}
		return uc.subs.DeleteByID(ctx, tx, id)
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("delete record %d: %w", id, err)
	}
	metrics.IncSubscriptionChange("delete")
	return nil
}
