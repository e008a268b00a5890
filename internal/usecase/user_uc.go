package usecase

import (
	"context"
	"errors"
	"time"

	"telegram-subscription-tracker/internal/domain"
	"telegram-subscription-tracker/internal/domain/model"
	"telegram-subscription-tracker/internal/domain/ports/repository"
	"telegram-subscription-tracker/internal/infra/logging"
	"telegram-subscription-tracker/internal/infra/metrics"

	"github.com/jackc/pgx/v4"
	"github.com/maypok86/otter"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ UserUseCase = (*userUC)(nil)

const (
	userCacheName     = "users"
	userCacheCapacity = 10_000
	userCacheTTL      = 10 * time.Minute
)

// UserUseCase resolves Telegram users to stored accounts.
type UserUseCase interface {
	FindOrCreate(ctx context.Context, tgID int64, firstName string) (*model.User, error)
	GetByTelegramID(ctx context.Context, tgID int64) (*model.User, error)
	Count(ctx context.Context) (int, error)
}

type userUC struct {
	users repository.UserRepository
	tm    repository.TransactionManager
	cache otter.Cache[int64, *model.User]
	log   *zerolog.Logger
}

func NewUserUseCase(users repository.UserRepository, tm repository.TransactionManager, logger *zerolog.Logger) (*userUC, error) {
	cache, err := otter.MustBuilder[int64, *model.User](userCacheCapacity).
		WithTTL(userCacheTTL).
		Build()
	if err != nil {
		return nil, err
	}
	return &userUC{users: users, tm: tm, cache: cache, log: logger}, nil
}

// FindOrCreate returns the account of tgID, registering it on first contact.
func (u *userUC) FindOrCreate(ctx context.Context, tgID int64, firstName string) (*model.User, error) {
	defer logging.TraceDuration(u.log, "UserUC.FindOrCreate")()

	if usr, ok := u.cache.Get(tgID); ok {
		metrics.IncCacheRequest(userCacheName, metrics.CacheHit)
		return usr, nil
	}
	metrics.IncCacheRequest(userCacheName, metrics.CacheMiss)

	var user *model.User
	created := false
	txOpts := pgx.TxOptions{IsoLevel: pgx.Serializable}
	err := u.tm.WithTx(ctx, txOpts, func(ctx context.Context, tx repository.Tx) error {
		usr, err := u.users.FindByTelegramID(ctx, tx, tgID)
		if err == nil {
			user = usr
			return nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		nu, err := model.NewUser("", tgID, firstName)
		if err != nil {
			return err
		}
		if err := u.users.Save(ctx, tx, nu); err != nil {
			return err
		}
		user, created = nu, true
		return nil
	})
	if err != nil {
		u.log.Error().Err(err).Int64("tg_id", tgID).Msg("failed to resolve user")
		return nil, err
	}
	if created {
		metrics.IncUsersRegistered()
		u.log.Info().Str("user_id", user.ID).Int64("tg_id", tgID).Msg("user registered")
	}
	u.cache.Set(tgID, user)
	return user, nil
}

func (u *userUC) GetByTelegramID(ctx context.Context, tgID int64) (*model.User, error) {
	defer logging.TraceDuration(u.log, "UserUC.GetByTelegramID")()
	if usr, ok := u.cache.Get(tgID); ok {
		return usr, nil
	}
	return u.users.FindByTelegramID(ctx, repository.NoTX, tgID)
}

func (u *userUC) Count(ctx context.Context) (int, error) {
	defer logging.TraceDuration(u.log, "UserUC.Count")()
	return u.users.CountUsers(ctx, repository.NoTX)
}
