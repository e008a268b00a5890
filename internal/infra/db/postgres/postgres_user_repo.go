package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-subscription-tracker/internal/domain/model"
	"telegram-subscription-tracker/internal/domain/ports/repository"
)

var _ repository.UserRepository = (*userRepo)(nil)

type userRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *userRepo {
	return &userRepo{pool: pool}
}

func (r *userRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	const q = `
INSERT INTO users (id, telegram_id, first_name, registered_at)
VALUES ($1,$2,$3,$4)
ON CONFLICT (id) DO UPDATE SET
  telegram_id=$2, first_name=$3;`
	_, err := execSQL(ctx, r.pool, tx, q, u.ID, u.TelegramID, u.FirstName, u.RegisteredAt)
	return mapErr("user_save", err)
}

const selectUser = `SELECT id, telegram_id, first_name, registered_at FROM users`

func (r *userRepo) FindByTelegramID(ctx context.Context, tx repository.Tx, tgID int64) (*model.User, error) {
	return r.scanOne(ctx, tx, selectUser+` WHERE telegram_id=$1;`, tgID)
}

func (r *userRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	return r.scanOne(ctx, tx, selectUser+` WHERE id=$1;`, id)
}

func (r *userRepo) scanOne(ctx context.Context, tx repository.Tx, q string, arg interface{}) (*model.User, error) {
	var u model.User
	row := pickRow(ctx, r.pool, tx, q, arg)
	if err := row.Scan(&u.ID, &u.TelegramID, &u.FirstName, &u.RegisteredAt); err != nil {
		return nil, mapErr("user_find", err)
	}
	return &u, nil
}

func (r *userRepo) CountUsers(ctx context.Context, tx repository.Tx) (int, error) {
	var n int
	if err := pickRow(ctx, r.pool, tx, `SELECT COUNT(*) FROM users;`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", mapErr("user_count", err))
	}
	return n, nil
}
