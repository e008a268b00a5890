package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-subscription-tracker/internal/domain"
	"telegram-subscription-tracker/internal/domain/model"
	"telegram-subscription-tracker/internal/domain/ports/repository"
)

// Ensure subscriptionRepo implements repository.SubscriptionRepository
var _ repository.SubscriptionRepository = (*subscriptionRepo)(nil)

type subscriptionRepo struct {
	pool *pgxpool.Pool
}

func NewSubscriptionRepo(pool *pgxpool.Pool) *subscriptionRepo {
	return &subscriptionRepo{pool: pool}
}

const subscriptionColumns = `s.id, s.user_id, s.name, s.price_minor, s.payment_date, s.renewal_months, s.category, s.created_at`

// orderColumns whitelists the sort fields that may reach ORDER BY.
var orderColumns = map[string]string{
	model.SortByPaymentDate: "s.payment_date",
	model.SortByPrice:       "s.price_minor",
}

func orderBy(v model.ListView) string {
	col, ok := orderColumns[v.SortField]
	if !ok {
		col = orderColumns[model.SortByPaymentDate]
	}
	dir := "ASC"
	if v.Direction == model.SortDesc {
		dir = "DESC"
	}
	return fmt.Sprintf("%s %s, s.id ASC", col, dir)
}

func (r *subscriptionRepo) Save(ctx context.Context, tx repository.Tx, s *model.Subscription) error {
	if s.IsNew() {
		const q = `
INSERT INTO subscriptions (user_id, name, price_minor, payment_date, renewal_months, category)
VALUES ($1,$2,$3,$4,$5,$6)
RETURNING id, created_at;`
		row := pickRow(ctx, r.pool, tx, q, s.UserID, s.Name, s.PriceMinor, model.DateOf(s.PaymentDate), s.RenewalMonths, s.Category)
		return mapErr("subscription_insert", row.Scan(&s.ID, &s.CreatedAt))
	}

	const q = `
UPDATE subscriptions
   SET name=$2, price_minor=$3, payment_date=$4, renewal_months=$5, category=$6
 WHERE id=$1;`
	tag, err := execSQL(ctx, r.pool, tx, q, s.ID, s.Name, s.PriceMinor, model.DateOf(s.PaymentDate), s.RenewalMonths, s.Category)
	if err != nil {
		return mapErr("subscription_update", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *subscriptionRepo) FindByID(ctx context.Context, tx repository.Tx, id int64) (*model.Subscription, error) {
	q := `SELECT ` + subscriptionColumns + ` FROM subscriptions s WHERE s.id=$1;`
	var s model.Subscription
	if err := scanSubscription(pickRow(ctx, r.pool, tx, q, id), &s); err != nil {
		return nil, mapErr("subscription_find", err)
	}
	return &s, nil
}

func (r *subscriptionRepo) DeleteByID(ctx context.Context, tx repository.Tx, id int64) error {
	tag, err := execSQL(ctx, r.pool, tx, `DELETE FROM subscriptions WHERE id=$1;`, id)
	if err != nil {
		return mapErr("subscription_delete", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *subscriptionRepo) CountByUser(ctx context.Context, tx repository.Tx, userID string) (int, error) {
	var n int
	if err := pickRow(ctx, r.pool, tx, `SELECT COUNT(*) FROM subscriptions WHERE user_id=$1;`, userID).Scan(&n); err != nil {
		return 0, mapErr("subscription_count", err)
	}
	return n, nil
}

func (r *subscriptionRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string, page, size int, view model.ListView) ([]*model.Subscription, error) {
	if page < 0 || size <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	q := `SELECT ` + subscriptionColumns + `
  FROM subscriptions s
 WHERE s.user_id=$1
 ORDER BY ` + orderBy(view) + `
 LIMIT $2 OFFSET $3;`
	rows, err := queryRows(ctx, r.pool, tx, q, userID, size, page*size)
	if err != nil {
		return nil, mapErr("subscription_list", err)
	}
	defer rows.Close()

	var out []*model.Subscription
	for rows.Next() {
		var s model.Subscription
		if err := scanSubscription(rows, &s); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, &s)
	}
	return out, mapErr("subscription_list", rows.Err())
}

func (r *subscriptionRepo) FindDueOn(ctx context.Context, tx repository.Tx, day time.Time) ([]*repository.DueSubscription, error) {
	q := `SELECT ` + subscriptionColumns + `, u.telegram_id, COALESCE(st.reminder_days_before, $2)
  FROM subscriptions s
  JOIN users u ON u.id = s.user_id
  LEFT JOIN user_settings st ON st.user_id = s.user_id
 WHERE COALESCE(st.reminders_enabled, TRUE)
   AND s.payment_date = $1::date + COALESCE(st.reminder_days_before, $2)::int
 ORDER BY s.id;`
	defaults := model.DefaultSettings("")
	rows, err := queryRows(ctx, r.pool, tx, q, model.DateOf(day), defaults.ReminderDaysBefore)
	if err != nil {
		return nil, mapErr("subscription_due", err)
	}
	defer rows.Close()

	var out []*repository.DueSubscription
	for rows.Next() {
		var (
			s    model.Subscription
			tgID int64
			days int
		)
		if err := rows.Scan(&s.ID, &s.UserID, &s.Name, &s.PriceMinor, &s.PaymentDate, &s.RenewalMonths, &s.Category, &s.CreatedAt, &tgID, &days); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, &repository.DueSubscription{Subscription: &s, TelegramID: tgID, DaysBefore: days})
	}
	return out, mapErr("subscription_due", rows.Err())
}

func (r *subscriptionRepo) FindPaymentDateBefore(ctx context.Context, tx repository.Tx, day time.Time) ([]*model.Subscription, error) {
	q := `SELECT ` + subscriptionColumns + `
  FROM subscriptions s
 WHERE s.payment_date < $1
 ORDER BY s.id
   FOR UPDATE;`
	rows, err := queryRows(ctx, r.pool, tx, q, model.DateOf(day))
	if err != nil {
		return nil, mapErr("subscription_overdue", err)
	}
	defer rows.Close()

	var out []*model.Subscription
	for rows.Next() {
		var s model.Subscription
		if err := scanSubscription(rows, &s); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, &s)
	}
	return out, mapErr("subscription_overdue", rows.Err())
}

func scanSubscription(row pgx.Row, s *model.Subscription) error {
	return row.Scan(&s.ID, &s.UserID, &s.Name, &s.PriceMinor, &s.PaymentDate, &s.RenewalMonths, &s.Category, &s.CreatedAt)
}
