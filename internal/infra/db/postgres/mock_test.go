//go:build !integration

package postgres

import (
	"context"
	"time"

	"telegram-subscription-tracker/internal/domain/model"
	"telegram-subscription-tracker/internal/domain/ports/repository"
	red "telegram-subscription-tracker/internal/infra/redis"
)

// --- Mocks for Cache Decorator Tests ---

// mockInnerSubscriptionRepo mocks the database repository that the decorator wraps.
type mockInnerSubscriptionRepo struct {
	SaveFunc       func(ctx context.Context, tx repository.Tx, s *model.Subscription) error
	FindByIDFunc   func(ctx context.Context, tx repository.Tx, id int64) (*model.Subscription, error)
	DeleteByIDFunc func(ctx context.Context, tx repository.Tx, id int64) error
}

func (m *mockInnerSubscriptionRepo) Save(ctx context.Context, tx repository.Tx, s *model.Subscription) error {
	return m.SaveFunc(ctx, tx, s)
}
func (m *mockInnerSubscriptionRepo) FindByID(ctx context.Context, tx repository.Tx, id int64) (*model.Subscription, error) {
	return m.FindByIDFunc(ctx, tx, id)
}
func (m *mockInnerSubscriptionRepo) DeleteByID(ctx context.Context, tx repository.Tx, id int64) error {
	return m.DeleteByIDFunc(ctx, tx, id)
}
func (m *mockInnerSubscriptionRepo) CountByUser(context.Context, repository.Tx, string) (int, error) {
	return 0, nil
}
func (m *mockInnerSubscriptionRepo) ListByUser(context.Context, repository.Tx, string, int, int, model.ListView) ([]*model.Subscription, error) {
	return nil, nil
}
func (m *mockInnerSubscriptionRepo) FindDueOn(context.Context, repository.Tx, time.Time) ([]*repository.DueSubscription, error) {
	return nil, nil
}
func (m *mockInnerSubscriptionRepo) FindPaymentDateBefore(context.Context, repository.Tx, time.Time) ([]*model.Subscription, error) {
	return nil, nil
}

// mockRedisClient mocks our Redis client wrapper.
type mockRedisClient struct {
	GetFunc func(ctx context.Context, key string) (string, error)
	SetFunc func(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	DelFunc func(ctx context.Context, keys ...string) error
}

var _ red.RedisClient = &mockRedisClient{}

func (m *mockRedisClient) Get(ctx context.Context, key string) (string, error) {
	return m.GetFunc(ctx, key)
}
func (m *mockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return m.SetFunc(ctx, key, value, expiration)
}
func (m *mockRedisClient) Del(ctx context.Context, keys ...string) error {
	return m.DelFunc(ctx, keys...)
}
func (m *mockRedisClient) Ping(ctx context.Context) error { return nil }
func (m *mockRedisClient) SetNX(context.Context, string, interface{}, time.Duration) (bool, error) {
	return true, nil
}
func (m *mockRedisClient) Incr(context.Context, string) (int64, error) { return 0, nil }
func (m *mockRedisClient) Expire(context.Context, string, time.Duration) error { return nil }
func (m *mockRedisClient) DelIfEquals(context.Context, string, string) (bool, error) {
	return false, nil
}
func (m *mockRedisClient) Close() error { return nil }
