package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"telegram-subscription-tracker/internal/domain/model"
	"telegram-subscription-tracker/internal/domain/ports/repository"
	"telegram-subscription-tracker/internal/infra/metrics"
	red "telegram-subscription-tracker/internal/infra/redis"
)

const subscriptionCacheName = "subscription"

var _ repository.SubscriptionRepository = (*subscriptionRepoCacheDecorator)(nil)

// subscriptionRepoCacheDecorator caches single records by id. Lists and
// scheduler queries always go to the database.
type subscriptionRepoCacheDecorator struct {
	inner repository.SubscriptionRepository
	cache red.RedisClient
	ttl   time.Duration
}

func NewSubscriptionRepoCacheDecorator(inner repository.SubscriptionRepository, cache red.RedisClient, ttl time.Duration) repository.SubscriptionRepository {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &subscriptionRepoCacheDecorator{inner: inner, cache: cache, ttl: ttl}
}

func subscriptionKey(id int64) string { return fmt.Sprintf("subscription:id:%d", id) }

func (d *subscriptionRepoCacheDecorator) Save(ctx context.Context, tx repository.Tx, s *model.Subscription) error {
	if !s.IsNew() {
		_ = d.cache.Del(ctx, subscriptionKey(s.ID))
	}
	return d.inner.Save(ctx, tx, s)
}

func (d *subscriptionRepoCacheDecorator) DeleteByID(ctx context.Context, tx repository.Tx, id int64) error {
	_ = d.cache.Del(ctx, subscriptionKey(id))
	return d.inner.DeleteByID(ctx, tx, id)
}

// FindByID only uses the cache outside a transaction so locked reads stay consistent.
func (d *subscriptionRepoCacheDecorator) FindByID(ctx context.Context, tx repository.Tx, id int64) (*model.Subscription, error) {
	if tx != nil {
		metrics.IncCacheRequest(subscriptionCacheName, "bypass")
		return d.inner.FindByID(ctx, tx, id)
	}

	key := subscriptionKey(id)
	val, err := d.cache.Get(ctx, key)
	if err == nil {
		var s model.Subscription
		if json.Unmarshal([]byte(val), &s) == nil {
			metrics.IncCacheRequest(subscriptionCacheName, metrics.CacheHit)
			return &s, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		metrics.IncCacheRequest(subscriptionCacheName, "error")
	}

	metrics.IncCacheRequest(subscriptionCacheName, metrics.CacheMiss)
	s, err := d.inner.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(s); err == nil {
		_ = d.cache.Set(ctx, key, b, d.ttl)
	}
	return s, nil
}

// Pass-through methods that don't need caching
func (d *subscriptionRepoCacheDecorator) CountByUser(ctx context.Context, tx repository.Tx, userID string) (int, error) {
	return d.inner.CountByUser(ctx, tx, userID)
}

func (d *subscriptionRepoCacheDecorator) ListByUser(ctx context.Context, tx repository.Tx, userID string, page, size int, view model.ListView) ([]*model.Subscription, error) {
	return d.inner.ListByUser(ctx, tx, userID, page, size, view)
}

func (d *subscriptionRepoCacheDecorator) FindDueOn(ctx context.Context, tx repository.Tx, day time.Time) ([]*repository.DueSubscription, error) {
	return d.inner.FindDueOn(ctx, tx, day)
}

func (d *subscriptionRepoCacheDecorator) FindPaymentDateBefore(ctx context.Context, tx repository.Tx, day time.Time) ([]*model.Subscription, error) {
	return d.inner.FindPaymentDateBefore(ctx, tx, day)
}
