package caching

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"funnelcrm/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Tenant and subscription rows are read on nearly every operation, so they
// get a short-lived cache in front of the store. Writers invalidate; stale
// reads self-heal at TTL.
const (
	tenantTTL       = 10 * time.Minute
	subscriptionTTL = 5 * time.Minute
)

type CacheService struct {
	client *redis.Client
}

func NewCacheService(addr, password string, db int) (*CacheService, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis connect: %w", err)
	}
	log.Println("Redis connected successfully")
	return &CacheService{client: client}, nil
}

func tenantKey(id uuid.UUID) string {
	return "tenant:" + id.String()
}

func subscriptionKey(tenantID uuid.UUID) string {
	return "subscription:tenant:" + tenantID.String()
}

// GetTenant returns the cached tenant, or nil on a miss.
func (c *CacheService) GetTenant(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	data, err := c.client.Get(ctx, tenantKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	tenant := &models.Tenant{}
	if err := json.Unmarshal(data, tenant); err != nil {
		return nil, err
	}
	return tenant, nil
}

func (c *CacheService) SetTenant(ctx context.Context, tenant *models.Tenant) error {
	data, err := json.Marshal(tenant)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, tenantKey(tenant.ID), data, tenantTTL).Err()
}

func (c *CacheService) InvalidateTenant(ctx context.Context, id uuid.UUID) error {
	return c.client.Del(ctx, tenantKey(id)).Err()
}

// GetSubscription returns the cached subscription for a tenant, or nil on a
// miss.
func (c *CacheService) GetSubscription(ctx context.Context, tenantID uuid.UUID) (*models.Subscription, error) {
	data, err := c.client.Get(ctx, subscriptionKey(tenantID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	sub := &models.Subscription{}
	if err := json.Unmarshal(data, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (c *CacheService) SetSubscription(ctx context.Context, sub *models.Subscription) error {
	data, err := json.Marshal(sub)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, subscriptionKey(sub.TenantID), data, subscriptionTTL).Err()
}

func (c *CacheService) InvalidateSubscription(ctx context.Context, tenantID uuid.UUID) error {
	return c.client.Del(ctx, subscriptionKey(tenantID)).Err()
}

// InvalidateTenantScope drops both tenant and subscription entries, used when
// a tenant-level write touches plan or status.
func (c *CacheService) InvalidateTenantScope(ctx context.Context, tenantID uuid.UUID) error {
	return c.client.Del(ctx, tenantKey(tenantID), subscriptionKey(tenantID)).Err()
}

func (c *CacheService) Close() error {
	return c.client.Close()
}
