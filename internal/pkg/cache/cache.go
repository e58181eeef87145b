package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/subkassa/autopay/internal/pkg/env"
)

var (
	client *redis.Client
	ctx    = context.Background()
)

// SetupCache initializes the connection to the Redis cache server
func SetupCache() {
	host := env.GetEnv("CACHE_HOST", "localhost")
	port := env.GetEnv("CACHE_PORT", "6379")

	client = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", host, port),
		Password: env.GetEnv("CACHE_PASSWORD", ""),
		DB:       0, // use default DB
	})

	// Test the connection
	pong, err := client.Ping(ctx).Result()
	if err != nil {
		log.Printf("Warning: Could not connect to Redis cache: %v", err)
	} else {
		log.Printf("Successfully connected to Redis cache: %s", pong)
	}
}

// GetClient returns the Redis client instance
func GetClient() *redis.Client {
	if client == nil {
		SetupCache()
	}
	return client
}

// Set stores a value in the cache with the given key and expiration time
func Set(key string, value interface{}, expiration time.Duration) error {
	return GetClient().Set(ctx, key, value, expiration).Err()
}

// Get retrieves a value from the cache by key
func Get(key string) (string, error) {
	return GetClient().Get(ctx, key).Result()
}

// Delete removes a value from the cache by key
func Delete(key string) error {
	return GetClient().Del(ctx, key).Err()
}

func chargeLockKey(subscriptionID uint) string {
	return fmt.Sprintf("autopay:charge_lock:%d", subscriptionID)
}

// AcquireChargeLock takes a short-lived exclusive lock for charging one
// subscription so overlapping passes do not double-charge it. Returns
// whether the lock was taken; an error means Redis was unreachable and the
// caller decides how to proceed.
func AcquireChargeLock(subscriptionID uint, ttl time.Duration) (bool, error) {
	return GetClient().SetNX(ctx, chargeLockKey(subscriptionID), 1, ttl).Result()
}

// ReleaseChargeLock drops the charge lock for a subscription
func ReleaseChargeLock(subscriptionID uint) error {
	return GetClient().Del(ctx, chargeLockKey(subscriptionID)).Err()
}
