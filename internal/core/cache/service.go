package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"recipe-finder/internal/infrastructure/config"
	"recipe-finder/internal/pkg/common"

	"github.com/go-redis/redis/v8"
)

// Service caches serialized search responses in redis. Responses are keyed
// by the canonical request plus the snapshot generation, so a reload
// naturally invalidates every cached entry.
type Service struct {
	client *redis.Client
	config *config.CacheConfig
}

// NewService creates the cache service. With caching disabled it returns a
// no-op service and never touches redis.
func NewService(cfg *config.CacheConfig) (*Service, error) {
	if !cfg.Enabled {
		return &Service{config: cfg}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Service{
		client: client,
		config: cfg,
	}, nil
}

// Enabled reports whether the cache is active.
func (s *Service) Enabled() bool {
	return s.config.Enabled && s.client != nil
}

// GetSearch returns a cached search response, or ErrCacheMiss.
func (s *Service) GetSearch(ctx context.Context, key string) ([]byte, error) {
	if !s.Enabled() {
		return nil, common.ErrCacheDisabled
	}

	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			common.LogCacheMiss("search", key)
			return nil, common.ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get cache: %w", err)
	}

	common.LogCacheHit("search", key)
	return data, nil
}

// SetSearch stores a search response with the configured TTL.
func (s *Service) SetSearch(ctx context.Context, key string, payload []byte) error {
	if !s.Enabled() {
		return nil
	}
	if err := s.client.Set(ctx, key, payload, s.config.TTL).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Close releases the redis connection.
func (s *Service) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

// SearchKey derives the cache key for one search request against one
// snapshot generation.
func SearchKey(generation string, canonicalRequest []byte) string {
	h := sha256.New()
	h.Write([]byte(generation))
	h.Write([]byte{0})
	h.Write(canonicalRequest)
	return "search:" + hex.EncodeToString(h.Sum(nil))
}
