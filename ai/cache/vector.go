// Package cache provides caches for query embeddings.
package cache

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss indicates a cache miss.
var ErrCacheMiss = errors.New("cache miss")

// VectorCache stores embedding vectors by key.
type VectorCache interface {
	Get(ctx context.Context, key string) ([]float32, error)
	Set(ctx context.Context, key string, vector []float32, ttl time.Duration) error
	Close() error
}

// MemoryVectorCache is an in-process VectorCache backed by LRUCache.
type MemoryVectorCache struct {
	lru *LRUCache[string, []float32]
}

// NewMemoryVectorCache creates an in-process vector cache.
func NewMemoryVectorCache(capacity int, defaultTTL time.Duration) *MemoryVectorCache {
	return &MemoryVectorCache{lru: NewLRUCache[string, []float32](capacity, defaultTTL)}
}

func (c *MemoryVectorCache) Get(_ context.Context, key string) ([]float32, error) {
	v, ok := c.lru.Get(key)
	if !ok {
		return nil, ErrCacheMiss
	}
	return v, nil
}

func (c *MemoryVectorCache) Set(_ context.Context, key string, vector []float32, ttl time.Duration) error {
	c.lru.Set(key, vector, ttl)
	return nil
}

func (c *MemoryVectorCache) Close() error {
	c.lru.Clear()
	return nil
}

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	PoolSize int
	Prefix   string
}

// RedisVectorCache shares query embeddings between server instances.
type RedisVectorCache struct {
	client *redis.Client
	prefix string
}

// NewRedisVectorCache connects to Redis and verifies the connection with PING.
func NewRedisVectorCache(ctx context.Context, cfg RedisConfig) (*RedisVectorCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "neusearch:emb:"
	}
	return &RedisVectorCache{client: client, prefix: prefix}, nil
}

func (c *RedisVectorCache) Get(ctx context.Context, key string) ([]float32, error) {
	val, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return decodeVector(val)
}

func (c *RedisVectorCache) Set(ctx context.Context, key string, vector []float32, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.prefix+key, encodeVector(vector), ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (c *RedisVectorCache) Close() error {
	return c.client.Close()
}

// encodeVector packs a vector as little-endian float32s.
func encodeVector(vec []float32) []byte {
	buf := make([]byte, len(vec)*4)
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

func decodeVector(buf []byte) ([]float32, error) {
	if len(buf)%4 != 0 {
		return nil, fmt.Errorf("invalid vector payload length %d", len(buf))
	}
	vec := make([]float32, len(buf)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return vec, nil
}
