// Package rediscache implements the region cache over redis. Values are JSON
// under "cache:<region>:<key>"; clearing a region deletes every key under its
// prefix, which is the only supported invalidation.
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/adboardhq/adboard/pkg/helpers"
)

const keyPrefix = "cache:"

type Store struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *logrus.Logger
}

func NewStore(rdb *redis.Client, ttl time.Duration, logger *logrus.Logger) *Store {
	return &Store{rdb: rdb, ttl: ttl, logger: logger}
}

func cacheKey(region, key string) string {
	return keyPrefix + region + ":" + key
}

// Get unmarshals the cached value for (region, key) into dest and reports
// whether it was present.
func (s *Store) Get(ctx context.Context, region, key string, dest any) (bool, error) {
	b, err := s.rdb.Get(ctx, cacheKey(region, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(b, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) Put(ctx context.Context, region, key string, value any) error {
	return helpers.RedisSetJSON(ctx, s.rdb, cacheKey(region, key), value, s.ttl)
}

// Clear drops every key in the region by scanning its prefix. Coarse on
// purpose: per-key invalidation is not offered.
func (s *Store) Clear(ctx context.Context, region string) error {
	return s.clearPrefix(ctx, keyPrefix+region+":*")
}

// ClearAll drops every cached region. Exposed to operators for recovery.
func (s *Store) ClearAll(ctx context.Context) error {
	return s.clearPrefix(ctx, keyPrefix+"*")
}

func (s *Store) clearPrefix(ctx context.Context, match string) error {
	iter := s.rdb.Scan(ctx, 0, match, 0).Iterator()
	batch := make([]string, 0, 128)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == cap(batch) {
			if err := s.rdb.Del(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		if err := s.rdb.Del(ctx, batch...).Err(); err != nil {
			return err
		}
	}
	if s.logger != nil {
		s.logger.WithField("match", match).Debug("cache region cleared")
	}
	return nil
}
