// Quoifaire - Personalized Event Discovery
// Copyright 2026 M. Larcin (mlarcin)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlarcin/quoifaire

// Package cache provides a BadgerDB-backed response cache for the
// recommendation engine. Entries carry a TTL and are invalidated per
// user when fresh feedback or a forced refresh lands.
package cache

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/mlarcin/quoifaire/internal/metrics"
	"github.com/mlarcin/quoifaire/internal/recommend"
)

const responseKeyPrefix = "resp:"

// ResponseCache caches whole recommendation responses keyed per request
// shape. It implements recommend.ResponseCache; store failures are
// logged and treated as misses, never surfaced.
type ResponseCache struct {
	db     *badger.DB
	ttl    time.Duration
	logger zerolog.Logger
}

// Open opens the Badger store at path. An empty path runs in-memory,
// which tests and ephemeral deployments use.
func Open(path string, ttl time.Duration, logger zerolog.Logger) (*ResponseCache, error) {
	opts := badger.DefaultOptions(path).
		WithLogger(nil).
		WithInMemory(path == "")

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open response cache: %w", err)
	}
	return &ResponseCache{
		db:     db,
		ttl:    ttl,
		logger: logger.With().Str("component", "cache").Logger(),
	}, nil
}

// Close closes the underlying store.
func (c *ResponseCache) Close() error {
	if err := c.db.Close(); err != nil {
		return fmt.Errorf("failed to close response cache: %w", err)
	}
	return nil
}

// userPrefix groups all keys of one user so invalidation is a single
// prefix scan.
func userPrefix(userID int64) []byte {
	return fmt.Appendf(nil, "%s%d:", responseKeyPrefix, userID)
}

func fullKey(userID int64, key string) []byte {
	return append(userPrefix(userID), key...)
}

// Get returns the cached response for key, if present and unexpired.
// Badger drops expired entries on read, so TTL needs no sweeper here.
func (c *ResponseCache) Get(userID int64, key string) (*recommend.Response, bool) {
	var resp recommend.Response
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(fullKey(userID, key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &resp)
		})
	})
	if err != nil {
		if !errors.Is(err, badger.ErrKeyNotFound) {
			c.logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
		}
		return nil, false
	}
	return &resp, true
}

// Set stores a response under key with the configured TTL.
func (c *ResponseCache) Set(userID int64, key string, resp *recommend.Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache encode failed")
		return
	}
	err = c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(fullKey(userID, key), data).WithTTL(c.ttl)
		return txn.SetEntry(entry)
	})
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}

// InvalidateUser drops every cached response of one user.
func (c *ResponseCache) InvalidateUser(userID int64) {
	prefix := userPrefix(userID)
	err := c.db.Update(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: prefix})
		defer it.Close()

		var keys [][]byte
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		for _, k := range keys {
			if err := txn.Delete(k); err != nil {
				return err
			}
			metrics.CacheEvictions.Inc()
		}
		return nil
	})
	if err != nil {
		c.logger.Warn().Err(err).Int64("user_id", userID).Msg("cache invalidation failed")
	}
}
