package memory

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const (
	defaultRedisTimeout = 5 * time.Second
	scanCount           = 100
)

// DefaultRedisPrefix is used when no prefix is given. Clear only removes the keys under the prefix.
const DefaultRedisPrefix = "resample-pipeline:"

// Redis stores the entries as Redis strings under a key prefix.
type Redis struct {
	client  redis.UniversalClient
	prefix  string
	ttl     time.Duration
	timeout time.Duration
}

// RedisOption configures a Redis memory.
type RedisOption func(r *Redis)

// RedisTimeout bounds every Redis call.
func RedisTimeout(timeout time.Duration) RedisOption {
	return func(r *Redis) {
		r.timeout = timeout
	}
}

// NewRedis creates a Redis memory. A zero ttl keeps entries until they are cleared.
// An empty prefix is replaced by DefaultRedisPrefix.
func NewRedis(client redis.UniversalClient, prefix string, ttl time.Duration, opts ...RedisOption) *Redis {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	r := &Redis{
		client:  client,
		prefix:  prefix,
		ttl:     ttl,
		timeout: defaultRedisTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

func (r *Redis) Location() string {
	return "redis://" + r.prefix
}

func (r *Redis) Get(key string) (*Entry, bool, error) {
	if err := validateKey(key); err != nil {
		return nil, false, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}

		return nil, false, errors.Wrapf(err, "unable to get entry %s", key)
	}

	entry, err := decodeEntry(data)
	if err != nil {
		return nil, false, errors.Wrapf(err, "entry %s", key)
	}

	return entry, true, nil
}

func (r *Redis) Set(key string, entry *Entry) error {
	if err := validateKey(key); err != nil {
		return err
	}

	data, err := encodeEntry(entry)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if err := r.client.Set(ctx, r.prefix+key, data, r.ttl).Err(); err != nil {
		return errors.Wrapf(err, "unable to set entry %s", key)
	}

	return nil
}

func (r *Redis) Clear() error {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	iter := r.client.Scan(ctx, 0, r.prefix+"*", scanCount).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			return errors.Wrapf(err, "unable to delete %s", iter.Val())
		}
	}
	if err := iter.Err(); err != nil {
		return errors.Wrap(err, "unable to scan entries")
	}

	return nil
}

var _ Memory = (*Redis)(nil)
