package store

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/go-redis/redis/v8"
)

// DefaultRedisPrefix namespaces build hashes.
const DefaultRedisPrefix = "buildplanner:builds:"

// RedisOption configures a Redis store.
type RedisOption func(*Redis)

// WithRedisPrefix overrides the key prefix.
func WithRedisPrefix(prefix string) RedisOption {
	return func(r *Redis) { r.prefix = prefix }
}

// WithRedisAuth sets the password and database number.
func WithRedisAuth(password string, db int) RedisOption {
	return func(r *Redis) { r.password, r.db = password, db }
}

// Redis stores each owner's builds in one hash, one field per build name.
type Redis struct {
	client   *redis.Client
	prefix   string
	password string
	db       int
}

// OpenRedis connects to addr and checks the connection.
func OpenRedis(addr string, opts ...RedisOption) (*Redis, error) {
	r := &Redis{prefix: DefaultRedisPrefix}
	for _, opt := range opts {
		opt(r)
	}
	r.client = redis.NewClient(&redis.Options{Addr: addr, Password: r.password, DB: r.db})
	if err := r.client.Ping(context.Background()).Err(); err != nil {
		_ = r.client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return r, nil
}

// NewRedis wraps an existing client.
func NewRedis(client *redis.Client, opts ...RedisOption) *Redis {
	r := &Redis{client: client, prefix: DefaultRedisPrefix}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Redis) key(owner string) string { return r.prefix + owner }

func (r *Redis) Save(ctx context.Context, owner, name string, data []byte) error {
	owner, name, err := clean(owner, name)
	if err != nil {
		return err
	}
	if err := r.client.HSet(ctx, r.key(owner), name, data).Err(); err != nil {
		return fmt.Errorf("save build: %w", err)
	}
	return nil
}

func (r *Redis) Load(ctx context.Context, owner, name string) ([]byte, error) {
	owner, name, err := clean(owner, name)
	if err != nil {
		return nil, err
	}
	b, err := r.client.HGet(ctx, r.key(owner), name).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load build: %w", err)
	}
	return b, nil
}

func (r *Redis) List(ctx context.Context, owner string) ([]string, error) {
	names, err := r.client.HKeys(ctx, r.key(owner)).Result()
	if err != nil {
		return nil, fmt.Errorf("list builds: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

func (r *Redis) Delete(ctx context.Context, owner, name string) error {
	owner, name, err := clean(owner, name)
	if err != nil {
		return err
	}
	n, err := r.client.HDel(ctx, r.key(owner), name).Result()
	if err != nil {
		return fmt.Errorf("delete build: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Client exposes the underlying connection so other components can share it.
func (r *Redis) Client() *redis.Client { return r.client }

// Close closes the client.
func (r *Redis) Close() error { return r.client.Close() }
