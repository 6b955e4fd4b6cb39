package agent

import (
	"context"
	"fmt"

	"github.com/joeshaw/envdecode"
	"github.com/redis/go-redis/v9"

	"connsettings/internal/codec"
	"connsettings/internal/setting"
	"connsettings/internal/wire"
)

// RedisConfig configures the Redis agent. Defaults can be loaded via
// envdecode.
type RedisConfig struct {
	// Addr like "localhost:6379". ENV: CONNSETTINGS_REDIS_ADDR
	Addr string `env:"CONNSETTINGS_REDIS_ADDR,default=localhost:6379"`
	// KeyPrefix for all keys. ENV: CONNSETTINGS_AGENT_KEY_PREFIX
	KeyPrefix string `env:"CONNSETTINGS_AGENT_KEY_PREFIX,default=connsettings:secrets:"`
}

// Redis stores each connection's secrets in a hash with one field per
// setting. A field holds a single-setting connection document as JSON.
type Redis struct {
	client    *redis.Client
	keyPrefix string
	reg       *setting.Registry
}

// NewRedis connects to Redis and checks the server answers
func NewRedis(ctx context.Context, cfg RedisConfig) (*Redis, error) {
	if cfg.Addr == "" {
		cfg.Addr = "localhost:6379"
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "connsettings:secrets:"
	}
	cl := redis.NewClient(&redis.Options{Addr: cfg.Addr})
	if err := cl.Ping(ctx).Err(); err != nil {
		cl.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewRedisWithClient(cl, cfg.KeyPrefix), nil
}

// NewRedisFromEnv builds the agent using envdecode to populate the config
func NewRedisFromEnv(ctx context.Context) (*Redis, error) {
	var cfg RedisConfig
	_ = envdecode.Decode(&cfg)
	return NewRedis(ctx, cfg)
}

// NewRedisWithClient wraps an existing client
func NewRedisWithClient(client *redis.Client, keyPrefix string) *Redis {
	return &Redis{client: client, keyPrefix: keyPrefix, reg: setting.Default}
}

// Close closes the Redis client
func (r *Redis) Close() error { return r.client.Close() }

func (r *Redis) key(uuid string) string { return r.keyPrefix + uuid }

func (r *Redis) GetSecrets(ctx context.Context, uuid, settingName string) (wire.Map, error) {
	data, err := r.client.HGet(ctx, r.key(uuid), settingName).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get secrets: %w", err)
	}

	conn, err := codec.DecodeJSON(r.reg, data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode secrets: %w", err)
	}
	return conn[settingName], nil
}

func (r *Redis) SaveSecrets(ctx context.Context, uuid string, secrets wire.Connection) error {
	key := r.key(uuid)
	var set []any
	var del []string
	for _, name := range secrets.Names() {
		s := secrets[name]
		if len(s) == 0 {
			del = append(del, name)
			continue
		}
		data, err := codec.EncodeJSON(wire.Connection{name: s})
		if err != nil {
			return err
		}
		set = append(set, name, data)
	}

	_, err := r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		if len(set) > 0 {
			p.HSet(ctx, key, set...)
		}
		if len(del) > 0 {
			p.HDel(ctx, key, del...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save secrets: %w", err)
	}
	return nil
}

func (r *Redis) DeleteSecrets(ctx context.Context, uuid string) error {
	if err := r.client.Del(ctx, r.key(uuid)).Err(); err != nil {
		return fmt.Errorf("failed to delete secrets: %w", err)
	}
	return nil
}
