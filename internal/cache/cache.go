// Package cache keeps serialized statistics answers.
package cache

import (
	"context"
	"fmt"
	"strings"

	"github.com/myshop/myshop-manager/internal/dependency"
)

const (
	TypeNone   = "none"
	TypeMemory = "memory"
	TypeRedis  = "redis"
)

type Config struct {
	Type      string `mapstructure:"type"`
	RedisAddr string `mapstructure:"redis_addr"`
	RedisDB   int    `mapstructure:"redis_db"`
	Prefix    string `mapstructure:"prefix"`
}

// New returns the statistics cache selected by c.Type, or nil when caching
// is disabled.
func New(ctx context.Context, c *Config) (dependency.StatsCache, error) {
	switch strings.ToLower(c.Type) {
	case "", TypeMemory:
		return NewMemory(), nil
	case TypeNone:
		return nil, nil
	case TypeRedis:
		r, err := NewRedis(ctx, c)
		if err != nil {
			return nil, err
		}
		return r, nil
	default:
		return nil, fmt.Errorf("unknown cache type %q", c.Type)
	}
}
