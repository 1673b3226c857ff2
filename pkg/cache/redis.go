package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/sma-timetable-engine/pkg/config"
)

const (
	clientName = "timetable-engine"
	// Catalog lookups sit on the generate path, so a slow Redis must fail fast and fall back to Postgres.
	commandTimeout = 500 * time.Millisecond
	connectTimeout = 5 * time.Second

	catalogNamespace = "catalog"
)

// NewRedis returns a Redis client for the catalog cache after checking it answers.
func NewRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		ClientName:   clientName,
		DialTimeout:  connectTimeout,
		ReadTimeout:  commandTimeout,
		WriteTimeout: commandTimeout,
		MaxRetries:   1,
	})

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis %s: %w", addr, err)
	}

	return client, nil
}

// CatalogKey is the cache key of one department lookup, e.g. "catalog:inst-1:faculty:science".
func CatalogKey(instituteID, kind, department string) string {
	return strings.Join([]string{catalogNamespace, instituteID, kind, department}, ":")
}

// CatalogPattern matches every catalog key of the institute. Glob characters in the id are escaped
// so one institute can never match another's keys.
func CatalogPattern(instituteID string) string {
	return catalogNamespace + ":" + escapeGlob(instituteID) + ":*"
}

func escapeGlob(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
