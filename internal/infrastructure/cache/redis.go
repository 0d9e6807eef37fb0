// Package cache implementa el cache de proyecciones de lectura sobre Redis.
// Los valores se serializan como JSON; cada clave lleva TTL corto y el
// coordinador invalida al confirmar movimientos, así el cache nunca es fuente
// de verdad.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/luc4n/StockMaster/internal/application/movement"
	"github.com/luc4n/StockMaster/internal/application/reporting"
	"github.com/luc4n/StockMaster/pkg/config"
	"github.com/luc4n/StockMaster/pkg/logger"
)

var (
	_ reporting.Cache           = (*RedisCache)(nil)
	_ movement.CacheInvalidator = (*RedisCache)(nil)
)

// RedisCache cache de lecturas sobre Redis.
type RedisCache struct {
	client *redis.Client
	log    *logger.Logger
}

// NewRedisCache conecta con Redis y verifica la conexión.
func NewRedisCache(cfg config.RedisConfig, log *logger.Logger) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("conectar a Redis: %w", err)
	}
	return &RedisCache{client: client, log: log}, nil
}

// Get deserializa el valor cacheado en value. Error = cache miss para el caller.
func (c *RedisCache) Get(ctx context.Context, key string, value any) error {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, value)
}

// Set serializa y guarda el valor con TTL.
func (c *RedisCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("serializar valor de cache: %w", err)
	}
	return c.client.Set(ctx, key, raw, ttl).Err()
}

// Delete elimina claves. Ignora claves inexistentes.
func (c *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// InvalidateBalances borra el resumen de flota y los saldos de los vendedores
// tocados por un movimiento confirmado. Best-effort: una falla se loguea y no
// afecta la operación ya confirmada.
func (c *RedisCache) InvalidateBalances(ctx context.Context, vendorIDs ...string) {
	keys := []string{reporting.FleetSummaryKey}
	for _, id := range vendorIDs {
		keys = append(keys, reporting.VendorBalancesKey(id))
	}
	if err := c.Delete(ctx, keys...); err != nil {
		c.log.Warn().Err(err).Strs("keys", keys).Msg("no se pudo invalidar cache")
	}
}

// Close cierra la conexión con Redis.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
