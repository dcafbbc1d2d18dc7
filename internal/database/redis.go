package database

import (
	"context"

	"github.com/go-redis/redis/v8"

	"github.com/Owujuah/apex-living/config"
)

// ConnectRedis builds the redis client used for the user cache and the
// platform stats snapshot. Callers own the returned client's lifecycle.
func ConnectRedis(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisFullAddr(),
		Password: cfg.RedisPassword,
		DB:       0, // use default DB
	})

	if _, err := client.Ping(context.Background()).Result(); err != nil {
		return nil, err
	}
	return client, nil
}
