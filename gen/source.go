// Package gen builds the command table from a live server's COMMAND reply.
package gen

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/fzft/go-redis-commands/config"
)

// RawCommand is one entry of the COMMAND reply, before corrections.
type RawCommand struct {
	Name     string
	Arity    int
	Flags    []string
	FirstKey int
	LastKey  int
	Step     int
}

// Source reports the commands a server knows, keyed by name.
type Source interface {
	Commands(ctx context.Context) (map[string]RawCommand, error)
}

// RedisSource introspects a server through COMMAND.
type RedisSource struct {
	client *redis.Client
}

func NewRedisSource(client *redis.Client) *RedisSource {
	return &RedisSource{client: client}
}

// Dial connects to the server described by cfg.
func Dial(cfg config.RedisConfig) *RedisSource {
	return NewRedisSource(redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Username:     cfg.Username,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.Timeout,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
	}))
}

func (s *RedisSource) Commands(ctx context.Context) (map[string]RawCommand, error) {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping %s: %w", s.client.Options().Addr, err)
	}
	infos, err := s.client.Command(ctx).Result()
	if err != nil {
		return nil, fmt.Errorf("command: %w", err)
	}
	cmds := make(map[string]RawCommand, len(infos))
	for name, info := range infos {
		cmds[name] = RawCommand{
			Name:     info.Name,
			Arity:    int(info.Arity),
			Flags:    info.Flags,
			FirstKey: int(info.FirstKeyPos),
			LastKey:  int(info.LastKeyPos),
			Step:     int(info.StepCount),
		}
	}
	return cmds, nil
}

func (s *RedisSource) Close() error {
	return s.client.Close()
}
