package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStorage shares local storage between front-end nodes and announces
// every mutation on a pub/sub channel.
type RedisStorage struct {
	rdb     *redis.Client
	channel string
	origin  string
	ttl     time.Duration
}

// NewRedisClient creates and pings a Redis client.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return rdb, nil
}

// NewRedisStorage wraps rdb. origin identifies this node in change events;
// a zero ttl keeps items until removed.
func NewRedisStorage(rdb *redis.Client, channel, origin string, ttl time.Duration) *RedisStorage {
	return &RedisStorage{rdb: rdb, channel: channel, origin: origin, ttl: ttl}
}

func (s *RedisStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	value, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return value, true, nil
}

func (s *RedisStorage) SetItem(ctx context.Context, key, value string) error {
	if err := s.rdb.Set(ctx, key, value, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	s.announce(ctx, Event{Key: key, Value: value, Origin: s.origin})
	return nil
}

func (s *RedisStorage) RemoveItem(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	s.announce(ctx, Event{Key: key, Removed: true, Origin: s.origin})
	return nil
}

func (s *RedisStorage) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// announce is best effort: the write already succeeded.
func (s *RedisStorage) announce(ctx context.Context, ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		log.Printf("storage: encoding change event: %v", err)
		return
	}
	if err := s.rdb.Publish(ctx, s.channel, payload).Err(); err != nil {
		log.Printf("storage: publishing change of %s: %v", ev.Key, err)
	}
}

func (s *RedisStorage) Watch(ctx context.Context, fn func(Event)) error {
	sub := s.rdb.Subscribe(ctx, s.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("redis subscribe %s: %w", s.channel, err)
	}

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.Printf("storage: dropping malformed change event: %v", err)
				continue
			}
			if ev.Origin == s.origin {
				continue
			}
			fn(ev)
		}
	}
}
