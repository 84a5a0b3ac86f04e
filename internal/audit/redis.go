package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spigell/candidate-assessor/internal/domain"
)

const (
	redisSessionPrefix = "assessor:audit:session:"
	redisStreamKey     = "assessor:audit:events"
	redisStreamCap     = 10000
)

// RedisSink keeps per-session audit lists in Redis with a retention TTL and
// a capped list of the latest events across sessions.
type RedisSink struct {
	client *redis.Client
	ttl    time.Duration
}

var _ Sink = (*RedisSink)(nil)

type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

func NewRedisSink(opts RedisOptions) *RedisSink {
	return NewRedisSinkFromClient(redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), opts.TTL)
}

func NewRedisSinkFromClient(client *redis.Client, ttl time.Duration) *RedisSink {
	return &RedisSink{client: client, ttl: ttl}
}

func (s *RedisSink) Name() string {
	return "redis"
}

func (s *RedisSink) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisSink) Write(ctx context.Context, entry domain.ComplianceLog) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encoding audit event: %w", err)
	}

	pipe := s.client.TxPipeline()
	if entry.SessionID != "" {
		key := redisSessionPrefix + entry.SessionID
		pipe.RPush(ctx, key, payload)
		if s.ttl > 0 {
			pipe.Expire(ctx, key, s.ttl)
		}
	}
	pipe.LPush(ctx, redisStreamKey, payload)
	pipe.LTrim(ctx, redisStreamKey, 0, redisStreamCap-1)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("writing audit event to redis: %w", err)
	}
	return nil
}

// SessionLogs reads back the records of sessionID in recording order.
func (s *RedisSink) SessionLogs(ctx context.Context, sessionID string) ([]domain.ComplianceLog, error) {
	return s.readList(ctx, redisSessionPrefix+sessionID, -1)
}

// Recent returns up to n of the newest records, newest first.
func (s *RedisSink) Recent(ctx context.Context, n int64) ([]domain.ComplianceLog, error) {
	return s.readList(ctx, redisStreamKey, n-1)
}

func (s *RedisSink) readList(ctx context.Context, key string, stop int64) ([]domain.ComplianceLog, error) {
	raw, err := s.client.LRange(ctx, key, 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("reading audit events from redis: %w", err)
	}

	logs := make([]domain.ComplianceLog, 0, len(raw))
	for _, item := range raw {
		var l domain.ComplianceLog
		if err := json.Unmarshal([]byte(item), &l); err != nil {
			return nil, fmt.Errorf("decoding audit event: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, nil
}

func (s *RedisSink) Close() error {
	return s.client.Close()
}
