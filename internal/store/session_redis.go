package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/local/lessonplanner/internal/session"
)

// RedisSessions shares conversation sessions between bot replicas.
type RedisSessions struct {
	client *redis.Client
	keyNS  string
	ttl    time.Duration
}

func NewRedisSessions(redisURL string, ttl time.Duration) (*RedisSessions, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	c := redis.NewClient(opt)
	if err := c.Ping(context.Background()).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewRedisSessionsWithClient(c, ttl), nil
}

func NewRedisSessionsWithClient(c *redis.Client, ttl time.Duration) *RedisSessions {
	if ttl <= 0 {
		ttl = session.DefaultTTL
	}
	return &RedisSessions{client: c, keyNS: "lessonplanner", ttl: ttl}
}

func (s *RedisSessions) key(chatID int64) string {
	return fmt.Sprintf("%s:session:%d", s.keyNS, chatID)
}

func (s *RedisSessions) targetKey() string { return s.keyNS + ":admin:target" }

func (s *RedisSessions) Get(ctx context.Context, chatID int64) (session.Session, error) {
	res, err := s.client.HGetAll(ctx, s.key(chatID)).Result()
	if err != nil {
		return session.Session{}, fmt.Errorf("load session %d: %w", chatID, err)
	}
	st := session.Session{Meta: map[string]string{}}
	if len(res) == 0 {
		return st, nil
	}
	st.State = session.State(res["state"])
	st.TemplateRef = res["template"]
	if v := res["updated"]; v != "" {
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			st.UpdatedAt = t
		}
	}
	if v := res["meta"]; v != "" {
		if err := json.Unmarshal([]byte(v), &st.Meta); err != nil {
			return session.Session{}, fmt.Errorf("decode session %d meta: %w", chatID, err)
		}
	}
	return st, nil
}

func (s *RedisSessions) Put(ctx context.Context, chatID int64, st session.Session) error {
	meta := st.Meta
	if meta == nil {
		meta = map[string]string{}
	}
	b, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encode session meta: %w", err)
	}
	m := map[string]interface{}{
		"state":    string(st.State),
		"template": st.TemplateRef,
		"updated":  time.Now().UTC().Format(time.RFC3339Nano),
		"meta":     string(b),
	}
	k := s.key(chatID)
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, k, m)
	pipe.Expire(ctx, k, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save session %d: %w", chatID, err)
	}
	return nil
}

func (s *RedisSessions) Target(ctx context.Context) (int64, bool, error) {
	v, err := s.client.Get(ctx, s.targetKey()).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("stored target %q: %w", v, err)
	}
	return id, true, nil
}

func (s *RedisSessions) SetTarget(ctx context.Context, chatID int64) error {
	return s.client.Set(ctx, s.targetKey(), strconv.FormatInt(chatID, 10), 0).Err()
}

// Ping is used by the status endpoint.
func (s *RedisSessions) Ping(ctx context.Context) error { return s.client.Ping(ctx).Err() }

func (s *RedisSessions) Close() error { return s.client.Close() }
