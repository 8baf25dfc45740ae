package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/local/lessonplanner/internal/session"
)

func newTestSessions(t *testing.T, ttl time.Duration) (*RedisSessions, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	s, err := NewRedisSessions("redis://"+mr.Addr(), ttl)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func TestRedisSessionsRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestSessions(t, time.Hour)

	empty, err := s.Get(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, session.State(""), empty.State)
	assert.NotNil(t, empty.Meta)

	in := session.Session{
		State:       "await_chapter",
		Meta:        map[string]string{session.KeyGrade: "7", session.KeySubject: "Science"},
		TemplateRef: "s3://templates/lesson.docx",
	}
	require.NoError(t, s.Put(ctx, 5, in))

	got, err := s.Get(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, in.State, got.State)
	assert.Equal(t, in.Meta, got.Meta)
	assert.Equal(t, in.TemplateRef, got.TemplateRef)
	assert.False(t, got.UpdatedAt.IsZero())
	assert.Equal(t, time.Hour, mr.TTL("lessonplanner:session:5"))
}

func TestRedisSessionsExpire(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestSessions(t, time.Minute)
	require.NoError(t, s.Put(ctx, 9, session.Session{State: "await_text"}))
	mr.FastForward(2 * time.Minute)

	got, err := s.Get(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, session.State(""), got.State)
}

func TestRedisSessionsTarget(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSessions(t, 0)

	_, ok, err := s.Target(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SetTarget(ctx, -1001234))
	id, ok, err := s.Target(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(-1001234), id)
}

func TestRedisSessionsWithClient(t *testing.T) {
	mr := miniredis.RunT(t)
	c := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := NewRedisSessionsWithClient(c, 0)
	defer s.Close()
	require.NoError(t, s.Ping(context.Background()))
	assert.Equal(t, session.DefaultTTL, s.ttl)
}

func TestNewRedisSessionsBadURL(t *testing.T) {
	_, err := NewRedisSessions("not a url", time.Minute)
	assert.Error(t, err)
}

var _ session.Store = (*RedisSessions)(nil)
var _ session.Store = (*session.MemoryStore)(nil)
