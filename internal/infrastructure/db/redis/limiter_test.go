package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiter_Allow_FirstHit(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	key := keyPrefix + "login:10.0.0.1"
	mock.ExpectEvalSha(incrExpire.Hash(), []string{key}, int64(60000)).SetVal(int64(1))
	mock.ExpectPTTL(key).SetVal(45 * time.Second)

	l := NewLimiter(rdb, 3, time.Minute)
	d, err := l.Allow(context.Background(), "login:10.0.0.1")

	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 3, d.Limit)
	assert.Equal(t, 2, d.Remaining)
	assert.Equal(t, 45*time.Second, d.Reset)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLimiter_Allow_OverLimit(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	key := keyPrefix + "login:10.0.0.1"
	mock.ExpectEvalSha(incrExpire.Hash(), []string{key}, int64(60000)).SetVal(int64(4))
	mock.ExpectPTTL(key).SetVal(-1)

	l := NewLimiter(rdb, 3, time.Minute)
	d, err := l.Allow(context.Background(), "login:10.0.0.1")

	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)
	assert.Equal(t, time.Minute, d.Reset, "falls back to the window when no ttl")
}

func TestLimiter_Allow_RedisDown(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	key := keyPrefix + "register:10.0.0.2"
	mock.ExpectEvalSha(incrExpire.Hash(), []string{key}, int64(60000)).SetErr(errors.New("connection refused"))

	l := NewLimiter(rdb, 3, time.Minute)
	_, err := l.Allow(context.Background(), "register:10.0.0.2")
	assert.Error(t, err)
}

func TestLimiter_Enabled(t *testing.T) {
	rdb, _ := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	assert.True(t, NewLimiter(rdb, 10, time.Minute).Enabled())
	assert.False(t, NewLimiter(nil, 10, time.Minute).Enabled())
	assert.False(t, NewLimiter(rdb, 0, time.Minute).Enabled())

	var l *Limiter
	assert.False(t, l.Enabled())
}
