package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisOptions(t *testing.T) {
	opts, err := redisOptions("redis://localhost:6379/2", 25)
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", opts.Addr)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, 25, opts.PoolSize)
	assert.Equal(t, RedisMinIdle, opts.MinIdleConns)
	assert.Equal(t, RedisDialTimeout, opts.DialTimeout)
}

func TestRedisOptions_KeepsDefaultPool(t *testing.T) {
	opts, err := redisOptions("redis://localhost:6379/0", 0)
	require.NoError(t, err)
	assert.Zero(t, opts.PoolSize)
}

func TestRedisOptions_BadURL(t *testing.T) {
	_, err := redisOptions("http://localhost", 10)
	assert.Error(t, err)
}
