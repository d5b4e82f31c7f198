package history

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fill(t *testing.T, s Store, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, s.Remember(context.Background(), fmt.Sprintf("g%d", i)))
	}
}

func TestRingMostRecentFirst(t *testing.T) {
	s := NewRing(3)
	got, err := s.Recent(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)

	fill(t, s, 2)
	got, _ = s.Recent(context.Background())
	assert.Equal(t, []string{"g1", "g0"}, got)

	fill(t, s, 5)
	got, _ = s.Recent(context.Background())
	assert.Equal(t, []string{"g4", "g3", "g2"}, got)
}

func TestRingDefaultCapacity(t *testing.T) {
	s := NewRing(0)
	fill(t, s, DefaultCapacity+4)
	got, _ := s.Recent(context.Background())
	assert.Len(t, got, DefaultCapacity)
	assert.Equal(t, fmt.Sprintf("g%d", DefaultCapacity+3), got[0])
}

func TestRingConcurrent(t *testing.T) {
	s := NewRing(5)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.Remember(context.Background(), fmt.Sprintf("x%d", i))
			_, _ = s.Recent(context.Background())
		}(i)
	}
	wg.Wait()
	got, _ := s.Recent(context.Background())
	assert.Len(t, got, 5)
}

func newMiniredis(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestRedisStoreTrimsAndOrders(t *testing.T) {
	mr, rdb := newMiniredis(t)
	s, err := NewRedis(rdb, "test:recent", 3, nil)
	require.NoError(t, err)

	fill(t, s, 5)
	got, err := s.Recent(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"g4", "g3", "g2"}, got)

	raw, err := mr.List("test:recent")
	require.NoError(t, err)
	assert.Len(t, raw, 3)
}

func TestRedisStoreSharedBetweenInstances(t *testing.T) {
	_, rdb := newMiniredis(t)
	a, _ := NewRedis(rdb, "", 0, nil)
	b, _ := NewRedis(rdb, "", 0, nil)

	require.NoError(t, a.Remember(context.Background(), "from a"))
	got, err := b.Recent(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"from a"}, got)
}

func TestRedisStoreErrors(t *testing.T) {
	mr, rdb := newMiniredis(t)
	s, _ := NewRedis(rdb, "k", 2, nil)
	mr.SetError("LOADING")

	_, err := s.Recent(context.Background())
	assert.Error(t, err)
	assert.Error(t, s.Remember(context.Background(), "x"))

	_, err = NewRedis(nil, "k", 2, nil)
	assert.Error(t, err)
}

func TestDialRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	s, closeFn, err := DialRedis(context.Background(), RedisConfig{Addr: mr.Addr(), Capacity: 2}, nil)
	require.NoError(t, err)
	defer closeFn()
	fill(t, s, 3)
	got, _ := s.Recent(context.Background())
	assert.Equal(t, []string{"g2", "g1"}, got)

	_, _, err = DialRedis(context.Background(), RedisConfig{}, nil)
	assert.Error(t, err)
}
