package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*goredis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := Connect(context.Background(), Config{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func TestConnect_FailsWithoutServer(t *testing.T) {
	_, err := Connect(context.Background(), Config{Addr: "127.0.0.1:1", Timeout: 200 * time.Millisecond})
	assert.Error(t, err)
}

func TestWindowStore_AppendPruneGet(t *testing.T) {
	client, _ := newTestClient(t)
	s := NewWindowStore(client)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, s.Append(ctx, "k", base.Add(2*time.Second), time.Hour))
	require.NoError(t, s.Append(ctx, "k", base, time.Hour))
	require.NoError(t, s.Append(ctx, "k", base, time.Hour))
	require.NoError(t, s.Append(ctx, "k", base.Add(time.Second), time.Hour))

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.Len(t, got, 4, "equal timestamps are kept separately")
	assert.True(t, got[0].Equal(base))
	assert.True(t, got[3].Equal(base.Add(2*time.Second)))

	require.NoError(t, s.Prune(ctx, "k", base.Add(time.Second)))
	got, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Len(t, got, 2, "the cutoff itself is kept")

	require.NoError(t, s.Delete(ctx, "k"))
	got, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestWindowStore_KeyExpires(t *testing.T) {
	client, mr := newTestClient(t)
	s := NewWindowStore(client)
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, "k", time.Now(), time.Minute))
	assert.True(t, mr.Exists("window:k"))

	mr.FastForward(time.Minute + time.Second)
	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestWindowStore_Locks(t *testing.T) {
	client, mr := newTestClient(t)
	s := NewWindowStore(client)
	ctx := context.Background()
	at := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)

	_, ok, err := s.GetLock(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SetLock(ctx, "alice", at, 15*time.Minute))
	got, ok, err := s.GetLock(ctx, "alice")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, got.Equal(at))

	mr.FastForward(16 * time.Minute)
	_, ok, err = s.GetLock(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SetLock(ctx, "bob", at, time.Hour))
	require.NoError(t, s.ClearLock(ctx, "bob"))
	_, ok, err = s.GetLock(ctx, "bob")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWindowStore_CorruptLock(t *testing.T) {
	client, mr := newTestClient(t)
	require.NoError(t, mr.Set("lock:x", "not-a-number"))

	_, _, err := NewWindowStore(client).GetLock(context.Background(), "x")
	assert.Error(t, err)
}

func TestWindowStore_ErrorsWhenServerDown(t *testing.T) {
	client, mr := newTestClient(t)
	s := NewWindowStore(client)
	mr.Close()

	_, err := s.Get(context.Background(), "k")
	assert.Error(t, err)
	assert.Error(t, s.Append(context.Background(), "k", time.Now(), time.Minute))
}

func TestTokenStore(t *testing.T) {
	client, mr := newTestClient(t)
	s := NewTokenStore(client)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "csrf:abc", time.Hour))
	ok, err := s.Exists(ctx, "csrf:abc")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, mr.Exists("token:csrf:abc"))

	mr.FastForward(time.Hour)
	ok, err = s.Exists(ctx, "csrf:abc")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Put(ctx, "csrf:def", time.Hour))
	require.NoError(t, s.Delete(ctx, "csrf:def"))
	ok, err = s.Exists(ctx, "csrf:def")
	require.NoError(t, err)
	assert.False(t, ok)
}
