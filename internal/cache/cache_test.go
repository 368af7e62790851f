package cache

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Summary string   `json:"summary"`
	Skills  []string `json:"skills"`
}

func TestMemory_SetAndGet(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()

	require.NoError(t, c.SetJSON(ctx, "skillgap:1:abc", payload{Summary: "ok", Skills: []string{"Go"}}, time.Minute))

	var got payload
	found, err := c.GetJSON(ctx, "skillgap:1:abc", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "ok", got.Summary)
	assert.Equal(t, []string{"Go"}, got.Skills)

	found, err = c.GetJSON(ctx, "skillgap:1:missing", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemory_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMemory()
	c.SetClock(func() time.Time { return now })

	require.NoError(t, c.SetJSON(ctx, "k", "v", time.Minute))

	now = now.Add(59 * time.Second)
	var got string
	found, _ := c.GetJSON(ctx, "k", &got)
	assert.True(t, found)

	now = now.Add(time.Second)
	found, _ = c.GetJSON(ctx, "k", &got)
	assert.False(t, found)
}

func TestMemory_DeleteByPattern(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()
	for _, k := range []string{"skillgap:1:a", "skillgap:1:b", "skillgap:2:a", "insights:1:a"} {
		require.NoError(t, c.SetJSON(ctx, k, 1, 0))
	}

	require.NoError(t, c.DeleteByPattern(ctx, "skillgap:1:*"))

	var v int
	for k, want := range map[string]bool{
		"skillgap:1:a": false,
		"skillgap:1:b": false,
		"skillgap:2:a": true,
		"insights:1:a": true,
	} {
		found, _ := c.GetJSON(ctx, k, &v)
		assert.Equal(t, want, found, k)
	}
}

func TestMemory_SetIfNotExists(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	c := NewMemory()
	c.SetClock(func() time.Time { return now })

	ok, err := c.SetIfNotExists(ctx, "lock:analysis:1", "owner", time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.SetIfNotExists(ctx, "lock:analysis:1", "other", time.Second)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Delete(ctx, "lock:analysis:1"))
	ok, _ = c.SetIfNotExists(ctx, "lock:analysis:1", "other", time.Second)
	assert.True(t, ok)

	// expired locks can be taken again
	now = now.Add(2 * time.Second)
	ok, _ = c.SetIfNotExists(ctx, "lock:analysis:1", "third", time.Second)
	assert.True(t, ok)
}

func TestNop(t *testing.T) {
	ctx := context.Background()
	var c Cache = Nop{}

	require.NoError(t, c.SetJSON(ctx, "k", "v", 0))
	var got string
	found, err := c.GetJSON(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, found)

	ok, err := c.SetIfNotExists(ctx, "k", "v", 0)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedis_BypassWhenUnreachable(t *testing.T) {
	ctx := context.Background()
	// port 1 is never a redis server
	r := NewRedis(ctx, Options{Addr: "127.0.0.1:1"}, zerolog.Nop())

	assert.False(t, r.Available())
	assert.Error(t, r.Ping(ctx))
	assert.NoError(t, r.SetJSON(ctx, "k", "v", 0))

	var got string
	found, err := r.GetJSON(ctx, "k", &got)
	assert.NoError(t, err)
	assert.False(t, found)

	ok, err := r.SetIfNotExists(ctx, "lock", "v", 0)
	assert.NoError(t, err)
	assert.True(t, ok)
	released, err := r.DeleteIfValue(ctx, "lock", "v")
	assert.NoError(t, err)
	assert.True(t, released)
	assert.NoError(t, r.DeleteByPattern(ctx, "*"))
	assert.NoError(t, r.Close())
}

func TestMemory_DeleteIfValue(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()

	ok, err := c.SetIfNotExists(ctx, "lock:analysis:1", "owner", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	removed, err := c.DeleteIfValue(ctx, "lock:analysis:1", "someone-else")
	require.NoError(t, err)
	assert.False(t, removed)

	ok, _ = c.SetIfNotExists(ctx, "lock:analysis:1", "other", time.Minute)
	assert.False(t, ok, "mismatched value leaves the key in place")

	removed, err = c.DeleteIfValue(ctx, "lock:analysis:1", "owner")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = c.DeleteIfValue(ctx, "lock:analysis:1", "owner")
	require.NoError(t, err)
	assert.False(t, removed, "missing key")
}
