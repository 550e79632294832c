package cache

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryHook answers GET, SET, DEL and INCR from a map so the client never dials.
type memoryHook struct {
	mu   sync.Mutex
	data map[string]string
	ttl  map[string]time.Duration
}

func (h *memoryHook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return nil, fmt.Errorf("unexpected dial to %s", addr)
	}
}

func (h *memoryHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		for _, cmd := range cmds {
			if err := h.process(cmd); err != nil {
				return err
			}
		}
		return nil
	}
}

func (h *memoryHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		return h.process(cmd)
	}
}

func (h *memoryHook) process(cmd redis.Cmder) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	args := cmd.Args()
	switch c := cmd.(type) {
	case *redis.StringCmd:
		if v, ok := h.data[argString(args[1])]; ok {
			c.SetVal(v)
		} else {
			c.SetErr(redis.Nil)
		}
	case *redis.StatusCmd:
		key := argString(args[1])
		h.data[key] = argString(args[2])
		h.ttl[key] = 0
		if len(args) == 5 {
			n, _ := strconv.ParseInt(argString(args[4]), 10, 64)
			if strings.EqualFold(argString(args[3]), "px") {
				h.ttl[key] = time.Duration(n) * time.Millisecond
			} else {
				h.ttl[key] = time.Duration(n) * time.Second
			}
		}
		c.SetVal("OK")
	case *redis.IntCmd:
		switch cmd.Name() {
		case "incr":
			key := argString(args[1])
			n, _ := strconv.ParseInt(h.data[key], 10, 64)
			n++
			h.data[key] = strconv.FormatInt(n, 10)
			c.SetVal(n)
		case "del":
			var removed int64
			for _, a := range args[1:] {
				key := argString(a)
				if _, ok := h.data[key]; ok {
					delete(h.data, key)
					removed++
				}
			}
			c.SetVal(removed)
		}
	default:
		return fmt.Errorf("unsupported command %s", cmd.Name())
	}
	return nil
}

func argString(a interface{}) string {
	switch v := a.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}

func newTestCache(t *testing.T) (*RedisCache, *memoryHook) {
	t.Helper()
	hook := &memoryHook{data: map[string]string{}, ttl: map[string]time.Duration{}}
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	client.AddHook(hook)
	c := NewRedisCacheFromClient(client)
	t.Cleanup(func() { _ = c.Close() })
	return c, hook
}

func TestRedisCacheGetMissing(t *testing.T) {
	c, _ := newTestCache(t)

	_, err := c.Get(context.Background(), "settings:0:facility:5")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisCacheJSONRoundTrip(t *testing.T) {
	c, hook := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, c, "settings:0:facility:5", map[string]int{"max_nights": 3}, 10*time.Minute))

	var got map[string]int
	require.NoError(t, GetJSON(ctx, c, "settings:0:facility:5", &got))
	assert.Equal(t, map[string]int{"max_nights": 3}, got)
	assert.Equal(t, 10*time.Minute, hook.ttl["settings:0:facility:5"])
}

func TestRedisCacheGenerationCounter(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	n, err := c.Increment(ctx, "settings:gen")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = c.Increment(ctx, "settings:gen")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	// The resolver reads the generation back as a string to build its keys.
	gen, err := c.Get(ctx, "settings:gen")
	require.NoError(t, err)
	assert.Equal(t, "2", gen)
}

func TestRedisCacheDelete(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "a", "1", 0))
	require.NoError(t, c.Set(ctx, "b", "2", 0))

	require.NoError(t, c.Delete(ctx))
	require.NoError(t, c.Delete(ctx, "a", "b"))

	_, err := c.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = c.Get(ctx, "b")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNoopAlwaysMisses(t *testing.T) {
	ctx := context.Background()
	var c Cache = Noop{}

	require.NoError(t, SetJSON(ctx, c, "k", "v", time.Minute))
	var got string
	assert.ErrorIs(t, GetJSON(ctx, c, "k", &got), ErrNotFound)
	n, err := c.Increment(ctx, "settings:gen")
	require.NoError(t, err)
	assert.Zero(t, n)
}
