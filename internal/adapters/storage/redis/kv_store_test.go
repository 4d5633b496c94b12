package redis

import (
	"context"
	"errors"
	"testing"

	"petfy/internal/ports/kv"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	st, err := Open(context.Background(), Options{Addr: mr.Addr(), KeyPrefix: "petfy:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st, mr
}

func TestStore_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	st, mr := newTestStore(t)

	_, err := st.Get(ctx, "walkRequests")
	assert.True(t, errors.Is(err, kv.ErrNotFound))

	require.NoError(t, st.Set(ctx, "walkRequests", []byte(`[]`)))
	assert.True(t, mr.Exists("petfy:walkRequests"))

	b, err := st.Get(ctx, "walkRequests")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(b))

	require.NoError(t, st.Delete(ctx, "walkRequests"))
	assert.False(t, mr.Exists("petfy:walkRequests"))
}

func TestStore_KeysByPrefix(t *testing.T) {
	ctx := context.Background()
	st, _ := newTestStore(t)

	for _, k := range []string{"session:a:chat_2_Azul", "session:a:chat_1_Martin", "session:a:appRating", "session:b:chat_9_Sofia"} {
		require.NoError(t, st.Set(ctx, k, []byte("1")))
	}

	keys, err := st.Keys(ctx, "session:a:chat_")
	require.NoError(t, err)
	assert.Equal(t, []string{"session:a:chat_1_Martin", "session:a:chat_2_Azul"}, keys)
}

func TestStore_KeysEscapesGlob(t *testing.T) {
	ctx := context.Background()
	st, _ := newTestStore(t)

	require.NoError(t, st.Set(ctx, "chat_1_M*", []byte("1")))
	require.NoError(t, st.Set(ctx, "chat_1_Martin", []byte("1")))

	keys, err := st.Keys(ctx, "chat_1_M*")
	require.NoError(t, err)
	assert.Equal(t, []string{"chat_1_M*"}, keys)
}

func TestOpen_Unreachable(t *testing.T) {
	_, err := Open(context.Background(), Options{Addr: "127.0.0.1:1"})
	require.Error(t, err)
}

func TestNewStore_WithExistingClient(t *testing.T) {
	mr := miniredis.RunT(t)
	c := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	st := NewStore(c, "")
	defer st.Close()

	require.NoError(t, st.Set(context.Background(), "appRating", []byte("5")))
	v, err := mr.Get("appRating")
	require.NoError(t, err)
	assert.Equal(t, "5", v)
}
