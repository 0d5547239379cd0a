package credstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/jafsabakes/storefront/credstore"
)

func newRedisStore(t *testing.T) *credstore.RedisStore {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return credstore.NewRedisStore(rdb, time.Hour)
}

func storesUnderTest(t *testing.T) map[string]credstore.Store {
	return map[string]credstore.Store{
		"memory": credstore.NewInMemoryStore(),
		"redis":  newRedisStore(t),
	}
}

func TestStore_SaveLoadClear(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			creds := credstore.Credentials{
				AccessToken:  "access-abc",
				RefreshToken: "refresh-def",
				ProfileJSON:  `{"id":7,"username":"admin"}`,
			}
			require.NoError(t, store.Save(ctx, "profile-1", creds))

			loaded, err := store.Load(ctx, "profile-1")
			require.NoError(t, err)
			require.Equal(t, creds, loaded)

			require.NoError(t, store.Clear(ctx, "profile-1"))

			loaded, err = store.Load(ctx, "profile-1")
			require.NoError(t, err)
			require.True(t, loaded.Empty())
		})
	}
}

func TestStore_LoadNeverWritten(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			loaded, err := store.Load(context.Background(), "unknown-profile")
			require.NoError(t, err)
			require.True(t, loaded.Empty())
		})
	}
}

func TestStore_ClearIsIdempotent(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, store.Clear(ctx, "profile-1"))
			require.NoError(t, store.Clear(ctx, "profile-1"))
		})
	}
}

func TestStore_SaveOverwritesAllValues(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, store.Save(ctx, "profile-1", credstore.Credentials{
				AccessToken:  "old-access",
				RefreshToken: "old-refresh",
				ProfileJSON:  `{"id":1}`,
			}))
			require.NoError(t, store.Save(ctx, "profile-1", credstore.Credentials{
				AccessToken: "new-access",
			}))

			loaded, err := store.Load(ctx, "profile-1")
			require.NoError(t, err)
			require.Equal(t, "new-access", loaded.AccessToken)
			require.Empty(t, loaded.RefreshToken)
			require.Empty(t, loaded.ProfileJSON)
		})
	}
}

func TestStore_ProfilesAreIsolated(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, store.Save(ctx, "profile-a", credstore.Credentials{AccessToken: "a"}))
			require.NoError(t, store.Save(ctx, "profile-b", credstore.Credentials{AccessToken: "b"}))
			require.NoError(t, store.Clear(ctx, "profile-a"))

			loaded, err := store.Load(ctx, "profile-b")
			require.NoError(t, err)
			require.Equal(t, "b", loaded.AccessToken)
		})
	}
}

func TestForProfile(t *testing.T) {
	ctx := context.Background()
	store := credstore.NewInMemoryStore()
	bound := credstore.ForProfile(store, "profile-9")

	require.NoError(t, bound.Save(ctx, credstore.Credentials{AccessToken: "tok"}))

	direct, err := store.Load(ctx, "profile-9")
	require.NoError(t, err)
	require.Equal(t, "tok", direct.AccessToken)

	require.NoError(t, bound.Clear(ctx))
	loaded, err := bound.Load(ctx)
	require.NoError(t, err)
	require.True(t, loaded.Empty())
}
