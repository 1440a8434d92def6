package memstorage

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arzfeed/pricegate-api/internal/domain/apikey"
)

func seedKey(t *testing.T, repo *APIKeyRepository, prefix string) *apikey.APIKey {
	t.Helper()
	key := &apikey.APIKey{
		KeyHash:        "hash-" + prefix,
		Prefix:         prefix,
		Last4:          "abcd",
		OwnerAccountID: "demo:alice@example.com",
		OwnerEmail:     "alice@example.com",
		PlanSlug:       "starter",
		Status:         apikey.StatusActive,
	}
	id, err := repo.Create(context.Background(), key)
	require.NoError(t, err)
	key.ID = id
	return key
}

func TestFindByPrefixActiveOnly(t *testing.T) {
	repo := NewAPIKeyRepository()
	ctx := context.Background()
	key := seedKey(t, repo, "aaaaaaaa")

	found, err := repo.FindByPrefix(ctx, "aaaaaaaa")
	require.NoError(t, err)
	assert.Equal(t, key.ID, found.ID)

	require.NoError(t, repo.Revoke(ctx, key.ID))

	_, err = repo.FindByPrefix(ctx, "aaaaaaaa")
	assert.ErrorIs(t, err, apikey.ErrAPIKeyNotFound)
}

func TestRevokeIdempotent(t *testing.T) {
	repo := NewAPIKeyRepository()
	ctx := context.Background()
	key := seedKey(t, repo, "bbbbbbbb")

	require.NoError(t, repo.Revoke(ctx, key.ID))

	got, err := repo.FindByID(ctx, key.ID)
	require.NoError(t, err)
	require.NotNil(t, got.RevokedAt)
	first := *got.RevokedAt

	time.Sleep(time.Millisecond)
	require.NoError(t, repo.Revoke(ctx, key.ID))

	got, err = repo.FindByID(ctx, key.ID)
	require.NoError(t, err)
	assert.Equal(t, apikey.StatusRevoked, got.Status)
	assert.True(t, got.RevokedAt.Equal(first), "second revoke must not move the timestamp")
}

func TestRotateSwapsCredential(t *testing.T) {
	repo := NewAPIKeyRepository()
	ctx := context.Background()
	key := seedKey(t, repo, "cccccccc")

	rotated, err := repo.Rotate(ctx, key.ID, apikey.Rotation{
		KeyHash: "hash-new",
		Prefix:  "dddddddd",
		Last4:   "wxyz",
	})
	require.NoError(t, err)
	assert.Equal(t, key.ID, rotated.ID)
	assert.Equal(t, "dddddddd", rotated.Prefix)

	_, err = repo.FindByPrefix(ctx, "cccccccc")
	assert.ErrorIs(t, err, apikey.ErrAPIKeyNotFound)

	found, err := repo.FindByPrefix(ctx, "dddddddd")
	require.NoError(t, err)
	assert.Equal(t, "hash-new", found.KeyHash)
}

func TestRotateRevokedKey(t *testing.T) {
	repo := NewAPIKeyRepository()
	ctx := context.Background()
	key := seedKey(t, repo, "eeeeeeee")

	require.NoError(t, repo.Revoke(ctx, key.ID))

	_, err := repo.Rotate(ctx, key.ID, apikey.Rotation{KeyHash: "h", Prefix: "ffffffff", Last4: "0000"})
	assert.ErrorIs(t, err, apikey.ErrAPIKeyNotFound)
}

// Concurrent lookups during rotation must only ever see one credential.
// The new prefix is checked first: once it resolves, rotation has landed,
// so a later lookup of the old prefix must fail.
func TestRotateAtomicUnderConcurrentLookups(t *testing.T) {
	repo := NewAPIKeyRepository()
	ctx := context.Background()
	key := seedKey(t, repo, "gggggggg")

	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			for j := 0; j < 500; j++ {
				_, newErr := repo.FindByPrefix(ctx, "hhhhhhhh")
				_, oldErr := repo.FindByPrefix(ctx, "gggggggg")
				if newErr == nil && oldErr == nil {
					t.Error("both old and new credentials resolved at once")
					return
				}
			}
		}()
	}

	close(start)
	_, err := repo.Rotate(ctx, key.ID, apikey.Rotation{
		KeyHash: "hash-rotated",
		Prefix:  "hhhhhhhh",
		Last4:   "9999",
	})
	require.NoError(t, err)
	wg.Wait()

	_, err = repo.FindByPrefix(ctx, "gggggggg")
	assert.ErrorIs(t, err, apikey.ErrAPIKeyNotFound)
	_, err = repo.FindByPrefix(ctx, "hhhhhhhh")
	assert.NoError(t, err)
}

func TestListByOwnerNewestFirst(t *testing.T) {
	repo := NewAPIKeyRepository()
	ctx := context.Background()

	older := &apikey.APIKey{
		Prefix: "11111111", OwnerAccountID: "acct-1",
		Status: apikey.StatusActive, CreatedAt: time.Now().UTC().Add(-time.Hour),
	}
	newer := &apikey.APIKey{
		Prefix: "22222222", OwnerAccountID: "acct-1",
		Status: apikey.StatusActive, CreatedAt: time.Now().UTC(),
	}
	other := &apikey.APIKey{
		Prefix: "33333333", OwnerAccountID: "acct-2",
		Status: apikey.StatusActive, CreatedAt: time.Now().UTC(),
	}
	for _, k := range []*apikey.APIKey{older, newer, other} {
		_, err := repo.Create(ctx, k)
		require.NoError(t, err)
	}

	keys, err := repo.ListByOwner(ctx, "acct-1")
	require.NoError(t, err)
	require.Len(t, keys, 2)
	assert.Equal(t, "22222222", keys[0].Prefix)
	assert.Equal(t, "11111111", keys[1].Prefix)
}
