package wizard

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clubtoros/toros-backend/internal/models"
)

func TestInMemorySessionStore(t *testing.T) {
	ctx := context.Background()
	store := NewInMemorySessionStore(time.Hour)
	clock := now
	store.now = func() time.Time { return clock }

	session := &Session{ID: "s1", UserID: "u1", State: NewState(now), UpdatedAt: now}
	require.NoError(t, store.Save(ctx, session))

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	got.State.Draft.FirstName = "changed"

	again, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "", again.State.Draft.FirstName)

	clock = now.Add(2 * time.Hour)
	_, err = store.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Equal(t, 1, store.Sweep())
	assert.Equal(t, 0, store.Sweep())

	require.NoError(t, store.Delete(ctx, "missing"))
}

func TestRedisSessionStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedisSessionStore(client, time.Minute)
	id := uuid.NewString()
	state := Reduce(NewState(now), DraftPatch{Sex: ptr(models.SexFemale), FirstName: ptr("Ana")})
	require.NoError(t, store.Save(ctx, &Session{ID: id, UserID: "u1", State: state}))

	got, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.State.Draft.FirstName)
	assert.Equal(t, models.SexFemale, got.State.Draft.Sex)
	assert.Equal(t, now.Format(models.DateLayout), got.State.Draft.BirthDate.String())

	require.NoError(t, store.Delete(ctx, id))
	_, err = store.Get(ctx, id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
