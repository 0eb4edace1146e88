package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/lectoria/lectoria-api/internal/models"
	"github.com/lectoria/lectoria-api/internal/repository"
)

func setupDirectoryService(t *testing.T) (ActorDirectory, *miniredis.Miniredis, *gorm.DB) {
	t.Helper()

	db := setupServiceTestDB(t, &models.Actor{})

	mini := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	directory := NewDirectoryService(repository.NewActorRepository(db), client, time.Minute, zerolog.Nop())

	return directory, mini, db
}

func TestDirectoryServiceResolvesAndCachesActor(t *testing.T) {
	directory, mini, db := setupDirectoryService(t)
	require.NoError(t, db.Create(&models.Actor{ID: 1, Name: "Ada", Email: "ada@example.test", Role: models.RoleAdmin, RoleLevel: 5}).Error)

	actor, err := directory.GetActor(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, models.RoleAdmin, actor.Role)
	require.Equal(t, 5, actor.RoleLevel)
	require.True(t, actor.IsAdminTier())

	require.True(t, mini.Exists("lectoria:actor:1"))

	// Second lookup is served from the cache even after the row is gone.
	require.NoError(t, db.Delete(&models.Actor{}, 1).Error)
	cached, err := directory.GetActor(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, actor.ID, cached.ID)
	require.Equal(t, models.RoleAdmin, cached.Role)
}

func TestDirectoryServiceFallsBackOnCorruptCacheEntry(t *testing.T) {
	directory, mini, db := setupDirectoryService(t)
	require.NoError(t, db.Create(&models.Actor{ID: 2, Name: "Kim", Email: "kim@example.test", Role: models.RoleTeacher, RoleLevel: 2}).Error)

	require.NoError(t, mini.Set("lectoria:actor:2", "{not json"))

	actor, err := directory.GetActor(context.Background(), 2)
	require.NoError(t, err)
	require.Equal(t, models.RoleTeacher, actor.Role)
}

func TestDirectoryServiceUnknownActor(t *testing.T) {
	directory, _, _ := setupDirectoryService(t)

	_, err := directory.GetActor(context.Background(), 404)
	require.ErrorIs(t, err, ErrActorNotFound)

	_, err = directory.GetActor(context.Background(), 0)
	require.ErrorIs(t, err, ErrActorNotFound)
}
