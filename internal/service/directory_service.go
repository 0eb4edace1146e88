package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/lectoria/lectoria-api/internal/models"
	"github.com/lectoria/lectoria-api/internal/repository"
)

// ErrActorNotFound indicates the identity directory has no record for the id.
var ErrActorNotFound = errors.New("actor not found")

// ActorDirectory resolves actor identifiers to their role and role level.
// The directory is read-only from this service's point of view.
type ActorDirectory interface {
	GetActor(ctx context.Context, id uint) (models.Actor, error)
}

type directoryService struct {
	repo   repository.ActorRepository
	redis  *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewDirectoryService constructs the directory adapter. When a redis client
// is provided, lookups are cached with the given TTL; cache failures fall
// back to the store and never fail a lookup.
func NewDirectoryService(repo repository.ActorRepository, redisClient *redis.Client, cacheTTL time.Duration, logger zerolog.Logger) ActorDirectory {
	return &directoryService{
		repo:   repo,
		redis:  redisClient,
		ttl:    cacheTTL,
		logger: logger.With().Str("component", "directory_service").Logger(),
	}
}

func (s *directoryService) GetActor(ctx context.Context, id uint) (models.Actor, error) {
	if id == 0 {
		return models.Actor{}, ErrActorNotFound
	}

	key := directoryCacheKey(id)
	if s.redis != nil {
		cached, err := s.redis.Get(ctx, key).Result()
		if err == nil {
			var actor models.Actor
			if unmarshalErr := json.Unmarshal([]byte(cached), &actor); unmarshalErr == nil {
				return actor, nil
			}
			// Corrupt entry; drop it and fall through to the store.
			_ = s.redis.Del(ctx, key).Err()
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Uint("actor_id", id).Msg("directory cache read failed")
		}
	}

	actor, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Actor{}, ErrActorNotFound
		}
		return models.Actor{}, fmt.Errorf("directory lookup: %w", err)
	}

	if s.redis != nil && s.ttl > 0 {
		if payload, marshalErr := json.Marshal(actor); marshalErr == nil {
			if cacheErr := s.redis.Set(ctx, key, payload, s.ttl).Err(); cacheErr != nil {
				s.logger.Warn().Err(cacheErr).Uint("actor_id", id).Msg("directory cache write failed")
			}
		}
	}

	return actor, nil
}

func directoryCacheKey(id uint) string {
	return fmt.Sprintf("lectoria:actor:%d", id)
}
