package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/lectoria/lectoria-api/internal/models"
)

// ActorRepository resolves actors from the platform user directory. The
// directory is owned by the identity service; this repository is strictly
// read-only.
type ActorRepository interface {
	GetByID(ctx context.Context, id uint) (models.Actor, error)
}

type actorRepository struct {
	db *gorm.DB
}

// NewActorRepository instantiates a GORM-backed directory lookup.
func NewActorRepository(db *gorm.DB) ActorRepository {
	return &actorRepository{db: db}
}

func (r *actorRepository) GetByID(ctx context.Context, id uint) (models.Actor, error) {
	var actor models.Actor
	if err := r.db.WithContext(ctx).First(&actor, id).Error; err != nil {
		return models.Actor{}, err
	}

	return actor, nil
}
