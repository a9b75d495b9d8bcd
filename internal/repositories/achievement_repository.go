package repositories

import (
	"context"

	"github.com/quizhub/quiz-service/internal/models"
)

// AchievementRepository is the read-mostly achievement catalog.
type AchievementRepository interface {
	Create(ctx context.Context, achievement *models.Achievement) error
	GetByID(ctx context.Context, id uint) (*models.Achievement, error)
	List(ctx context.Context) ([]*models.Achievement, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
}

// UserAchievementRepository records unlocks. Insert must be idempotent
// against the unique (user_id, achievement_id) constraint.
type UserAchievementRepository interface {
	// Insert writes the unlock if it does not already exist. The boolean
	// reports whether a row was actually created; a conflicting existing
	// unlock is not an error.
	Insert(ctx context.Context, unlock *models.UserAchievement) (bool, error)

	// GetByUser returns unlocks most recent first, with the achievement
	// definitions attached.
	GetByUser(ctx context.Context, userID uint) ([]*models.UserAchievement, error)
}
