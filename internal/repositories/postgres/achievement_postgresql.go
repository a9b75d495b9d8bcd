package postgres

import (
	"context"

	"github.com/quizhub/quiz-service/internal/models"
	"github.com/quizhub/quiz-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AchievementPostgreSQL struct {
	db *gorm.DB
}

func NewAchievementPostgreSQL(db *gorm.DB) repositories.AchievementRepository {
	return &AchievementPostgreSQL{db: db}
}

func (a AchievementPostgreSQL) Create(ctx context.Context, achievement *models.Achievement) error {
	return a.db.WithContext(ctx).Create(achievement).Error
}

func (a AchievementPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Achievement, error) {
	var achievement models.Achievement
	if err := a.db.WithContext(ctx).First(&achievement, id).Error; err != nil {
		return nil, err
	}
	return &achievement, nil
}

func (a AchievementPostgreSQL) List(ctx context.Context) ([]*models.Achievement, error) {
	var achievements []*models.Achievement
	if err := a.db.WithContext(ctx).
		Order("type ASC, threshold ASC").
		Find(&achievements).Error; err != nil {
		return nil, err
	}
	return achievements, nil
}

func (a AchievementPostgreSQL) ExistsByName(ctx context.Context, name string) (bool, error) {
	var count int64
	err := a.db.WithContext(ctx).
		Model(&models.Achievement{}).
		Where("name = ?", name).
		Count(&count).Error
	return count > 0, err
}

type UserAchievementPostgreSQL struct {
	db *gorm.DB
}

func NewUserAchievementPostgreSQL(db *gorm.DB) repositories.UserAchievementRepository {
	return &UserAchievementPostgreSQL{db: db}
}

// Insert relies on the unique (user_id, achievement_id) index: a concurrent
// or repeated unlock falls through ON CONFLICT DO NOTHING and is reported as
// not inserted rather than as an error.
func (u UserAchievementPostgreSQL) Insert(ctx context.Context, unlock *models.UserAchievement) (bool, error) {
	tx := u.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "achievement_id"}},
			DoNothing: true,
		}).
		Create(unlock)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (u UserAchievementPostgreSQL) GetByUser(ctx context.Context, userID uint) ([]*models.UserAchievement, error) {
	var unlocks []*models.UserAchievement
	if err := u.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("Achievement").
		Order("unlocked_at DESC, id DESC").
		Find(&unlocks).Error; err != nil {
		return nil, err
	}
	return unlocks, nil
}
