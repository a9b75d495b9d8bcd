package models

import "time"

type AchievementType string

const (
	AchievementQuizScore    AchievementType = "QUIZ_SCORE"
	AchievementQuizCount    AchievementType = "QUIZ_COUNT"
	AchievementStreak       AchievementType = "STREAK"
	AchievementTopicMastery AchievementType = "TOPIC_MASTERY"
)

// Achievement is static catalog configuration authored by administrators.
type Achievement struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	Name        string          `json:"name" gorm:"not null;size:100;uniqueIndex" validate:"required,min=1,max=100"`
	Description string          `json:"description" gorm:"not null;type:text" validate:"required,max=500"`
	Icon        string          `json:"icon" gorm:"not null;size:200" validate:"required"`
	Type        AchievementType `json:"type" gorm:"not null;size:20" validate:"required,achievement_type"`
	Threshold   int             `json:"threshold" gorm:"not null" validate:"required,min=1"`
	Points      int             `json:"points" gorm:"not null" validate:"required,min=0"`
}

// UserAchievement records a single unlock. The unique (user_id,
// achievement_id) index is the idempotence guarantee: unlocks are written
// at most once and never updated or deleted.
type UserAchievement struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	UserID        uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_user_achievement"`
	AchievementID uint      `json:"achievement_id" gorm:"not null;uniqueIndex:idx_user_achievement"`
	UnlockedAt    time.Time `json:"unlocked_at" gorm:"not null"`
	Progress      int       `json:"progress" gorm:"not null;default:0"`

	Achievement Achievement `json:"achievement" gorm:"foreignKey:AchievementID"`
}

func (Achievement) TableName() string {
	return "achievements"
}

func (UserAchievement) TableName() string {
	return "user_achievements"
}
