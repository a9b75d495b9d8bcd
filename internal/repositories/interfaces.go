package repositories

import (
	"context"
	"time"

	"github.com/quizhub/quiz-service/internal/models"
)

// Repository aggregates the per-entity repositories behind one handle.
// WithTransaction runs fn against a transaction-scoped Repository; the
// transaction commits when fn returns nil and rolls back otherwise.
type Repository interface {
	Topic() TopicRepository
	Quiz() QuizRepository
	Result() ResultRepository
	Achievement() AchievementRepository
	UserAchievement() UserAchievementRepository
	User() UserRepository

	WithTransaction(ctx context.Context, fn func(Repository) error) error
	Ping(ctx context.Context) error
	Close() error
}

// ===== SHARED FILTER STRUCTS =====

type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (p Pagination) Normalize() Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 || p.Limit > 100 {
		p.Limit = 10
	}
	return p
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

type QuizFilters struct {
	TopicName  *string            `json:"topic_name"`
	Difficulty *models.Difficulty `json:"difficulty"`
	Search     *string            `json:"search"`
	Pagination
}

// ===== SHARED AGGREGATE STRUCTS =====

type QuizAverage struct {
	QuizID       uint    `json:"quiz_id"`
	AverageScore float64 `json:"average_score"`
}

type UserAggregate struct {
	TotalAttempts  int64   `json:"total_attempts"`
	AverageScore   float64 `json:"average_score"`
	TotalTimeSpent int64   `json:"total_time_spent"`
	HighestScore   int     `json:"highest_score"`
}

type QuizAggregate struct {
	AttemptCount int64   `json:"attempt_count"`
	AverageScore float64 `json:"average_score"`
	AverageTime  float64 `json:"average_time"`
	UniqueUsers  int64   `json:"unique_users"`
}

type GlobalAggregate struct {
	TotalAttempts  int64   `json:"total_attempts"`
	AverageScore   float64 `json:"average_score"`
	TotalTimeSpent int64   `json:"total_time_spent"`
}

type TopicQuizProgress struct {
	TopicID          uint    `json:"topic_id"`
	TopicName        string  `json:"topic_name"`
	TotalQuizzes     int     `json:"total_quizzes"`
	AttemptedQuizzes int     `json:"attempted_quizzes"`
	AverageScore     float64 `json:"average_score"`
}

// ===== LEADERBOARD ROW STRUCTS =====

type LeaderboardRow struct {
	UserID       uint    `json:"user_id"`
	Name         string  `json:"name"`
	AverageScore float64 `json:"average_score"`
	QuizzesTaken int     `json:"quizzes_taken"`
	AverageTime  float64 `json:"average_time"`
}

type QuizLeaderboardRow struct {
	UserID      uint      `json:"user_id"`
	Name        string    `json:"name"`
	Score       int       `json:"score"`
	TimeSpent   int       `json:"time_spent"`
	CompletedAt time.Time `json:"completed_at"`
}

type WeeklyLeaderboardRow struct {
	UserID       uint    `json:"user_id"`
	Name         string  `json:"name"`
	TotalScore   int     `json:"total_score"`
	QuizzesTaken int     `json:"quizzes_taken"`
	AverageTime  float64 `json:"average_time"`
}
