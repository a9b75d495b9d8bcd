package repositories

import (
	"context"
	"time"

	"github.com/quizhub/quiz-service/internal/models"
)

// ResultRepository is the append-only attempt store plus the aggregate
// queries built over it. Results are created once and never updated.
type ResultRepository interface {
	Create(ctx context.Context, result *models.Result) error

	// GetLatest returns the most recent result for a (user, quiz) pair,
	// ordered by completed_at descending with the primary key as the
	// deterministic tie-break. Returns nil when no attempt exists.
	GetLatest(ctx context.Context, userID, quizID uint) (*models.Result, error)

	// LockUserQuiz takes a transaction-scoped advisory lock serializing
	// concurrent submissions for the same (user, quiz) pair. Only
	// meaningful inside WithTransaction.
	LockUserQuiz(ctx context.Context, userID, quizID uint) error

	GetByID(ctx context.Context, id uint) (*models.Result, error)
	GetByUser(ctx context.Context, userID uint) ([]*models.Result, error)
	CountByUser(ctx context.Context, userID uint) (int64, error)
	HighestScore(ctx context.Context, userID uint) (int, error)
	QuizAverages(ctx context.Context, userID uint) ([]QuizAverage, error)

	History(ctx context.Context, userID uint, p Pagination) ([]*models.Result, int64, error)
	RecentActivity(ctx context.Context, userID uint, limit int) ([]*models.Result, error)
	RecentActivityAll(ctx context.Context, limit int) ([]*models.Result, error)

	UserStats(ctx context.Context, userID uint) (*UserAggregate, error)
	TopicProgress(ctx context.Context, userID uint) ([]TopicQuizProgress, error)
	QuizStats(ctx context.Context, quizID uint) (*QuizAggregate, error)
	ListScores(ctx context.Context, quizID uint) ([]int, error)
	Totals(ctx context.Context) (*GlobalAggregate, error)

	GlobalLeaderboard(ctx context.Context, p Pagination) ([]LeaderboardRow, int64, error)
	TopicLeaderboard(ctx context.Context, quizIDs []uint, p Pagination) ([]LeaderboardRow, int64, error)
	QuizLeaderboard(ctx context.Context, quizID uint, p Pagination) ([]QuizLeaderboardRow, int64, error)
	WeeklyLeaderboard(ctx context.Context, since time.Time, p Pagination) ([]WeeklyLeaderboardRow, int64, error)
}
