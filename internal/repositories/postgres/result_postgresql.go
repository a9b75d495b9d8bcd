package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/quizhub/quiz-service/internal/models"
	"github.com/quizhub/quiz-service/internal/repositories"
	"gorm.io/gorm"
)

type ResultPostgreSQL struct {
	db *gorm.DB
}

func NewResultPostgreSQL(db *gorm.DB) repositories.ResultRepository {
	return &ResultPostgreSQL{db: db}
}

func (r ResultPostgreSQL) Create(ctx context.Context, result *models.Result) error {
	return r.db.WithContext(ctx).Create(result).Error
}

func (r ResultPostgreSQL) GetLatest(ctx context.Context, userID, quizID uint) (*models.Result, error) {
	var result models.Result
	// id DESC is the deterministic tie-break for equal completion times
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Order("completed_at DESC, id DESC").
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

// LockUserQuiz serializes submissions for one (user, quiz) pair within the
// surrounding transaction. The lock is released automatically at commit or
// rollback, which makes the eligibility check-and-insert atomic against
// concurrent submissions.
func (r ResultPostgreSQL) LockUserQuiz(ctx context.Context, userID, quizID uint) error {
	return r.db.WithContext(ctx).
		Exec("SELECT pg_advisory_xact_lock(?, ?)", int32(userID), int32(quizID)).Error
}

func (r ResultPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Result, error) {
	var result models.Result
	if err := r.db.WithContext(ctx).
		Preload("Quiz").
		Preload("Quiz.Topic").
		First(&result, id).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r ResultPostgreSQL) GetByUser(ctx context.Context, userID uint) ([]*models.Result, error) {
	var results []*models.Result
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("completed_at DESC, id DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r ResultPostgreSQL) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Result{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

func (r ResultPostgreSQL) HighestScore(ctx context.Context, userID uint) (int, error) {
	var highest int
	err := r.db.WithContext(ctx).
		Model(&models.Result{}).
		Where("user_id = ?", userID).
		Select("COALESCE(MAX(score), 0)").
		Scan(&highest).Error
	return highest, err
}

func (r ResultPostgreSQL) QuizAverages(ctx context.Context, userID uint) ([]repositories.QuizAverage, error) {
	var averages []repositories.QuizAverage
	if err := r.db.WithContext(ctx).
		Model(&models.Result{}).
		Select("quiz_id, AVG(score) AS average_score").
		Where("user_id = ?", userID).
		Group("quiz_id").
		Scan(&averages).Error; err != nil {
		return nil, err
	}
	return averages, nil
}

func (r ResultPostgreSQL) History(ctx context.Context, userID uint, p repositories.Pagination) ([]*models.Result, int64, error) {
	var results []*models.Result
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Result{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	p = p.Normalize()
	if err := query.
		Preload("Quiz").
		Preload("Quiz.Topic").
		Order("completed_at DESC, id DESC").
		Offset(p.Offset()).
		Limit(p.Limit).
		Find(&results).Error; err != nil {
		return nil, 0, err
	}

	return results, total, nil
}

func (r ResultPostgreSQL) RecentActivity(ctx context.Context, userID uint, limit int) ([]*models.Result, error) {
	var results []*models.Result
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("Quiz").
		Order("completed_at DESC, id DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r ResultPostgreSQL) RecentActivityAll(ctx context.Context, limit int) ([]*models.Result, error) {
	var results []*models.Result
	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Quiz").
		Preload("Quiz.Topic").
		Order("completed_at DESC, id DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r ResultPostgreSQL) UserStats(ctx context.Context, userID uint) (*repositories.UserAggregate, error) {
	var stats repositories.UserAggregate
	if err := r.db.WithContext(ctx).
		Model(&models.Result{}).
		Where("user_id = ?", userID).
		Select("COUNT(*) AS total_attempts, COALESCE(AVG(score), 0) AS average_score, COALESCE(SUM(time_spent), 0) AS total_time_spent, COALESCE(MAX(score), 0) AS highest_score").
		Scan(&stats).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r ResultPostgreSQL) TopicProgress(ctx context.Context, userID uint) ([]repositories.TopicQuizProgress, error) {
	var progress []repositories.TopicQuizProgress
	if err := r.db.WithContext(ctx).
		Table("topics").
		Select(`topics.id AS topic_id, topics.name AS topic_name,
			COUNT(DISTINCT quizzes.id) AS total_quizzes,
			COUNT(DISTINCT results.quiz_id) AS attempted_quizzes,
			COALESCE(AVG(results.score), 0) AS average_score`).
		Joins("JOIN quizzes ON quizzes.topic_id = topics.id").
		Joins("LEFT JOIN results ON results.quiz_id = quizzes.id AND results.user_id = ?", userID).
		Group("topics.id, topics.name").
		Scan(&progress).Error; err != nil {
		return nil, err
	}
	return progress, nil
}

func (r ResultPostgreSQL) QuizStats(ctx context.Context, quizID uint) (*repositories.QuizAggregate, error) {
	var stats repositories.QuizAggregate
	if err := r.db.WithContext(ctx).
		Model(&models.Result{}).
		Where("quiz_id = ?", quizID).
		Select("COUNT(*) AS attempt_count, COALESCE(AVG(score), 0) AS average_score, COALESCE(AVG(time_spent), 0) AS average_time, COUNT(DISTINCT user_id) AS unique_users").
		Scan(&stats).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r ResultPostgreSQL) ListScores(ctx context.Context, quizID uint) ([]int, error) {
	var scores []int
	if err := r.db.WithContext(ctx).
		Model(&models.Result{}).
		Where("quiz_id = ?", quizID).
		Pluck("score", &scores).Error; err != nil {
		return nil, err
	}
	return scores, nil
}

func (r ResultPostgreSQL) Totals(ctx context.Context) (*repositories.GlobalAggregate, error) {
	var totals repositories.GlobalAggregate
	if err := r.db.WithContext(ctx).
		Model(&models.Result{}).
		Select("COUNT(*) AS total_attempts, COALESCE(AVG(score), 0) AS average_score, COALESCE(SUM(time_spent), 0) AS total_time_spent").
		Scan(&totals).Error; err != nil {
		return nil, err
	}
	return &totals, nil
}

func (r ResultPostgreSQL) GlobalLeaderboard(ctx context.Context, p repositories.Pagination) ([]repositories.LeaderboardRow, int64, error) {
	total, err := r.countDistinctUsers(ctx, nil, nil)
	if err != nil {
		return nil, 0, err
	}

	p = p.Normalize()
	var rows []repositories.LeaderboardRow
	if err := r.db.WithContext(ctx).
		Table("results").
		Select(`results.user_id, users.name,
			AVG(results.score) AS average_score,
			COUNT(*) AS quizzes_taken,
			AVG(results.time_spent) AS average_time`).
		Joins("JOIN users ON users.id = results.user_id").
		Group("results.user_id, users.name").
		Order("average_score DESC, quizzes_taken DESC").
		Offset(p.Offset()).
		Limit(p.Limit).
		Scan(&rows).Error; err != nil {
		return nil, 0, err
	}

	return rows, total, nil
}

func (r ResultPostgreSQL) TopicLeaderboard(ctx context.Context, quizIDs []uint, p repositories.Pagination) ([]repositories.LeaderboardRow, int64, error) {
	if len(quizIDs) == 0 {
		return nil, 0, nil
	}

	total, err := r.countDistinctUsers(ctx, quizIDs, nil)
	if err != nil {
		return nil, 0, err
	}

	p = p.Normalize()
	var rows []repositories.LeaderboardRow
	if err := r.db.WithContext(ctx).
		Table("results").
		Select(`results.user_id, users.name,
			AVG(results.score) AS average_score,
			COUNT(*) AS quizzes_taken,
			AVG(results.time_spent) AS average_time`).
		Joins("JOIN users ON users.id = results.user_id").
		Where("results.quiz_id IN ?", quizIDs).
		Group("results.user_id, users.name").
		Order("average_score DESC, quizzes_taken DESC").
		Offset(p.Offset()).
		Limit(p.Limit).
		Scan(&rows).Error; err != nil {
		return nil, 0, err
	}

	return rows, total, nil
}

func (r ResultPostgreSQL) QuizLeaderboard(ctx context.Context, quizID uint, p repositories.Pagination) ([]repositories.QuizLeaderboardRow, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.Result{}).
		Where("quiz_id = ?", quizID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	p = p.Normalize()
	var rows []repositories.QuizLeaderboardRow
	if err := r.db.WithContext(ctx).
		Table("results").
		Select("results.user_id, users.name, results.score, results.time_spent, results.completed_at").
		Joins("JOIN users ON users.id = results.user_id").
		Where("results.quiz_id = ?", quizID).
		Order("results.score DESC, results.time_spent ASC").
		Offset(p.Offset()).
		Limit(p.Limit).
		Scan(&rows).Error; err != nil {
		return nil, 0, err
	}

	return rows, total, nil
}

func (r ResultPostgreSQL) WeeklyLeaderboard(ctx context.Context, since time.Time, p repositories.Pagination) ([]repositories.WeeklyLeaderboardRow, int64, error) {
	total, err := r.countDistinctUsers(ctx, nil, &since)
	if err != nil {
		return nil, 0, err
	}

	p = p.Normalize()
	var rows []repositories.WeeklyLeaderboardRow
	if err := r.db.WithContext(ctx).
		Table("results").
		Select(`results.user_id, users.name,
			SUM(results.score) AS total_score,
			COUNT(*) AS quizzes_taken,
			AVG(results.time_spent) AS average_time`).
		Joins("JOIN users ON users.id = results.user_id").
		Where("results.completed_at >= ?", since).
		Group("results.user_id, users.name").
		Order("total_score DESC, quizzes_taken DESC").
		Offset(p.Offset()).
		Limit(p.Limit).
		Scan(&rows).Error; err != nil {
		return nil, 0, err
	}

	return rows, total, nil
}

func (r ResultPostgreSQL) countDistinctUsers(ctx context.Context, quizIDs []uint, since *time.Time) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Result{}).Distinct("user_id")
	if len(quizIDs) > 0 {
		query = query.Where("quiz_id IN ?", quizIDs)
	}
	if since != nil {
		query = query.Where("completed_at >= ?", *since)
	}

	var total int64
	err := query.Count(&total).Error
	return total, err
}
