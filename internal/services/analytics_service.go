package services

import (
	"context"
	"fmt"
	"time"

	"github.com/quizhub/quiz-service/internal/repositories"
	"github.com/quizhub/quiz-service/internal/utils"
)

// scoreBuckets are the distribution ranges reported for quiz analytics.
var scoreBuckets = []struct {
	Label string
	Min   int
	Max   int
}{
	{"0-20", 0, 20},
	{"21-40", 21, 40},
	{"41-60", 41, 60},
	{"61-80", 61, 80},
	{"81-100", 81, 100},
}

type DashboardStats struct {
	TotalUsers       int64   `json:"total_users"`
	NewUsersThisWeek int64   `json:"new_users_this_week"`
	TotalQuizzes     int64   `json:"total_quizzes"`
	TotalAttempts    int64   `json:"total_attempts"`
	AverageScore     float64 `json:"average_score"`
	TotalTimeSpent   int64   `json:"total_time_spent"`
}

type DashboardActivity struct {
	UserName    string    `json:"user_name"`
	QuizTitle   string    `json:"quiz_title"`
	Topic       string    `json:"topic"`
	Score       int       `json:"score"`
	CompletedAt time.Time `json:"completed_at"`
}

type DashboardResponse struct {
	Stats          DashboardStats      `json:"stats"`
	RecentActivity []DashboardActivity `json:"recent_activity"`
}

type ScoreBucket struct {
	Range string `json:"range"`
	Count int    `json:"count"`
}

type QuizAnalytics struct {
	QuizID       uint          `json:"quiz_id"`
	Title        string        `json:"title"`
	AttemptCount int64         `json:"attempt_count"`
	UniqueUsers  int64         `json:"unique_users"`
	AverageScore float64       `json:"average_score"`
	AverageTime  float64       `json:"average_time"`
	Distribution []ScoreBucket `json:"distribution"`
}

// AnalyticsService aggregates platform-wide and per-quiz statistics for
// administrators.
type AnalyticsService struct {
	repo   repositories.Repository
	logger utils.Logger
	now    func() time.Time
}

func NewAnalyticsService(repo repositories.Repository, logger utils.Logger) *AnalyticsService {
	return &AnalyticsService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

func (s *AnalyticsService) Dashboard(ctx context.Context) (*DashboardResponse, error) {
	totalUsers, err := s.repo.User().Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	newUsers, err := s.repo.User().CountCreatedSince(ctx, s.now().AddDate(0, 0, -7))
	if err != nil {
		return nil, fmt.Errorf("failed to count new users: %w", err)
	}

	totalQuizzes, err := s.repo.Quiz().Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count quizzes: %w", err)
	}

	totals, err := s.repo.Result().Totals(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load attempt totals: %w", err)
	}

	recent, err := s.repo.Result().RecentActivityAll(ctx, 20)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent activity: %w", err)
	}

	activity := make([]DashboardActivity, 0, len(recent))
	for _, result := range recent {
		activity = append(activity, DashboardActivity{
			UserName:    result.User.Name,
			QuizTitle:   result.Quiz.Title,
			Topic:       result.Quiz.Topic.Name,
			Score:       result.Score,
			CompletedAt: result.CompletedAt,
		})
	}

	return &DashboardResponse{
		Stats: DashboardStats{
			TotalUsers:       totalUsers,
			NewUsersThisWeek: newUsers,
			TotalQuizzes:     totalQuizzes,
			TotalAttempts:    totals.TotalAttempts,
			AverageScore:     roundTo1(totals.AverageScore),
			TotalTimeSpent:   totals.TotalTimeSpent,
		},
		RecentActivity: activity,
	}, nil
}

func (s *AnalyticsService) QuizAnalytics(ctx context.Context, quizID uint) (*QuizAnalytics, error) {
	quiz, err := s.repo.Quiz().GetByID(ctx, quizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to load quiz: %w", err)
	}

	stats, err := s.repo.Result().QuizStats(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to load quiz stats: %w", err)
	}

	scores, err := s.repo.Result().ListScores(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to load scores: %w", err)
	}

	return &QuizAnalytics{
		QuizID:       quiz.ID,
		Title:        quiz.Title,
		AttemptCount: stats.AttemptCount,
		UniqueUsers:  stats.UniqueUsers,
		AverageScore: roundTo1(stats.AverageScore),
		AverageTime:  roundTo1(stats.AverageTime),
		Distribution: bucketScores(scores),
	}, nil
}

func bucketScores(scores []int) []ScoreBucket {
	buckets := make([]ScoreBucket, len(scoreBuckets))
	for i, b := range scoreBuckets {
		buckets[i] = ScoreBucket{Range: b.Label}
	}
	for _, score := range scores {
		for i, b := range scoreBuckets {
			if score >= b.Min && score <= b.Max {
				buckets[i].Count++
				break
			}
		}
	}
	return buckets
}
