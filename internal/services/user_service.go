package services

import (
	"context"
	"fmt"
	"time"

	"github.com/quizhub/quiz-service/internal/models"
	"github.com/quizhub/quiz-service/internal/repositories"
	"github.com/quizhub/quiz-service/internal/utils"
	"github.com/quizhub/quiz-service/internal/validator"
)

type UserProfile struct {
	User              *models.User               `json:"user"`
	Stats             repositories.UserAggregate `json:"stats"`
	AchievementCount  int                        `json:"achievement_count"`
	AchievementPoints int                        `json:"achievement_points"`
}

type UserStatsResponse struct {
	Stats  repositories.UserAggregate       `json:"stats"`
	Topics []repositories.TopicQuizProgress `json:"topics"`
}

type HistoryEntry struct {
	ResultID    uint      `json:"result_id"`
	QuizID      uint      `json:"quiz_id"`
	QuizTitle   string    `json:"quiz_title"`
	Topic       string    `json:"topic"`
	Score       int       `json:"score"`
	TimeSpent   int       `json:"time_spent"`
	CompletedAt time.Time `json:"completed_at"`
}

type HistoryResponse struct {
	Entries []HistoryEntry `json:"entries"`
	Total   int64          `json:"total"`
	Page    int            `json:"page"`
	Limit   int            `json:"limit"`
}

type ActivityEntry struct {
	QuizID      uint      `json:"quiz_id"`
	QuizTitle   string    `json:"quiz_title"`
	Score       int       `json:"score"`
	CompletedAt time.Time `json:"completed_at"`
}

type UpdateProfileRequest struct {
	Name  string `json:"name" validate:"required,min=1,max=100"`
	Email string `json:"email" validate:"required,email"`
}

// UserService serves profile, statistics and history views of a user's
// attempts.
type UserService struct {
	repo      repositories.Repository
	validator *validator.Validator
	logger    utils.Logger
}

func NewUserService(repo repositories.Repository, v *validator.Validator, logger utils.Logger) *UserService {
	return &UserService{repo: repo, validator: v, logger: logger}
}

// UpdateProfile changes the locally stored display fields. Identity and
// role stay with the auth provider.
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, req *UpdateProfileRequest) (*models.User, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	user.Name = req.Name
	user.Email = req.Email
	if err := s.repo.User().Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	s.logger.InfoContext(ctx, "Profile updated", "user_id", userID)
	return user, nil
}

func (s *UserService) GetProfile(ctx context.Context, userID uint) (*UserProfile, error) {
	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	stats, err := s.repo.Result().UserStats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user stats: %w", err)
	}
	stats.AverageScore = roundTo1(stats.AverageScore)

	unlocks, err := s.repo.UserAchievement().GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load achievements: %w", err)
	}
	points := 0
	for _, unlock := range unlocks {
		points += unlock.Achievement.Points
	}

	return &UserProfile{
		User:              user,
		Stats:             *stats,
		AchievementCount:  len(unlocks),
		AchievementPoints: points,
	}, nil
}

func (s *UserService) GetStats(ctx context.Context, userID uint) (*UserStatsResponse, error) {
	stats, err := s.repo.Result().UserStats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user stats: %w", err)
	}
	stats.AverageScore = roundTo1(stats.AverageScore)

	topics, err := s.repo.Result().TopicProgress(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load topic progress: %w", err)
	}
	for i := range topics {
		topics[i].AverageScore = roundTo1(topics[i].AverageScore)
	}

	return &UserStatsResponse{Stats: *stats, Topics: topics}, nil
}

func (s *UserService) GetHistory(ctx context.Context, userID uint, p repositories.Pagination) (*HistoryResponse, error) {
	results, total, err := s.repo.Result().History(ctx, userID, p)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	p = p.Normalize()
	entries := make([]HistoryEntry, 0, len(results))
	for _, result := range results {
		entries = append(entries, HistoryEntry{
			ResultID:    result.ID,
			QuizID:      result.QuizID,
			QuizTitle:   result.Quiz.Title,
			Topic:       result.Quiz.Topic.Name,
			Score:       result.Score,
			TimeSpent:   result.TimeSpent,
			CompletedAt: result.CompletedAt,
		})
	}

	return &HistoryResponse{Entries: entries, Total: total, Page: p.Page, Limit: p.Limit}, nil
}

func (s *UserService) RecentActivity(ctx context.Context, userID uint, limit int) ([]ActivityEntry, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	results, err := s.repo.Result().RecentActivity(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent activity: %w", err)
	}

	entries := make([]ActivityEntry, 0, len(results))
	for _, result := range results {
		entries = append(entries, ActivityEntry{
			QuizID:      result.QuizID,
			QuizTitle:   result.Quiz.Title,
			Score:       result.Score,
			CompletedAt: result.CompletedAt,
		})
	}
	return entries, nil
}
