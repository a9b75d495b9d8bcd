package services

import (
	"context"
	"time"

	"github.com/quizhub/quiz-service/internal/models"
	"github.com/quizhub/quiz-service/internal/repositories"
	"github.com/stretchr/testify/mock"
)

// mockRepository aggregates the per-entity mocks and runs transactions
// against itself, so transactional flows can be tested without a database.
type mockRepository struct {
	topic           *mockTopicRepository
	quiz            *mockQuizRepository
	result          *mockResultRepository
	achievement     *mockAchievementRepository
	userAchievement *mockUserAchievementRepository
	user            *mockUserRepository
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		topic:           &mockTopicRepository{},
		quiz:            &mockQuizRepository{},
		result:          &mockResultRepository{},
		achievement:     &mockAchievementRepository{},
		userAchievement: &mockUserAchievementRepository{},
		user:            &mockUserRepository{},
	}
}

func (m *mockRepository) Topic() repositories.TopicRepository             { return m.topic }
func (m *mockRepository) Quiz() repositories.QuizRepository               { return m.quiz }
func (m *mockRepository) Result() repositories.ResultRepository           { return m.result }
func (m *mockRepository) Achievement() repositories.AchievementRepository { return m.achievement }
func (m *mockRepository) UserAchievement() repositories.UserAchievementRepository {
	return m.userAchievement
}
func (m *mockRepository) User() repositories.UserRepository { return m.user }

func (m *mockRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(m)
}

func (m *mockRepository) Ping(ctx context.Context) error { return nil }
func (m *mockRepository) Close() error                   { return nil }

// ===== TOPIC =====

type mockTopicRepository struct{ mock.Mock }

func (m *mockTopicRepository) Create(ctx context.Context, topic *models.Topic) error {
	return m.Called(ctx, topic).Error(0)
}

func (m *mockTopicRepository) GetByID(ctx context.Context, id uint) (*models.Topic, error) {
	args := m.Called(ctx, id)
	if topic := args.Get(0); topic != nil {
		return topic.(*models.Topic), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTopicRepository) GetByName(ctx context.Context, name string) (*models.Topic, error) {
	args := m.Called(ctx, name)
	if topic := args.Get(0); topic != nil {
		return topic.(*models.Topic), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTopicRepository) Update(ctx context.Context, topic *models.Topic) error {
	return m.Called(ctx, topic).Error(0)
}

func (m *mockTopicRepository) Delete(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockTopicRepository) List(ctx context.Context) ([]*models.Topic, error) {
	args := m.Called(ctx)
	if topics := args.Get(0); topics != nil {
		return topics.([]*models.Topic), args.Error(1)
	}
	return nil, args.Error(1)
}

// ===== QUIZ =====

type mockQuizRepository struct{ mock.Mock }

func (m *mockQuizRepository) Create(ctx context.Context, quiz *models.Quiz) error {
	return m.Called(ctx, quiz).Error(0)
}

func (m *mockQuizRepository) GetByID(ctx context.Context, id uint) (*models.Quiz, error) {
	args := m.Called(ctx, id)
	if quiz := args.Get(0); quiz != nil {
		return quiz.(*models.Quiz), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockQuizRepository) Update(ctx context.Context, quiz *models.Quiz) error {
	return m.Called(ctx, quiz).Error(0)
}

func (m *mockQuizRepository) Delete(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockQuizRepository) List(ctx context.Context, filters repositories.QuizFilters) ([]*models.Quiz, int64, error) {
	args := m.Called(ctx, filters)
	if quizzes := args.Get(0); quizzes != nil {
		return quizzes.([]*models.Quiz), args.Get(1).(int64), args.Error(2)
	}
	return nil, 0, args.Error(2)
}

func (m *mockQuizRepository) GetByIDs(ctx context.Context, ids []uint) ([]*models.Quiz, error) {
	args := m.Called(ctx, ids)
	if quizzes := args.Get(0); quizzes != nil {
		return quizzes.([]*models.Quiz), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockQuizRepository) IDsByTopic(ctx context.Context, topicID uint) ([]uint, error) {
	args := m.Called(ctx, topicID)
	if ids := args.Get(0); ids != nil {
		return ids.([]uint), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockQuizRepository) CountByTopic(ctx context.Context, topicID uint) (int64, error) {
	args := m.Called(ctx, topicID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockQuizRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// ===== RESULT =====

type mockResultRepository struct{ mock.Mock }

func (m *mockResultRepository) Create(ctx context.Context, result *models.Result) error {
	return m.Called(ctx, result).Error(0)
}

func (m *mockResultRepository) GetLatest(ctx context.Context, userID, quizID uint) (*models.Result, error) {
	args := m.Called(ctx, userID, quizID)
	if result := args.Get(0); result != nil {
		return result.(*models.Result), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockResultRepository) LockUserQuiz(ctx context.Context, userID, quizID uint) error {
	return m.Called(ctx, userID, quizID).Error(0)
}

func (m *mockResultRepository) GetByID(ctx context.Context, id uint) (*models.Result, error) {
	args := m.Called(ctx, id)
	if result := args.Get(0); result != nil {
		return result.(*models.Result), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockResultRepository) GetByUser(ctx context.Context, userID uint) ([]*models.Result, error) {
	args := m.Called(ctx, userID)
	if results := args.Get(0); results != nil {
		return results.([]*models.Result), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockResultRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockResultRepository) HighestScore(ctx context.Context, userID uint) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *mockResultRepository) QuizAverages(ctx context.Context, userID uint) ([]repositories.QuizAverage, error) {
	args := m.Called(ctx, userID)
	if averages := args.Get(0); averages != nil {
		return averages.([]repositories.QuizAverage), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockResultRepository) History(ctx context.Context, userID uint, p repositories.Pagination) ([]*models.Result, int64, error) {
	args := m.Called(ctx, userID, p)
	if results := args.Get(0); results != nil {
		return results.([]*models.Result), args.Get(1).(int64), args.Error(2)
	}
	return nil, 0, args.Error(2)
}

func (m *mockResultRepository) RecentActivity(ctx context.Context, userID uint, limit int) ([]*models.Result, error) {
	args := m.Called(ctx, userID, limit)
	if results := args.Get(0); results != nil {
		return results.([]*models.Result), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockResultRepository) RecentActivityAll(ctx context.Context, limit int) ([]*models.Result, error) {
	args := m.Called(ctx, limit)
	if results := args.Get(0); results != nil {
		return results.([]*models.Result), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockResultRepository) UserStats(ctx context.Context, userID uint) (*repositories.UserAggregate, error) {
	args := m.Called(ctx, userID)
	if stats := args.Get(0); stats != nil {
		return stats.(*repositories.UserAggregate), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockResultRepository) TopicProgress(ctx context.Context, userID uint) ([]repositories.TopicQuizProgress, error) {
	args := m.Called(ctx, userID)
	if progress := args.Get(0); progress != nil {
		return progress.([]repositories.TopicQuizProgress), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockResultRepository) QuizStats(ctx context.Context, quizID uint) (*repositories.QuizAggregate, error) {
	args := m.Called(ctx, quizID)
	if stats := args.Get(0); stats != nil {
		return stats.(*repositories.QuizAggregate), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockResultRepository) ListScores(ctx context.Context, quizID uint) ([]int, error) {
	args := m.Called(ctx, quizID)
	if scores := args.Get(0); scores != nil {
		return scores.([]int), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockResultRepository) Totals(ctx context.Context) (*repositories.GlobalAggregate, error) {
	args := m.Called(ctx)
	if totals := args.Get(0); totals != nil {
		return totals.(*repositories.GlobalAggregate), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockResultRepository) GlobalLeaderboard(ctx context.Context, p repositories.Pagination) ([]repositories.LeaderboardRow, int64, error) {
	args := m.Called(ctx, p)
	if rows := args.Get(0); rows != nil {
		return rows.([]repositories.LeaderboardRow), args.Get(1).(int64), args.Error(2)
	}
	return nil, 0, args.Error(2)
}

func (m *mockResultRepository) TopicLeaderboard(ctx context.Context, quizIDs []uint, p repositories.Pagination) ([]repositories.LeaderboardRow, int64, error) {
	args := m.Called(ctx, quizIDs, p)
	if rows := args.Get(0); rows != nil {
		return rows.([]repositories.LeaderboardRow), args.Get(1).(int64), args.Error(2)
	}
	return nil, 0, args.Error(2)
}

func (m *mockResultRepository) QuizLeaderboard(ctx context.Context, quizID uint, p repositories.Pagination) ([]repositories.QuizLeaderboardRow, int64, error) {
	args := m.Called(ctx, quizID, p)
	if rows := args.Get(0); rows != nil {
		return rows.([]repositories.QuizLeaderboardRow), args.Get(1).(int64), args.Error(2)
	}
	return nil, 0, args.Error(2)
}

func (m *mockResultRepository) WeeklyLeaderboard(ctx context.Context, since time.Time, p repositories.Pagination) ([]repositories.WeeklyLeaderboardRow, int64, error) {
	args := m.Called(ctx, since, p)
	if rows := args.Get(0); rows != nil {
		return rows.([]repositories.WeeklyLeaderboardRow), args.Get(1).(int64), args.Error(2)
	}
	return nil, 0, args.Error(2)
}

// ===== ACHIEVEMENT =====

type mockAchievementRepository struct{ mock.Mock }

func (m *mockAchievementRepository) Create(ctx context.Context, achievement *models.Achievement) error {
	return m.Called(ctx, achievement).Error(0)
}

func (m *mockAchievementRepository) GetByID(ctx context.Context, id uint) (*models.Achievement, error) {
	args := m.Called(ctx, id)
	if achievement := args.Get(0); achievement != nil {
		return achievement.(*models.Achievement), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAchievementRepository) List(ctx context.Context) ([]*models.Achievement, error) {
	args := m.Called(ctx)
	if achievements := args.Get(0); achievements != nil {
		return achievements.([]*models.Achievement), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAchievementRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

type mockUserAchievementRepository struct{ mock.Mock }

func (m *mockUserAchievementRepository) Insert(ctx context.Context, unlock *models.UserAchievement) (bool, error) {
	args := m.Called(ctx, unlock)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserAchievementRepository) GetByUser(ctx context.Context, userID uint) ([]*models.UserAchievement, error) {
	args := m.Called(ctx, userID)
	if unlocks := args.Get(0); unlocks != nil {
		return unlocks.([]*models.UserAchievement), args.Error(1)
	}
	return nil, args.Error(1)
}

// ===== USER =====

type mockUserRepository struct{ mock.Mock }

func (m *mockUserRepository) Create(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if user := args.Get(0); user != nil {
		return user.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepository) GetByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	args := m.Called(ctx, externalID)
	if user := args.Get(0); user != nil {
		return user.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if user := args.Get(0); user != nil {
		return user.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepository) Update(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockUserRepository) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	args := m.Called(ctx, since)
	return args.Get(0).(int64), args.Error(1)
}
