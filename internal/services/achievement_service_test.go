package services

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/quizhub/quiz-service/internal/events"
	"github.com/quizhub/quiz-service/internal/models"
	"github.com/quizhub/quiz-service/internal/repositories"
	"github.com/quizhub/quiz-service/internal/utils"
	"github.com/quizhub/quiz-service/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testLogger() utils.Logger {
	return utils.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stdout, nil)))
}

func resultsOnDays(days ...string) []*models.Result {
	results := make([]*models.Result, 0, len(days))
	for _, day := range days {
		completedAt, err := time.Parse(time.RFC3339, day)
		if err != nil {
			panic(err)
		}
		results = append(results, &models.Result{CompletedAt: completedAt})
	}
	return results
}

func TestConsecutiveDayStreak(t *testing.T) {
	// Most recent first; two attempts on the newest day count once.
	results := resultsOnDays(
		"2026-03-03T18:00:00Z",
		"2026-03-03T09:00:00Z",
		"2026-03-02T12:00:00Z",
		"2026-03-01T12:00:00Z",
		"2026-02-26T12:00:00Z", // gap breaks the run
	)
	assert.Equal(t, 3, consecutiveDayStreak(results))

	assert.Equal(t, 0, consecutiveDayStreak(nil))
	assert.Equal(t, 1, consecutiveDayStreak(resultsOnDays("2026-03-03T10:00:00Z")))
}

func TestSameDayRunStreak(t *testing.T) {
	// The legacy counting rewards same-day volume.
	results := resultsOnDays(
		"2026-03-03T18:00:00Z",
		"2026-03-03T09:00:00Z",
		"2026-03-02T12:00:00Z",
	)
	assert.Equal(t, 2, sameDayRunStreak(results))
	assert.Equal(t, 0, sameDayRunStreak(nil))
}

func TestStreakSemanticsDiffer(t *testing.T) {
	// Three same-day attempts: the corrected semantics see one day, the
	// legacy semantics see a streak of three.
	results := resultsOnDays(
		"2026-03-03T18:00:00Z",
		"2026-03-03T12:00:00Z",
		"2026-03-03T09:00:00Z",
	)
	assert.Equal(t, 1, consecutiveDayStreak(results))
	assert.Equal(t, 3, sameDayRunStreak(results))
}

func newAchievementServiceForTest(repo *mockRepository, publisher events.EventPublisher) *AchievementService {
	service := NewAchievementService(repo, publisher, validator.New(), testLogger())
	service.now = func() time.Time {
		return time.Date(2026, 3, 3, 12, 0, 0, 0, time.UTC)
	}
	return service
}

func TestCheckAchievements_UnlocksAtThreshold(t *testing.T) {
	repo := newMockRepository()
	publisher := events.NewMockPublisher(slog.New(slog.NewTextHandler(os.Stdout, nil)))
	service := newAchievementServiceForTest(repo, publisher)

	catalog := []*models.Achievement{
		{ID: 1, Name: "Five Quizzes", Type: models.AchievementQuizCount, Threshold: 5, Points: 10},
		{ID: 2, Name: "Perfectionist", Type: models.AchievementQuizScore, Threshold: 100, Points: 50},
	}
	results := []*models.Result{
		{Score: 80}, {Score: 90}, {Score: 70}, {Score: 85}, {Score: 95},
	}

	repo.achievement.On("List", mock.Anything).Return(catalog, nil)
	repo.userAchievement.On("GetByUser", mock.Anything, uint(7)).Return([]*models.UserAchievement{}, nil)
	repo.result.On("GetByUser", mock.Anything, uint(7)).Return(results, nil)
	repo.result.On("QuizAverages", mock.Anything, uint(7)).Return([]repositories.QuizAverage{}, nil)
	repo.userAchievement.On("Insert", mock.Anything, mock.MatchedBy(func(unlock *models.UserAchievement) bool {
		return unlock.UserID == 7 && unlock.AchievementID == 1 && unlock.Progress == 5
	})).Return(true, nil)

	unlocked, err := service.CheckAchievements(context.Background(), 7)

	require.NoError(t, err)
	require.Len(t, unlocked, 1)
	assert.Equal(t, uint(1), unlocked[0].ID)

	// Highest score is 95 < 100, so no second insert happened.
	repo.userAchievement.AssertNumberOfCalls(t, "Insert", 1)

	// One unlock event was published.
	published := publisher.Published()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventAchievementUnlocked, published[0].Type)
}

func TestCheckAchievements_SkipsAlreadyUnlocked(t *testing.T) {
	repo := newMockRepository()
	service := newAchievementServiceForTest(repo, nil)

	catalog := []*models.Achievement{
		{ID: 1, Name: "First Quiz", Type: models.AchievementQuizCount, Threshold: 1},
	}

	repo.achievement.On("List", mock.Anything).Return(catalog, nil)
	repo.userAchievement.On("GetByUser", mock.Anything, uint(7)).Return([]*models.UserAchievement{
		{UserID: 7, AchievementID: 1},
	}, nil)
	repo.result.On("GetByUser", mock.Anything, uint(7)).Return([]*models.Result{{Score: 50}}, nil)
	repo.result.On("QuizAverages", mock.Anything, uint(7)).Return([]repositories.QuizAverage{}, nil)

	unlocked, err := service.CheckAchievements(context.Background(), 7)

	require.NoError(t, err)
	assert.Empty(t, unlocked)
	repo.userAchievement.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestCheckAchievements_ConcurrentInsertIsNoOp(t *testing.T) {
	repo := newMockRepository()
	service := newAchievementServiceForTest(repo, nil)

	catalog := []*models.Achievement{
		{ID: 1, Name: "First Quiz", Type: models.AchievementQuizCount, Threshold: 1},
	}

	repo.achievement.On("List", mock.Anything).Return(catalog, nil)
	repo.userAchievement.On("GetByUser", mock.Anything, uint(7)).Return([]*models.UserAchievement{}, nil)
	repo.result.On("GetByUser", mock.Anything, uint(7)).Return([]*models.Result{{Score: 50}}, nil)
	repo.result.On("QuizAverages", mock.Anything, uint(7)).Return([]repositories.QuizAverage{}, nil)
	// Another evaluation won the race: insert affects zero rows.
	repo.userAchievement.On("Insert", mock.Anything, mock.Anything).Return(false, nil)

	unlocked, err := service.CheckAchievements(context.Background(), 7)

	require.NoError(t, err)
	assert.Empty(t, unlocked)
}

func TestCheckAchievements_TopicMastery(t *testing.T) {
	repo := newMockRepository()
	service := newAchievementServiceForTest(repo, nil)

	catalog := []*models.Achievement{
		{ID: 3, Name: "Master of Two", Type: models.AchievementTopicMastery, Threshold: 2, Points: 30},
	}
	averages := []repositories.QuizAverage{
		{QuizID: 1, AverageScore: 95},
		{QuizID: 2, AverageScore: 90},
		{QuizID: 3, AverageScore: 89.5}, // below the mastery floor
	}

	repo.achievement.On("List", mock.Anything).Return(catalog, nil)
	repo.userAchievement.On("GetByUser", mock.Anything, uint(7)).Return([]*models.UserAchievement{}, nil)
	repo.result.On("GetByUser", mock.Anything, uint(7)).Return([]*models.Result{}, nil)
	repo.result.On("QuizAverages", mock.Anything, uint(7)).Return(averages, nil)
	repo.userAchievement.On("Insert", mock.Anything, mock.MatchedBy(func(unlock *models.UserAchievement) bool {
		return unlock.AchievementID == 3 && unlock.Progress == 2
	})).Return(true, nil)

	unlocked, err := service.CheckAchievements(context.Background(), 7)

	require.NoError(t, err)
	require.Len(t, unlocked, 1)
}

func TestGetProgress_ComputesAllTypesLive(t *testing.T) {
	repo := newMockRepository()
	service := newAchievementServiceForTest(repo, nil)

	catalog := []*models.Achievement{
		{ID: 1, Type: models.AchievementQuizScore, Threshold: 90},
		{ID: 2, Type: models.AchievementQuizCount, Threshold: 10},
		{ID: 3, Type: models.AchievementStreak, Threshold: 3},
		{ID: 4, Type: models.AchievementTopicMastery, Threshold: 1},
	}
	unlockedAt := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	results := []*models.Result{
		{Score: 85, CompletedAt: time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC)},
		{Score: 60, CompletedAt: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)},
	}

	repo.achievement.On("List", mock.Anything).Return(catalog, nil)
	repo.userAchievement.On("GetByUser", mock.Anything, uint(7)).Return([]*models.UserAchievement{
		{AchievementID: 4, UnlockedAt: unlockedAt},
	}, nil)
	repo.result.On("GetByUser", mock.Anything, uint(7)).Return(results, nil)
	repo.result.On("QuizAverages", mock.Anything, uint(7)).Return([]repositories.QuizAverage{
		{QuizID: 1, AverageScore: 92},
	}, nil)

	progress, err := service.GetProgress(context.Background(), 7)

	require.NoError(t, err)
	require.Len(t, progress, 4)

	byID := make(map[uint]AchievementProgress, len(progress))
	for _, entry := range progress {
		byID[entry.Achievement.ID] = entry
	}

	assert.Equal(t, 85, byID[1].Progress) // highest score
	assert.Equal(t, 2, byID[2].Progress)  // attempt count
	assert.Equal(t, 2, byID[3].Progress)  // two consecutive days
	assert.Equal(t, 1, byID[4].Progress)  // one mastered quiz
	assert.False(t, byID[1].Unlocked)
	assert.True(t, byID[4].Unlocked)
	require.NotNil(t, byID[4].UnlockedAt)
	assert.Equal(t, unlockedAt, *byID[4].UnlockedAt)
}
