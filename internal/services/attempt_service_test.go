package services

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	apperrors "github.com/quizhub/quiz-service/internal/errors"
	"github.com/quizhub/quiz-service/internal/events"
	"github.com/quizhub/quiz-service/internal/models"
	"github.com/quizhub/quiz-service/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAttemptServiceForTest(repo *mockRepository, publisher events.EventPublisher) (*AttemptService, time.Time) {
	now := time.Date(2026, 3, 3, 12, 0, 0, 0, time.UTC)

	achievements := NewAchievementService(repo, publisher, validator.New(), testLogger())
	achievements.now = func() time.Time { return now }

	service := NewAttemptService(repo, achievements, publisher, validator.New(), testLogger())
	service.now = func() time.Time { return now }
	return service, now
}

func TestSubmit_RecordsResult(t *testing.T) {
	repo := newMockRepository()
	publisher := events.NewMockPublisher(slog.New(slog.NewTextHandler(os.Stdout, nil)))
	service, now := newAttemptServiceForTest(repo, publisher)

	quiz := threeQuestionQuiz()
	quiz.Title = "Go Basics"
	quiz.CooldownHours = 24

	repo.quiz.On("GetByID", mock.Anything, uint(1)).Return(quiz, nil)
	repo.result.On("LockUserQuiz", mock.Anything, uint(7), uint(1)).Return(nil)
	repo.result.On("GetLatest", mock.Anything, uint(7), uint(1)).Return(nil, nil)
	repo.result.On("Create", mock.Anything, mock.AnythingOfType("*models.Result")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*models.Result).ID = 42
		}).Return(nil)
	// An empty catalog makes the post-submit achievement check a no-op.
	repo.achievement.On("List", mock.Anything).Return([]*models.Achievement{}, nil)

	response, err := service.Submit(context.Background(), 7, 1, &SubmitAttemptRequest{
		TimeSpent: 120,
		Answers: []SubmittedAnswer{
			{QuestionID: 1, SelectedOptionID: 11},
			{QuestionID: 2, SelectedOptionID: 21},
			{QuestionID: 3, SelectedOptionID: 32},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, uint(42), response.Result.ID)
	assert.Equal(t, 67, response.Summary.Score)
	assert.Equal(t, 2, response.Summary.CorrectCount)
	assert.Equal(t, now.Add(24*time.Hour), response.NextAttemptAt)

	// Stored snapshot carries correctness and explanations.
	answers, err := response.Result.AnswerRecords()
	require.NoError(t, err)
	require.Len(t, answers, 3)
	assert.True(t, answers[0].IsCorrect)
	assert.False(t, answers[2].IsCorrect)
	assert.Equal(t, "third", answers[2].Explanation)

	// Submission event went out.
	published := publisher.Published()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventAttemptSubmitted, published[0].Type)
}

func TestSubmit_RejectedDuringCooldown(t *testing.T) {
	repo := newMockRepository()
	service, now := newAttemptServiceForTest(repo, nil)

	quiz := threeQuestionQuiz()
	latest := &models.Result{
		UserID:             7,
		QuizID:             1,
		NextAttemptAllowed: now.Add(5 * time.Hour),
	}

	repo.quiz.On("GetByID", mock.Anything, uint(1)).Return(quiz, nil)
	repo.result.On("LockUserQuiz", mock.Anything, uint(7), uint(1)).Return(nil)
	repo.result.On("GetLatest", mock.Anything, uint(7), uint(1)).Return(latest, nil)

	_, err := service.Submit(context.Background(), 7, 1, &SubmitAttemptRequest{
		Answers: []SubmittedAnswer{
			{QuestionID: 1, SelectedOptionID: 11},
			{QuestionID: 2, SelectedOptionID: 21},
			{QuestionID: 3, SelectedOptionID: 31},
		},
	})

	cooldownErr, ok := IsCooldownError(err)
	require.True(t, ok)
	assert.Equal(t, uint(1), cooldownErr.QuizID)
	assert.Equal(t, latest.NextAttemptAllowed, cooldownErr.NextAttemptAt)

	// Nothing was persisted.
	repo.result.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSubmit_QuizNotFound(t *testing.T) {
	repo := newMockRepository()
	service, _ := newAttemptServiceForTest(repo, nil)

	repo.quiz.On("GetByID", mock.Anything, uint(99)).Return(nil, gorm.ErrRecordNotFound)

	_, err := service.Submit(context.Background(), 7, 99, &SubmitAttemptRequest{
		Answers: []SubmittedAnswer{{QuestionID: 1, SelectedOptionID: 11}},
	})

	assert.ErrorIs(t, err, ErrQuizNotFound)
}

func TestSubmit_AnswerCountMismatchPersistsNothing(t *testing.T) {
	repo := newMockRepository()
	service, _ := newAttemptServiceForTest(repo, nil)

	repo.quiz.On("GetByID", mock.Anything, uint(1)).Return(threeQuestionQuiz(), nil)

	_, err := service.Submit(context.Background(), 7, 1, &SubmitAttemptRequest{
		Answers: []SubmittedAnswer{{QuestionID: 1, SelectedOptionID: 11}},
	})

	var validationErrs apperrors.ValidationErrors
	require.ErrorAs(t, err, &validationErrs)
	repo.result.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	repo.result.AssertNotCalled(t, "LockUserQuiz", mock.Anything, mock.Anything, mock.Anything)
}

func TestEligibility(t *testing.T) {
	repo := newMockRepository()
	service, now := newAttemptServiceForTest(repo, nil)

	quiz := threeQuestionQuiz()
	repo.quiz.On("GetByID", mock.Anything, uint(1)).Return(quiz, nil)
	repo.result.On("GetLatest", mock.Anything, uint(7), uint(1)).Return(&models.Result{
		NextAttemptAllowed: now.Add(2 * time.Hour),
	}, nil)

	status, err := service.Eligibility(context.Background(), 7, 1)

	require.NoError(t, err)
	assert.False(t, status.CanAttempt)
	require.NotNil(t, status.NextAttemptAt)
}

func TestGetResult_OwnershipEnforced(t *testing.T) {
	repo := newMockRepository()
	service, _ := newAttemptServiceForTest(repo, nil)

	repo.result.On("GetByID", mock.Anything, uint(5)).Return(&models.Result{ID: 5, UserID: 8}, nil)

	_, err := service.GetResult(context.Background(), 7, 5)

	assert.ErrorIs(t, err, ErrResultNotFound)
}
