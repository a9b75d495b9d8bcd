package services

import (
	"context"
	"testing"
	"time"

	apperrors "github.com/quizhub/quiz-service/internal/errors"
	"github.com/quizhub/quiz-service/internal/models"
	"github.com/quizhub/quiz-service/internal/repositories"
	"github.com/quizhub/quiz-service/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newQuizServiceForTest(repo *mockRepository) (*QuizService, time.Time) {
	now := time.Date(2026, 3, 3, 12, 0, 0, 0, time.UTC)
	service := NewQuizService(repo, nil, validator.New(), testLogger())
	service.now = func() time.Time { return now }
	return service, now
}

func TestGetForTaking_StripsAnswerKey(t *testing.T) {
	repo := newMockRepository()
	service, _ := newQuizServiceForTest(repo)

	quiz := threeQuestionQuiz()
	quiz.Topic = models.Topic{Name: "Go"}
	repo.quiz.On("GetByID", mock.Anything, uint(1)).Return(quiz, nil)
	repo.result.On("GetLatest", mock.Anything, uint(7), uint(1)).Return(nil, nil)

	detail, err := service.GetForTaking(context.Background(), 7, 1)

	require.NoError(t, err)
	require.Len(t, detail.Questions, 3)
	for _, question := range detail.Questions {
		assert.Empty(t, question.Explanation)
		require.Len(t, question.Options, 2)
		for _, option := range question.Options {
			assert.Nil(t, option.IsCorrect)
		}
	}
	// No prior attempt, so the quiz is open.
	assert.True(t, detail.Status.CanAttempt)
	assert.False(t, detail.Status.Attempted)
}

func TestGetForTaking_RevealsKeyDuringCooldown(t *testing.T) {
	repo := newMockRepository()
	service, now := newQuizServiceForTest(repo)

	quiz := threeQuestionQuiz()
	latest := &models.Result{
		Score:              80,
		NextAttemptAllowed: now.Add(6 * time.Hour),
	}
	repo.quiz.On("GetByID", mock.Anything, uint(1)).Return(quiz, nil)
	repo.result.On("GetLatest", mock.Anything, uint(7), uint(1)).Return(latest, nil)

	detail, err := service.GetForTaking(context.Background(), 7, 1)

	require.NoError(t, err)
	assert.False(t, detail.Status.CanAttempt)

	// On cooldown the caller is reviewing, so the full question data
	// comes back.
	first := detail.Questions[0]
	assert.Equal(t, "first", first.Explanation)
	require.NotNil(t, first.Options[0].IsCorrect)
	assert.True(t, *first.Options[0].IsCorrect)
	require.NotNil(t, first.Options[1].IsCorrect)
	assert.False(t, *first.Options[1].IsCorrect)
}

func TestGetForTaking_AnnotatesCooldown(t *testing.T) {
	repo := newMockRepository()
	service, now := newQuizServiceForTest(repo)

	quiz := threeQuestionQuiz()
	latest := &models.Result{
		Score:              80,
		NextAttemptAllowed: now.Add(6 * time.Hour),
	}
	repo.quiz.On("GetByID", mock.Anything, uint(1)).Return(quiz, nil)
	repo.result.On("GetLatest", mock.Anything, uint(7), uint(1)).Return(latest, nil)

	detail, err := service.GetForTaking(context.Background(), 7, 1)

	require.NoError(t, err)
	assert.True(t, detail.Status.Attempted)
	require.NotNil(t, detail.Status.LastScore)
	assert.Equal(t, 80, *detail.Status.LastScore)
	assert.False(t, detail.Status.CanAttempt)
	require.NotNil(t, detail.Status.NextAttemptAt)
	assert.Equal(t, latest.NextAttemptAllowed, *detail.Status.NextAttemptAt)
}

func TestList_AnnotatesLatestAttemptPerQuiz(t *testing.T) {
	repo := newMockRepository()
	service, now := newQuizServiceForTest(repo)

	quizzes := []*models.Quiz{
		{ID: 1, Title: "One", Topic: models.Topic{Name: "Go"}},
		{ID: 2, Title: "Two", Topic: models.Topic{Name: "Go"}},
	}
	// Most recent first: the 90 on quiz 1 must win over the older 40.
	results := []*models.Result{
		{QuizID: 1, Score: 90, NextAttemptAllowed: now.Add(-time.Hour)},
		{QuizID: 1, Score: 40, NextAttemptAllowed: now.Add(-25 * time.Hour)},
	}

	repo.quiz.On("List", mock.Anything, mock.Anything).Return(quizzes, int64(2), nil)
	repo.result.On("GetByUser", mock.Anything, uint(7)).Return(results, nil)

	response, err := service.List(context.Background(), 7, repositories.QuizFilters{})

	require.NoError(t, err)
	require.Len(t, response.Quizzes, 2)

	first := response.Quizzes[0]
	assert.True(t, first.Status.Attempted)
	require.NotNil(t, first.Status.LastScore)
	assert.Equal(t, 90, *first.Status.LastScore)
	assert.True(t, first.Status.CanAttempt)

	second := response.Quizzes[1]
	assert.False(t, second.Status.Attempted)
	assert.True(t, second.Status.CanAttempt)
}

func TestValidateAnswerKeys(t *testing.T) {
	valid := []CreateQuestionRequest{
		{Options: []CreateOptionRequest{{IsCorrect: true}, {}}},
	}
	assert.NoError(t, validateAnswerKeys(valid))

	noCorrect := []CreateQuestionRequest{
		{Options: []CreateOptionRequest{{}, {}}},
	}
	var validationErrs apperrors.ValidationErrors
	require.ErrorAs(t, validateAnswerKeys(noCorrect), &validationErrs)
	assert.Equal(t, "questions[0].options", validationErrs[0].Field)

	twoCorrect := []CreateQuestionRequest{
		{Options: []CreateOptionRequest{{IsCorrect: true}, {IsCorrect: true}}},
	}
	require.ErrorAs(t, validateAnswerKeys(twoCorrect), &validationErrs)
}

func TestBuildQuiz_DefaultCooldown(t *testing.T) {
	repo := newMockRepository()
	service, _ := newQuizServiceForTest(repo)

	req := &CreateQuizRequest{
		Questions: []CreateQuestionRequest{
			{Options: []CreateOptionRequest{{Text: "a", IsCorrect: true}, {Text: "b"}}},
		},
	}

	quiz := service.buildQuiz(1, req)
	assert.Equal(t, 24, quiz.CooldownHours)

	zero := 0
	req.CooldownHours = &zero
	quiz = service.buildQuiz(1, req)
	assert.Equal(t, 0, quiz.CooldownHours)
}
