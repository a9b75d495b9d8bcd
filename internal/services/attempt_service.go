package services

import (
	"context"
	"fmt"
	"time"

	"github.com/quizhub/quiz-service/internal/events"
	"github.com/quizhub/quiz-service/internal/models"
	"github.com/quizhub/quiz-service/internal/repositories"
	"github.com/quizhub/quiz-service/internal/utils"
	"github.com/quizhub/quiz-service/internal/validator"
)

// SubmitAttemptRequest is a full answer set for one quiz attempt.
type SubmitAttemptRequest struct {
	TimeSpent int               `json:"time_spent" validate:"min=0"`
	Answers   []SubmittedAnswer `json:"answers" validate:"required,min=1,dive"`
}

// SubmitAttemptResponse returns the persisted result with its graded
// breakdown and any achievements the submission unlocked.
type SubmitAttemptResponse struct {
	Result          *models.Result        `json:"result"`
	Summary         *ScoreSummary         `json:"summary"`
	NextAttemptAt   time.Time             `json:"next_attempt_at"`
	NewAchievements []*models.Achievement `json:"new_achievements,omitempty"`
}

// AttemptService validates, grades and persists quiz submissions.
type AttemptService struct {
	repo         repositories.Repository
	achievements *AchievementService
	publisher    events.EventPublisher
	validator    *validator.Validator
	logger       utils.Logger
	now          func() time.Time
}

func NewAttemptService(
	repo repositories.Repository,
	achievements *AchievementService,
	publisher events.EventPublisher,
	v *validator.Validator,
	logger utils.Logger,
) *AttemptService {
	return &AttemptService{
		repo:         repo,
		achievements: achievements,
		publisher:    publisher,
		validator:    v,
		logger:       logger,
		now:          time.Now,
	}
}

// Submit records one attempt. The flow is: validate the payload, grade it
// against the current quiz, then atomically re-check cooldown eligibility
// and insert the result. The per-(user, quiz) advisory lock taken inside
// the transaction means two concurrent submissions cannot both pass the
// eligibility check.
//
// Event publication and achievement evaluation run after the commit; their
// failures are logged but never roll back a recorded attempt.
func (s *AttemptService) Submit(ctx context.Context, userID, quizID uint, req *SubmitAttemptRequest) (*SubmitAttemptResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	quiz, err := s.repo.Quiz().GetByID(ctx, quizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to load quiz: %w", err)
	}

	summary, err := ScoreSubmission(quiz, req.Answers)
	if err != nil {
		return nil, err
	}

	completedAt := s.now()
	result := &models.Result{
		UserID:             userID,
		QuizID:             quizID,
		Score:              summary.Score,
		TimeSpent:          req.TimeSpent,
		CompletedAt:        completedAt,
		NextAttemptAllowed: NextAttemptTime(quiz, completedAt),
	}

	answers := make([]models.AnswerRecord, len(summary.Details))
	for i, detail := range summary.Details {
		answers[i] = models.AnswerRecord{
			QuestionID:       detail.QuestionID,
			SelectedOptionID: detail.SelectedOptionID,
			IsCorrect:        detail.IsCorrect,
			Explanation:      detail.Explanation,
		}
	}
	if err := result.SetAnswers(answers); err != nil {
		return nil, fmt.Errorf("failed to encode answers: %w", err)
	}

	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := tx.Result().LockUserQuiz(ctx, userID, quizID); err != nil {
			return fmt.Errorf("failed to acquire submission lock: %w", err)
		}

		latest, err := tx.Result().GetLatest(ctx, userID, quizID)
		if err != nil {
			return fmt.Errorf("failed to load latest attempt: %w", err)
		}

		status := EvaluateCooldown(latest, completedAt)
		if !status.CanAttempt {
			return &CooldownError{QuizID: quizID, NextAttemptAt: *status.NextAttemptAt}
		}

		if err := tx.Result().Create(ctx, result); err != nil {
			return fmt.Errorf("failed to record attempt: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Attempt recorded",
		"user_id", userID,
		"quiz_id", quizID,
		"result_id", result.ID,
		"score", result.Score)

	if s.publisher != nil {
		event := events.NewAttemptSubmittedEvent(
			result.ID, quizID, quiz.Title, userID,
			summary.Score, summary.CorrectCount, summary.TotalQuestions,
			req.TimeSpent, completedAt,
		)
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.WarnContext(ctx, "Failed to publish attempt event",
				"result_id", result.ID,
				"error", err)
		}
	}

	newAchievements, err := s.achievements.CheckAchievements(ctx, userID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Achievement evaluation failed after submission",
			"user_id", userID,
			"result_id", result.ID,
			"error", err)
	}

	return &SubmitAttemptResponse{
		Result:          result,
		Summary:         summary,
		NextAttemptAt:   result.NextAttemptAllowed,
		NewAchievements: newAchievements,
	}, nil
}

// Eligibility reports whether the user may attempt the quiz right now. It
// is advisory only: the authoritative check happens inside Submit's
// transaction.
func (s *AttemptService) Eligibility(ctx context.Context, userID, quizID uint) (*CooldownStatus, error) {
	if _, err := s.repo.Quiz().GetByID(ctx, quizID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to load quiz: %w", err)
	}

	latest, err := s.repo.Result().GetLatest(ctx, userID, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to load latest attempt: %w", err)
	}

	status := EvaluateCooldown(latest, s.now())
	return &status, nil
}

// ListQuizResults returns the caller's attempts at one quiz, most recent
// first.
func (s *AttemptService) ListQuizResults(ctx context.Context, userID, quizID uint) ([]*models.Result, error) {
	if _, err := s.repo.Quiz().GetByID(ctx, quizID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to load quiz: %w", err)
	}

	results, err := s.repo.Result().GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load results: %w", err)
	}

	filtered := make([]*models.Result, 0, len(results))
	for _, result := range results {
		if result.QuizID == quizID {
			filtered = append(filtered, result)
		}
	}
	return filtered, nil
}

// LatestResult returns the caller's most recent attempt at a quiz.
func (s *AttemptService) LatestResult(ctx context.Context, userID, quizID uint) (*models.Result, error) {
	latest, err := s.repo.Result().GetLatest(ctx, userID, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to load latest attempt: %w", err)
	}
	if latest == nil {
		return nil, ErrResultNotFound
	}
	return latest, nil
}

// GetResult loads one of the caller's own results with its graded
// breakdown. A result belonging to another user reads as not found.
func (s *AttemptService) GetResult(ctx context.Context, userID, resultID uint) (*models.Result, error) {
	result, err := s.repo.Result().GetByID(ctx, resultID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrResultNotFound
		}
		return nil, fmt.Errorf("failed to load result: %w", err)
	}
	if result.UserID != userID {
		return nil, ErrResultNotFound
	}
	return result, nil
}
