package services

import (
	"errors"
	"fmt"
	"time"

	apperrors "github.com/quizhub/quiz-service/internal/errors"
)

// ===== SENTINEL ERRORS =====

var (
	ErrQuizNotFound        = errors.New("quiz not found")
	ErrTopicNotFound       = errors.New("topic not found")
	ErrResultNotFound      = errors.New("result not found")
	ErrAchievementNotFound = errors.New("achievement not found")
	ErrUserNotFound        = errors.New("user not found")

	ErrDuplicateTopic       = errors.New("topic with this name already exists")
	ErrDuplicateAchievement = errors.New("achievement with this name already exists")
	ErrTopicNotEmpty        = errors.New("topic still has quizzes")

	ErrQuizHasNoQuestions = errors.New("quiz has no questions")
)

// ===== TYPED ERRORS =====

// CooldownError reports a submission rejected because the retry lockout for
// the quiz has not elapsed yet.
type CooldownError struct {
	QuizID        uint
	NextAttemptAt time.Time
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("quiz %d is on cooldown until %s", e.QuizID, e.NextAttemptAt.Format(time.RFC3339))
}

// PermissionError reports an operation the caller's role does not allow.
type PermissionError struct {
	Action string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("not allowed to %s", e.Action)
}

// ===== ERROR CLASSIFIERS =====

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrQuizNotFound) ||
		errors.Is(err, ErrTopicNotFound) ||
		errors.Is(err, ErrResultNotFound) ||
		errors.Is(err, ErrAchievementNotFound) ||
		errors.Is(err, ErrUserNotFound)
}

func IsConflictError(err error) bool {
	return errors.Is(err, ErrDuplicateTopic) ||
		errors.Is(err, ErrDuplicateAchievement) ||
		errors.Is(err, ErrTopicNotEmpty)
}

func IsValidationError(err error) bool {
	var validationErrs apperrors.ValidationErrors
	if errors.As(err, &validationErrs) {
		return true
	}
	var validationErr *apperrors.ValidationError
	return errors.As(err, &validationErr)
}

func IsCooldownError(err error) (*CooldownError, bool) {
	var cooldownErr *CooldownError
	if errors.As(err, &cooldownErr) {
		return cooldownErr, true
	}
	return nil, false
}

func IsPermissionError(err error) bool {
	var permissionErr *PermissionError
	return errors.As(err, &permissionErr)
}
