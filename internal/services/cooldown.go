package services

import (
	"time"

	"github.com/quizhub/quiz-service/internal/models"
)

// CooldownStatus reports whether a user may attempt a quiz right now.
type CooldownStatus struct {
	CanAttempt    bool       `json:"can_attempt"`
	NextAttemptAt *time.Time `json:"next_attempt_at,omitempty"`
}

// EvaluateCooldown decides attempt eligibility from the user's most recent
// result for the quiz. A user with no prior attempt is always eligible. The
// lockout boundary is inclusive: an attempt exactly at NextAttemptAllowed is
// permitted.
func EvaluateCooldown(latest *models.Result, now time.Time) CooldownStatus {
	if latest == nil {
		return CooldownStatus{CanAttempt: true}
	}
	if !now.Before(latest.NextAttemptAllowed) {
		return CooldownStatus{CanAttempt: true}
	}
	next := latest.NextAttemptAllowed
	return CooldownStatus{CanAttempt: false, NextAttemptAt: &next}
}

// NextAttemptTime computes when a quiz becomes attemptable again after a
// submission completed at the given time.
func NextAttemptTime(quiz *models.Quiz, completedAt time.Time) time.Time {
	return completedAt.Add(time.Duration(quiz.CooldownHours) * time.Hour)
}
