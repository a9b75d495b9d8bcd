package services

import (
	"fmt"
	"math"

	apperrors "github.com/quizhub/quiz-service/internal/errors"
	"github.com/quizhub/quiz-service/internal/models"
)

// SubmittedAnswer is one answer in an incoming submission.
type SubmittedAnswer struct {
	QuestionID       uint `json:"question_id" validate:"required"`
	SelectedOptionID uint `json:"selected_option_id" validate:"required"`
}

// QuestionResult is the graded outcome for a single answered question.
type QuestionResult struct {
	QuestionID       uint   `json:"question_id"`
	SelectedOptionID uint   `json:"selected_option_id"`
	IsCorrect        bool   `json:"is_correct"`
	Explanation      string `json:"explanation"`
}

// ScoreSummary is the outcome of grading a full submission.
type ScoreSummary struct {
	Score          int              `json:"score"`
	CorrectCount   int              `json:"correct_count"`
	TotalQuestions int              `json:"total_questions"`
	Details        []QuestionResult `json:"details"`
}

// ScoreSubmission grades a submission against the quiz's question set.
// Grading is all-or-nothing: every question must be answered exactly once
// and every referenced question and option must exist on the quiz, otherwise
// the whole submission is rejected and nothing is graded.
//
// The score is the percentage of correct answers on a 0-100 scale, rounded
// half away from zero.
func ScoreSubmission(quiz *models.Quiz, answers []SubmittedAnswer) (*ScoreSummary, error) {
	total := quiz.QuestionCount()
	if total == 0 {
		return nil, ErrQuizHasNoQuestions
	}

	if len(answers) != total {
		return nil, apperrors.ValidationErrors{{
			Field:   "answers",
			Message: fmt.Sprintf("must contain exactly %d answers, got %d", total, len(answers)),
			Value:   len(answers),
		}}
	}

	seen := make(map[uint]bool, total)
	details := make([]QuestionResult, 0, total)
	correct := 0

	for i, answer := range answers {
		question := quiz.FindQuestion(answer.QuestionID)
		if question == nil {
			return nil, apperrors.ValidationErrors{{
				Field:   fmt.Sprintf("answers[%d].question_id", i),
				Message: "does not belong to this quiz",
				Value:   answer.QuestionID,
			}}
		}
		if seen[answer.QuestionID] {
			return nil, apperrors.ValidationErrors{{
				Field:   fmt.Sprintf("answers[%d].question_id", i),
				Message: "answered more than once",
				Value:   answer.QuestionID,
			}}
		}
		seen[answer.QuestionID] = true

		option := question.FindOption(answer.SelectedOptionID)
		if option == nil {
			return nil, apperrors.ValidationErrors{{
				Field:   fmt.Sprintf("answers[%d].selected_option_id", i),
				Message: "does not belong to the question",
				Value:   answer.SelectedOptionID,
			}}
		}

		if option.IsCorrect {
			correct++
		}
		details = append(details, QuestionResult{
			QuestionID:       answer.QuestionID,
			SelectedOptionID: answer.SelectedOptionID,
			IsCorrect:        option.IsCorrect,
			Explanation:      question.Explanation,
		})
	}

	return &ScoreSummary{
		Score:          int(math.Round(float64(correct) * 100 / float64(total))),
		CorrectCount:   correct,
		TotalQuestions: total,
		Details:        details,
	}, nil
}
