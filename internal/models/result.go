package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// AnswerRecord is the immutable per-question snapshot taken at submission
// time. Correctness and explanation are copied from the quiz as it existed
// when the attempt was scored; later edits to the quiz never rewrite history.
type AnswerRecord struct {
	QuestionID       uint   `json:"question_id"`
	SelectedOptionID uint   `json:"selected_option_id"`
	IsCorrect        bool   `json:"is_correct"`
	Explanation      string `json:"explanation"`
}

// Result is one scored attempt of a quiz by a user. Rows are append-only:
// created exactly once per submission and never updated.
type Result struct {
	ID     uint `json:"id" gorm:"primaryKey"`
	UserID uint `json:"user_id" gorm:"not null;index:idx_results_user_quiz"`
	QuizID uint `json:"quiz_id" gorm:"not null;index:idx_results_user_quiz"`

	Answers   datatypes.JSON `json:"answers" gorm:"not null"`
	Score     int            `json:"score" gorm:"not null" validate:"min=0,max=100"`
	TimeSpent int            `json:"time_spent" gorm:"not null"` // seconds

	CompletedAt        time.Time `json:"completed_at" gorm:"not null;index"`
	NextAttemptAllowed time.Time `json:"next_attempt_allowed" gorm:"not null"`

	// Relations
	User User `json:"-" gorm:"foreignKey:UserID"`
	Quiz Quiz `json:"-" gorm:"foreignKey:QuizID"`
}

func (Result) TableName() string {
	return "results"
}

// SetAnswers stores the answer snapshots as the embedded JSON document.
func (r *Result) SetAnswers(answers []AnswerRecord) error {
	raw, err := json.Marshal(answers)
	if err != nil {
		return err
	}
	r.Answers = datatypes.JSON(raw)
	return nil
}

// AnswerRecords decodes the embedded answer snapshots.
func (r *Result) AnswerRecords() ([]AnswerRecord, error) {
	var answers []AnswerRecord
	if len(r.Answers) == 0 {
		return answers, nil
	}
	if err := json.Unmarshal(r.Answers, &answers); err != nil {
		return nil, err
	}
	return answers, nil
}

// CorrectCount counts correct answers in the stored snapshot.
func (r *Result) CorrectCount() int {
	answers, err := r.AnswerRecords()
	if err != nil {
		return 0
	}
	count := 0
	for _, a := range answers {
		if a.IsCorrect {
			count++
		}
	}
	return count
}

// TotalQuestions is the number of answers recorded for the attempt.
func (r *Result) TotalQuestions() int {
	answers, err := r.AnswerRecords()
	if err != nil {
		return 0
	}
	return len(answers)
}
