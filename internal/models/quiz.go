package models

import (
	"time"

	"gorm.io/datatypes"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
)

type Quiz struct {
	ID          uint                        `json:"id" gorm:"primaryKey"`
	Title       string                      `json:"title" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Description string                      `json:"description" gorm:"not null;type:text" validate:"required,max=1000"`
	TopicID     uint                        `json:"topic_id" gorm:"not null;index" validate:"required"`
	Difficulty  Difficulty                  `json:"difficulty" gorm:"not null;size:10" validate:"required,difficulty"`
	TimeLimit   int                         `json:"time_limit" gorm:"not null" validate:"required,min=1"` // minutes
	// CooldownHours is the retry lockout applied after every attempt.
	// Zero means a quiz can be retaken immediately.
	CooldownHours int                         `json:"cooldown_hours" gorm:"not null;default:24" validate:"min=0"`
	Tags          datatypes.JSONSlice[string] `json:"tags"`

	CreatedBy uint      `json:"created_by" gorm:"not null;index"`
	CreatedAt time.Time `json:"created_at"`

	// Relations
	Topic     Topic      `json:"topic" gorm:"foreignKey:TopicID"`
	Questions []Question `json:"questions" gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE"`
	Creator   User       `json:"-" gorm:"foreignKey:CreatedBy"`
}

type Question struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	QuizID      uint   `json:"quiz_id" gorm:"not null;index"`
	Text        string `json:"text" gorm:"not null;type:text" validate:"required"`
	Explanation string `json:"explanation,omitempty" gorm:"not null;type:text" validate:"required"`
	Position    int    `json:"position" gorm:"not null"`

	Options []Option `json:"options" gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE"`
}

type Option struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	QuestionID uint   `json:"question_id" gorm:"not null;index"`
	Text       string `json:"text" gorm:"not null;type:text" validate:"required"`
	IsCorrect  bool   `json:"is_correct,omitempty" gorm:"not null;default:false"`
	Position   int    `json:"position" gorm:"not null"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

func (Question) TableName() string {
	return "questions"
}

func (Option) TableName() string {
	return "options"
}

// QuestionCount mirrors the stored question set; quizzes embed their
// questions, so the count never needs a separate query.
func (q *Quiz) QuestionCount() int {
	return len(q.Questions)
}

// FindQuestion locates a question by ID within the quiz.
func (q *Quiz) FindQuestion(questionID uint) *Question {
	for i := range q.Questions {
		if q.Questions[i].ID == questionID {
			return &q.Questions[i]
		}
	}
	return nil
}

// FindOption locates an option by ID within the question.
func (q *Question) FindOption(optionID uint) *Option {
	for i := range q.Options {
		if q.Options[i].ID == optionID {
			return &q.Options[i]
		}
	}
	return nil
}
