package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType names the domain events the service emits to Kafka.
type EventType string

const (
	EventAttemptSubmitted EventType = "attempt.submitted"

	EventAchievementUnlocked EventType = "achievement.unlocked"

	EventQuizCreated EventType = "quiz.created"
	EventQuizDeleted EventType = "quiz.deleted"
)

const eventSource = "quiz-service"

// Event is the envelope every payload ships in. Consumers route on Type and
// can evolve against Version without parsing Data.
type Event struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// AttemptSubmittedEvent carries the graded outcome of a quiz attempt.
type AttemptSubmittedEvent struct {
	ResultID     uint      `json:"result_id"`
	QuizID       uint      `json:"quiz_id"`
	QuizTitle    string    `json:"quiz_title"`
	UserID       uint      `json:"user_id"`
	Score        int       `json:"score"`
	CorrectCount int       `json:"correct_count"`
	TotalCount   int       `json:"total_count"`
	TimeSpent    int       `json:"time_spent"`
	CompletedAt  time.Time `json:"completed_at"`
}

// AchievementUnlockedEvent announces a newly earned achievement.
type AchievementUnlockedEvent struct {
	UserID          uint      `json:"user_id"`
	AchievementID   uint      `json:"achievement_id"`
	AchievementName string    `json:"achievement_name"`
	Points          int       `json:"points"`
	UnlockedAt      time.Time `json:"unlocked_at"`
}

// QuizCreatedEvent and QuizDeletedEvent track catalog changes.

type QuizCreatedEvent struct {
	QuizID    uint   `json:"quiz_id"`
	Title     string `json:"title"`
	TopicID   uint   `json:"topic_id"`
	CreatedBy uint   `json:"created_by"`
}

type QuizDeletedEvent struct {
	QuizID    uint `json:"quiz_id"`
	DeletedBy uint `json:"deleted_by"`
}

func newEvent(eventType EventType, data interface{}) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Source:    eventSource,
		Version:   "1.0",
		Data:      data,
	}
}

func NewAttemptSubmittedEvent(resultID, quizID uint, quizTitle string, userID uint, score, correctCount, totalCount, timeSpent int, completedAt time.Time) *Event {
	return newEvent(EventAttemptSubmitted, AttemptSubmittedEvent{
		ResultID:     resultID,
		QuizID:       quizID,
		QuizTitle:    quizTitle,
		UserID:       userID,
		Score:        score,
		CorrectCount: correctCount,
		TotalCount:   totalCount,
		TimeSpent:    timeSpent,
		CompletedAt:  completedAt,
	})
}

func NewAchievementUnlockedEvent(userID, achievementID uint, name string, points int, unlockedAt time.Time) *Event {
	return newEvent(EventAchievementUnlocked, AchievementUnlockedEvent{
		UserID:          userID,
		AchievementID:   achievementID,
		AchievementName: name,
		Points:          points,
		UnlockedAt:      unlockedAt,
	})
}

func NewQuizCreatedEvent(quizID uint, title string, topicID, createdBy uint) *Event {
	return newEvent(EventQuizCreated, QuizCreatedEvent{
		QuizID:    quizID,
		Title:     title,
		TopicID:   topicID,
		CreatedBy: createdBy,
	})
}

func NewQuizDeletedEvent(quizID, deletedBy uint) *Event {
	return newEvent(EventQuizDeleted, QuizDeletedEvent{
		QuizID:    quizID,
		DeletedBy: deletedBy,
	})
}
