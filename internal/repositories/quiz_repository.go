package repositories

import (
	"context"

	"github.com/quizhub/quiz-service/internal/models"
)

// QuizRepository covers quiz authoring and browsing. GetByID loads the
// full question/option tree in stored order; List omits questions.
type QuizRepository interface {
	Create(ctx context.Context, quiz *models.Quiz) error
	GetByID(ctx context.Context, id uint) (*models.Quiz, error)
	Update(ctx context.Context, quiz *models.Quiz) error
	Delete(ctx context.Context, id uint) error

	List(ctx context.Context, filters QuizFilters) ([]*models.Quiz, int64, error)
	GetByIDs(ctx context.Context, ids []uint) ([]*models.Quiz, error)
	IDsByTopic(ctx context.Context, topicID uint) ([]uint, error)
	CountByTopic(ctx context.Context, topicID uint) (int64, error)
	Count(ctx context.Context) (int64, error)
}

// TopicRepository covers the topic catalog.
type TopicRepository interface {
	Create(ctx context.Context, topic *models.Topic) error
	GetByID(ctx context.Context, id uint) (*models.Topic, error)
	GetByName(ctx context.Context, name string) (*models.Topic, error)
	Update(ctx context.Context, topic *models.Topic) error
	Delete(ctx context.Context, id uint) error

	// List returns all topics with their quiz counts populated.
	List(ctx context.Context) ([]*models.Topic, error)
}
