package postgres

import (
	"context"

	"github.com/quizhub/quiz-service/internal/models"
	"github.com/quizhub/quiz-service/internal/repositories"
	"gorm.io/gorm"
)

type TopicPostgreSQL struct {
	db *gorm.DB
}

func NewTopicPostgreSQL(db *gorm.DB) repositories.TopicRepository {
	return &TopicPostgreSQL{db: db}
}

func (t TopicPostgreSQL) Create(ctx context.Context, topic *models.Topic) error {
	return t.db.WithContext(ctx).Create(topic).Error
}

func (t TopicPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Topic, error) {
	var topic models.Topic
	if err := t.db.WithContext(ctx).First(&topic, id).Error; err != nil {
		return nil, err
	}
	return &topic, nil
}

func (t TopicPostgreSQL) GetByName(ctx context.Context, name string) (*models.Topic, error) {
	var topic models.Topic
	if err := t.db.WithContext(ctx).
		Where("name ILIKE ?", name).
		First(&topic).Error; err != nil {
		return nil, err
	}
	return &topic, nil
}

func (t TopicPostgreSQL) Update(ctx context.Context, topic *models.Topic) error {
	return t.db.WithContext(ctx).Save(topic).Error
}

func (t TopicPostgreSQL) Delete(ctx context.Context, id uint) error {
	return t.db.WithContext(ctx).Delete(&models.Topic{}, id).Error
}

func (t TopicPostgreSQL) List(ctx context.Context) ([]*models.Topic, error) {
	var topics []*models.Topic
	if err := t.db.WithContext(ctx).
		Order("name ASC").
		Find(&topics).Error; err != nil {
		return nil, err
	}

	for _, topic := range topics {
		var count int64
		if err := t.db.WithContext(ctx).
			Model(&models.Quiz{}).
			Where("topic_id = ?", topic.ID).
			Count(&count).Error; err != nil {
			return nil, err
		}
		topic.QuizCount = count
	}

	return topics, nil
}
