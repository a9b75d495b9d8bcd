package services

import (
	"context"
	"fmt"

	"github.com/quizhub/quiz-service/internal/models"
	"github.com/quizhub/quiz-service/internal/repositories"
	"github.com/quizhub/quiz-service/internal/utils"
	"github.com/quizhub/quiz-service/internal/validator"
	"gorm.io/datatypes"
)

type CreateTopicRequest struct {
	Name        string   `json:"name" validate:"required,min=1,max=100"`
	Description string   `json:"description" validate:"max=500"`
	Tags        []string `json:"tags"`
}

// TopicService manages the topic taxonomy quizzes are organized under.
type TopicService struct {
	repo      repositories.Repository
	validator *validator.Validator
	logger    utils.Logger
}

func NewTopicService(repo repositories.Repository, v *validator.Validator, logger utils.Logger) *TopicService {
	return &TopicService{
		repo:      repo,
		validator: v,
		logger:    logger,
	}
}

// List returns all topics with their quiz counts, ordered by name.
func (s *TopicService) List(ctx context.Context) ([]*models.Topic, error) {
	topics, err := s.repo.Topic().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list topics: %w", err)
	}
	return topics, nil
}

func (s *TopicService) GetByID(ctx context.Context, id uint) (*models.Topic, error) {
	topic, err := s.repo.Topic().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTopicNotFound
		}
		return nil, fmt.Errorf("failed to load topic: %w", err)
	}
	return topic, nil
}

func (s *TopicService) Create(ctx context.Context, req *CreateTopicRequest) (*models.Topic, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if existing, err := s.repo.Topic().GetByName(ctx, req.Name); err == nil && existing != nil {
		return nil, ErrDuplicateTopic
	} else if err != nil && !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to check topic name: %w", err)
	}

	topic := &models.Topic{
		Name:        req.Name,
		Description: req.Description,
		Tags:        datatypes.NewJSONSlice(req.Tags),
	}
	if err := s.repo.Topic().Create(ctx, topic); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, ErrDuplicateTopic
		}
		return nil, fmt.Errorf("failed to create topic: %w", err)
	}

	s.logger.InfoContext(ctx, "Topic created", "topic_id", topic.ID, "name", topic.Name)
	return topic, nil
}

func (s *TopicService) Update(ctx context.Context, id uint, req *CreateTopicRequest) (*models.Topic, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	topic, err := s.repo.Topic().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTopicNotFound
		}
		return nil, fmt.Errorf("failed to load topic: %w", err)
	}

	topic.Name = req.Name
	topic.Description = req.Description
	topic.Tags = datatypes.NewJSONSlice(req.Tags)
	if err := s.repo.Topic().Update(ctx, topic); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, ErrDuplicateTopic
		}
		return nil, fmt.Errorf("failed to update topic: %w", err)
	}

	s.logger.InfoContext(ctx, "Topic updated", "topic_id", id)
	return topic, nil
}

// Delete removes an empty topic. Topics still carrying quizzes are
// protected so quiz rows never dangle.
func (s *TopicService) Delete(ctx context.Context, id uint) error {
	if _, err := s.repo.Topic().GetByID(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrTopicNotFound
		}
		return fmt.Errorf("failed to load topic: %w", err)
	}

	count, err := s.repo.Quiz().CountByTopic(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count quizzes: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: %d quizzes", ErrTopicNotEmpty, count)
	}

	if err := s.repo.Topic().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete topic: %w", err)
	}

	s.logger.InfoContext(ctx, "Topic deleted", "topic_id", id)
	return nil
}
