package postgres

import (
	"context"

	"github.com/quizhub/quiz-service/internal/models"
	"github.com/quizhub/quiz-service/internal/repositories"
	"gorm.io/gorm"
)

type QuizPostgreSQL struct {
	db *gorm.DB
}

func NewQuizPostgreSQL(db *gorm.DB) repositories.QuizRepository {
	return &QuizPostgreSQL{db: db}
}

func (q QuizPostgreSQL) Create(ctx context.Context, quiz *models.Quiz) error {
	return q.db.WithContext(ctx).Create(quiz).Error
}

func (q QuizPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Quiz, error) {
	var quiz models.Quiz
	if err := q.db.WithContext(ctx).
		Preload("Topic").
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.position ASC")
		}).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("options.position ASC")
		}).
		First(&quiz, id).Error; err != nil {
		return nil, err
	}
	return &quiz, nil
}

// Update replaces the quiz together with its question tree. Existing
// questions are deleted first so positions and the answer key are exactly
// what the caller supplied; prior attempts keep their own snapshots.
func (q QuizPostgreSQL) Update(ctx context.Context, quiz *models.Quiz) error {
	return q.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("quiz_id = ?", quiz.ID).Delete(&models.Question{}).Error; err != nil {
			return err
		}
		return tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(quiz).Error
	})
}

func (q QuizPostgreSQL) Delete(ctx context.Context, id uint) error {
	return q.db.WithContext(ctx).Delete(&models.Quiz{}, id).Error
}

func (q QuizPostgreSQL) List(ctx context.Context, filters repositories.QuizFilters) ([]*models.Quiz, int64, error) {
	var quizzes []*models.Quiz
	var total int64

	query := q.db.WithContext(ctx).Model(&models.Quiz{})
	query = q.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	p := filters.Pagination.Normalize()
	if err := query.
		Preload("Topic").
		Order("created_at DESC").
		Offset(p.Offset()).
		Limit(p.Limit).
		Find(&quizzes).Error; err != nil {
		return nil, 0, err
	}

	return quizzes, total, nil
}

func (q QuizPostgreSQL) GetByIDs(ctx context.Context, ids []uint) ([]*models.Quiz, error) {
	var quizzes []*models.Quiz
	if len(ids) == 0 {
		return quizzes, nil
	}
	if err := q.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&quizzes).Error; err != nil {
		return nil, err
	}
	return quizzes, nil
}

func (q QuizPostgreSQL) IDsByTopic(ctx context.Context, topicID uint) ([]uint, error) {
	var ids []uint
	if err := q.db.WithContext(ctx).
		Model(&models.Quiz{}).
		Where("topic_id = ?", topicID).
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (q QuizPostgreSQL) CountByTopic(ctx context.Context, topicID uint) (int64, error) {
	var count int64
	err := q.db.WithContext(ctx).
		Model(&models.Quiz{}).
		Where("topic_id = ?", topicID).
		Count(&count).Error
	return count, err
}

func (q QuizPostgreSQL) Count(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.WithContext(ctx).Model(&models.Quiz{}).Count(&count).Error
	return count, err
}

func (q QuizPostgreSQL) applyFilters(query *gorm.DB, filters repositories.QuizFilters) *gorm.DB {
	if filters.TopicName != nil && *filters.TopicName != "" {
		query = query.Where(
			"topic_id IN (SELECT id FROM topics WHERE name ILIKE ?)",
			"%"+*filters.TopicName+"%",
		)
	}
	if filters.Difficulty != nil {
		query = query.Where("difficulty = ?", *filters.Difficulty)
	}
	if filters.Search != nil && *filters.Search != "" {
		pattern := "%" + *filters.Search + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ?", pattern, pattern)
	}
	return query
}
