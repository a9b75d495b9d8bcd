package postgres

import (
	"context"

	"github.com/quizhub/quiz-service/internal/models"
	"github.com/quizhub/quiz-service/internal/repositories"
	"gorm.io/gorm"
)

type postgresRepository struct {
	db *gorm.DB

	topic           repositories.TopicRepository
	quiz            repositories.QuizRepository
	result          repositories.ResultRepository
	achievement     repositories.AchievementRepository
	userAchievement repositories.UserAchievementRepository
	user            repositories.UserRepository
}

// NewRepository wires the per-entity repositories over a shared gorm handle.
func NewRepository(db *gorm.DB) repositories.Repository {
	return &postgresRepository{
		db:              db,
		topic:           NewTopicPostgreSQL(db),
		quiz:            NewQuizPostgreSQL(db),
		result:          NewResultPostgreSQL(db),
		achievement:     NewAchievementPostgreSQL(db),
		userAchievement: NewUserAchievementPostgreSQL(db),
		user:            NewUserPostgreSQL(db),
	}
}

func (r *postgresRepository) Topic() repositories.TopicRepository             { return r.topic }
func (r *postgresRepository) Quiz() repositories.QuizRepository               { return r.quiz }
func (r *postgresRepository) Result() repositories.ResultRepository           { return r.result }
func (r *postgresRepository) Achievement() repositories.AchievementRepository { return r.achievement }
func (r *postgresRepository) UserAchievement() repositories.UserAchievementRepository {
	return r.userAchievement
}
func (r *postgresRepository) User() repositories.UserRepository { return r.user }

func (r *postgresRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}

func (r *postgresRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *postgresRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// AutoMigrate creates or updates the schema for all models, including the
// unique indexes the submission and unlock paths rely on.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Topic{},
		&models.Quiz{},
		&models.Question{},
		&models.Option{},
		&models.Result{},
		&models.Achievement{},
		&models.UserAchievement{},
	)
}
