package services

import (
	"context"
	"fmt"
	"time"

	apperrors "github.com/quizhub/quiz-service/internal/errors"
	"github.com/quizhub/quiz-service/internal/events"
	"github.com/quizhub/quiz-service/internal/models"
	"github.com/quizhub/quiz-service/internal/repositories"
	"github.com/quizhub/quiz-service/internal/utils"
	"github.com/quizhub/quiz-service/internal/validator"
	"gorm.io/datatypes"
)

// ===== REQUEST / RESPONSE TYPES =====

type CreateOptionRequest struct {
	Text      string `json:"text" validate:"required"`
	IsCorrect bool   `json:"is_correct"`
}

type CreateQuestionRequest struct {
	Text        string                `json:"text" validate:"required"`
	Explanation string                `json:"explanation" validate:"required"`
	Options     []CreateOptionRequest `json:"options" validate:"required,min=2,dive"`
}

type CreateQuizRequest struct {
	Title         string                  `json:"title" validate:"required,min=1,max=200"`
	Description   string                  `json:"description" validate:"required,max=1000"`
	TopicID       uint                    `json:"topic_id" validate:"required"`
	Difficulty    models.Difficulty       `json:"difficulty" validate:"required,difficulty"`
	TimeLimit     int                     `json:"time_limit" validate:"required,min=1"`
	CooldownHours *int                    `json:"cooldown_hours" validate:"omitempty,min=0"`
	Tags          []string                `json:"tags"`
	Questions     []CreateQuestionRequest `json:"questions" validate:"required,min=1,dive"`
}

// AttemptStatus is the caller's standing against one quiz.
type AttemptStatus struct {
	Attempted     bool       `json:"attempted"`
	LastScore     *int       `json:"last_score,omitempty"`
	CanAttempt    bool       `json:"can_attempt"`
	NextAttemptAt *time.Time `json:"next_attempt_at,omitempty"`
}

// QuizListItem is the catalog view of a quiz: metadata only, no questions.
type QuizListItem struct {
	ID            uint              `json:"id"`
	Title         string            `json:"title"`
	Description   string            `json:"description"`
	Topic         string            `json:"topic"`
	Difficulty    models.Difficulty `json:"difficulty"`
	TimeLimit     int               `json:"time_limit"`
	CooldownHours int               `json:"cooldown_hours"`
	Tags          []string          `json:"tags"`
	QuestionCount int               `json:"question_count"`
	CreatedAt     time.Time         `json:"created_at"`
	Status        AttemptStatus     `json:"status"`
}

type QuizListResponse struct {
	Quizzes []QuizListItem `json:"quizzes"`
	Total   int64          `json:"total"`
	Page    int            `json:"page"`
	Limit   int            `json:"limit"`
}

// PublicOption is an option as shown to a quiz taker. IsCorrect stays nil
// while the caller is still eligible to attempt the quiz.
type PublicOption struct {
	ID        uint   `json:"id"`
	Text      string `json:"text"`
	Position  int    `json:"position"`
	IsCorrect *bool  `json:"is_correct,omitempty"`
}

// PublicQuestion carries the explanation only once the caller is on
// cooldown and reviewing the quiz they just took.
type PublicQuestion struct {
	ID          uint           `json:"id"`
	Text        string         `json:"text"`
	Position    int            `json:"position"`
	Explanation string         `json:"explanation,omitempty"`
	Options     []PublicOption `json:"options"`
}

type QuizDetail struct {
	ID            uint              `json:"id"`
	Title         string            `json:"title"`
	Description   string            `json:"description"`
	Topic         string            `json:"topic"`
	Difficulty    models.Difficulty `json:"difficulty"`
	TimeLimit     int               `json:"time_limit"`
	CooldownHours int               `json:"cooldown_hours"`
	Tags          []string          `json:"tags"`
	Questions     []PublicQuestion  `json:"questions"`
	Status        AttemptStatus     `json:"status"`
}

// ===== SERVICE =====

// QuizService serves the quiz catalog to takers and manages quizzes for
// administrators.
type QuizService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	validator *validator.Validator
	logger    utils.Logger
	now       func() time.Time
}

func NewQuizService(repo repositories.Repository, publisher events.EventPublisher, v *validator.Validator, logger utils.Logger) *QuizService {
	return &QuizService{
		repo:      repo,
		publisher: publisher,
		validator: v,
		logger:    logger,
		now:       time.Now,
	}
}

// List returns the filtered quiz catalog annotated with the caller's
// attempt status for each quiz.
func (s *QuizService) List(ctx context.Context, userID uint, filters repositories.QuizFilters) (*QuizListResponse, error) {
	quizzes, total, err := s.repo.Quiz().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list quizzes: %w", err)
	}

	latestByQuiz, err := s.latestResultsByQuiz(ctx, userID)
	if err != nil {
		return nil, err
	}

	p := filters.Pagination.Normalize()
	items := make([]QuizListItem, 0, len(quizzes))
	for _, quiz := range quizzes {
		items = append(items, QuizListItem{
			ID:            quiz.ID,
			Title:         quiz.Title,
			Description:   quiz.Description,
			Topic:         quiz.Topic.Name,
			Difficulty:    quiz.Difficulty,
			TimeLimit:     quiz.TimeLimit,
			CooldownHours: quiz.CooldownHours,
			Tags:          quiz.Tags,
			QuestionCount: quiz.QuestionCount(),
			CreatedAt:     quiz.CreatedAt,
			Status:        s.attemptStatus(latestByQuiz[quiz.ID]),
		})
	}

	return &QuizListResponse{
		Quizzes: items,
		Total:   total,
		Page:    p.Page,
		Limit:   p.Limit,
	}, nil
}

// GetForTaking returns a quiz for the taker's view. While the caller can
// still attempt it, correctness flags and explanations are stripped. Once
// the caller is on cooldown the full question data comes back so they can
// review the attempt they just made.
func (s *QuizService) GetForTaking(ctx context.Context, userID, quizID uint) (*QuizDetail, error) {
	quiz, err := s.repo.Quiz().GetByID(ctx, quizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to load quiz: %w", err)
	}

	latest, err := s.repo.Result().GetLatest(ctx, userID, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to load latest attempt: %w", err)
	}

	status := s.attemptStatus(latest)
	reveal := !status.CanAttempt

	questions := make([]PublicQuestion, 0, len(quiz.Questions))
	for _, question := range quiz.Questions {
		options := make([]PublicOption, 0, len(question.Options))
		for _, option := range question.Options {
			public := PublicOption{
				ID:       option.ID,
				Text:     option.Text,
				Position: option.Position,
			}
			if reveal {
				isCorrect := option.IsCorrect
				public.IsCorrect = &isCorrect
			}
			options = append(options, public)
		}
		public := PublicQuestion{
			ID:       question.ID,
			Text:     question.Text,
			Position: question.Position,
			Options:  options,
		}
		if reveal {
			public.Explanation = question.Explanation
		}
		questions = append(questions, public)
	}

	return &QuizDetail{
		ID:            quiz.ID,
		Title:         quiz.Title,
		Description:   quiz.Description,
		Topic:         quiz.Topic.Name,
		Difficulty:    quiz.Difficulty,
		TimeLimit:     quiz.TimeLimit,
		CooldownHours: quiz.CooldownHours,
		Tags:          quiz.Tags,
		Questions:     questions,
		Status:        status,
	}, nil
}

// GetFull returns the quiz with its answer key, for administrators.
func (s *QuizService) GetFull(ctx context.Context, quizID uint) (*models.Quiz, error) {
	quiz, err := s.repo.Quiz().GetByID(ctx, quizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to load quiz: %w", err)
	}
	return quiz, nil
}

func (s *QuizService) Create(ctx context.Context, creatorID uint, req *CreateQuizRequest) (*models.Quiz, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if err := validateAnswerKeys(req.Questions); err != nil {
		return nil, err
	}

	if _, err := s.repo.Topic().GetByID(ctx, req.TopicID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTopicNotFound
		}
		return nil, fmt.Errorf("failed to load topic: %w", err)
	}

	quiz := s.buildQuiz(creatorID, req)
	if err := s.repo.Quiz().Create(ctx, quiz); err != nil {
		return nil, fmt.Errorf("failed to create quiz: %w", err)
	}

	s.logger.InfoContext(ctx, "Quiz created",
		"quiz_id", quiz.ID,
		"title", quiz.Title,
		"created_by", creatorID)

	if s.publisher != nil {
		event := events.NewQuizCreatedEvent(quiz.ID, quiz.Title, quiz.TopicID, creatorID)
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.WarnContext(ctx, "Failed to publish quiz created event", "quiz_id", quiz.ID, "error", err)
		}
	}

	return quiz, nil
}

// Update replaces the quiz definition including its whole question tree.
// Existing results are untouched; their answer snapshots preserve the quiz
// as it was when attempted.
func (s *QuizService) Update(ctx context.Context, quizID uint, req *CreateQuizRequest) (*models.Quiz, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if err := validateAnswerKeys(req.Questions); err != nil {
		return nil, err
	}

	existing, err := s.repo.Quiz().GetByID(ctx, quizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to load quiz: %w", err)
	}

	if _, err := s.repo.Topic().GetByID(ctx, req.TopicID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTopicNotFound
		}
		return nil, fmt.Errorf("failed to load topic: %w", err)
	}

	quiz := s.buildQuiz(existing.CreatedBy, req)
	quiz.ID = quizID
	quiz.CreatedAt = existing.CreatedAt
	if err := s.repo.Quiz().Update(ctx, quiz); err != nil {
		return nil, fmt.Errorf("failed to update quiz: %w", err)
	}

	s.logger.InfoContext(ctx, "Quiz updated", "quiz_id", quizID)
	return quiz, nil
}

func (s *QuizService) Delete(ctx context.Context, quizID, deletedBy uint) error {
	if _, err := s.repo.Quiz().GetByID(ctx, quizID); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrQuizNotFound
		}
		return fmt.Errorf("failed to load quiz: %w", err)
	}

	if err := s.repo.Quiz().Delete(ctx, quizID); err != nil {
		return fmt.Errorf("failed to delete quiz: %w", err)
	}

	s.logger.InfoContext(ctx, "Quiz deleted", "quiz_id", quizID, "deleted_by", deletedBy)

	if s.publisher != nil {
		event := events.NewQuizDeletedEvent(quizID, deletedBy)
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.WarnContext(ctx, "Failed to publish quiz deleted event", "quiz_id", quizID, "error", err)
		}
	}
	return nil
}

// ===== HELPERS =====

func (s *QuizService) buildQuiz(creatorID uint, req *CreateQuizRequest) *models.Quiz {
	cooldown := 24
	if req.CooldownHours != nil {
		cooldown = *req.CooldownHours
	}

	questions := make([]models.Question, 0, len(req.Questions))
	for qi, q := range req.Questions {
		options := make([]models.Option, 0, len(q.Options))
		for oi, o := range q.Options {
			options = append(options, models.Option{
				Text:      o.Text,
				IsCorrect: o.IsCorrect,
				Position:  oi,
			})
		}
		questions = append(questions, models.Question{
			Text:        q.Text,
			Explanation: q.Explanation,
			Position:    qi,
			Options:     options,
		})
	}

	return &models.Quiz{
		Title:         req.Title,
		Description:   req.Description,
		TopicID:       req.TopicID,
		Difficulty:    req.Difficulty,
		TimeLimit:     req.TimeLimit,
		CooldownHours: cooldown,
		Tags:          datatypes.NewJSONSlice(req.Tags),
		CreatedBy:     creatorID,
		Questions:     questions,
	}
}

// validateAnswerKeys enforces single-select questions: exactly one correct
// option each.
func validateAnswerKeys(questions []CreateQuestionRequest) error {
	for i, question := range questions {
		correct := 0
		for _, option := range question.Options {
			if option.IsCorrect {
				correct++
			}
		}
		if correct != 1 {
			return apperrors.ValidationErrors{{
				Field:   fmt.Sprintf("questions[%d].options", i),
				Message: "must mark exactly one option as correct",
				Value:   correct,
			}}
		}
	}
	return nil
}

// latestResultsByQuiz maps each quiz the user attempted to the most recent
// result. GetByUser returns results most recent first, so the first result
// seen per quiz wins.
func (s *QuizService) latestResultsByQuiz(ctx context.Context, userID uint) (map[uint]*models.Result, error) {
	results, err := s.repo.Result().GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load attempt history: %w", err)
	}
	latest := make(map[uint]*models.Result, len(results))
	for _, result := range results {
		if _, ok := latest[result.QuizID]; !ok {
			latest[result.QuizID] = result
		}
	}
	return latest, nil
}

func (s *QuizService) attemptStatus(latest *models.Result) AttemptStatus {
	status := EvaluateCooldown(latest, s.now())
	result := AttemptStatus{
		CanAttempt:    status.CanAttempt,
		NextAttemptAt: status.NextAttemptAt,
	}
	if latest != nil {
		result.Attempted = true
		score := latest.Score
		result.LastScore = &score
	}
	return result
}
