package services

import (
	"context"
	"fmt"
	"time"

	"github.com/quizhub/quiz-service/internal/events"
	"github.com/quizhub/quiz-service/internal/models"
	"github.com/quizhub/quiz-service/internal/repositories"
	"github.com/quizhub/quiz-service/internal/utils"
	"github.com/quizhub/quiz-service/internal/validator"
)

// masteryScoreFloor is the per-quiz average score a user must hold for the
// quiz to count toward TOPIC_MASTERY progress.
const masteryScoreFloor = 90

// StreakSemantics selects how STREAK progress is counted.
type StreakSemantics int

const (
	// StreakDistinctDays counts consecutive distinct calendar days with at
	// least one attempt, ending on the day of the most recent attempt.
	StreakDistinctDays StreakSemantics = iota

	// StreakSameDayRun counts the run of most-recent attempts sharing one
	// calendar date, stopping at the first date change. Kept for
	// compatibility with deployments that depend on the old counting.
	StreakSameDayRun
)

// ActiveStreakSemantics is the streak definition used for unlock decisions.
// Same-day runs reward volume rather than engagement, so distinct days is
// the default.
const ActiveStreakSemantics = StreakDistinctDays

// AchievementProgress pairs a catalog entry with the user's live progress.
type AchievementProgress struct {
	Achievement models.Achievement `json:"achievement"`
	Progress    int                `json:"progress"`
	Unlocked    bool               `json:"unlocked"`
	UnlockedAt  *time.Time         `json:"unlocked_at,omitempty"`
}

// AchievementService re-evaluates the achievement catalog for a user and
// persists newly qualifying unlocks.
type AchievementService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	validator *validator.Validator
	logger    utils.Logger
	now       func() time.Time
}

func NewAchievementService(repo repositories.Repository, publisher events.EventPublisher, v *validator.Validator, logger utils.Logger) *AchievementService {
	return &AchievementService{
		repo:      repo,
		publisher: publisher,
		validator: v,
		logger:    logger,
		now:       time.Now,
	}
}

// CreateAchievementRequest defines a new catalog entry.
type CreateAchievementRequest struct {
	Name        string                 `json:"name" validate:"required,min=1,max=100"`
	Description string                 `json:"description" validate:"required,max=500"`
	Icon        string                 `json:"icon" validate:"required"`
	Type        models.AchievementType `json:"type" validate:"required,achievement_type"`
	Threshold   int                    `json:"threshold" validate:"required,min=1"`
	Points      int                    `json:"points" validate:"required,min=0"`
}

// CreateAchievement adds a catalog entry. Existing unlocks are unaffected;
// new entries apply from the next evaluation run.
func (s *AchievementService) CreateAchievement(ctx context.Context, req *CreateAchievementRequest) (*models.Achievement, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	exists, err := s.repo.Achievement().ExistsByName(ctx, req.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to check achievement name: %w", err)
	}
	if exists {
		return nil, ErrDuplicateAchievement
	}

	achievement := &models.Achievement{
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
		Type:        req.Type,
		Threshold:   req.Threshold,
		Points:      req.Points,
	}
	if err := s.repo.Achievement().Create(ctx, achievement); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, ErrDuplicateAchievement
		}
		return nil, fmt.Errorf("failed to create achievement: %w", err)
	}

	s.logger.InfoContext(ctx, "Achievement created",
		"achievement_id", achievement.ID,
		"name", achievement.Name,
		"type", achievement.Type)
	return achievement, nil
}

// ListCatalog returns the full achievement catalog.
func (s *AchievementService) ListCatalog(ctx context.Context) ([]*models.Achievement, error) {
	return s.repo.Achievement().List(ctx)
}

// attemptHistory is everything the rule evaluators need, loaded once per
// evaluation run.
type attemptHistory struct {
	results      []*models.Result // most recent first
	quizAverages []repositories.QuizAverage
}

func (s *AchievementService) loadHistory(ctx context.Context, userID uint) (*attemptHistory, error) {
	results, err := s.repo.Result().GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load attempt history: %w", err)
	}
	averages, err := s.repo.Result().QuizAverages(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load quiz averages: %w", err)
	}
	return &attemptHistory{results: results, quizAverages: averages}, nil
}

// CheckAchievements evaluates every catalog entry the user has not unlocked
// yet and records the ones whose threshold is now met. The unique
// (user_id, achievement_id) index makes the insert idempotent, so running
// this concurrently or repeatedly for the same user is safe.
func (s *AchievementService) CheckAchievements(ctx context.Context, userID uint) ([]*models.Achievement, error) {
	catalog, err := s.repo.Achievement().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load achievement catalog: %w", err)
	}
	if len(catalog) == 0 {
		return nil, nil
	}

	existing, err := s.repo.UserAchievement().GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load unlocked achievements: %w", err)
	}
	unlockedIDs := make(map[uint]bool, len(existing))
	for _, unlock := range existing {
		unlockedIDs[unlock.AchievementID] = true
	}

	history, err := s.loadHistory(ctx, userID)
	if err != nil {
		return nil, err
	}

	var newlyUnlocked []*models.Achievement
	for _, achievement := range catalog {
		if unlockedIDs[achievement.ID] {
			continue
		}

		progress := evaluateProgress(achievement.Type, history)
		if progress < achievement.Threshold {
			continue
		}

		unlockedAt := s.now()
		inserted, err := s.repo.UserAchievement().Insert(ctx, &models.UserAchievement{
			UserID:        userID,
			AchievementID: achievement.ID,
			UnlockedAt:    unlockedAt,
			Progress:      progress,
		})
		if err != nil {
			return newlyUnlocked, fmt.Errorf("failed to record unlock of achievement %d: %w", achievement.ID, err)
		}
		if !inserted {
			// Lost the race to a concurrent evaluation; the unlock exists.
			continue
		}

		s.logger.InfoContext(ctx, "Achievement unlocked",
			"user_id", userID,
			"achievement_id", achievement.ID,
			"achievement_name", achievement.Name,
			"progress", progress)
		newlyUnlocked = append(newlyUnlocked, achievement)

		if s.publisher != nil {
			event := events.NewAchievementUnlockedEvent(userID, achievement.ID, achievement.Name, achievement.Points, unlockedAt)
			if err := s.publisher.Publish(ctx, event); err != nil {
				s.logger.WarnContext(ctx, "Failed to publish achievement unlock event",
					"user_id", userID,
					"achievement_id", achievement.ID,
					"error", err)
			}
		}
	}

	return newlyUnlocked, nil
}

// GetUserAchievements returns the user's unlocks, most recent first.
func (s *AchievementService) GetUserAchievements(ctx context.Context, userID uint) ([]*models.UserAchievement, error) {
	return s.repo.UserAchievement().GetByUser(ctx, userID)
}

// GetProgress reports live progress for the entire catalog. Progress is
// computed the same way for every type; unlocked entries additionally carry
// their unlock timestamp.
func (s *AchievementService) GetProgress(ctx context.Context, userID uint) ([]AchievementProgress, error) {
	catalog, err := s.repo.Achievement().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load achievement catalog: %w", err)
	}

	existing, err := s.repo.UserAchievement().GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load unlocked achievements: %w", err)
	}
	unlockedAt := make(map[uint]time.Time, len(existing))
	for _, unlock := range existing {
		unlockedAt[unlock.AchievementID] = unlock.UnlockedAt
	}

	history, err := s.loadHistory(ctx, userID)
	if err != nil {
		return nil, err
	}

	progress := make([]AchievementProgress, 0, len(catalog))
	for _, achievement := range catalog {
		entry := AchievementProgress{
			Achievement: *achievement,
			Progress:    evaluateProgress(achievement.Type, history),
		}
		if at, ok := unlockedAt[achievement.ID]; ok {
			entry.Unlocked = true
			t := at
			entry.UnlockedAt = &t
		}
		progress = append(progress, entry)
	}

	return progress, nil
}

// evaluateProgress dispatches over the closed set of achievement types. An
// unknown type evaluates to zero progress and therefore never unlocks.
func evaluateProgress(achievementType models.AchievementType, history *attemptHistory) int {
	switch achievementType {
	case models.AchievementQuizScore:
		return highestScore(history.results)
	case models.AchievementQuizCount:
		return len(history.results)
	case models.AchievementStreak:
		return streakProgress(ActiveStreakSemantics, history.results)
	case models.AchievementTopicMastery:
		return masteredQuizCount(history.quizAverages)
	default:
		return 0
	}
}

func highestScore(results []*models.Result) int {
	highest := 0
	for _, r := range results {
		if r.Score > highest {
			highest = r.Score
		}
	}
	return highest
}

func masteredQuizCount(averages []repositories.QuizAverage) int {
	count := 0
	for _, avg := range averages {
		if avg.AverageScore >= masteryScoreFloor {
			count++
		}
	}
	return count
}

func streakProgress(semantics StreakSemantics, results []*models.Result) int {
	if semantics == StreakSameDayRun {
		return sameDayRunStreak(results)
	}
	return consecutiveDayStreak(results)
}

// consecutiveDayStreak counts consecutive distinct calendar days with at
// least one attempt, walking back from the most recent attempt. Multiple
// attempts on one day count once.
func consecutiveDayStreak(results []*models.Result) int {
	if len(results) == 0 {
		return 0
	}

	current := calendarDay(results[0].CompletedAt)
	streak := 1
	for _, r := range results[1:] {
		day := calendarDay(r.CompletedAt)
		if day.Equal(current) {
			continue
		}
		if day.Equal(current.AddDate(0, 0, -1)) {
			streak++
			current = day
			continue
		}
		break
	}
	return streak
}

// sameDayRunStreak counts the most-recent attempts sharing one calendar
// date, stopping at the first date change.
func sameDayRunStreak(results []*models.Result) int {
	if len(results) == 0 {
		return 0
	}

	first := calendarDay(results[0].CompletedAt)
	count := 0
	for _, r := range results {
		if !calendarDay(r.CompletedAt).Equal(first) {
			break
		}
		count++
	}
	return count
}

func calendarDay(t time.Time) time.Time {
	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
