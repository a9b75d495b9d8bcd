package services

import (
	"github.com/quizhub/quiz-service/internal/cache"
	"github.com/quizhub/quiz-service/internal/events"
	"github.com/quizhub/quiz-service/internal/repositories"
	"github.com/quizhub/quiz-service/internal/utils"
	"github.com/quizhub/quiz-service/internal/validator"
)

// ServiceManager exposes every service behind one construction point so
// handlers and tests wire against a single dependency.
type ServiceManager interface {
	Topic() *TopicService
	Quiz() *QuizService
	Attempt() *AttemptService
	Achievement() *AchievementService
	Leaderboard() *LeaderboardService
	User() *UserService
	Analytics() *AnalyticsService
	Export() *ExportService
}

type serviceManager struct {
	topic       *TopicService
	quiz        *QuizService
	attempt     *AttemptService
	achievement *AchievementService
	leaderboard *LeaderboardService
	user        *UserService
	analytics   *AnalyticsService
	export      *ExportService
}

// ManagerDeps are the shared dependencies every service is built from.
// Publisher and Cache may be nil; the affected features degrade to
// no-ops rather than failing.
type ManagerDeps struct {
	Repo      repositories.Repository
	Cache     cache.CacheService
	Publisher events.EventPublisher
	Validator *validator.Validator
	Logger    utils.Logger
}

func NewServiceManager(deps ManagerDeps) ServiceManager {
	achievement := NewAchievementService(deps.Repo, deps.Publisher, deps.Validator, deps.Logger)
	analytics := NewAnalyticsService(deps.Repo, deps.Logger)

	return &serviceManager{
		topic:       NewTopicService(deps.Repo, deps.Validator, deps.Logger),
		quiz:        NewQuizService(deps.Repo, deps.Publisher, deps.Validator, deps.Logger),
		attempt:     NewAttemptService(deps.Repo, achievement, deps.Publisher, deps.Validator, deps.Logger),
		achievement: achievement,
		leaderboard: NewLeaderboardService(deps.Repo, deps.Cache, deps.Logger),
		user:        NewUserService(deps.Repo, deps.Validator, deps.Logger),
		analytics:   analytics,
		export:      NewExportService(deps.Repo, analytics, deps.Logger),
	}
}

func (m *serviceManager) Topic() *TopicService             { return m.topic }
func (m *serviceManager) Quiz() *QuizService               { return m.quiz }
func (m *serviceManager) Attempt() *AttemptService         { return m.attempt }
func (m *serviceManager) Achievement() *AchievementService { return m.achievement }
func (m *serviceManager) Leaderboard() *LeaderboardService { return m.leaderboard }
func (m *serviceManager) User() *UserService               { return m.user }
func (m *serviceManager) Analytics() *AnalyticsService     { return m.analytics }
func (m *serviceManager) Export() *ExportService           { return m.export }
