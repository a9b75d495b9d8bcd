package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quizhub/quiz-service/internal/middleware"
	"github.com/quizhub/quiz-service/internal/repositories"
	"github.com/quizhub/quiz-service/internal/services"
	"github.com/quizhub/quiz-service/internal/utils"
)

type HandlerManager struct {
	repo   repositories.Repository
	logger utils.Logger

	quizHandler        *QuizHandler
	topicHandler       *TopicHandler
	achievementHandler *AchievementHandler
	leaderboardHandler *LeaderboardHandler
	userHandler        *UserHandler
	adminHandler       *AdminHandler
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	repo repositories.Repository,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		repo:               repo,
		logger:             logger,
		quizHandler:        NewQuizHandler(serviceManager.Quiz(), serviceManager.Attempt(), serviceManager.Export(), logger),
		topicHandler:       NewTopicHandler(serviceManager.Topic(), logger),
		achievementHandler: NewAchievementHandler(serviceManager.Achievement(), logger),
		leaderboardHandler: NewLeaderboardHandler(serviceManager.Leaderboard(), logger),
		userHandler:        NewUserHandler(serviceManager.User(), serviceManager.Attempt(), logger),
		adminHandler:       NewAdminHandler(serviceManager.Quiz(), serviceManager.Analytics(), serviceManager.Export(), logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", hm.healthCheck)

	v1 := router.Group("/api/v1")

	// Public catalog and leaderboards. Optional auth so signed-in callers
	// see their per-quiz attempt status.
	public := v1.Group("", middleware.OptionalAuth(hm.repo, hm.logger))
	{
		public.GET("/topics", hm.topicHandler.ListTopics)
		public.GET("/quizzes", hm.quizHandler.ListQuizzes)
		public.GET("/quizzes/:id", hm.quizHandler.GetQuiz)

		leaderboard := public.Group("/leaderboard")
		{
			leaderboard.GET("/global", hm.leaderboardHandler.GlobalLeaderboard)
			leaderboard.GET("/weekly", hm.leaderboardHandler.WeeklyLeaderboard)
			leaderboard.GET("/quiz/:quiz_id", hm.leaderboardHandler.QuizLeaderboard)
			leaderboard.GET("/topic/:topic_id", hm.leaderboardHandler.TopicLeaderboard)
		}
	}

	// Authenticated quiz taking and personal views.
	authed := v1.Group("", middleware.Auth(hm.repo, hm.logger))
	{
		authed.POST("/quizzes/:id/submit", hm.quizHandler.SubmitQuiz)
		authed.GET("/quizzes/:id/cooldown", hm.quizHandler.GetCooldown)
		authed.GET("/quizzes/:id/results", hm.quizHandler.ListQuizResults)
		authed.POST("/quizzes/:id/export", hm.quizHandler.ExportResult)

		authed.GET("/results/:id", hm.userHandler.GetResult)

		authed.GET("/achievements", hm.achievementHandler.ListUserAchievements)
		authed.GET("/achievements/progress", hm.achievementHandler.GetProgress)

		users := authed.Group("/users")
		{
			users.GET("/profile", hm.userHandler.GetProfile)
			users.PUT("/profile", hm.userHandler.UpdateProfile)
			users.GET("/profile/stats", hm.userHandler.GetStats)
			users.GET("/profile/activity", hm.userHandler.GetActivity)
			users.GET("/history", hm.userHandler.GetHistory)
		}
	}

	// Administration.
	admin := v1.Group("/admin", middleware.Auth(hm.repo, hm.logger), middleware.RequireAdmin())
	{
		admin.GET("/dashboard", hm.adminHandler.Dashboard)

		admin.POST("/quizzes", hm.adminHandler.CreateQuiz)
		admin.GET("/quizzes/:id", hm.adminHandler.GetQuiz)
		admin.PUT("/quizzes/:id", hm.adminHandler.UpdateQuiz)
		admin.DELETE("/quizzes/:id", hm.adminHandler.DeleteQuiz)
		admin.GET("/quizzes/:id/analytics", hm.adminHandler.QuizAnalytics)
		admin.GET("/quizzes/:id/analytics/export", hm.adminHandler.ExportQuizAnalytics)

		admin.POST("/topics", hm.topicHandler.CreateTopic)
		admin.PUT("/topics/:id", hm.topicHandler.UpdateTopic)
		admin.DELETE("/topics/:id", hm.topicHandler.DeleteTopic)

		admin.GET("/achievements", hm.achievementHandler.ListCatalog)
		admin.POST("/achievements", hm.achievementHandler.CreateAchievement)
	}
}

func (hm *HandlerManager) healthCheck(c *gin.Context) {
	if err := hm.repo.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "quiz-service",
	})
}
