package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quizhub/quiz-service/internal/services"
	"github.com/quizhub/quiz-service/internal/utils"
)

type LeaderboardHandler struct {
	BaseHandler
	leaderboardService *services.LeaderboardService
}

func NewLeaderboardHandler(leaderboardService *services.LeaderboardService, logger utils.Logger) *LeaderboardHandler {
	return &LeaderboardHandler{
		BaseHandler:        NewBaseHandler(logger),
		leaderboardService: leaderboardService,
	}
}

// GlobalLeaderboard ranks users by average score across all attempts.
func (h *LeaderboardHandler) GlobalLeaderboard(c *gin.Context) {
	response, err := h.leaderboardService.Global(c.Request.Context(), h.parsePagination(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

// TopicLeaderboard ranks users within one topic's quizzes.
func (h *LeaderboardHandler) TopicLeaderboard(c *gin.Context) {
	topicID := h.parseIDParam(c, "topic_id")
	if topicID == 0 {
		return
	}

	response, err := h.leaderboardService.ByTopic(c.Request.Context(), topicID, h.parsePagination(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

// QuizLeaderboard ranks individual attempts at one quiz.
func (h *LeaderboardHandler) QuizLeaderboard(c *gin.Context) {
	quizID := h.parseIDParam(c, "quiz_id")
	if quizID == 0 {
		return
	}

	response, err := h.leaderboardService.ByQuiz(c.Request.Context(), quizID, h.parsePagination(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

// WeeklyLeaderboard ranks users by total score since the start of the week.
func (h *LeaderboardHandler) WeeklyLeaderboard(c *gin.Context) {
	response, err := h.leaderboardService.Weekly(c.Request.Context(), h.parsePagination(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}
