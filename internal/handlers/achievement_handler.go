package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quizhub/quiz-service/internal/services"
	"github.com/quizhub/quiz-service/internal/utils"
)

type AchievementHandler struct {
	BaseHandler
	achievementService *services.AchievementService
}

func NewAchievementHandler(achievementService *services.AchievementService, logger utils.Logger) *AchievementHandler {
	return &AchievementHandler{
		BaseHandler:        NewBaseHandler(logger),
		achievementService: achievementService,
	}
}

// ListUserAchievements returns the caller's unlocks, most recent first.
func (h *AchievementHandler) ListUserAchievements(c *gin.Context) {
	user, ok := h.requireUser(c)
	if !ok {
		return
	}

	unlocks, err := h.achievementService.GetUserAchievements(c.Request.Context(), user.ID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"achievements": unlocks})
}

// GetProgress reports live progress for every catalog entry.
func (h *AchievementHandler) GetProgress(c *gin.Context) {
	user, ok := h.requireUser(c)
	if !ok {
		return
	}

	progress, err := h.achievementService.GetProgress(c.Request.Context(), user.ID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"progress": progress})
}

// CreateAchievement adds a catalog entry (admin only).
func (h *AchievementHandler) CreateAchievement(c *gin.Context) {
	var req services.CreateAchievementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	achievement, err := h.achievementService.CreateAchievement(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, achievement)
}

// ListCatalog returns every achievement definition (admin only).
func (h *AchievementHandler) ListCatalog(c *gin.Context) {
	catalog, err := h.achievementService.ListCatalog(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"achievements": catalog})
}
