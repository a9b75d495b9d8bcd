package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/quizhub/quiz-service/internal/services"
	"github.com/quizhub/quiz-service/internal/utils"
)

type UserHandler struct {
	BaseHandler
	userService    *services.UserService
	attemptService *services.AttemptService
}

func NewUserHandler(userService *services.UserService, attemptService *services.AttemptService, logger utils.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler:    NewBaseHandler(logger),
		userService:    userService,
		attemptService: attemptService,
	}
}

// GetProfile returns the caller's profile with aggregate stats and
// achievement totals.
func (h *UserHandler) GetProfile(c *gin.Context) {
	user, ok := h.requireUser(c)
	if !ok {
		return
	}

	profile, err := h.userService.GetProfile(c.Request.Context(), user.ID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpdateProfile changes the caller's display name and email.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	user, ok := h.requireUser(c)
	if !ok {
		return
	}

	var req services.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	updated, err := h.userService.UpdateProfile(c.Request.Context(), user.ID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// GetStats returns the caller's aggregate stats and per-topic progress.
func (h *UserHandler) GetStats(c *gin.Context) {
	user, ok := h.requireUser(c)
	if !ok {
		return
	}

	stats, err := h.userService.GetStats(c.Request.Context(), user.ID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetActivity returns the caller's most recent attempts.
func (h *UserHandler) GetActivity(c *gin.Context) {
	user, ok := h.requireUser(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	activity, err := h.userService.RecentActivity(c.Request.Context(), user.ID, limit)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"activity": activity})
}

// GetHistory returns the caller's paginated attempt history.
func (h *UserHandler) GetHistory(c *gin.Context) {
	user, ok := h.requireUser(c)
	if !ok {
		return
	}

	history, err := h.userService.GetHistory(c.Request.Context(), user.ID, h.parsePagination(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

// GetResult returns one of the caller's results with the graded breakdown.
func (h *UserHandler) GetResult(c *gin.Context) {
	user, ok := h.requireUser(c)
	if !ok {
		return
	}

	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	result, err := h.attemptService.GetResult(c.Request.Context(), user.ID, id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
