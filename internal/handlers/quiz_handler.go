package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quizhub/quiz-service/internal/middleware"
	"github.com/quizhub/quiz-service/internal/models"
	"github.com/quizhub/quiz-service/internal/repositories"
	"github.com/quizhub/quiz-service/internal/services"
	"github.com/quizhub/quiz-service/internal/utils"
)

type QuizHandler struct {
	BaseHandler
	quizService    *services.QuizService
	attemptService *services.AttemptService
	exportService  *services.ExportService
}

func NewQuizHandler(
	quizService *services.QuizService,
	attemptService *services.AttemptService,
	exportService *services.ExportService,
	logger utils.Logger,
) *QuizHandler {
	return &QuizHandler{
		BaseHandler:    NewBaseHandler(logger),
		quizService:    quizService,
		attemptService: attemptService,
		exportService:  exportService,
	}
}

// ListQuizzes returns the quiz catalog with optional topic, difficulty and
// search filters. Authenticated callers get their attempt status per quiz.
func (h *QuizHandler) ListQuizzes(c *gin.Context) {
	filters := repositories.QuizFilters{Pagination: h.parsePagination(c)}
	if topic := c.Query("topic"); topic != "" {
		filters.TopicName = &topic
	}
	if difficulty := c.Query("difficulty"); difficulty != "" {
		d := models.Difficulty(difficulty)
		filters.Difficulty = &d
	}
	if search := c.Query("search"); search != "" {
		filters.Search = &search
	}

	response, err := h.quizService.List(c.Request.Context(), h.callerID(c), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetQuiz returns one quiz ready for taking: questions without the answer
// key.
func (h *QuizHandler) GetQuiz(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	quiz, err := h.quizService.GetForTaking(c.Request.Context(), h.callerID(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, quiz)
}

// SubmitQuiz grades and records a full answer set for the quiz.
func (h *QuizHandler) SubmitQuiz(c *gin.Context) {
	user, ok := h.requireUser(c)
	if !ok {
		return
	}

	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.SubmitAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	response, err := h.attemptService.Submit(c.Request.Context(), user.ID, id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

// GetCooldown reports whether the caller may attempt the quiz right now.
func (h *QuizHandler) GetCooldown(c *gin.Context) {
	user, ok := h.requireUser(c)
	if !ok {
		return
	}

	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	status, err := h.attemptService.Eligibility(c.Request.Context(), user.ID, id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

// ListQuizResults returns the caller's attempts at the quiz.
func (h *QuizHandler) ListQuizResults(c *gin.Context) {
	user, ok := h.requireUser(c)
	if !ok {
		return
	}

	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	results, err := h.attemptService.ListQuizResults(c.Request.Context(), user.ID, id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}

// ExportResult renders the caller's most recent attempt at the quiz as a
// PDF.
func (h *QuizHandler) ExportResult(c *gin.Context) {
	user, ok := h.requireUser(c)
	if !ok {
		return
	}

	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	latest, err := h.attemptService.LatestResult(c.Request.Context(), user.ID, id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	pdf, err := h.exportService.ResultPDF(c.Request.Context(), user.ID, latest.ID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="quiz-result.pdf"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// callerID returns the authenticated user's ID, or zero for anonymous
// requests on optional-auth routes.
func (h *QuizHandler) callerID(c *gin.Context) uint {
	if user, ok := middleware.CurrentUser(c); ok {
		return user.ID
	}
	return 0
}
