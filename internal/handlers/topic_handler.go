package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quizhub/quiz-service/internal/services"
	"github.com/quizhub/quiz-service/internal/utils"
)

type TopicHandler struct {
	BaseHandler
	topicService *services.TopicService
}

func NewTopicHandler(topicService *services.TopicService, logger utils.Logger) *TopicHandler {
	return &TopicHandler{
		BaseHandler:  NewBaseHandler(logger),
		topicService: topicService,
	}
}

// ListTopics returns all topics with their quiz counts.
func (h *TopicHandler) ListTopics(c *gin.Context) {
	topics, err := h.topicService.List(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"topics": topics})
}

// CreateTopic adds a topic (admin only).
func (h *TopicHandler) CreateTopic(c *gin.Context) {
	var req services.CreateTopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	topic, err := h.topicService.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, topic)
}

// UpdateTopic renames or redescribes a topic (admin only).
func (h *TopicHandler) UpdateTopic(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.CreateTopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	topic, err := h.topicService.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, topic)
}

// DeleteTopic removes an empty topic (admin only).
func (h *TopicHandler) DeleteTopic(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.topicService.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Topic deleted"})
}
