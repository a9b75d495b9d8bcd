package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/quizhub/quiz-service/internal/utils"
	"github.com/stretchr/testify/assert"
)

func newTestContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, recorder
}

func TestParseIDParam(t *testing.T) {
	handler := NewBaseHandler(utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	t.Run("valid id", func(t *testing.T) {
		c, recorder := newTestContext(t)
		c.Params = gin.Params{{Key: "id", Value: "42"}}

		id := handler.parseIDParam(c, "id")

		assert.Equal(t, uint(42), id)
		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Empty(t, recorder.Body.String())
	})

	t.Run("non-numeric id gets a 400", func(t *testing.T) {
		c, recorder := newTestContext(t)
		c.Params = gin.Params{{Key: "id", Value: "abc"}}

		id := handler.parseIDParam(c, "id")

		assert.Equal(t, uint(0), id)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	// A literal zero would otherwise slip through the callers' "already
	// handled" check and leave the response empty.
	t.Run("zero id gets a 400", func(t *testing.T) {
		c, recorder := newTestContext(t)
		c.Params = gin.Params{{Key: "id", Value: "0"}}

		id := handler.parseIDParam(c, "id")

		assert.Equal(t, uint(0), id)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		assert.Contains(t, recorder.Body.String(), "Invalid id")
	})
}
