package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/Gopher0727/StudyConnect/internal/apperr"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestStatusOf(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{apperr.Validation("Title is required"), http.StatusBadRequest},
		{apperr.Parse("Error: invalid date", nil), http.StatusBadRequest},
		{apperr.NotFound("Task not found"), http.StatusNotFound},
		{apperr.Permission("Only admins can assign tasks"), http.StatusForbidden},
		{apperr.Conflict("Already a member"), http.StatusConflict},
		{apperr.Delivery("Delivery error; retry", nil), http.StatusServiceUnavailable},
		{apperr.Internal("Failure: export error", nil), http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.status, statusOf(fmt.Errorf("wrapped: %w", tc.err)), tc.err.Error())
	}
}

func TestFailEnvelope(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	fail(c, apperr.Validation("Select at least one assignee"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"code":400,"error":"Select at least one assignee"}`, w.Body.String())
	assert.Len(t, c.Errors, 1)
}

func TestFailHidesUnknownErrors(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	fail(c, errors.New("pq: relation does not exist"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"code":500,"error":"Internal server error"}`, w.Body.String())
}

func TestSuccessEnvelope(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	success(c, http.StatusCreated, "Success", gin.H{"id": 1})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"code":0,"message":"Success","data":{"id":1}}`, w.Body.String())
}

func TestPathID(t *testing.T) {
	r := gin.New()
	r.GET("/tasks/:id", func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id})
	})

	for path, status := range map[string]int{"/tasks/12": 200, "/tasks/0": 400, "/tasks/abc": 400} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, status, w.Code, path)
	}
}
