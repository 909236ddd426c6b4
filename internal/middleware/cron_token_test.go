package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func cronRouter(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/cron", CronTokenAuth(secret), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestCronTokenAuth_ValidToken(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/cron", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	cronRouter("s3cret").ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCronTokenAuth_WrongToken(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/cron", nil)
	req.Header.Set("Authorization", "Bearer nope")
	cronRouter("s3cret").ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCronTokenAuth_MissingHeader(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/cron", nil)
	cronRouter("s3cret").ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCronTokenAuth_UnconfiguredSecretSkipsCheck(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/cron", nil)
	cronRouter("").ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
