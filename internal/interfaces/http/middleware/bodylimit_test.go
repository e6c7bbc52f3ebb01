package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestBodyLimit(t *testing.T) {
	newRouter := func(limit int64) *gin.Engine {
		r := gin.New()
		r.Use(BodyLimit(limit))
		r.POST("/resource", func(c *gin.Context) {
			if _, err := io.ReadAll(c.Request.Body); err != nil {
				c.AbortWithStatus(http.StatusRequestEntityTooLarge)
				return
			}
			c.Status(http.StatusOK)
		})
		return r
	}

	post := func(r *gin.Engine, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/resource", strings.NewReader(body))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	t.Run("accepts a body within the limit", func(t *testing.T) {
		rec := post(newRouter(64), `{"name":"ok"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("rejects an oversized declared body", func(t *testing.T) {
		rec := post(newRouter(8), strings.Repeat("x", 64))
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		assert.Contains(t, rec.Body.String(), "REQUEST_TOO_LARGE")
	})

	t.Run("caps a body with no declared length", func(t *testing.T) {
		r := newRouter(8)
		req := httptest.NewRequest(http.MethodPost, "/resource", strings.NewReader(strings.Repeat("x", 64)))
		req.ContentLength = -1 // chunked
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})
}
