package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procurio/backend/internal/domain/shared"
	"github.com/procurio/backend/internal/interfaces/http/dto"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// setJWTContext plants the claim-derived context values that the
// authentication middleware would set on a real request.
func setJWTContext(c *gin.Context, tenantID, userID uuid.UUID) {
	c.Set("jwt_tenant_id", tenantID.String())
	c.Set("jwt_user_id", userID.String())
}

func newHandlerTestContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestGetRequestID(t *testing.T) {
	t.Run("reads the id set by the request id middleware", func(t *testing.T) {
		c, _ := newHandlerTestContext(t)
		c.Set("request_id", "ctx-request-id")
		c.Request.Header.Set("X-Request-ID", "header-request-id")

		assert.Equal(t, "ctx-request-id", getRequestID(c))
	})

	t.Run("falls back to the header", func(t *testing.T) {
		c, _ := newHandlerTestContext(t)
		c.Request.Header.Set("X-Request-ID", "header-request-id")

		assert.Equal(t, "header-request-id", getRequestID(c))
	})

	t.Run("empty when neither is set", func(t *testing.T) {
		c, _ := newHandlerTestContext(t)
		assert.Empty(t, getRequestID(c))
	})
}

func TestGetTenantAndUserID(t *testing.T) {
	t.Run("parses ids from the jwt context", func(t *testing.T) {
		c, _ := newHandlerTestContext(t)
		tenantID, userID := uuid.New(), uuid.New()
		setJWTContext(c, tenantID, userID)

		gotTenant, err := getTenantID(c)
		require.NoError(t, err)
		assert.Equal(t, tenantID, gotTenant)

		gotUser, err := getUserID(c)
		require.NoError(t, err)
		assert.Equal(t, userID, gotUser)
	})

	t.Run("errors when unauthenticated", func(t *testing.T) {
		c, _ := newHandlerTestContext(t)

		_, err := getTenantID(c)
		assert.Error(t, err)
		_, err = getUserID(c)
		assert.Error(t, err)
	})

	t.Run("errors on malformed ids", func(t *testing.T) {
		c, _ := newHandlerTestContext(t)
		c.Set("jwt_tenant_id", "not-a-uuid")
		c.Set("jwt_user_id", "not-a-uuid")

		_, err := getTenantID(c)
		assert.Error(t, err)
		_, err = getUserID(c)
		assert.Error(t, err)
	})
}

func TestBaseHandler_SuccessResponses(t *testing.T) {
	h := &BaseHandler{}

	t.Run("Success wraps data in the envelope", func(t *testing.T) {
		c, w := newHandlerTestContext(t)
		h.Success(c, map[string]string{"key": "value"})

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse(t, w)
		assert.True(t, resp.Success)
		assert.Nil(t, resp.Error)
	})

	t.Run("SuccessWithMeta carries pagination", func(t *testing.T) {
		c, w := newHandlerTestContext(t)
		h.SuccessWithMeta(c, []string{"a", "b"}, 100, 2, 10)

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Meta)
		assert.Equal(t, int64(100), resp.Meta.Total)
		assert.Equal(t, 2, resp.Meta.Page)
		assert.Equal(t, 10, resp.Meta.PageSize)
	})

	t.Run("Created returns 201", func(t *testing.T) {
		c, w := newHandlerTestContext(t)
		h.Created(c, map[string]string{"id": "123"})

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.True(t, decodeResponse(t, w).Success)
	})
}

func TestBaseHandler_ErrorResponses(t *testing.T) {
	h := &BaseHandler{}

	t.Run("BadRequest", func(t *testing.T) {
		c, w := newHandlerTestContext(t)
		h.BadRequest(c, "Invalid request")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeBadRequest, resp.Error.Code)
	})

	t.Run("Unauthorized", func(t *testing.T) {
		c, w := newHandlerTestContext(t)
		h.Unauthorized(c, "Authentication required")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeUnauthorized, resp.Error.Code)
	})

	t.Run("error responses echo the request id", func(t *testing.T) {
		c, w := newHandlerTestContext(t)
		c.Set("request_id", "req-77")
		h.BadRequest(c, "Invalid request")

		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "req-77", resp.Error.RequestID)
	})
}

func TestBaseHandler_HandleError(t *testing.T) {
	h := &BaseHandler{}

	t.Run("nil error writes nothing", func(t *testing.T) {
		c, w := newHandlerTestContext(t)
		h.HandleError(c, nil)
		assert.Empty(t, w.Body.String())
	})

	t.Run("domain error maps code to status", func(t *testing.T) {
		c, w := newHandlerTestContext(t)
		h.HandleError(c, &shared.DomainError{Code: "NOT_FOUND", Message: "order not found"})

		assert.Equal(t, http.StatusNotFound, w.Code)
		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "order not found", resp.Error.Message)
	})

	t.Run("unknown error becomes an opaque 500", func(t *testing.T) {
		c, w := newHandlerTestContext(t)
		h.HandleError(c, assert.AnError)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeInternal, resp.Error.Code)
		assert.NotContains(t, resp.Error.Message, assert.AnError.Error())
	})
}
