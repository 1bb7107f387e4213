package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/studentrecords/internal/app/models/dto"
	"github.com/yigit/studentrecords/internal/pkg/apperrors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serveError(err error) *httptest.ResponseRecorder {
	r := gin.New()
	r.GET("/", func(c *gin.Context) { HandleAPIError(c, err) })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	return w
}

func TestHandleAPIErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   dto.ErrorCode
	}{
		{"not found", apperrors.ErrStudentNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound},
		{"student id conflict", apperrors.ErrStudentIDAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists},
		{"badge conflict", apperrors.ErrBadgeNumberAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists},
		{"malformed id", apperrors.ErrInvalidStudentRecordID, http.StatusBadRequest, dto.ErrorCodeInvalidRequest},
		{"missing image", apperrors.ErrImageRequired, http.StatusBadRequest, dto.ErrorCodeInvalidRequest},
		{"unsupported image", fmt.Errorf("%w: declared text/plain", apperrors.ErrUnsupportedImageType), http.StatusUnsupportedMediaType, dto.ErrorCodeUnsupportedMediaType},
		{"image too large", apperrors.ErrImageTooLarge, http.StatusRequestEntityTooLarge, dto.ErrorCodeFileTooLarge},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, dto.ErrorCodeInternalServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serveError(tt.err)
			assert.Equal(t, tt.status, w.Code)

			var body dto.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.False(t, body.Success)
			require.NotNil(t, body.Error)
			assert.Equal(t, tt.code, body.Error.Code)
		})
	}
}

func TestHandleAPIErrorConflictNamesField(t *testing.T) {
	w := serveError(fmt.Errorf("create: %w", apperrors.ErrBadgeNumberAlreadyExists))

	var body dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "badgeNumber", body.Error.Field)
	assert.Equal(t, "badge number already exists", body.Error.Message)
}

func TestHandleAPIErrorValidationList(t *testing.T) {
	verr := &apperrors.ValidationError{}
	verr.Add("studentId", "ST-1", "studentId must contain only letters and digits")
	verr.Add("course", "", "course is required")

	w := serveError(verr)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body dto.ValidationErrors
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Errors, 2)
	assert.Equal(t, "studentId", body.Errors[0].Field)
	assert.Equal(t, "ST-1", body.Errors[0].Value)
	assert.Equal(t, "course", body.Errors[1].Field)
}

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeaders())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "1; mode=block", w.Header().Get("X-XSS-Protection"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestRateLimitRejectsAfterLimit(t *testing.T) {
	r := gin.New()
	r.PUT("/", RateLimit(2, time.Minute), func(c *gin.Context) { c.Status(http.StatusOK) })

	put := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPut, "/", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, put("10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, put("10.0.0.1").Code)

	limited := put("10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "0", limited.Header().Get("X-RateLimit-Remaining"))

	var body dto.ErrorResponse
	require.NoError(t, json.Unmarshal(limited.Body.Bytes(), &body))
	assert.Equal(t, dto.ErrorCodeTooManyRequests, body.Error.Code)

	assert.Equal(t, http.StatusOK, put("10.0.0.2").Code, "limits are per client")
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	r := gin.New()
	r.Use(RequestLogger(zerolog.New(&buf)))
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing?studentId=ST001", nil))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "GET", entry["method"])
	assert.Equal(t, "/missing?studentId=ST001", entry["path"])
	assert.EqualValues(t, 404, entry["status"])
}
