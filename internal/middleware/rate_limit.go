package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	"github.com/yigit/studentrecords/internal/app/models/dto"
	"github.com/yigit/studentrecords/internal/pkg/logger"
)

// RateLimit allows at most limit requests per client IP in each period.
// Counters live in process memory.
func RateLimit(limit int64, period time.Duration) gin.HandlerFunc {
	instance := limiter.New(memory.NewStore(), limiter.Rate{
		Period: period,
		Limit:  limit,
	})

	middleware := mgin.NewMiddleware(instance,
		mgin.WithLimitReachedHandler(func(c *gin.Context) {
			logger.Warn().Str("ip", c.ClientIP()).Str("path", c.Request.URL.Path).Msg("Rate limit reached")
			c.JSON(http.StatusTooManyRequests, dto.NewErrorResponse(
				dto.NewErrorDetail(dto.ErrorCodeTooManyRequests, "Too many requests, please try again later").
					WithSeverity(dto.ErrorSeverityWarning)))
		}),
		mgin.WithErrorHandler(func(c *gin.Context, err error) {
			logger.Error().Err(err).Msg("Rate limiter store failed")
			c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(
				dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")))
		}),
	)
	return middleware
}
