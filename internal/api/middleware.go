package api

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"estate/server/internal/models"
)

// UserHeader carries the id of the acting user
const UserHeader = "X-User-ID"

type actorKey struct{}

// HeaderActor resolves the current user from the request context, falling
// back to a default salesman when the request names none.
type HeaderActor struct {
	Default *uint
}

func (a HeaderActor) CurrentUserID(ctx context.Context) *uint {
	if id, ok := ctx.Value(actorKey{}).(uint); ok {
		return &id
	}
	return a.Default
}

// ActorMiddleware stores the X-User-ID header in the request context
func ActorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw := c.GetHeader(UserHeader); raw != "" {
			if id, err := strconv.ParseUint(raw, 10, 64); err == nil && id > 0 {
				ctx := context.WithValue(c.Request.Context(), actorKey{}, uint(id))
				c.Request = c.Request.WithContext(ctx)
			}
		}
		c.Next()
	}
}

// LoggerMiddleware logs every request with logrus
func LoggerMiddleware(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := logger.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.FullPath(),
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
			"client_ip":  c.ClientIP(),
		})
		switch status := c.Writer.Status(); {
		case status >= 500:
			entry.Error("Request failed")
		case status >= 400:
			entry.Warn("Request rejected")
		default:
			entry.Info("Request handled")
		}
	}
}

// registerValidators adds the listing rules to gin's validator
func registerValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("orientation", func(fl validator.FieldLevel) bool {
		return models.Orientation(fl.Field().String()).Valid()
	})
}
