package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"whisperbox/internal/middleware"
)

// более устойчиво к типам (int / int64 / float64 / string)
func getIntFromCtx(c *gin.Context, key string) (int, bool) {
	v, ok := c.Get(key)
	if !ok {
		return 0, false
	}
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		return int(t), true
	case string:
		if n, err := strconv.Atoi(t); err == nil {
			return n, true
		}
	}
	return 0, false
}

// currentUserID returns the account set by AuthMiddleware. It aborts with 401
// when the route was mounted without it.
func currentUserID(c *gin.Context) (int, bool) {
	id, ok := getIntFromCtx(c, middleware.ContextUserID)
	if !ok || id <= 0 {
		c.AbortWithStatusJSON(http.StatusUnauthorized, Response{Message: "Unauthorized"})
		return 0, false
	}
	return id, true
}
