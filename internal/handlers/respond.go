package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"whisperbox/internal/middleware"
	"whisperbox/internal/services"
)

// Response is the envelope of every API answer.
type Response struct {
	Success bool            `json:"success"`
	Reason  services.Reason `json:"reason,omitempty"`
	Message string          `json:"message"`
	Data    any             `json:"data,omitempty"`
}

var reasonStatus = map[services.Reason]int{
	services.ReasonCodeNotFound:         http.StatusBadRequest,
	services.ReasonCodeExpired:          http.StatusBadRequest,
	services.ReasonCodeMismatch:         http.StatusBadRequest,
	services.ReasonAlreadyVerified:      http.StatusConflict,
	services.ReasonAccountNotEligible:   http.StatusForbidden,
	services.ReasonPasswordMismatch:     http.StatusBadRequest,
	services.ReasonSamePassword:         http.StatusBadRequest,
	services.ReasonNotAcceptingMessages: http.StatusForbidden,
	services.ReasonUserNotFound:         http.StatusNotFound,
	services.ReasonMessageNotFound:      http.StatusNotFound,
	services.ReasonUsernameTaken:        http.StatusConflict,
	services.ReasonEmailTaken:           http.StatusConflict,
	services.ReasonInvalidCredentials:   http.StatusUnauthorized,
	services.ReasonAccountNotVerified:   http.StatusForbidden,
	services.ReasonNotificationFailed:   http.StatusBadGateway,
}

func statusFor(reason services.Reason) int {
	if status, ok := reasonStatus[reason]; ok {
		return status
	}
	return http.StatusBadRequest
}

func respondOK(c *gin.Context, status int, message string, data any) {
	c.JSON(status, Response{Success: true, Message: message, Data: data})
}

func respondInvalid(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, Response{Message: validationMessage(err)})
}

// respondError answers domain failures with their reason code. Anything else
// is an infrastructure failure: it is logged, reported and hidden behind a 500.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	var domainErr *services.DomainError
	if errors.As(err, &domainErr) {
		c.JSON(statusFor(domainErr.Reason), Response{Reason: domainErr.Reason, Message: domainErr.Message})
		return
	}

	logger.Error("request failed", zap.String("route", c.FullPath()), zap.Error(err))
	middleware.RecordError(c, err)
	c.JSON(http.StatusInternalServerError, Response{Message: "internal error"})
}
