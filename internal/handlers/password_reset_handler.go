package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"whisperbox/internal/models"
	"whisperbox/internal/services"
)

type PasswordResetHandler struct {
	resets services.PasswordResetService
	logger *zap.Logger
}

func NewPasswordResetHandler(resets services.PasswordResetService, logger *zap.Logger) *PasswordResetHandler {
	return &PasswordResetHandler{resets: resets, logger: logger.Named("password-reset")}
}

// @Summary      Request password reset
// @Tags         Password
// @Accept       json
// @Produce      json
// @Param        body  body      models.ForgotPasswordRequest  true  "Account"
// @Success      200   {object}  handlers.Response
// @Failure      403   {object}  handlers.Response  "reason: account_not_eligible"
// @Failure      404   {object}  handlers.Response
// @Failure      429   {object}  handlers.Response
// @Failure      502   {object}  handlers.Response
// @Router       /auth/password/forgot [post]
func (h *PasswordResetHandler) Forgot(c *gin.Context) {
	var req models.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}

	if err := h.resets.RequestReset(c.Request.Context(), req.Identifier); err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, "Password reset code sent", nil)
}

// @Summary      Reset password
// @Tags         Password
// @Accept       json
// @Produce      json
// @Param        body  body      models.ResetPasswordRequest  true  "Code and new password"
// @Success      200   {object}  handlers.Response
// @Failure      400   {object}  handlers.Response  "reason: not_found, expired, mismatch, password_mismatch or same_password"
// @Failure      404   {object}  handlers.Response
// @Router       /auth/password/reset [post]
func (h *PasswordResetHandler) Reset(c *gin.Context) {
	var req models.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}

	err := h.resets.ResetPassword(c.Request.Context(), req.Identifier, req.Code, req.NewPassword, req.ConfirmPassword)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, "Password updated", nil)
}
