package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"whisperbox/internal/models"
	"whisperbox/internal/services"
)

type VerifyHandler struct {
	verification services.VerificationService
	logger       *zap.Logger
}

func NewVerifyHandler(verification services.VerificationService, logger *zap.Logger) *VerifyHandler {
	return &VerifyHandler{verification: verification, logger: logger.Named("verify")}
}

// @Summary      Send verification code
// @Description  Issues a new signup code; any previous code stops working
// @Tags         Verification
// @Accept       json
// @Produce      json
// @Param        body  body      models.RequestCodeRequest  true  "Account"
// @Success      200   {object}  handlers.Response
// @Failure      404   {object}  handlers.Response
// @Failure      409   {object}  handlers.Response
// @Failure      429   {object}  handlers.Response
// @Failure      502   {object}  handlers.Response
// @Router       /auth/verify/request [post]
func (h *VerifyHandler) RequestCode(c *gin.Context) {
	var req models.RequestCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}

	if err := h.verification.RequestCode(c.Request.Context(), req.Identifier); err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, "Verification code sent", nil)
}

// @Summary      Confirm verification code
// @Tags         Verification
// @Accept       json
// @Produce      json
// @Param        body  body      models.ConfirmCodeRequest  true  "Account and code"
// @Success      200   {object}  handlers.Response
// @Failure      400   {object}  handlers.Response  "reason: not_found, expired or mismatch"
// @Failure      404   {object}  handlers.Response
// @Failure      409   {object}  handlers.Response
// @Router       /auth/verify/confirm [post]
func (h *VerifyHandler) Confirm(c *gin.Context) {
	var req models.ConfirmCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}

	if err := h.verification.Confirm(c.Request.Context(), req.Identifier, req.Code); err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, "Account verified", nil)
}
