package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"whisperbox/internal/models"
	"whisperbox/internal/services"
)

type AuthHandler struct {
	users  services.UserService
	logger *zap.Logger
}

func NewAuthHandler(users services.UserService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{users: users, logger: logger.Named("auth")}
}

// @Summary      Sign up
// @Description  Creates a pending account and emails it a verification code
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body      models.SignUpRequest  true  "Account data"
// @Success      201   {object}  handlers.Response{data=models.User}
// @Failure      400   {object}  handlers.Response
// @Failure      409   {object}  handlers.Response
// @Failure      502   {object}  handlers.Response
// @Router       /auth/signup [post]
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req models.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusCreated, "Account created, check your email for the verification code", user)
}

// @Summary      Check username
// @Tags         Auth
// @Produce      json
// @Param        username  query     string  true  "Username"
// @Success      200       {object}  handlers.Response
// @Failure      400       {object}  handlers.Response
// @Router       /auth/username-available [get]
func (h *AuthHandler) UsernameAvailable(c *gin.Context) {
	username := strings.TrimSpace(c.Query("username"))
	if len(username) < 3 || len(username) > 20 || !usernamePattern.MatchString(username) {
		c.JSON(http.StatusBadRequest, Response{Message: "username must be 3-20 letters, digits or underscores"})
		return
	}

	available, err := h.users.IsUsernameAvailable(c.Request.Context(), username)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	msg := "Username is available"
	if !available {
		msg = "Username is already taken"
	}
	respondOK(c, http.StatusOK, msg, gin.H{"available": available})
}

// @Summary      Sign in
// @Description  Exchanges a username or email and password for a JWT
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body      models.SignInRequest  true  "Credentials"
// @Success      200   {object}  handlers.Response{data=services.Session}
// @Failure      400   {object}  handlers.Response
// @Failure      401   {object}  handlers.Response
// @Failure      403   {object}  handlers.Response
// @Router       /auth/signin [post]
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req models.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}

	session, err := h.users.SignIn(c.Request.Context(), req.Identifier, req.Password)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, "Signed in", session)
}

// @Summary      Current account
// @Tags         Account
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  handlers.Response{data=models.User}
// @Failure      401  {object}  handlers.Response
// @Router       /me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	user, err := h.users.GetByID(c.Request.Context(), userID)
	if errors.Is(err, services.ErrUserNotFound) {
		// token outlived the account
		c.JSON(http.StatusUnauthorized, Response{Message: "Unauthorized"})
		return
	}
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, "", user)
}
