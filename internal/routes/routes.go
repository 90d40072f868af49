package routes

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"whisperbox/internal/handlers"
	"whisperbox/internal/middleware"
)

type Handlers struct {
	Auth          *handlers.AuthHandler
	Verify        *handlers.VerifyHandler
	PasswordReset *handlers.PasswordResetHandler
	Messages      *handlers.MessageHandler
	Health        *handlers.HealthHandler
}

func SetupRoutes(
	r *gin.Engine,
	h Handlers,
	tokens middleware.TokenParser,
	limiter *middleware.RateLimiter,
) *gin.Engine {
	limited := limiter.Middleware()

	// ---- public
	r.GET("/healthz", h.Health.Health)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	auth := r.Group("/auth")
	{
		auth.POST("/signup", limited, h.Auth.SignUp)
		auth.GET("/username-available", h.Auth.UsernameAvailable)
		auth.POST("/signin", h.Auth.SignIn)

		auth.POST("/verify/request", limited, h.Verify.RequestCode)
		auth.POST("/verify/confirm", h.Verify.Confirm)

		auth.POST("/password/forgot", limited, h.PasswordReset.Forgot)
		auth.POST("/password/reset", h.PasswordReset.Reset)
	}

	r.POST("/u/:username/messages", limited, h.Messages.Send)

	// ---- protected
	protected := r.Group("/", middleware.AuthMiddleware(tokens))
	{
		protected.GET("/me", h.Auth.Me)

		protected.GET("/messages", h.Messages.List)
		protected.GET("/messages/accepting", h.Messages.GetAccepting)
		protected.PUT("/messages/accepting", h.Messages.SetAccepting)
		protected.DELETE("/messages/:id", h.Messages.Delete)
	}

	return r
}
