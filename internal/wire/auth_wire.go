package wire

import (
	"instamakaan/internal/adaptor"
	"instamakaan/pkg/middleware"
	"instamakaan/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireAuth(
	r chi.Router,
	authHandler *adaptor.AuthHandler,
	tokens *utils.TokenIssuer,
	config *utils.Config,
	log *zap.Logger,
) {
	r.Route("/api/auth", func(r chi.Router) {
		// ==================== PUBLIC ROUTES ====================
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(config.RateLimit, log))

			r.Post("/register", authHandler.Register)
			r.Post("/verify-email", authHandler.VerifyEmail)
			r.Post("/resend-otp", authHandler.ResendOTP)
			r.Post("/login", authHandler.Login)
			r.Post("/forgot-password", authHandler.ForgotPassword)
			r.Post("/reset-password", authHandler.ResetPassword)
		})

		// ==================== PROTECTED ROUTES ====================
		r.With(middleware.Auth(tokens, log)).Get("/me", authHandler.Me)
	})
}
