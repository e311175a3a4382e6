package router

import (
	"github.com/dashmed/dashmed/config"
	"github.com/dashmed/dashmed/internal/constants"
	"github.com/dashmed/dashmed/internal/handler"
	"github.com/dashmed/dashmed/internal/middleware"
	"github.com/dashmed/dashmed/internal/session"
	"github.com/gin-gonic/gin"
)

type Router struct {
	homeHandler      *handler.HomeHandler
	authHandler      *handler.AuthHandler
	verifyHandler    *handler.VerifyEmailHandler
	resetHandler     *handler.PasswordResetHandler
	profileHandler   *handler.ProfileHandler
	dashboardHandler *handler.DashboardHandler
	healthHandler    *handler.HealthHandler
	pages            *handler.PageWriter
	sessions         *session.Manager
	config           *config.Config
	staticDir        string
}

func NewRouter(
	home *handler.HomeHandler,
	auth *handler.AuthHandler,
	verify *handler.VerifyEmailHandler,
	reset *handler.PasswordResetHandler,
	profile *handler.ProfileHandler,
	dashboard *handler.DashboardHandler,
	health *handler.HealthHandler,
	pages *handler.PageWriter,
	sessions *session.Manager,
	cfg *config.Config,
	staticDir string,
) *Router {
	return &Router{
		homeHandler:      home,
		authHandler:      auth,
		verifyHandler:    verify,
		resetHandler:     reset,
		profileHandler:   profile,
		dashboardHandler: dashboard,
		healthHandler:    health,
		pages:            pages,
		sessions:         sessions,
		config:           cfg,
		staticDir:        staticDir,
	}
}

func (r *Router) SetupRoutes() *gin.Engine {
	if !r.config.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.RedirectTrailingSlash = true

	router.Use(middleware.RequestID())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.RecoveryMiddleware(func(c *gin.Context) {
		c.String(500, "Une erreur technique est survenue. Veuillez réessayer.")
	}))
	router.Use(middleware.SecurityHeaders())

	if r.staticDir != "" {
		router.Static("/static", r.staticDir)
	}

	// Probes sit outside the session layer.
	router.GET(constants.PathHealth, r.healthHandler.Health)
	router.GET(constants.PathHealthDB, r.healthHandler.HealthDB)

	app := router.Group("")
	app.Use(r.sessions.Middleware())
	{
		app.GET(constants.PathHome, r.homeHandler.Home)

		// Auth exchange: reachable only while logged out.
		guest := app.Group("")
		guest.Use(middleware.RedirectIfAuthenticated())
		{
			guest.GET(constants.PathLogin, r.authHandler.ShowLogin)
			guest.POST(constants.PathLogin, r.authHandler.Login)
			guest.GET(constants.PathRegister, r.authHandler.ShowRegister)
			guest.POST(constants.PathRegister, r.authHandler.Register)

			guest.GET(constants.PathForgottenPassword, r.resetHandler.ShowForgotten)
			guest.POST(constants.PathForgottenPassword,
				middleware.RateLimit(r.config.Security.ForgotPasswordMaxAttempts, r.config.Security.ForgotPasswordWindow, constants.MsgResetThrottled),
				r.resetHandler.Forgotten)
			guest.GET(constants.PathResetPassword, r.resetHandler.ShowReset)
			guest.POST(constants.PathResetPassword, r.resetHandler.Reset)

			guest.GET(constants.PathVerifyEmail, r.verifyHandler.Verify)
			guest.GET(constants.PathResendVerification, r.verifyHandler.ShowResend)
			guest.POST(constants.PathResendVerification,
				middleware.RateLimit(r.config.Security.ForgotPasswordMaxAttempts, r.config.Security.ForgotPasswordWindow, constants.MsgResendNeutral),
				r.verifyHandler.Resend)
		}

		// Everything behind a login.
		protected := app.Group("")
		protected.Use(middleware.RequireSession())
		{
			protected.GET(constants.PathLogout, r.authHandler.Logout)
			protected.GET(constants.PathAccueil, r.dashboardHandler.Accueil)
			protected.GET(constants.PathDashboard, r.dashboardHandler.Dashboard)
			protected.GET("/api/chart", r.dashboardHandler.ChartData)

			protected.GET(constants.PathProfile, r.profileHandler.Profile)
			protected.GET(constants.PathChangePassword, r.profileHandler.ShowChangePassword)
			protected.POST(constants.PathChangePassword, r.profileHandler.ChangePassword)
			protected.GET(constants.PathChangeMail, r.profileHandler.ShowChangeMail)
			protected.POST(constants.PathChangeMail, r.profileHandler.ChangeMail)
		}

	}

	router.NoRoute(r.sessions.Middleware(), r.pages.NotFound)

	return router
}
