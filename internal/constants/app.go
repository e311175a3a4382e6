package constants

import "time"

// Route paths
const (
	PathHome               = "/"
	PathLogin              = "/login"
	PathLogout             = "/logout"
	PathRegister           = "/register"
	PathForgottenPassword  = "/forgotten-password"
	PathResetPassword      = "/reset-password"
	PathVerifyEmail        = "/verify-email"
	PathResendVerification = "/resend-verification"
	PathAccueil            = "/accueil"
	PathDashboard          = "/dashboard"
	PathProfile            = "/profile"
	PathChangePassword     = "/change-password"
	PathChangeMail         = "/change-mail"
	PathHealth             = "/health"
	PathHealthDB           = "/health/db"
)

// Form and query parameter names
const (
	ParamToken     = "token"
	ParamEmail     = "email"
	ParamCSRFToken = "csrf_token"
	ParamKey       = "key"
)

// Token lifetimes
const (
	VerificationTokenTTL = 24 * time.Hour
	PasswordResetTTL     = 60 * time.Minute
	CSRFDefaultTTL       = 2 * time.Hour
)
