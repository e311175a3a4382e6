package dto

type RegisterForm struct {
	FirstName       string `form:"first_name" binding:"required,min=2,max=50"`
	LastName        string `form:"last_name" binding:"required,min=2,max=50"`
	Email           string `form:"email" binding:"required,email"`
	Sex             string `form:"sex" binding:"required,oneof=F M A"`
	Specialty       string `form:"specialty" binding:"required,max=100"`
	Password        string `form:"password" binding:"required"`
	ConfirmPassword string `form:"confirm_password" binding:"required"`
	CSRFToken       string `form:"csrf_token"`
}

type LoginForm struct {
	Email     string `form:"email" binding:"required,email"`
	Password  string `form:"password" binding:"required"`
	CSRFToken string `form:"csrf_token"`
}

type ForgotPasswordForm struct {
	Email     string `form:"email" binding:"required,email"`
	CSRFToken string `form:"csrf_token"`
}

type ResetPasswordForm struct {
	Email           string `form:"email" binding:"required,email"`
	Token           string `form:"token" binding:"required,len=64,hexadecimal"`
	Password        string `form:"password" binding:"required"`
	ConfirmPassword string `form:"confirm_password" binding:"required"`
	CSRFToken       string `form:"csrf_token"`
}

type ResendVerificationForm struct {
	Email     string `form:"email" binding:"required,email"`
	CSRFToken string `form:"csrf_token"`
}
