package dto

type ChangePasswordForm struct {
	CurrentPassword string `form:"current_password" binding:"required"`
	NewPassword     string `form:"new_password" binding:"required"`
	ConfirmPassword string `form:"confirm_password" binding:"required"`
	CSRFToken       string `form:"csrf_token"`
}

type ChangeEmailForm struct {
	NewEmail     string `form:"new_email" binding:"required,email"`
	ConfirmEmail string `form:"confirm_email" binding:"required,email"`
	Password     string `form:"password" binding:"required"`
	CSRFToken    string `form:"csrf_token"`
}
