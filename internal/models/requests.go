package models

type SignUpRequest struct {
	Username string `json:"username" binding:"required,min=3,max=20,username" example:"night_owl"`
	Email    string `json:"email" binding:"required,email,max=255" example:"owl@example.com"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

type SignInRequest struct {
	// Identifier is a username or an email address.
	Identifier string `json:"identifier" binding:"required" example:"night_owl"`
	Password   string `json:"password" binding:"required"`
}

type RequestCodeRequest struct {
	Identifier string `json:"identifier" binding:"required" example:"owl@example.com"`
}

type ConfirmCodeRequest struct {
	Identifier string `json:"identifier" binding:"required" example:"night_owl"`
	Code       string `json:"code" binding:"required,otpcode" example:"048213"`
}

type ForgotPasswordRequest struct {
	Identifier string `json:"identifier" binding:"required" example:"owl@example.com"`
}

type ResetPasswordRequest struct {
	Identifier      string `json:"identifier" binding:"required"`
	Code            string `json:"code" binding:"required,otpcode" example:"048213"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=72"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

type SendMessageRequest struct {
	Content string `json:"content" binding:"required" example:"Your talk yesterday was great!"`
}

type AcceptMessagesRequest struct {
	AcceptMessages *bool `json:"accept_messages" binding:"required" example:"false"`
}

type ListMessagesQuery struct {
	Limit  int `form:"limit" binding:"omitempty,min=1,max=100"`
	Offset int `form:"offset" binding:"omitempty,min=0"`
}
