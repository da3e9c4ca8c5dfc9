package models

// LoginRequest используется для приёма учётных данных из JSON-запроса.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SignupRequest используется для приёма формы регистрации.
// Совпадение паролей и минимальная длина проверяются сервисом.
type SignupRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

// Session выданный токен и пользователь, которому он принадлежит.
type Session struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
	User      *User  `json:"user"`
}

// RiskCheckRequest используется для приёма адреса кошелька.
type RiskCheckRequest struct {
	Address string `json:"address"`
}
