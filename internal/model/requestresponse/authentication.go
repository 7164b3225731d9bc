package requestresponse

// LoginRequest : тело запроса на аутентификацию
type LoginRequest struct {
	Email    string `json:"email" example:"user@example.com"`
	Password string `json:"password" example:"P@ssw0rd123"`
}

// LoginResponse : ответ на успешную аутентификацию
type LoginResponse struct {
	Response struct {
		AccessToken  string `json:"access_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
		RefreshToken string `json:"refresh_token" example:"vcSi0369y1I62wOpxZFpgZ"`
	} `json:"response"`
}

// RefreshTokenRequest : запрос на ротацию refresh-токена
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" example:"vcSi0369y1I62wOpxZFpgZ"`
}

// RefreshTokenResponse : ответ на успешную ротацию
type RefreshTokenResponse struct {
	Response struct {
		AccessToken  string `json:"access_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
		RefreshToken string `json:"refresh_token" example:"h7Jw1q4o34u34ih759ou1"`
	} `json:"response"`
}

// RevokeTokenRequest : запрос на отзыв refresh-токена (logout)
type RevokeTokenRequest struct {
	RefreshToken string `json:"refresh_token" example:"vcSi0369y1I62wOpxZFpgZ"`
}

// RevokeTokenResponse : ответ на успешный отзыв
type RevokeTokenResponse struct {
	Response struct {
		Revoked bool `json:"revoked" example:"true"`
	} `json:"response"`
}

// CurrentUserResponse : информация о текущем пользователе
type CurrentUserResponse struct {
	Response struct {
		UserUUID string   `json:"user_uuid" example:"b6a1e1c4-4b1d-4f1e-8b29-1234567890ab"`
		Email    string   `json:"email" example:"user@example.com"`
		Roles    []string `json:"roles"`
	} `json:"response"`
}

// ErrorResponse : стандартный ответ с ошибкой
type ErrorResponse struct {
	Error   string `json:"error" example:"Unauthorized"`
	Message string `json:"message" example:"невалидный токен"`
	Code    int    `json:"code" example:"401"`
}
