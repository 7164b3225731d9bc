package requestresponse

// RegisterUserRequest : тело запроса на регистрацию
type RegisterUserRequest struct {
	Email       string `json:"email" example:"user@example.com"`
	Password    string `json:"password" example:"P@ssw0rd123"`
	DateOfBirth string `json:"date_of_birth" example:"1990-05-17"`
}

// RegisterUserResponse : ответ на успешную регистрацию
type RegisterUserResponse struct {
	Response struct {
		UserUUID string `json:"user_uuid" example:"b6a1e1c4-4b1d-4f1e-8b29-1234567890ab"`
	} `json:"response"`
}

// UserProfileResponse : профиль пользователя
type UserProfileResponse struct {
	Response struct {
		UserUUID    string   `json:"user_uuid" example:"b6a1e1c4-4b1d-4f1e-8b29-1234567890ab"`
		Email       string   `json:"email" example:"user@example.com"`
		DateOfBirth string   `json:"date_of_birth" example:"1990-05-17"`
		Roles       []string `json:"roles"`
	} `json:"response"`
}
