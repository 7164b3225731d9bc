package requestresponse

import "github.com/exso/CryptoBank/internal/model"

// CreateAccountRequest : запрос на открытие счёта
type CreateAccountRequest struct {
	Currency string `json:"currency" example:"BTC"`
}

// CreateAccountResponse : ответ на успешное открытие счёта
type CreateAccountResponse struct {
	Response model.Account `json:"response"`
}

// ListAccountsResponse : список счетов пользователя
type ListAccountsResponse struct {
	Response []model.Account `json:"response"`
}

// AccountsReportResponse : отчёт по открытым счетам за период
type AccountsReportResponse struct {
	Response []model.AccountsReport `json:"response"`
}
