package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/exso/CryptoBank/internal/model/requestresponse"
	"github.com/exso/CryptoBank/internal/ports"
	"github.com/exso/CryptoBank/internal/security"
	"github.com/exso/CryptoBank/internal/util"
)

type AccountHandler struct {
	ports.AccountService
}

func NewAccountHandler(accountService ports.AccountService) *AccountHandler {
	return &AccountHandler{accountService}
}

// CreateAccount godoc
// @Summary Открытие счёта
// @Tags Accounts
// @Accept json
// @Produce json
// @Param body body requestresponse.CreateAccountRequest true "Тело запроса"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.CreateAccountResponse
// @Failure 400 {object} requestresponse.ErrorResponse "Некорректная валюта или превышен лимит"
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/accounts [post]
func (h *AccountHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claims, err := security.GetClaimsFromContext(ctx)
	if err != nil {
		util.HandleError(w, "не авторизован", http.StatusUnauthorized)
		return
	}

	var req requestresponse.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		util.HandleError(w, "некорректный JSON", http.StatusBadRequest)
		return
	}

	account, err := h.AccountService.Create(ctx, claims.UserUUID, req.Currency)
	if err != nil {
		log.Println(err)
		switch {
		case strings.Contains(err.Error(), "валюты"),
			strings.Contains(err.Error(), "лимит"):
			util.HandleError(w, err.Error(), http.StatusBadRequest)
		default:
			util.HandleError(w, "внутренняя ошибка сервера", http.StatusInternalServerError)
		}
		return
	}

	util.SendJSON(w, http.StatusOK, requestresponse.CreateAccountResponse{Response: *account})
}

// ListAccounts godoc
// @Summary Счета текущего пользователя
// @Tags Accounts
// @Produce json
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.ListAccountsResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/accounts [get]
func (h *AccountHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claims, err := security.GetClaimsFromContext(ctx)
	if err != nil {
		util.HandleError(w, "не авторизован", http.StatusUnauthorized)
		return
	}

	accounts, err := h.AccountService.List(ctx, claims.UserUUID)
	if err != nil {
		log.Println(err)
		util.HandleError(w, "внутренняя ошибка сервера", http.StatusInternalServerError)
		return
	}

	util.SendJSON(w, http.StatusOK, requestresponse.ListAccountsResponse{Response: accounts})
}

// GetReporting godoc
// @Summary Отчёт по открытым счетам
// @Description Число открытых счетов по дням за период; доступно роли Analyst
// @Tags Accounts
// @Produce json
// @Param from query string true "Начало периода (RFC3339)"
// @Param to query string true "Конец периода (RFC3339)"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.AccountsReportResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/accounts/reporting [get]
func (h *AccountHandler) GetReporting(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	from, err := time.Parse(time.RFC3339, r.URL.Query().Get("from"))
	if err != nil {
		util.HandleError(w, "некорректный параметр from", http.StatusBadRequest)
		return
	}

	to, err := time.Parse(time.RFC3339, r.URL.Query().Get("to"))
	if err != nil {
		util.HandleError(w, "некорректный параметр to", http.StatusBadRequest)
		return
	}

	report, err := h.AccountService.Reporting(ctx, from, to)
	if err != nil {
		log.Println(err)
		if strings.Contains(err.Error(), "периода") {
			util.HandleError(w, err.Error(), http.StatusBadRequest)
		} else {
			util.HandleError(w, "внутренняя ошибка сервера", http.StatusInternalServerError)
		}
		return
	}

	util.SendJSON(w, http.StatusOK, requestresponse.AccountsReportResponse{Response: report})
}
