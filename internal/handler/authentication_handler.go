package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/exso/CryptoBank/internal/model/requestresponse"
	"github.com/exso/CryptoBank/internal/ports"
	"github.com/exso/CryptoBank/internal/security"
	"github.com/exso/CryptoBank/internal/service"
	"github.com/exso/CryptoBank/internal/util"
)

type AuthenticationHandler struct {
	ports.AuthenticationService
	ports.SessionService
}

func NewAuthenticationHandler(
	authenticationService ports.AuthenticationService,
	sessionService ports.SessionService,
) *AuthenticationHandler {
	return &AuthenticationHandler{
		authenticationService,
		sessionService,
	}
}

// Login godoc
// @Summary Аутентификация пользователя
// @Description Выдаёт access-токен и корневой refresh-токен новой сессии
// @Tags Authentication
// @Accept json
// @Produce json
// @Param body body requestresponse.LoginRequest true "Тело запроса"
// @Success 200 {object} requestresponse.LoginResponse "Успешная аутентификация"
// @Failure 400 {object} requestresponse.ErrorResponse "Некорректный JSON или пустые поля"
// @Failure 401 {object} requestresponse.ErrorResponse "Неверный логин или пароль"
// @Failure 500 {object} requestresponse.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/auth [post]
func (h *AuthenticationHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req requestresponse.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		util.HandleError(w, "некорректный JSON", http.StatusBadRequest)
		return
	}

	if req.Email == "" || req.Password == "" {
		util.HandleError(w, "email и password обязательны", http.StatusBadRequest)
		return
	}

	tokens, err := h.AuthenticationService.Login(ctx, req.Email, req.Password)
	if err != nil {
		log.Println(err)
		switch {
		case strings.Contains(err.Error(), "не найден"),
			strings.Contains(err.Error(), "неверный логин или пароль"):
			// не различаем снаружи "нет пользователя" и "не тот пароль"
			util.HandleError(w, "неверный логин или пароль", http.StatusUnauthorized)
		default:
			util.HandleError(w, "внутренняя ошибка сервера", http.StatusInternalServerError)
		}
		return
	}

	resp := requestresponse.LoginResponse{}
	resp.Response.AccessToken = tokens.AccessToken
	resp.Response.RefreshToken = tokens.RefreshToken

	util.SendJSON(w, http.StatusOK, resp)
}

// RefreshToken godoc
// @Summary Ротация refresh-токена
// @Description Обменивает одноразовый refresh-токен на новую пару токенов
// @Tags Authentication
// @Accept json
// @Produce json
// @Param body body requestresponse.RefreshTokenRequest true "Тело запроса"
// @Success 200 {object} requestresponse.RefreshTokenResponse "Новая пара токенов"
// @Failure 400 {object} requestresponse.ErrorResponse "Неверный JSON"
// @Failure 401 {object} requestresponse.ErrorResponse "Невалидный токен"
// @Failure 500 {object} requestresponse.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/auth/refresh [post]
func (h *AuthenticationHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req requestresponse.RefreshTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		util.HandleError(w, "неверный JSON", http.StatusBadRequest)
		return
	}

	if req.RefreshToken == "" {
		util.HandleError(w, "refresh_token обязателен", http.StatusBadRequest)
		return
	}

	tokens, err := h.SessionService.Rotate(ctx, req.RefreshToken)
	if err != nil {
		log.Println(err)
		if errors.Is(err, service.ErrInvalidToken) {
			util.HandleError(w, "невалидный токен", http.StatusUnauthorized)
		} else {
			util.HandleError(w, "внутренняя ошибка сервера", http.StatusInternalServerError)
		}
		return
	}

	resp := requestresponse.RefreshTokenResponse{}
	resp.Response.AccessToken = tokens.AccessToken
	resp.Response.RefreshToken = tokens.RefreshToken

	util.SendJSON(w, http.StatusOK, resp)
}

// RevokeToken godoc
// @Summary Отзыв refresh-токена
// @Description Завершает сессию: отзывает предъявленный refresh-токен без выпуска преемника
// @Tags Authentication
// @Accept json
// @Produce json
// @Param body body requestresponse.RevokeTokenRequest true "Тело запроса"
// @Success 200 {object} requestresponse.RevokeTokenResponse
// @Failure 400 {object} requestresponse.ErrorResponse "Неверный JSON"
// @Failure 401 {object} requestresponse.ErrorResponse "Невалидный токен"
// @Failure 500 {object} requestresponse.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/auth/revoke [post]
func (h *AuthenticationHandler) RevokeToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req requestresponse.RevokeTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		util.HandleError(w, "неверный JSON", http.StatusBadRequest)
		return
	}

	if err := h.SessionService.Revoke(ctx, req.RefreshToken); err != nil {
		log.Println(err)
		if errors.Is(err, service.ErrInvalidToken) {
			util.HandleError(w, "невалидный токен", http.StatusUnauthorized)
		} else {
			util.HandleError(w, "внутренняя ошибка сервера", http.StatusInternalServerError)
		}
		return
	}

	resp := requestresponse.RevokeTokenResponse{}
	resp.Response.Revoked = true

	util.SendJSON(w, http.StatusOK, resp)
}

// GetCurrentUser godoc
// @Summary Текущий пользователь
// @Description Возвращает UUID, email и роли авторизованного пользователя
// @Tags Authentication
// @Produce json
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.CurrentUserResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/auth/me [get]
func (h *AuthenticationHandler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	claims, err := security.GetClaimsFromContext(r.Context())
	if err != nil {
		util.HandleError(w, "не авторизован", http.StatusUnauthorized)
		return
	}

	resp := requestresponse.CurrentUserResponse{}
	resp.Response.UserUUID = claims.UserUUID
	resp.Response.Email = claims.Email
	resp.Response.Roles = claims.Roles

	util.SendJSON(w, http.StatusOK, resp)
}
