package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/exso/CryptoBank/internal/model/requestresponse"
	"github.com/exso/CryptoBank/internal/ports"
	"github.com/exso/CryptoBank/internal/security"
	"github.com/exso/CryptoBank/internal/util"
)

type UserHandler struct {
	ports.UserService
}

func NewUserHandler(userService ports.UserService) *UserHandler {
	return &UserHandler{userService}
}

// RegisterUser godoc
// @Summary Регистрация пользователя
// @Description Создаёт пользователя с ролью User
// @Tags Users
// @Accept json
// @Produce json
// @Param body body requestresponse.RegisterUserRequest true "Тело запроса"
// @Success 200 {object} requestresponse.RegisterUserResponse
// @Failure 400 {object} requestresponse.ErrorResponse "Некорректные данные"
// @Failure 409 {object} requestresponse.ErrorResponse "Email уже занят"
// @Failure 500 {object} requestresponse.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/register [post]
func (h *UserHandler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req requestresponse.RegisterUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		util.HandleError(w, "некорректный JSON", http.StatusBadRequest)
		return
	}

	user, err := h.UserService.Register(ctx, req.Email, req.Password, req.DateOfBirth)
	if err != nil {
		log.Println(err)
		switch {
		case strings.Contains(err.Error(), "уже существует"):
			util.HandleError(w, "пользователь с таким email уже существует", http.StatusConflict)
		case strings.Contains(err.Error(), "пароль"),
			strings.Contains(err.Error(), "email"),
			strings.Contains(err.Error(), "дата рождения"):
			util.HandleError(w, err.Error(), http.StatusBadRequest)
		default:
			util.HandleError(w, "внутренняя ошибка сервера", http.StatusInternalServerError)
		}
		return
	}

	resp := requestresponse.RegisterUserResponse{}
	resp.Response.UserUUID = user.UUID

	util.SendJSON(w, http.StatusOK, resp)
}

// GetProfile godoc
// @Summary Профиль текущего пользователя
// @Tags Users
// @Produce json
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.UserProfileResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/users/profile [get]
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claims, err := security.GetClaimsFromContext(ctx)
	if err != nil {
		util.HandleError(w, "не авторизован", http.StatusUnauthorized)
		return
	}

	user, err := h.UserService.GetProfile(ctx, claims.UserUUID)
	if err != nil {
		log.Println(err)
		util.HandleError(w, "пользователь не найден", http.StatusNotFound)
		return
	}

	resp := requestresponse.UserProfileResponse{}
	resp.Response.UserUUID = user.UUID
	resp.Response.Email = user.Email
	resp.Response.DateOfBirth = user.DateOfBirth.Format("2006-01-02")
	resp.Response.Roles = user.Roles

	util.SendJSON(w, http.StatusOK, resp)
}
