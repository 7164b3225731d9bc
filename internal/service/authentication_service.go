package service

import (
	"context"
	"fmt"

	"github.com/exso/CryptoBank/internal/model"
	"github.com/exso/CryptoBank/internal/ports"
	"github.com/exso/CryptoBank/internal/security"
)

type AuthenticationService struct {
	userRepository ports.UserRepository
	sessionService ports.SessionService
}

func NewAuthenticationService(
	userRepository ports.UserRepository,
	sessionService ports.SessionService,
) *AuthenticationService {
	return &AuthenticationService{
		userRepository: userRepository,
		sessionService: sessionService,
	}
}

// Login проверяет пароль и открывает новую сессию: access-токен
// плюс корневой refresh-токен новой цепочки ротаций
func (s *AuthenticationService) Login(ctx context.Context, email, password string) (*model.TokensPair, error) {
	user, err := s.userRepository.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("пользователь не найден: %w", err)
	}

	if !security.CheckPassword(password, user.PasswordHash) {
		return nil, fmt.Errorf("неверный логин или пароль")
	}

	tokens, err := s.sessionService.StartSession(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("ошибка генерации токенов: %w", err)
	}

	return tokens, nil
}
