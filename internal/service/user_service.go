package service

import (
	"context"
	"fmt"
	"log"
	"time"
	"unicode"

	"github.com/exso/CryptoBank/internal/model"
	"github.com/exso/CryptoBank/internal/ports"
	"github.com/exso/CryptoBank/internal/security"

	"github.com/google/uuid"
)

type UserService struct {
	userRepository ports.UserRepository
	cache          ports.CacheRepository
}

func NewUserService(userRepository ports.UserRepository, cache ports.CacheRepository) *UserService {
	return &UserService{
		userRepository: userRepository,
		cache:          cache,
	}
}

// Register создаёт пользователя с ролью User по умолчанию
func (s *UserService) Register(ctx context.Context, email, password, dateOfBirth string) (*model.User, error) {
	if len(email) < 5 {
		return nil, fmt.Errorf("[UserService] некорректный email")
	}

	if err := validatePassword(password); err != nil {
		return nil, fmt.Errorf("[UserService] %w", err)
	}

	birthDate, err := time.Parse("2006-01-02", dateOfBirth)
	if err != nil {
		return nil, fmt.Errorf("[UserService] некорректная дата рождения: %w", err)
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("[UserService] не удалось создать хэш пароля: %w", err)
	}

	user := &model.User{
		UUID:         uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		DateOfBirth:  birthDate,
	}

	created, err := s.userRepository.CreateUser(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("[UserService] ошибка создания пользователя: %w", err)
	}

	return created, nil
}

// GetProfile возвращает пользователя с ролями. Читает напрямую из БД,
// чтобы не отдать устаревшие роли, и заодно обновляет снапшот в кэше
func (s *UserService) GetProfile(ctx context.Context, userUUID string) (*model.User, error) {
	user, err := s.userRepository.FindByUUID(ctx, userUUID)
	if err != nil {
		return nil, fmt.Errorf("[UserService] пользователь не найден")
	}

	if s.cache != nil {
		if err := s.cache.SetUserSnapshot(ctx, user); err != nil {
			log.Printf("[UserService] не удалось обновить кэш снапшотов: %v", err)
		}
	}

	return user, nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("пароль должен содержать минимум 8 символов")
	}

	var upperCount, lowerCount, digitCount, specialCount int

	for _, c := range password {
		switch {
		case unicode.IsUpper(c):
			upperCount++
		case unicode.IsLower(c):
			lowerCount++
		case unicode.IsDigit(c):
			digitCount++
		case unicode.IsPunct(c) || unicode.IsSymbol(c):
			specialCount++
		}
	}

	if upperCount == 0 || lowerCount == 0 {
		return fmt.Errorf("пароль должен содержать буквы в разных регистрах")
	}
	if digitCount < 1 {
		return fmt.Errorf("пароль должен содержать хотя бы одну цифру")
	}
	if specialCount < 1 {
		return fmt.Errorf("пароль должен содержать хотя бы один специальный символ")
	}

	return nil
}
