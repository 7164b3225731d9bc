package service

import (
	"context"
	"fmt"
	"time"
	"unicode"

	"github.com/exso/CryptoBank/internal/model"
	"github.com/exso/CryptoBank/internal/ports"

	"github.com/google/uuid"
)

type AccountService struct {
	accountRepository ports.AccountRepository
	maxPerUser        int
}

func NewAccountService(accountRepository ports.AccountRepository, maxPerUser int) *AccountService {
	return &AccountService{
		accountRepository: accountRepository,
		maxPerUser:        maxPerUser,
	}
}

// Create открывает счёт в указанной валюте. На пользователя действует
// лимит числа счетов из конфигурации
func (s *AccountService) Create(ctx context.Context, userUUID, currency string) (*model.Account, error) {
	if err := validateCurrency(currency); err != nil {
		return nil, fmt.Errorf("[AccountService] %w", err)
	}

	count, err := s.accountRepository.CountByUser(ctx, userUUID)
	if err != nil {
		return nil, fmt.Errorf("[AccountService] не удалось проверить лимит счетов: %w", err)
	}
	if count >= s.maxPerUser {
		return nil, fmt.Errorf("[AccountService] превышен лимит счетов: не более %d на пользователя", s.maxPerUser)
	}

	accountUUID := uuid.New().String()
	account := &model.Account{
		UUID:          accountUUID,
		Number:        fmt.Sprintf("ACC-%s", accountUUID[:8]),
		Currency:      currency,
		Amount:        0,
		UserUUID:      userUUID,
		DateOfOpening: time.Now().UTC(),
	}

	if err := s.accountRepository.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("[AccountService] не удалось открыть счёт: %w", err)
	}

	return account, nil
}

func (s *AccountService) List(ctx context.Context, userUUID string) ([]model.Account, error) {
	return s.accountRepository.ListByUser(ctx, userUUID)
}

// Reporting — отчёт по открытым счетам за период; доступ ограничен
// ролью Analyst на уровне маршрутов
func (s *AccountService) Reporting(ctx context.Context, from, to time.Time) ([]model.AccountsReport, error) {
	if !from.Before(to) {
		return nil, fmt.Errorf("[AccountService] начало периода должно быть раньше конца")
	}

	return s.accountRepository.Reporting(ctx, from, to)
}

func validateCurrency(currency string) error {
	if len(currency) != 3 {
		return fmt.Errorf("код валюты должен состоять из 3 символов")
	}
	for _, c := range currency {
		if !unicode.IsUpper(c) {
			return fmt.Errorf("код валюты должен состоять из заглавных латинских букв")
		}
	}
	return nil
}
