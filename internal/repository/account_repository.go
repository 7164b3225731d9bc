package repository

import (
	"context"
	"time"

	"github.com/exso/CryptoBank/config"
	"github.com/exso/CryptoBank/internal/model"
	"github.com/exso/CryptoBank/internal/util"
)

type AccountRepository struct {
	*config.Database
}

func NewAccountRepository(database *config.Database) *AccountRepository {
	return &AccountRepository{database}
}

func (r *AccountRepository) Create(ctx context.Context, account *model.Account) error {
	query := `
	INSERT INTO accounts (uuid, number, currency, amount, user_uuid, date_of_opening)
	VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.DB.ExecContext(ctx, query,
		account.UUID,
		account.Number,
		account.Currency,
		account.Amount,
		account.UserUUID,
		account.DateOfOpening,
	)
	if err != nil {
		return util.LogError("[AccountRepo] ошибка создания счёта", err)
	}

	return nil
}

func (r *AccountRepository) ListByUser(ctx context.Context, userUUID string) ([]model.Account, error) {
	query := `
	SELECT uuid, number, currency, amount, user_uuid, date_of_opening
	FROM accounts
	WHERE user_uuid = $1
	ORDER BY date_of_opening
	`

	var accounts []model.Account
	if err := r.DB.SelectContext(ctx, &accounts, query, userUUID); err != nil {
		return nil, util.LogError("[AccountRepo] не удалось получить счета пользователя", err)
	}

	return accounts, nil
}

func (r *AccountRepository) CountByUser(ctx context.Context, userUUID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM accounts WHERE user_uuid = $1`

	if err := r.DB.GetContext(ctx, &count, query, userUUID); err != nil {
		return 0, util.LogError("[AccountRepo] не удалось посчитать счета пользователя", err)
	}

	return count, nil
}

// Reporting : число открытых счетов по дням за период, для аналитиков
func (r *AccountRepository) Reporting(ctx context.Context, from, to time.Time) ([]model.AccountsReport, error) {
	query := `
	SELECT date_trunc('day', date_of_opening) AS date, COUNT(*) AS count
	FROM accounts
	WHERE date_of_opening >= $1 AND date_of_opening < $2
	GROUP BY date_trunc('day', date_of_opening)
	ORDER BY date
	`

	var report []model.AccountsReport
	if err := r.DB.SelectContext(ctx, &report, query, from, to); err != nil {
		return nil, util.LogError("[AccountRepo] не удалось построить отчёт по счетам", err)
	}

	return report, nil
}
