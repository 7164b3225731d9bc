package ports

import (
	"context"
	"time"

	"github.com/exso/CryptoBank/internal/model"
)

type AccountRepository interface {
	Create(ctx context.Context, account *model.Account) error
	ListByUser(ctx context.Context, userUUID string) ([]model.Account, error)
	CountByUser(ctx context.Context, userUUID string) (int, error)
	Reporting(ctx context.Context, from, to time.Time) ([]model.AccountsReport, error)
}

type AccountService interface {
	Create(ctx context.Context, userUUID, currency string) (*model.Account, error)
	List(ctx context.Context, userUUID string) ([]model.Account, error)
	Reporting(ctx context.Context, from, to time.Time) ([]model.AccountsReport, error)
}
