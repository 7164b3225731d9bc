package ports

import (
	"context"

	"github.com/exso/CryptoBank/internal/model"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByUUID(ctx context.Context, uuid string) (*model.User, error)
	FindRoles(ctx context.Context, userUUID string) ([]string, error)
}

type UserService interface {
	Register(ctx context.Context, email, password, dateOfBirth string) (*model.User, error)
	GetProfile(ctx context.Context, userUUID string) (*model.User, error)
}
