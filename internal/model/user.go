package model

import "time"

type User struct {
	UUID         string    `db:"uuid" json:"uuid"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	DateOfBirth  time.Time `db:"date_of_birth" json:"date_of_birth"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`

	// Роли подгружаются отдельным запросом, в таблице users их нет
	Roles []string `db:"-" json:"roles"`
}

type Role struct {
	ID          int64  `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description"`
}

// Имена ролей, заводятся миграцией
const (
	RoleUser          = "User"
	RoleAnalyst       = "Analyst"
	RoleAdministrator = "Administrator"
)

func (u *User) HasRole(name string) bool {
	for _, role := range u.Roles {
		if role == name {
			return true
		}
	}
	return false
}
