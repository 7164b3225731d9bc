package model

import "time"

type Account struct {
	UUID          string    `db:"uuid" json:"uuid"`
	Number        string    `db:"number" json:"number"`
	Currency      string    `db:"currency" json:"currency"`
	Amount        float64   `db:"amount" json:"amount"`
	UserUUID      string    `db:"user_uuid" json:"user_uuid"`
	DateOfOpening time.Time `db:"date_of_opening" json:"date_of_opening"`
}

// AccountsReport — количество открытых счетов за день, для отчёта аналитика
type AccountsReport struct {
	Date  time.Time `db:"date" json:"date"`
	Count int64     `db:"count" json:"count"`
}
