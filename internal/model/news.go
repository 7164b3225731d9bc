package model

import "time"

type News struct {
	ID          int64     `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Date        time.Time `db:"date" json:"date"`
	Author      string    `db:"author" json:"author"`
	Description string    `db:"description" json:"description"`
}
