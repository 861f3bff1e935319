package book

import "time"

type Book struct {
	ID           int64      `gorm:"primaryKey"`
	Title        string     `gorm:"column:title;not null"`
	Author       string     `gorm:"column:author"`
	ISBN         *string    `gorm:"column:isbn;index"`
	IsRestricted bool       `gorm:"column:is_restricted;not null;default:false"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt    *time.Time `gorm:"column:deleted_at;index"`
}

func (Book) TableName() string {
	return "books"
}
