package models

import (
	"time"

	"gorm.io/gorm"
)

// Model is embedded by every persisted entity; the primary key is exposed as "id".
type Model struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}
