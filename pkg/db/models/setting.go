package models

import (
	"time"

	"github.com/google/uuid"
)

// Setting is the firm configuration singleton, lazily created on first read.
type Setting struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	FirmName  string    `gorm:"column:firm_name;type:text;not null" json:"firm_name"`
	Location  string    `gorm:"type:text" json:"location"`
	Address   string    `gorm:"type:text" json:"address"`
	Phone     string    `gorm:"type:text" json:"phone"`
	Email     string    `gorm:"type:text" json:"email"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
