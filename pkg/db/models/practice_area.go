package models

import (
	"time"

	"github.com/google/uuid"
)

// PracticeArea classifies cases and tags users with a legal specialization.
type PracticeArea struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string    `gorm:"type:text;not null;uniqueIndex" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// UserPracticeArea links a user to a practice area.
type UserPracticeArea struct {
	ID             uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID         uuid.UUID `gorm:"column:user_id;type:uuid;not null" json:"user_id"`
	PracticeAreaID uuid.UUID `gorm:"column:practice_area_id;type:uuid;not null" json:"practice_area_id"`
}
