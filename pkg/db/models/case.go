package models

import (
	"time"

	"github.com/cfl-legal/chambers-backend/pkg/enums"
	"github.com/google/uuid"
)

// Case is a legal matter tracked by the firm.
type Case struct {
	ID             uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CaseNumber     string           `gorm:"column:case_number;type:text;not null;uniqueIndex" json:"case_number"`
	Title          string           `gorm:"type:text;not null" json:"title"`
	Description    string           `gorm:"type:text" json:"description"`
	ClientName     string           `gorm:"column:client_name;type:text" json:"client_name"`
	PracticeAreaID uuid.UUID        `gorm:"column:practice_area_id;type:uuid;not null" json:"practice_area_id"`
	Status         enums.CaseStatus `gorm:"type:text;not null;default:'pending'" json:"status"`
	CreatedByID    uuid.UUID        `gorm:"column:created_by_id;type:uuid;not null" json:"created_by_id"`
	CreatedAt      time.Time        `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time        `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// CaseAssignment grants a user access to work a case without implying ownership.
type CaseAssignment struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CaseID     uuid.UUID `gorm:"column:case_id;type:uuid;not null" json:"case_id"`
	UserID     uuid.UUID `gorm:"column:user_id;type:uuid;not null" json:"user_id"`
	AssignedAt time.Time `gorm:"column:assigned_at;autoCreateTime" json:"assigned_at"`
}
