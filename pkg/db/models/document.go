package models

import (
	"time"

	"github.com/google/uuid"
)

// Document is an uploaded file attached to exactly one case or folder.
type Document struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name         string     `gorm:"type:text;not null" json:"name"`
	Type         string     `gorm:"type:text;not null" json:"type"`
	MimeType     string     `gorm:"column:mime_type;type:text" json:"mime_type"`
	Size         string     `gorm:"type:text;not null" json:"size"`
	CaseID       *uuid.UUID `gorm:"column:case_id;type:uuid" json:"case_id"`
	FolderID     *uuid.UUID `gorm:"column:folder_id;type:uuid" json:"folder_id"`
	UploadedByID uuid.UUID  `gorm:"column:uploaded_by_id;type:uuid;not null" json:"uploaded_by_id"`
	Version      string     `gorm:"type:text;not null;default:'1'" json:"version"`
	FilePath     string     `gorm:"column:file_path;type:text;not null" json:"-"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
