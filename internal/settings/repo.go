package settings

import (
	"context"

	"github.com/cfl-legal/chambers-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository handles the settings singleton row.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to settings operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// First returns the settings row, or gorm.ErrRecordNotFound before the first
// read created it.
func (r *Repository) First(ctx context.Context) (*models.Setting, error) {
	var setting models.Setting
	if err := r.db.WithContext(ctx).Order("updated_at asc").First(&setting).Error; err != nil {
		return nil, err
	}
	return &setting, nil
}

// Create persists the settings row.
func (r *Repository) Create(ctx context.Context, setting *models.Setting) error {
	if setting.ID == uuid.Nil {
		setting.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(setting).Error
}

// Update saves the provided settings row.
func (r *Repository) Update(ctx context.Context, setting *models.Setting) error {
	return r.db.WithContext(ctx).Save(setting).Error
}
