package roles

import (
	"context"

	"github.com/cfl-legal/chambers-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository handles role persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to role operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns all roles ordered by name.
func (r *Repository) List(ctx context.Context) ([]models.Role, error) {
	var roles []models.Role
	if err := r.db.WithContext(ctx).Order("name asc").Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

// FindByID loads a role by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Role, error) {
	var role models.Role
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

// FindByName loads a role by its unique name.
func (r *Repository) FindByName(ctx context.Context, name string) (*models.Role, error) {
	var role models.Role
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

// Create persists a new role row.
func (r *Repository) Create(ctx context.Context, role *models.Role) error {
	if role.ID == uuid.Nil {
		role.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(role).Error
}

// Update saves the provided role.
func (r *Repository) Update(ctx context.Context, role *models.Role) error {
	return r.db.WithContext(ctx).Save(role).Error
}

// CountUsers reports how many users reference the role.
func (r *Repository) CountUsers(ctx context.Context, roleID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("role_id = ?", roleID).
		Count(&count).Error
	return count, err
}

// DeleteGuarded removes a role unless any user still references it. The count
// and the delete run in one transaction so a concurrent user update cannot
// slip between them.
func (r *Repository) DeleteGuarded(ctx context.Context, roleID uuid.UUID, guard func(usersCount int64) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("role_id = ?", roleID).Count(&count).Error; err != nil {
			return err
		}
		if err := guard(count); err != nil {
			return err
		}
		return tx.Where("id = ?", roleID).Delete(&models.Role{}).Error
	})
}
