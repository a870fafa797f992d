package users

import (
	"time"

	"github.com/cfl-legal/chambers-backend/pkg/db/models"
	"github.com/google/uuid"
)

// UserDTO is the outward-facing user shape. The password hash never leaves
// the service layer.
type UserDTO struct {
	ID            uuid.UUID  `json:"id"`
	Email         string     `json:"email"`
	Name          string     `json:"name"`
	RoleID        *uuid.UUID `json:"role_id"`
	Role          *string    `json:"role"`
	IsActive      bool       `json:"is_active"`
	PracticeAreas []string   `json:"practice_areas,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func toDTO(user *models.User, roleName *string) *UserDTO {
	return &UserDTO{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		RoleID:    user.RoleID,
		Role:      roleName,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
	}
}
