package cases

import (
	"context"
	"fmt"
	"time"

	"github.com/cfl-legal/chambers-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CaseNumberPrefix is the firm-wide prefix stamped on every case number.
const CaseNumberPrefix = "CFL"

// Repository handles case and assignment persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to case operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateWithNumber persists a case after stamping it with the next sequential
// case number for the given year. The count and the insert share one
// transaction so two concurrent creates cannot mint the same number.
func (r *Repository) CreateWithNumber(ctx context.Context, kase *models.Case, now time.Time) error {
	if kase.ID == uuid.Nil {
		kase.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Case{}).Count(&count).Error; err != nil {
			return err
		}
		kase.CaseNumber = fmt.Sprintf("%s-%d-%04d", CaseNumberPrefix, now.Year(), count+1)
		return tx.Create(kase).Error
	})
}

// FindByID loads a case by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Case, error) {
	var kase models.Case
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&kase).Error; err != nil {
		return nil, err
	}
	return &kase, nil
}

// ListAll returns every case, most recently updated first.
func (r *Repository) ListAll(ctx context.Context) ([]models.Case, error) {
	var cases []models.Case
	if err := r.db.WithContext(ctx).Order("updated_at desc").Find(&cases).Error; err != nil {
		return nil, err
	}
	return cases, nil
}

// ListAccessible returns cases the user created or is assigned to.
func (r *Repository) ListAccessible(ctx context.Context, userID uuid.UUID) ([]models.Case, error) {
	var cases []models.Case
	err := r.db.WithContext(ctx).
		Where("created_by_id = ? OR id IN (?)", userID,
			r.db.Model(&models.CaseAssignment{}).Select("case_id").Where("user_id = ?", userID)).
		Order("updated_at desc").
		Find(&cases).Error
	if err != nil {
		return nil, err
	}
	return cases, nil
}

// Update saves the provided case.
func (r *Repository) Update(ctx context.Context, kase *models.Case) error {
	return r.db.WithContext(ctx).Save(kase).Error
}

// DependentCounts summarizes rows that block a case delete.
type DependentCounts struct {
	Documents   int64
	Assignments int64
}

// DeleteGuarded removes a case unless dependent rows exist. Counts and delete
// run in one transaction.
func (r *Repository) DeleteGuarded(ctx context.Context, caseID uuid.UUID, guard func(counts DependentCounts) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var counts DependentCounts
		if err := tx.Model(&models.Document{}).Where("case_id = ?", caseID).Count(&counts.Documents).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.CaseAssignment{}).Where("case_id = ?", caseID).Count(&counts.Assignments).Error; err != nil {
			return err
		}
		if err := guard(counts); err != nil {
			return err
		}
		return tx.Where("id = ?", caseID).Delete(&models.Case{}).Error
	})
}

// IsAssigned reports whether the user has an assignment on the case.
func (r *Repository) IsAssigned(ctx context.Context, caseID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CaseAssignment{}).
		Where("case_id = ? AND user_id = ?", caseID, userID).
		Count(&count).Error
	return count > 0, err
}

// ListAssignments returns all assignments on a case, oldest first.
func (r *Repository) ListAssignments(ctx context.Context, caseID uuid.UUID) ([]models.CaseAssignment, error) {
	var assignments []models.CaseAssignment
	err := r.db.WithContext(ctx).
		Where("case_id = ?", caseID).
		Order("assigned_at asc").
		Find(&assignments).Error
	if err != nil {
		return nil, err
	}
	return assignments, nil
}

// Assign records a case assignment. Duplicate pairs are allowed; callers that
// care about repeats must check IsAssigned first.
func (r *Repository) Assign(ctx context.Context, caseID, userID uuid.UUID) (*models.CaseAssignment, error) {
	assignment := &models.CaseAssignment{ID: uuid.New(), CaseID: caseID, UserID: userID}
	if err := r.db.WithContext(ctx).Create(assignment).Error; err != nil {
		return nil, err
	}
	return assignment, nil
}

// Unassign removes every assignment linking the user to the case.
func (r *Repository) Unassign(ctx context.Context, caseID, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("case_id = ? AND user_id = ?", caseID, userID).
		Delete(&models.CaseAssignment{}).Error
}
