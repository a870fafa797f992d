package settings

import (
	"context"
	"testing"

	"github.com/cfl-legal/chambers-backend/pkg/db/models"
	pkgerrors "github.com/cfl-legal/chambers-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type stubSettingRepo struct {
	setting *models.Setting
	created *models.Setting
	updated *models.Setting
}

func (s *stubSettingRepo) First(ctx context.Context) (*models.Setting, error) {
	if s.setting == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.setting, nil
}

func (s *stubSettingRepo) Create(ctx context.Context, setting *models.Setting) error {
	setting.ID = uuid.New()
	s.created = setting
	s.setting = setting
	return nil
}

func (s *stubSettingRepo) Update(ctx context.Context, setting *models.Setting) error {
	s.updated = setting
	return nil
}

func TestGetCreatesDefaultsOnFirstRead(t *testing.T) {
	repo := &stubSettingRepo{}
	svc, _ := NewService(repo)

	setting, err := svc.Get(context.Background())
	if err != nil {
		t.Fatalf("get settings: %v", err)
	}
	if setting.FirmName != "CFL Legal" || setting.Location != "Kilimani, Nairobi" {
		t.Fatalf("unexpected defaults %q / %q", setting.FirmName, setting.Location)
	}
	if repo.created == nil {
		t.Fatal("expected row created lazily")
	}

	// Second read returns the same row without creating another.
	repo.created = nil
	again, err := svc.Get(context.Background())
	if err != nil {
		t.Fatalf("get settings again: %v", err)
	}
	if repo.created != nil {
		t.Fatal("settings must be a singleton")
	}
	if again.ID != setting.ID {
		t.Fatal("expected same row on repeat read")
	}
}

func TestUpdateCreatesRowFromPayloadIfAbsent(t *testing.T) {
	repo := &stubSettingRepo{}
	svc, _ := NewService(repo)

	firm := " Chege & Partners "
	phone := " +254 20 1234567 "
	setting, err := svc.Update(context.Background(), UpdateSettingsInput{FirmName: &firm, Phone: &phone})
	if err != nil {
		t.Fatalf("update settings: %v", err)
	}
	if setting.FirmName != "Chege & Partners" {
		t.Fatalf("expected firm name from payload, got %q", setting.FirmName)
	}
	if setting.Phone != "+254 20 1234567" {
		t.Fatalf("expected trimmed phone, got %q", setting.Phone)
	}
	if setting.Location != "" {
		t.Fatalf("expected absent fields left empty, got %q", setting.Location)
	}
	if repo.created == nil {
		t.Fatal("expected row created from payload")
	}
	if repo.updated != nil {
		t.Fatal("expected create, not update")
	}
}

func TestUpdateOnAbsentRowRequiresFirmName(t *testing.T) {
	repo := &stubSettingRepo{}
	svc, _ := NewService(repo)

	phone := "+254 20 1234567"
	_, err := svc.Update(context.Background(), UpdateSettingsInput{Phone: &phone})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error without firm_name, got %v", err)
	}
	if repo.created != nil {
		t.Fatal("expected no row created")
	}
}

func TestUpdateAppliesPartialFields(t *testing.T) {
	repo := &stubSettingRepo{setting: &models.Setting{ID: uuid.New(), FirmName: "CFL Legal", Location: "Kilimani, Nairobi"}}
	svc, _ := NewService(repo)

	email := "Info@CFLLegal.co.ke"
	setting, err := svc.Update(context.Background(), UpdateSettingsInput{Email: &email})
	if err != nil {
		t.Fatalf("update settings: %v", err)
	}
	if setting.Email != "info@cfllegal.co.ke" {
		t.Fatalf("expected lowercased email, got %q", setting.Email)
	}
	if setting.Location != "Kilimani, Nairobi" {
		t.Fatalf("expected location untouched, got %q", setting.Location)
	}
}
