package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cfl-legal/chambers-backend/internal/authn"
	"github.com/cfl-legal/chambers-backend/internal/cases"
	"github.com/cfl-legal/chambers-backend/internal/documents"
	"github.com/cfl-legal/chambers-backend/internal/folders"
	"github.com/cfl-legal/chambers-backend/internal/practiceareas"
	"github.com/cfl-legal/chambers-backend/internal/roles"
	"github.com/cfl-legal/chambers-backend/internal/seed"
	"github.com/cfl-legal/chambers-backend/internal/settings"
	"github.com/cfl-legal/chambers-backend/internal/users"
	"github.com/cfl-legal/chambers-backend/pkg/config"
	"github.com/cfl-legal/chambers-backend/pkg/logger"
	"github.com/cfl-legal/chambers-backend/pkg/storage/local"
	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const fullSchema = `
CREATE TABLE IF NOT EXISTS roles (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  description TEXT,
  created_at DATETIME
);
CREATE TABLE IF NOT EXISTS practice_areas (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  description TEXT,
  created_at DATETIME
);
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  name TEXT NOT NULL,
  role_id TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME
);
CREATE TABLE IF NOT EXISTS user_practice_areas (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  practice_area_id TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS cases (
  id TEXT PRIMARY KEY,
  case_number TEXT NOT NULL UNIQUE,
  title TEXT NOT NULL,
  description TEXT,
  client_name TEXT,
  practice_area_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  created_by_id TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE IF NOT EXISTS case_assignments (
  id TEXT PRIMARY KEY,
  case_id TEXT NOT NULL,
  user_id TEXT NOT NULL,
  assigned_at DATETIME
);
CREATE TABLE IF NOT EXISTS folders (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT,
  created_by_id TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE IF NOT EXISTS documents (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  type TEXT NOT NULL,
  mime_type TEXT,
  size TEXT NOT NULL,
  case_id TEXT,
  folder_id TEXT,
  uploaded_by_id TEXT NOT NULL,
  version TEXT NOT NULL DEFAULT '1',
  file_path TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE IF NOT EXISTS settings (
  id TEXT PRIMARY KEY,
  firm_name TEXT NOT NULL,
  location TEXT,
  address TEXT,
  phone TEXT,
  email TEXT,
  updated_at DATETIME
);`

type apiClient struct {
	t      *testing.T
	router http.Handler
	token  string
}

func (c *apiClient) do(method, path string, payload any) (*httptest.ResponseRecorder, map[string]any) {
	c.t.Helper()
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			c.t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	rec := httptest.NewRecorder()
	c.router.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		_ = json.Unmarshal(rec.Body.Bytes(), &decoded)
	}
	return rec, decoded
}

func (c *apiClient) expect(method, path string, payload any, status int) map[string]any {
	c.t.Helper()
	rec, decoded := c.do(method, path, payload)
	if rec.Code != status {
		c.t.Fatalf("%s %s: expected %d got %d: %s", method, path, status, rec.Code, rec.Body.String())
	}
	return decoded
}

func dataField(t *testing.T, decoded map[string]any, key string) string {
	t.Helper()
	data, ok := decoded["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected data envelope, got %v", decoded)
	}
	value, _ := data[key].(string)
	return value
}

func newFullStack(t *testing.T) *apiClient {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := gdb.Exec(fullSchema).Error; err != nil {
		t.Fatalf("create schema: %v", err)
	}

	passwordCfg := config.PasswordConfig{
		ArgonMemoryKB:    1024,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
	cfg := testConfig()
	cfg.Password = passwordCfg

	logg := logger.New(logger.Options{Level: zerolog.ErrorLevel, Output: io.Discard})

	userRepo := users.NewRepository(gdb)
	roleRepo := roles.NewRepository(gdb)
	areaRepo := practiceareas.NewRepository(gdb)
	caseRepo := cases.NewRepository(gdb)
	folderRepo := folders.NewRepository(gdb)
	documentRepo := documents.NewRepository(gdb)
	settingRepo := settings.NewRepository(gdb)

	blobs, err := local.New(t.TempDir())
	if err != nil {
		t.Fatalf("blob store: %v", err)
	}

	authService, err := authn.NewService(userRepo, roleRepo, areaRepo, cfg.JWT, passwordCfg)
	if err != nil {
		t.Fatalf("auth service: %v", err)
	}
	userService, err := users.NewService(userRepo, roleRepo, passwordCfg)
	if err != nil {
		t.Fatalf("users service: %v", err)
	}
	roleService, err := roles.NewService(roleRepo)
	if err != nil {
		t.Fatalf("roles service: %v", err)
	}
	areaService, err := practiceareas.NewService(areaRepo, userRepo)
	if err != nil {
		t.Fatalf("practice areas service: %v", err)
	}
	caseService, err := cases.NewService(caseRepo, areaRepo, userRepo)
	if err != nil {
		t.Fatalf("cases service: %v", err)
	}
	folderService, err := folders.NewService(folderRepo)
	if err != nil {
		t.Fatalf("folders service: %v", err)
	}
	documentService, err := documents.NewService(documentRepo, caseRepo, folderRepo, blobs)
	if err != nil {
		t.Fatalf("documents service: %v", err)
	}
	settingService, err := settings.NewService(settingRepo)
	if err != nil {
		t.Fatalf("settings service: %v", err)
	}

	seeder, err := seed.New(roleRepo, areaRepo, userRepo, passwordCfg, logg)
	if err != nil {
		t.Fatalf("seeder: %v", err)
	}
	if err := seeder.Run(context.Background()); err != nil {
		t.Fatalf("seed: %v", err)
	}

	router := NewRouter(cfg, logg, stubPinger{}, nil, nil, Services{
		Auth:          authService,
		Users:         userService,
		Roles:         roleService,
		PracticeAreas: areaService,
		Cases:         caseService,
		Folders:       folderService,
		Documents:     documentService,
		Settings:      settingService,
	})

	return &apiClient{t: t, router: router}
}

// Full admin workflow: provision taxonomy and a user, open a case with an
// auto-generated number, manage its assignment, and observe the guard on
// delete while an assignment still exists.
func TestCaseLifecycleEndToEnd(t *testing.T) {
	admin := newFullStack(t)

	login := admin.expect(http.MethodPost, "/api/auth/login", map[string]string{
		"email":    seed.AdminEmail,
		"password": seed.AdminPassword,
	}, http.StatusOK)
	admin.token = dataField(t, login, "token")
	if admin.token == "" {
		t.Fatal("expected a token from login")
	}

	role := admin.expect(http.MethodPost, "/api/roles", map[string]string{
		"name":        "associate",
		"description": "Associate attorney",
	}, http.StatusCreated)
	roleID := dataField(t, role, "id")

	area := admin.expect(http.MethodPost, "/api/practice-areas", map[string]string{
		"name": "Maritime Law",
	}, http.StatusCreated)
	areaID := dataField(t, area, "id")

	user := admin.expect(http.MethodPost, "/api/users", map[string]any{
		"email":    "njeri@cfllegal.co.ke",
		"password": "associate-pass-1",
		"name":     "Njeri Kamau",
		"role_id":  roleID,
	}, http.StatusCreated)
	userID := dataField(t, user, "id")

	kase := admin.expect(http.MethodPost, "/api/cases", map[string]any{
		"title":            "MV Harmony salvage claim",
		"practice_area_id": areaID,
	}, http.StatusCreated)
	caseID := dataField(t, kase, "id")
	caseNumber := dataField(t, kase, "case_number")
	if caseNumber == "" || caseNumber[:4] != "CFL-" {
		t.Fatalf("expected CFL case number, got %q", caseNumber)
	}

	admin.expect(http.MethodPost, "/api/cases/"+caseID+"/assign", map[string]string{
		"user_id": userID,
	}, http.StatusCreated)

	// The associate can read the case they are assigned to but not change it.
	associate := &apiClient{t: t, router: admin.router}
	assocLogin := associate.expect(http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "njeri@cfllegal.co.ke",
		"password": "associate-pass-1",
	}, http.StatusOK)
	associate.token = dataField(t, assocLogin, "token")

	associate.expect(http.MethodGet, "/api/cases/"+caseID, nil, http.StatusOK)
	rec, _ := associate.do(http.MethodPatch, "/api/cases/"+caseID, map[string]string{"title": "renamed"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for assigned non-creator update, got %d", rec.Code)
	}

	completed := "completed"
	admin.expect(http.MethodPatch, "/api/cases/"+caseID, map[string]string{"status": completed}, http.StatusOK)

	rec, decoded := admin.do(http.MethodDelete, "/api/cases/"+caseID, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 while assignment exists, got %d", rec.Code)
	}
	if errObj, ok := decoded["error"].(map[string]any); !ok || errObj["message"] != "Cannot delete case with existing assignments" {
		t.Fatalf("expected assignment guard message, got %v", decoded)
	}

	admin.expect(http.MethodDelete, "/api/cases/"+caseID+"/users/"+userID, nil, http.StatusNoContent)
	admin.expect(http.MethodDelete, "/api/cases/"+caseID, nil, http.StatusNoContent)
}

func TestCaseNumbersAreSequential(t *testing.T) {
	admin := newFullStack(t)

	login := admin.expect(http.MethodPost, "/api/auth/login", map[string]string{
		"email":    seed.AdminEmail,
		"password": seed.AdminPassword,
	}, http.StatusOK)
	admin.token = dataField(t, login, "token")

	area := admin.expect(http.MethodPost, "/api/practice-areas", map[string]string{
		"name": "Tax Law",
	}, http.StatusCreated)
	areaID := dataField(t, area, "id")

	var numbers []string
	for i := 0; i < 3; i++ {
		kase := admin.expect(http.MethodPost, "/api/cases", map[string]any{
			"title":            fmt.Sprintf("Tax appeal %d", i+1),
			"practice_area_id": areaID,
		}, http.StatusCreated)
		numbers = append(numbers, dataField(t, kase, "case_number"))
	}
	for i, number := range numbers {
		suffix := fmt.Sprintf("%04d", i+1)
		if number[len(number)-4:] != suffix {
			t.Fatalf("case %d: expected suffix %s, got %s", i, suffix, number)
		}
	}
}

func TestSettingsLazyCreateSingleton(t *testing.T) {
	admin := newFullStack(t)

	login := admin.expect(http.MethodPost, "/api/auth/login", map[string]string{
		"email":    seed.AdminEmail,
		"password": seed.AdminPassword,
	}, http.StatusOK)
	admin.token = dataField(t, login, "token")

	first := admin.expect(http.MethodGet, "/api/settings", nil, http.StatusOK)
	if got := dataField(t, first, "firm_name"); got != settings.DefaultFirmName {
		t.Fatalf("expected default firm name, got %q", got)
	}
	firstID := dataField(t, first, "id")

	second := admin.expect(http.MethodGet, "/api/settings", nil, http.StatusOK)
	if dataField(t, second, "id") != firstID {
		t.Fatal("expected the same settings row on a second read")
	}
}
