package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cfl-legal/chambers-backend/internal/authn"
	"github.com/cfl-legal/chambers-backend/internal/cases"
	"github.com/cfl-legal/chambers-backend/internal/documents"
	"github.com/cfl-legal/chambers-backend/internal/folders"
	"github.com/cfl-legal/chambers-backend/internal/policy"
	"github.com/cfl-legal/chambers-backend/internal/practiceareas"
	"github.com/cfl-legal/chambers-backend/internal/roles"
	"github.com/cfl-legal/chambers-backend/internal/settings"
	"github.com/cfl-legal/chambers-backend/internal/users"
	pkgauth "github.com/cfl-legal/chambers-backend/pkg/auth"
	"github.com/cfl-legal/chambers-backend/pkg/config"
	"github.com/cfl-legal/chambers-backend/pkg/db/models"
	"github.com/cfl-legal/chambers-backend/pkg/enums"
	"github.com/cfl-legal/chambers-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubAuthService struct{}

func (stubAuthService) Login(context.Context, authn.LoginInput) (*authn.LoginResult, error) {
	return &authn.LoginResult{Token: "stub"}, nil
}

func (stubAuthService) Me(_ context.Context, id uuid.UUID) (*authn.Profile, error) {
	return &authn.Profile{ID: id, Email: "me@cfllegal.co.ke", IsActive: true}, nil
}

func (stubAuthService) UpdateMe(_ context.Context, id uuid.UUID, _ authn.UpdateProfileInput) (*authn.Profile, error) {
	return &authn.Profile{ID: id}, nil
}

type stubUsersService struct{}

func (stubUsersService) List(context.Context) ([]users.UserDTO, error) { return nil, nil }
func (stubUsersService) Get(context.Context, uuid.UUID) (*users.UserDTO, error) {
	return &users.UserDTO{}, nil
}
func (stubUsersService) Create(context.Context, users.CreateUserInput) (*users.UserDTO, error) {
	return &users.UserDTO{}, nil
}
func (stubUsersService) Update(context.Context, uuid.UUID, users.UpdateUserInput) (*users.UserDTO, error) {
	return &users.UserDTO{}, nil
}
func (stubUsersService) Delete(context.Context, uuid.UUID) error { return nil }

type stubRolesService struct{}

func (stubRolesService) List(context.Context) ([]models.Role, error) { return nil, nil }
func (stubRolesService) Get(context.Context, uuid.UUID) (*models.Role, error) {
	return &models.Role{}, nil
}
func (stubRolesService) Create(context.Context, roles.CreateRoleInput) (*models.Role, error) {
	return &models.Role{}, nil
}
func (stubRolesService) Update(context.Context, uuid.UUID, roles.UpdateRoleInput) (*models.Role, error) {
	return &models.Role{}, nil
}
func (stubRolesService) Delete(context.Context, uuid.UUID) error { return nil }

type stubPracticeAreasService struct{}

func (stubPracticeAreasService) List(context.Context) ([]models.PracticeArea, error) {
	return nil, nil
}
func (stubPracticeAreasService) Get(context.Context, uuid.UUID) (*models.PracticeArea, error) {
	return &models.PracticeArea{}, nil
}
func (stubPracticeAreasService) Create(context.Context, practiceareas.CreatePracticeAreaInput) (*models.PracticeArea, error) {
	return &models.PracticeArea{}, nil
}
func (stubPracticeAreasService) Update(context.Context, uuid.UUID, practiceareas.UpdatePracticeAreaInput) (*models.PracticeArea, error) {
	return &models.PracticeArea{}, nil
}
func (stubPracticeAreasService) Delete(context.Context, uuid.UUID) error { return nil }
func (stubPracticeAreasService) ListForUser(context.Context, uuid.UUID) ([]models.PracticeArea, error) {
	return nil, nil
}
func (stubPracticeAreasService) TagUser(context.Context, uuid.UUID, uuid.UUID) error   { return nil }
func (stubPracticeAreasService) UntagUser(context.Context, uuid.UUID, uuid.UUID) error { return nil }

type stubCasesService struct{}

func (stubCasesService) List(context.Context, policy.Actor) ([]models.Case, error) { return nil, nil }
func (stubCasesService) Get(context.Context, policy.Actor, uuid.UUID) (*models.Case, error) {
	return &models.Case{}, nil
}
func (stubCasesService) Create(context.Context, policy.Actor, cases.CreateCaseInput) (*models.Case, error) {
	return &models.Case{}, nil
}
func (stubCasesService) Update(context.Context, policy.Actor, uuid.UUID, cases.UpdateCaseInput) (*models.Case, error) {
	return &models.Case{}, nil
}
func (stubCasesService) Delete(context.Context, policy.Actor, uuid.UUID) error { return nil }
func (stubCasesService) ListAssignments(context.Context, policy.Actor, uuid.UUID) ([]models.CaseAssignment, error) {
	return nil, nil
}
func (stubCasesService) Assign(context.Context, policy.Actor, uuid.UUID, uuid.UUID) (*models.CaseAssignment, error) {
	return &models.CaseAssignment{}, nil
}
func (stubCasesService) Unassign(context.Context, policy.Actor, uuid.UUID, uuid.UUID) error {
	return nil
}

type stubFoldersService struct{}

func (stubFoldersService) List(context.Context, policy.Actor) ([]models.Folder, error) {
	return nil, nil
}
func (stubFoldersService) Get(context.Context, policy.Actor, uuid.UUID) (*models.Folder, error) {
	return &models.Folder{}, nil
}
func (stubFoldersService) Create(context.Context, policy.Actor, folders.CreateFolderInput) (*models.Folder, error) {
	return &models.Folder{}, nil
}
func (stubFoldersService) Update(context.Context, policy.Actor, uuid.UUID, folders.UpdateFolderInput) (*models.Folder, error) {
	return &models.Folder{}, nil
}
func (stubFoldersService) Delete(context.Context, policy.Actor, uuid.UUID) error { return nil }

type stubDocumentsService struct{}

func (stubDocumentsService) ListAll(context.Context, policy.Actor) ([]models.Document, error) {
	return nil, nil
}
func (stubDocumentsService) ListByCase(context.Context, policy.Actor, uuid.UUID) ([]models.Document, error) {
	return nil, nil
}
func (stubDocumentsService) ListByFolder(context.Context, policy.Actor, uuid.UUID) ([]models.Document, error) {
	return nil, nil
}
func (stubDocumentsService) ListForUser(context.Context, policy.Actor, uuid.UUID) ([]models.Document, error) {
	return nil, nil
}
func (stubDocumentsService) Get(context.Context, policy.Actor, uuid.UUID) (*models.Document, error) {
	return &models.Document{}, nil
}
func (stubDocumentsService) Upload(context.Context, policy.Actor, documents.UploadInput) (*models.Document, error) {
	return &models.Document{}, nil
}
func (stubDocumentsService) Download(context.Context, policy.Actor, uuid.UUID) (*models.Document, io.ReadCloser, error) {
	return &models.Document{Name: "brief.pdf"}, io.NopCloser(strings.NewReader("data")), nil
}
func (stubDocumentsService) Delete(context.Context, policy.Actor, uuid.UUID) error { return nil }

type stubSettingsService struct{}

func (stubSettingsService) Get(context.Context) (*models.Setting, error) {
	return &models.Setting{FirmName: "CFL Legal"}, nil
}
func (stubSettingsService) Update(context.Context, settings.UpdateSettingsInput) (*models.Setting, error) {
	return &models.Setting{}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test"},
		JWT: config.JWTConfig{
			Secret:            "router-test-secret",
			Issuer:            "chambers-test",
			ExpirationMinutes: 60,
		},
		Uploads: config.UploadsConfig{MaxUploadMB: 10},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{Level: zerolog.ErrorLevel, Output: io.Discard})
	return NewRouter(cfg, logg, stubPinger{}, nil, nil, Services{
		Auth:          stubAuthService{},
		Users:         stubUsersService{},
		Roles:         stubRolesService{},
		PracticeAreas: stubPracticeAreasService{},
		Cases:         stubCasesService{},
		Folders:       stubFoldersService{},
		Documents:     stubDocumentsService{},
		Settings:      stubSettingsService{},
	})
}

func mintToken(t *testing.T, cfg *config.Config, role string) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), uuid.New(), role)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestProtectedRoutesRejectMissingToken(t *testing.T) {
	router := newTestRouter(testConfig())

	for _, path := range []string{"/api/auth/me", "/api/cases", "/api/folders", "/api/documents"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401 without token, got %d", path, resp.Code)
		}
	}
}

func TestProtectedRoutesRejectGarbageToken(t *testing.T) {
	router := newTestRouter(testConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/cases", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for invalid token, got %d", resp.Code)
	}
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	token := mintToken(t, cfg, "lawyer")

	paths := []string{"/api/users", "/api/roles", "/api/settings", "/api/documents"}
	for _, path := range paths {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusForbidden {
			t.Fatalf("%s: expected 403 for non-admin, got %d", path, resp.Code)
		}
	}
}

func TestAdminRoutesAllowAdminRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	token := mintToken(t, cfg, enums.RoleAdmin)

	for _, path := range []string{"/api/users", "/api/roles", "/api/settings", "/api/documents"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 for admin, got %d", path, resp.Code)
		}
	}
}

func TestLoginIsPublic(t *testing.T) {
	router := newTestRouter(testConfig())

	body := strings.NewReader(`{"email":"admin@cfllegal.co.ke","password":"admin123"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", body)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 from public login, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `"token"`) {
		t.Fatalf("expected token in login response, got %s", resp.Body.String())
	}
}

func TestDocumentDeleteIsAdminOnly(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	target := "/api/documents/" + uuid.NewString()

	req := httptest.NewRequest(http.MethodDelete, target, nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, cfg, "paralegal"))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin delete, got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodDelete, target, nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, cfg, enums.RoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for admin delete, got %d", resp.Code)
	}
}

func TestHealthEndpointsArePublic(t *testing.T) {
	router := newTestRouter(testConfig())

	for _, path := range []string{"/health/live", "/health/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, resp.Code)
		}
	}
}

func TestDownloadSetsAttachmentHeaders(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/documents/"+uuid.NewString()+"/download", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, cfg, "lawyer"))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if got := resp.Header().Get("Content-Disposition"); !strings.Contains(got, "brief.pdf") {
		t.Fatalf("expected attachment filename in header, got %q", got)
	}
	if resp.Body.String() != "data" {
		t.Fatalf("expected streamed body, got %q", resp.Body.String())
	}
}
