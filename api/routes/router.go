package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cfl-legal/chambers-backend/api/controllers"
	"github.com/cfl-legal/chambers-backend/api/middleware"
	"github.com/cfl-legal/chambers-backend/internal/authn"
	"github.com/cfl-legal/chambers-backend/internal/cases"
	"github.com/cfl-legal/chambers-backend/internal/documents"
	"github.com/cfl-legal/chambers-backend/internal/folders"
	"github.com/cfl-legal/chambers-backend/internal/practiceareas"
	"github.com/cfl-legal/chambers-backend/internal/roles"
	"github.com/cfl-legal/chambers-backend/internal/settings"
	"github.com/cfl-legal/chambers-backend/internal/users"
	"github.com/cfl-legal/chambers-backend/pkg/config"
	"github.com/cfl-legal/chambers-backend/pkg/db"
	"github.com/cfl-legal/chambers-backend/pkg/logger"
	"github.com/cfl-legal/chambers-backend/pkg/metrics"
	"github.com/cfl-legal/chambers-backend/pkg/redis"
)

// Services bundles the wired service layer handed to the router.
type Services struct {
	Auth          authn.Service
	Users         users.Service
	Roles         roles.Service
	PracticeAreas practiceareas.Service
	Cases         cases.Service
	Folders       folders.Service
	Documents     documents.Service
	Settings      settings.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	httpMetrics *metrics.HTTPMetrics,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)

	// keep typed nils out of the interface values handed to middleware
	var redisP redis.Pinger
	loginLimiter := func(next http.Handler) http.Handler { return next }
	if redisClient != nil {
		redisP = redisClient
		loginLimiter = middleware.AuthRateLimit(loginPolicy, redisClient, logg)
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbP, redisP, logg))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.With(loginLimiter).
			Post("/auth/login", controllers.AuthLogin(svcs.Auth, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))

			r.Get("/auth/me", controllers.AuthMe(svcs.Auth, logg))
			r.Patch("/auth/me", controllers.AuthUpdateMe(svcs.Auth, logg))

			r.Route("/cases", func(r chi.Router) {
				r.Get("/", controllers.ListCases(svcs.Cases, logg))
				r.Post("/", controllers.CreateCase(svcs.Cases, logg))
				r.Get("/{caseID}", controllers.GetCase(svcs.Cases, logg))
				r.Patch("/{caseID}", controllers.UpdateCase(svcs.Cases, logg))
				r.Delete("/{caseID}", controllers.DeleteCase(svcs.Cases, logg))
				r.Get("/{caseID}/users", controllers.ListCaseAssignments(svcs.Cases, logg))
				r.Post("/{caseID}/assign", controllers.AssignUserToCase(svcs.Cases, logg))
				r.Delete("/{caseID}/users/{userID}", controllers.UnassignUserFromCase(svcs.Cases, logg))
				r.Get("/{caseID}/documents", controllers.ListCaseDocuments(svcs.Documents, logg))
			})

			r.Route("/folders", func(r chi.Router) {
				r.Get("/", controllers.ListFolders(svcs.Folders, logg))
				r.Post("/", controllers.CreateFolder(svcs.Folders, logg))
				r.Get("/{folderID}", controllers.GetFolder(svcs.Folders, logg))
				r.Patch("/{folderID}", controllers.UpdateFolder(svcs.Folders, logg))
				r.Delete("/{folderID}", controllers.DeleteFolder(svcs.Folders, logg))
				r.Get("/{folderID}/documents", controllers.ListFolderDocuments(svcs.Documents, logg))
			})

			r.Route("/documents", func(r chi.Router) {
				r.With(middleware.RequireAdmin(logg)).
					Get("/", controllers.ListDocuments(svcs.Documents, logg))
				r.Post("/", controllers.UploadDocument(svcs.Documents, cfg.Uploads, logg))
				r.Get("/{documentID}", controllers.GetDocument(svcs.Documents, logg))
				r.Get("/{documentID}/download", controllers.DownloadDocument(svcs.Documents, logg))
				r.With(middleware.RequireAdmin(logg)).
					Delete("/{documentID}", controllers.DeleteDocument(svcs.Documents, logg))
			})

			r.Route("/practice-areas", func(r chi.Router) {
				r.Get("/", controllers.ListPracticeAreas(svcs.PracticeAreas, logg))
				r.Get("/{practiceAreaID}", controllers.GetPracticeArea(svcs.PracticeAreas, logg))
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAdmin(logg))
					r.Post("/", controllers.CreatePracticeArea(svcs.PracticeAreas, logg))
					r.Patch("/{practiceAreaID}", controllers.UpdatePracticeArea(svcs.PracticeAreas, logg))
					r.Delete("/{practiceAreaID}", controllers.DeletePracticeArea(svcs.PracticeAreas, logg))
				})
			})

			r.Route("/users", func(r chi.Router) {
				// the documents listing is self-or-admin; the service gates it
				r.Get("/{userID}/documents", controllers.ListUserDocuments(svcs.Documents, logg))
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAdmin(logg))
					r.Get("/", controllers.ListUsers(svcs.Users, logg))
					r.Post("/", controllers.CreateUser(svcs.Users, logg))
					r.Get("/{userID}", controllers.GetUser(svcs.Users, logg))
					r.Patch("/{userID}", controllers.UpdateUser(svcs.Users, logg))
					r.Delete("/{userID}", controllers.DeleteUser(svcs.Users, logg))
					r.Get("/{userID}/practice-areas", controllers.ListUserPracticeAreas(svcs.PracticeAreas, logg))
					r.Post("/{userID}/practice-areas", controllers.TagUserPracticeArea(svcs.PracticeAreas, logg))
					r.Delete("/{userID}/practice-areas/{practiceAreaID}", controllers.UntagUserPracticeArea(svcs.PracticeAreas, logg))
				})
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin(logg))

				r.Route("/roles", func(r chi.Router) {
					r.Get("/", controllers.ListRoles(svcs.Roles, logg))
					r.Post("/", controllers.CreateRole(svcs.Roles, logg))
					r.Get("/{roleID}", controllers.GetRole(svcs.Roles, logg))
					r.Patch("/{roleID}", controllers.UpdateRole(svcs.Roles, logg))
					r.Delete("/{roleID}", controllers.DeleteRole(svcs.Roles, logg))
				})

				r.Route("/settings", func(r chi.Router) {
					r.Get("/", controllers.GetSettings(svcs.Settings, logg))
					r.Patch("/", controllers.UpdateSettings(svcs.Settings, logg))
				})
			})
		})
	})

	return r
}
