// internal/app/bootstrap/routes.go
package bootstrap

import (
	"context"
	"net/http"
	"strings"

	auditlogfeature "github.com/dalemusser/bilanhub/internal/app/features/auditlog"
	bilansfeature "github.com/dalemusser/bilanhub/internal/app/features/bilans"
	documentsfeature "github.com/dalemusser/bilanhub/internal/app/features/documents"
	healthfeature "github.com/dalemusser/bilanhub/internal/app/features/health"
	jobsearchfeature "github.com/dalemusser/bilanhub/internal/app/features/jobsearch"
	loginfeature "github.com/dalemusser/bilanhub/internal/app/features/login"
	messagesfeature "github.com/dalemusser/bilanhub/internal/app/features/messages"
	organizationsfeature "github.com/dalemusser/bilanhub/internal/app/features/organizations"
	qualiopifeature "github.com/dalemusser/bilanhub/internal/app/features/qualiopi"
	recommendationsfeature "github.com/dalemusser/bilanhub/internal/app/features/recommendations"
	reportsfeature "github.com/dalemusser/bilanhub/internal/app/features/reports"
	sessionsfeature "github.com/dalemusser/bilanhub/internal/app/features/sessions"
	skillsfeature "github.com/dalemusser/bilanhub/internal/app/features/skills"
	surveysfeature "github.com/dalemusser/bilanhub/internal/app/features/surveys"
	usersfeature "github.com/dalemusser/bilanhub/internal/app/features/users"
	"github.com/dalemusser/bilanhub/internal/app/store"
	userstore "github.com/dalemusser/bilanhub/internal/app/store/users"
	"github.com/dalemusser/bilanhub/internal/app/system/auditlog"
	"github.com/dalemusser/bilanhub/internal/app/system/auth"
	"github.com/dalemusser/bilanhub/internal/app/system/metrics"
	"github.com/dalemusser/bilanhub/internal/app/system/requestid"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Version is reported by /health. It is set at build time with -ldflags.
var Version = "dev"

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}
	if appCfg.JWTSecret != "" {
		v, err := auth.NewTokenVerifier(appCfg.JWTSecret, appCfg.JWTIssuer)
		if err != nil {
			return nil, err
		}
		sessionMgr.SetTokenVerifier(v)
	}

	m := metrics.New()
	svc, err := BuildServices(context.Background(), appCfg, m, logger)
	if err != nil {
		logger.Error("service init failed", zap.Error(err))
		return nil, err
	}

	audit := auditlog.New(deps.Stores.Audit, logger, auditlog.Config{
		Auth:     appCfg.AuditLogAuth,
		Admin:    appCfg.AuditLogAdmin,
		Workflow: appCfg.AuditLogWorkflow,
	})

	r := NewRouter(deps.Stores, sessionMgr, audit, svc, deps.MongoClient, logger)
	if svc.LocalDir != "" {
		prefix := "/" + strings.Trim(appCfg.StorageLocalURL, "/")
		r.Group(func(pr chi.Router) {
			pr.Use(sessionMgr.RequireSignedIn)
			pr.Handle(prefix+"/*", fileserver.Handler(prefix, svc.LocalDir))
		})
	}
	return r, nil
}

// NewRouter mounts every feature on a fresh router. Tests call it with the
// in-memory store set and fake collaborators.
func NewRouter(stores store.Set, sessionMgr *auth.SessionManager, audit *auditlog.Logger, svc Services, db healthfeature.Pinger, logger *zap.Logger) chi.Router {
	// Fresh user data on each request so role changes and deactivations
	// take effect immediately.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(stores.Users))

	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(middleware.Recoverer)
	if svc.Metrics != nil {
		r.Use(svc.Metrics.Instrument)
	}
	r.Use(sessionMgr.LoadSessionUser)

	if svc.Metrics != nil {
		r.Handle("/metrics", svc.Metrics.Handler())
	}

	// Health check endpoint for load balancers and orchestrators
	r.Mount("/health", healthfeature.Routes(healthfeature.NewHandler(db, Version, logger)))

	r.Mount("/auth", loginfeature.Routes(loginfeature.NewHandler(stores, sessionMgr, svc.IPLimit, audit, logger)))

	r.Route("/api", func(api chi.Router) {
		api.Mount("/users", usersfeature.Routes(usersfeature.NewHandler(stores, audit, logger)))
		api.Mount("/organizations", organizationsfeature.Routes(organizationsfeature.NewHandler(stores, audit, logger)))
		api.Mount("/bilans", bilansfeature.Routes(bilansfeature.NewHandler(stores, audit, logger)))
		api.Mount("/sessions", sessionsfeature.Routes(sessionsfeature.NewHandler(stores, logger)))
		api.Mount("/documents", documentsfeature.Routes(documentsfeature.NewHandler(stores, svc.Objects, audit, logger)))
		api.Mount("/messages", messagesfeature.Routes(messagesfeature.NewHandler(stores, logger)))
		api.Mount("/recommendations", recommendationsfeature.Routes(recommendationsfeature.NewHandler(stores, svc.Advisor, svc.AILimit, audit, logger)))
		api.Mount("/skills", skillsfeature.Routes(skillsfeature.NewHandler(stores, logger)))
		api.Mount("/reports", reportsfeature.Routes(reportsfeature.NewHandler(stores, svc.Objects, svc.PDF, audit, logger)))
		api.Mount("/jobsearch", jobsearchfeature.Routes(jobsearchfeature.NewHandler(svc.Search, svc.IPLimit, logger)))
		api.Mount("/surveys", surveysfeature.Routes(surveysfeature.NewHandler(stores, logger)))
		api.Mount("/qualiopi", qualiopifeature.Routes(qualiopifeature.NewHandler(stores, audit, logger)))
		api.Mount("/auditLog", auditlogfeature.Routes(auditlogfeature.NewHandler(stores, logger)))
	})

	return r
}
