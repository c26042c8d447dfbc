package router

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/Alijeyrad/medchart/config"
	"github.com/Alijeyrad/medchart/internal/api/http/handler"
	"github.com/Alijeyrad/medchart/internal/api/http/middleware"
	"github.com/Alijeyrad/medchart/internal/charting"
	"github.com/Alijeyrad/medchart/internal/service/lookup"
	"github.com/Alijeyrad/medchart/internal/service/patient"
	"github.com/Alijeyrad/medchart/internal/workspace"
	"github.com/Alijeyrad/medchart/pkg/authorize"
	"github.com/Alijeyrad/medchart/pkg/observability"
	pasetotoken "github.com/Alijeyrad/medchart/pkg/paseto"
)

// Module provides the Router to the fx graph.
var Module = fx.Module("router", fx.Provide(NewRouter))

type Params struct {
	fx.In

	Cfg        *config.Config
	Redis      *redis.Client
	Auth       authorize.IAuthorization
	Workspaces *workspace.Registry
	Charting   *charting.Registry
	PatientSvc patient.Service
	LookupSvc  lookup.Service
	Tokens     *pasetotoken.Verifier
	OTel       *observability.Provider `optional:"true"`
}

type Router struct {
	p Params
}

func NewRouter(p Params) *Router {
	return &Router{p: p}
}

func (r *Router) Register(app *fiber.App) {
	// 1. Health & Metrics
	r.registerSystemRoutes(app)

	// 2. Initialize Middlewares
	authRequired := middleware.AuthRequired(r.p.Tokens, r.p.Redis)

	// Permission helpers
	requirePerm := func(res authorize.Resource, act authorize.Action) fiber.Handler {
		return middleware.RequirePermission(r.p.Auth, res, act)
	}
	requireRecordPerm := func(act authorize.Action) fiber.Handler {
		return middleware.RequireRecordPermission(r.p.Auth, act)
	}

	// 3. Initialize Handlers
	workspaceH := handler.NewWorkspaceHandler(r.p.Workspaces, r.p.Auth)
	recordH := handler.NewRecordHandler(r.p.Workspaces, r.p.Charting)
	demographicsH := handler.NewDemographicsHandler(r.p.Workspaces, r.p.Charting)
	patientH := handler.NewPatientHandler(r.p.PatientSvc, r.p.Workspaces)
	lookupH := handler.NewLookupHandler(r.p.LookupSvc)

	api := app.Group("/api/v1", authRequired)

	// 4. Delegate to sub-files
	r.registerWorkspaceRoutes(api, workspaceH, recordH, demographicsH, requirePerm, requireRecordPerm)
	r.registerPatientRoutes(api, patientH, requirePerm)
	r.registerLookupRoutes(api, lookupH, requirePerm)
}

func (r *Router) registerSystemRoutes(app *fiber.App) {
	app.Get(healthcheck.LivenessEndpoint, healthcheck.New())
	app.Get(healthcheck.ReadinessEndpoint, healthcheck.New(healthcheck.Config{
		Probe: func(c fiber.Ctx) bool {
			if !r.p.Cfg.Authorization.HealthCheckEnabled {
				return true
			}
			return authorize.IsPolicyHealthy()
		},
	}))
	app.Get(healthcheck.StartupEndpoint, healthcheck.New())

	if r.p.OTel != nil && r.p.Cfg.Observability.Metrics.Enabled {
		path := r.p.Cfg.Observability.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		app.Get(path, adaptor.HTTPHandler(r.p.OTel.MetricsHandler()))
	}
}
