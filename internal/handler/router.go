package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-console/internal/middleware"
	"github.com/noah-isme/academic-console/internal/service"
	"github.com/noah-isme/academic-console/internal/session"
	"github.com/noah-isme/academic-console/internal/web"
	"github.com/noah-isme/academic-console/pkg/config"
	"github.com/noah-isme/academic-console/pkg/export"
	"github.com/noah-isme/academic-console/pkg/logger"
	corsmiddleware "github.com/noah-isme/academic-console/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/academic-console/pkg/middleware/requestid"
)

// RouterDeps are the collaborators the console routes need.
type RouterDeps struct {
	Config     *config.Config
	Logger     *zap.Logger
	Metrics    *service.MetricsService
	Workspaces middleware.Workspaces
	Signer     *session.CookieSigner
	Exports    *service.ExportService
	Checks     map[string]ReadinessCheck
}

// NewRouter builds the console's gin engine with every route registered.
func NewRouter(deps RouterDeps) (*gin.Engine, error) {
	cfg := deps.Config
	logr := deps.Logger
	if logr == nil {
		logr = zap.NewNop()
	}

	r := gin.New()
	if err := web.Install(r); err != nil {
		return nil, err
	}
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics(deps.Metrics))
	}

	metricsHandler := NewMetricsHandler(deps.Metrics, deps.Checks)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	if cfg.Metrics.Enabled {
		r.GET("/metrics", metricsHandler.Prometheus)
	}

	workspace := middleware.Workspace(deps.Workspaces, deps.Signer, middleware.WorkspaceConfig{
		CookieName: cfg.Session.CookieName,
		Secure:     cfg.Session.CookieSecure,
	}, logr)

	api := r.Group("/api", corsmiddleware.New(cfg.CORS.AllowedOrigins), workspace)
	api.GET("/session", NewSessionHandler().Status)

	pages := r.Group("/", workspace)
	auth := NewAuthHandler(cfg.Google.ClientID, logr)
	pages.GET("/", auth.Index)
	pages.POST("/auth/google", auth.GoogleCallback)
	pages.POST("/logout", auth.Logout)

	signedIn := pages.Group("", middleware.RequireSession())

	courses := NewCourseHandler(deps.Exports, logr)
	registerList(signedIn, "/courses", "course", courses, logr)

	specs := NewSpecialisationHandler(deps.Exports, logr)
	registerList(signedIn, "/specialisations", "specialisation", specs.ListHandler, logr)
	signedIn.POST("/specialisations/:id/courses", specs.OpenRelated)
	signedIn.POST("/specialisations/related/close", specs.CloseRelated)

	return r, nil
}

func registerList[T any](group *gin.RouterGroup, base, resource string, h *ListHandler[T], logr *zap.Logger) {
	group.GET(base, h.Show)
	group.POST(base+"/reload", h.Reload)
	group.GET(base+"/export.csv", h.Export(export.FormatCSV))
	group.GET(base+"/export.pdf", h.Export(export.FormatPDF))

	admin := group.Group(base, middleware.RequireAdmin())
	admin.POST("", middleware.Audit(logr, "save", resource), h.Submit)
	admin.POST("/form", h.OpenCreate)
	admin.POST("/form/close", h.CloseForm)
	admin.POST("/:id/form", h.OpenEdit)
	admin.POST("/:id/delete", h.RequestDelete)
	admin.POST("/delete/confirm", middleware.Audit(logr, "delete", resource), h.ConfirmDelete)
	admin.POST("/delete/cancel", h.CancelDelete)
}
