package server

import (
	"context"
	"net/http"
	"time"

	"github.com/MaverickDev-J/hrm/internal/auth"
	authdomain "github.com/MaverickDev-J/hrm/internal/auth/domain"
	"github.com/MaverickDev-J/hrm/internal/candidate"
	candidatedomain "github.com/MaverickDev-J/hrm/internal/candidate/domain"
	"github.com/MaverickDev-J/hrm/internal/client"
	clientdomain "github.com/MaverickDev-J/hrm/internal/client/domain"
	"github.com/MaverickDev-J/hrm/internal/company"
	companydomain "github.com/MaverickDev-J/hrm/internal/company/domain"
	"github.com/MaverickDev-J/hrm/internal/config"
	"github.com/MaverickDev-J/hrm/internal/invoice"
	invoicedomain "github.com/MaverickDev-J/hrm/internal/invoice/domain"
	"github.com/MaverickDev-J/hrm/internal/observability"
	obslogger "github.com/MaverickDev-J/hrm/internal/observability/logger"
	obsmetrics "github.com/MaverickDev-J/hrm/internal/observability/metrics"
	obstracing "github.com/MaverickDev-J/hrm/internal/observability/tracing"
	"github.com/MaverickDev-J/hrm/internal/ratelimit"
	"github.com/MaverickDev-J/hrm/internal/storage"
	"github.com/MaverickDev-J/hrm/internal/user"
	userdomain "github.com/MaverickDev-J/hrm/internal/user/domain"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	auth.Module,
	ratelimit.Module,
	user.Module,
	company.Module,
	client.Module,
	candidate.Module,
	invoice.Module,
	storage.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine       *gin.Engine
	cfg          config.Config
	log          *zap.Logger
	authSvc      authdomain.Service
	userSvc      userdomain.Service
	companySvc   companydomain.Service
	clientSvc    clientdomain.Service
	candidateSvc candidatedomain.Service
	invoiceSvc   invoicedomain.Service
	store        storage.Store
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	Log          *zap.Logger
	AuthSvc      authdomain.Service
	UserSvc      userdomain.Service
	CompanySvc   companydomain.Service
	ClientSvc    clientdomain.Service
	CandidateSvc candidatedomain.Service
	InvoiceSvc   invoicedomain.Service
	Store        storage.Store
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		log:          p.Log.Named("server"),
		authSvc:      p.AuthSvc,
		userSvc:      p.UserSvc,
		companySvc:   p.CompanySvc,
		clientSvc:    p.ClientSvc,
		candidateSvc: p.CandidateSvc,
		invoiceSvc:   p.InvoiceSvc,
		store:        p.Store,
	}

	svc.registerAuthRoutes()
	svc.registerAPIRoutes()
	svc.registerStaticRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	authGroup := s.engine.Group("/auth")

	authGroup.POST("/login", s.Login)
	authGroup.POST("/refresh", s.Refresh)
	authGroup.GET("/me", s.AuthRequired(), s.Me)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api/v1", s.AuthRequired())

	companies := api.Group("/companies")
	companies.POST("", s.RequireSuperuser(), s.CreateCompany)
	companies.GET("", s.RequireSuperuser(), s.ListCompanies)
	companies.GET("/:id", s.GetCompany)
	companies.PATCH("/:id", s.RequireRole(userdomain.RoleCompanyAdmin), s.UpdateCompany)
	companies.POST("/:id/branding/:kind", s.RequireRole(userdomain.RoleCompanyAdmin), s.UploadBrandingImage)
	companies.POST("/:id/admins", s.RequireSuperuser(), s.CreateCompanyAdmin)

	users := api.Group("/users")
	users.POST("", s.RequireRole(userdomain.RoleCompanyAdmin), s.CreateEmployee)
	users.GET("", s.RequireRole(userdomain.RoleCompanyAdmin), s.ListUsers)
	users.GET("/:id", s.RequireRole(userdomain.RoleCompanyAdmin), s.GetUser)
	users.PATCH("/:id", s.RequireRole(userdomain.RoleCompanyAdmin), s.UpdateUser)

	staff := s.RequireRole(userdomain.RoleCompanyAdmin, userdomain.RoleEmployee)

	clients := api.Group("/clients", staff)
	clients.POST("", s.CreateClient)
	clients.GET("", s.ListClients)
	clients.GET("/:id", s.GetClient)
	clients.PATCH("/:id", s.UpdateClient)
	clients.DELETE("/:id", s.DeleteClient)
	clients.GET("/:id/columns", s.GetColumnConfig)
	clients.PUT("/:id/columns", s.UpsertColumnConfig)
	clients.POST("/:id/candidates", s.CreateCandidate)
	clients.GET("/:id/candidates", s.ListCandidates)

	candidates := api.Group("/candidates", staff)
	candidates.GET("/:id", s.GetCandidate)
	candidates.PATCH("/:id", s.UpdateCandidate)
	candidates.DELETE("/:id", s.DeleteCandidate)

	invoices := api.Group("/invoices", staff)
	invoices.POST("", s.GenerateInvoice)
	invoices.POST("/preview", s.PreviewInvoice)
	invoices.GET("", s.ListInvoices)
	invoices.GET("/:id", s.GetInvoice)
	invoices.GET("/:id/data", s.GetInvoiceData)
	invoices.GET("/client/:client_id/data", s.GetClientInvoiceData)
	invoices.PATCH("/:id", s.UpdateInvoice)
	invoices.POST("/:id/finalize", s.FinalizeInvoice)
	invoices.POST("/:id/send", s.SendInvoice)
	invoices.DELETE("/:id", s.DeleteInvoice)
}

// registerStaticRoutes serves stored artifacts and branding images.
func (s *Server) registerStaticRoutes() {
	s.engine.Static(s.cfg.StaticMount, s.cfg.StorageRoot)
}
