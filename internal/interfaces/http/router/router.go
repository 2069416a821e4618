// Package router assembles the gin engine, middleware chain and route
// table for the HTTP API.
package router

import (
	"github.com/agencycrm/backend/internal/infrastructure/auth"
	"github.com/agencycrm/backend/internal/infrastructure/config"
	"github.com/agencycrm/backend/internal/infrastructure/logger"
	"github.com/agencycrm/backend/internal/interfaces/http/handler"
	"github.com/agencycrm/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handlers bundles every route handler the API mounts
type Handlers struct {
	System       *handler.SystemHandler
	Clients      *handler.ClientHandler
	Leads        *handler.LeadHandler
	Finance      *handler.FinanceHandler
	Intelligence *handler.IntelligenceHandler
	Settings     *handler.SettingsHandler
	Activity     *handler.ActivityHandler
	Snapshot     *handler.SnapshotHandler
	Files        *handler.FileHandler
}

// Config carries the router dependencies
type Config struct {
	HTTP     *config.HTTPConfig
	JWT      *auth.JWTService
	Handlers Handlers
	Logger   *zap.Logger
}

// New builds the gin engine with the full middleware chain and route
// table. Health endpoints stay outside the authenticated API group.
func New(cfg Config) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))

	corsCfg := middleware.DefaultCORSConfig()
	if cfg.HTTP != nil {
		if len(cfg.HTTP.CORSAllowOrigins) > 0 {
			corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
		}
		if len(cfg.HTTP.CORSAllowMethods) > 0 {
			corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
		}
		if len(cfg.HTTP.CORSAllowHeaders) > 0 {
			corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders
		}
	}
	engine.Use(middleware.CORS(corsCfg))

	if cfg.HTTP != nil && cfg.HTTP.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	}

	h := cfg.Handlers
	if h.System != nil {
		engine.GET("/health", h.System.Health)
		engine.GET("/ready", h.System.Ready)
	}

	api := engine.Group("/api/v1")
	if cfg.JWT != nil {
		api.Use(middleware.JWTAuth(middleware.JWTConfig{
			Service: cfg.JWT,
			Logger:  log,
		}))
	}

	registerRoutes(api, h)
	return engine
}

func registerRoutes(api *gin.RouterGroup, h Handlers) {
	if h.Clients != nil {
		clients := api.Group("/clients")
		clients.POST("", h.Clients.Create)
		clients.GET("", h.Clients.List)
		clients.GET("/:id", h.Clients.Get)
		clients.PUT("/:id", h.Clients.Update)
		clients.DELETE("/:id", h.Clients.Delete)
		clients.GET("/:id/retainer-history", h.Clients.RetainerHistory)
	}

	if h.Leads != nil {
		leads := api.Group("/leads")
		leads.POST("", h.Leads.Create)
		leads.GET("", h.Leads.List)
		leads.GET("/:id", h.Leads.Get)
		leads.PUT("/:id", h.Leads.Update)
		leads.DELETE("/:id", h.Leads.Delete)
		leads.POST("/:id/convert", h.Leads.Convert)
	}

	if h.Finance != nil {
		deals := api.Group("/deals")
		deals.POST("", h.Finance.CreateDeal)
		deals.GET("", h.Finance.ListDeals)
		deals.GET("/:id", h.Finance.GetDeal)
		deals.PUT("/:id", h.Finance.UpdateDeal)
		deals.DELETE("/:id", h.Finance.DeleteDeal)

		expenses := api.Group("/expenses")
		expenses.POST("", h.Finance.CreateExpense)
		expenses.GET("", h.Finance.ListExpenses)
		expenses.PUT("/:id", h.Finance.UpdateExpense)
		expenses.DELETE("/:id", h.Finance.DeleteExpense)

		payments := api.Group("/payments")
		payments.POST("", h.Finance.CreatePayment)
		payments.GET("", h.Finance.ListPayments)
		payments.PUT("/:id", h.Finance.UpdatePayment)
		payments.DELETE("/:id", h.Finance.DeletePayment)

		api.POST("/finance/generate", h.Finance.Generate)
	}

	if h.Intelligence != nil {
		notes := api.Group("/notes")
		notes.POST("", h.Intelligence.CreateNote)
		notes.GET("", h.Intelligence.ListNotes)
		notes.DELETE("/:id", h.Intelligence.DeleteNote)

		transcripts := api.Group("/transcripts")
		transcripts.POST("", h.Intelligence.CreateTranscript)
		transcripts.GET("", h.Intelligence.ListTranscripts)

		recommendations := api.Group("/recommendations")
		recommendations.POST("", h.Intelligence.CreateRecommendation)
		recommendations.GET("", h.Intelligence.ListRecommendations)

		messages := api.Group("/messages")
		messages.POST("", h.Intelligence.CreateMessage)
		messages.GET("", h.Intelligence.ListMessages)
		messages.POST("/:id/sent", h.Intelligence.MarkMessageSent)

		plans := api.Group("/strategy-plans")
		plans.POST("", h.Intelligence.CreateStrategyPlan)
		plans.GET("", h.Intelligence.ListStrategyPlans)

		reports := api.Group("/competitor-reports")
		reports.POST("", h.Intelligence.CreateCompetitorReport)
		reports.GET("", h.Intelligence.ListCompetitorReports)

		signals := api.Group("/signals")
		signals.POST("", h.Intelligence.CreateSignal)
		signals.GET("", h.Intelligence.ListSignals)
	}

	if h.Settings != nil {
		settings := api.Group("/settings")
		settings.GET("", h.Settings.Get)
		settings.PUT("", h.Settings.Update)
		settings.PUT("/secrets", h.Settings.UpdateSecrets)
	}

	if h.Activity != nil {
		api.GET("/activity", h.Activity.Recent)
	}

	if h.Snapshot != nil {
		snap := api.Group("/snapshot")
		snap.POST("/load", h.Snapshot.Load)
		snap.GET("/export", h.Snapshot.Export)
		snap.POST("/import", h.Snapshot.Import)
	}

	if h.Files != nil {
		files := api.Group("/files")
		files.GET("/signed-url", h.Files.SignedURL)
		files.DELETE("", h.Files.Delete)
		files.POST("/:namespace", h.Files.Upload)
		files.GET("/:namespace", h.Files.List)
	}
}
