package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lexdraftlabs/lexdraft/internal/auth"
	"github.com/lexdraftlabs/lexdraft/internal/checkout"
	checkoutdomain "github.com/lexdraftlabs/lexdraft/internal/checkout/domain"
	"github.com/lexdraftlabs/lexdraft/internal/config"
	"github.com/lexdraftlabs/lexdraft/internal/identity"
	identitydomain "github.com/lexdraftlabs/lexdraft/internal/identity/domain"
	"github.com/lexdraftlabs/lexdraft/internal/letter"
	letterdomain "github.com/lexdraftlabs/lexdraft/internal/letter/domain"
	"github.com/lexdraftlabs/lexdraft/internal/observability"
	obsmiddleware "github.com/lexdraftlabs/lexdraft/internal/observability/logger"
	obsmetrics "github.com/lexdraftlabs/lexdraft/internal/observability/metrics"
	"github.com/lexdraftlabs/lexdraft/internal/payment"
	paymentdomain "github.com/lexdraftlabs/lexdraft/internal/payment/domain"
	"github.com/lexdraftlabs/lexdraft/internal/providers/gemini"
	"github.com/lexdraftlabs/lexdraft/internal/referral"
	referraldomain "github.com/lexdraftlabs/lexdraft/internal/referral/domain"
	"github.com/lexdraftlabs/lexdraft/internal/subscription"
	subscriptiondomain "github.com/lexdraftlabs/lexdraft/internal/subscription/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	auth.Module,
	identity.Module,
	referral.Module,
	letter.Module,
	gemini.Module,
	checkout.Module,
	subscription.Module,
	payment.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics, gatherer prometheus.Gatherer) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(httpMetrics.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics, gatherer prometheus.Gatherer) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics, gatherer)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
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
	engine      *gin.Engine
	cfg         config.Config
	db          *gorm.DB
	tokens      *auth.Manager
	identitySvc identitydomain.Service
	identities  identitydomain.Repository
	letterSvc   letterdomain.Service
	checkoutSvc checkoutdomain.Service
	paymentSvc  paymentdomain.Service
	referralSvc referraldomain.Service
	subs        subscriptiondomain.Repository
}

type ServerParams struct {
	fx.In

	Engine      *gin.Engine
	Cfg         config.Config
	DB          *gorm.DB
	Tokens      *auth.Manager
	IdentitySvc identitydomain.Service
	Identities  identitydomain.Repository
	LetterSvc   letterdomain.Service
	CheckoutSvc checkoutdomain.Service
	PaymentSvc  paymentdomain.Service
	ReferralSvc referraldomain.Service
	Subs        subscriptiondomain.Repository
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:      p.Engine,
		cfg:         p.Cfg,
		db:          p.DB,
		tokens:      p.Tokens,
		identitySvc: p.IdentitySvc,
		identities:  p.Identities,
		letterSvc:   p.LetterSvc,
		checkoutSvc: p.CheckoutSvc,
		paymentSvc:  p.PaymentSvc,
		referralSvc: p.ReferralSvc,
		subs:        p.Subs,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	r := s.engine

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/signup", s.HandleSignup)
		authGroup.POST("/login", s.HandleLogin)
		authGroup.GET("/me", s.AuthRequired(), s.HandleMe)
	}

	api := r.Group("/api", s.AuthRequired())
	{
		api.POST("/letters/generate", s.HandleGenerateLetter)
		api.GET("/letters", s.HandleListLetters)
		api.POST("/checkout/session", s.HandleCreateCheckoutSession)
		api.GET("/referrals/summary", s.RequireRole(identitydomain.RoleEmployee), s.HandleReferralSummary)
	}

	// Webhooks authenticate with provider signatures, not bearer tokens.
	r.POST("/api/payments/webhooks/:provider", s.HandlePaymentWebhook)

	admin := r.Group("/admin", s.AuthRequired(), s.RequireRole(identitydomain.RoleAdmin))
	{
		admin.GET("/profiles", s.HandleListProfiles)
		admin.GET("/transactions", s.HandleListTransactions)
		admin.PATCH("/letters/:id/status", s.HandleUpdateLetterStatus)
	}
}
