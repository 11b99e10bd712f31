package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/smallbiznis/claimdesk/internal/audit"
	auditdomain "github.com/smallbiznis/claimdesk/internal/audit/domain"
	"github.com/smallbiznis/claimdesk/internal/auth"
	authdomain "github.com/smallbiznis/claimdesk/internal/auth/domain"
	"github.com/smallbiznis/claimdesk/internal/authorization"
	"github.com/smallbiznis/claimdesk/internal/claim"
	claimdomain "github.com/smallbiznis/claimdesk/internal/claim/domain"
	"github.com/smallbiznis/claimdesk/internal/config"
	"github.com/smallbiznis/claimdesk/internal/employer"
	employerdomain "github.com/smallbiznis/claimdesk/internal/employer/domain"
	"github.com/smallbiznis/claimdesk/internal/notification"
	notificationdomain "github.com/smallbiznis/claimdesk/internal/notification/domain"
	"github.com/smallbiznis/claimdesk/internal/observability"
	obsmiddleware "github.com/smallbiznis/claimdesk/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/claimdesk/internal/observability/metrics"
	obstracing "github.com/smallbiznis/claimdesk/internal/observability/tracing"
	"github.com/smallbiznis/claimdesk/internal/payment"
	paymentdomain "github.com/smallbiznis/claimdesk/internal/payment/domain"
	"github.com/smallbiznis/claimdesk/internal/policy"
	policydomain "github.com/smallbiznis/claimdesk/internal/policy/domain"
	"github.com/smallbiznis/claimdesk/internal/provider"
	providerdomain "github.com/smallbiznis/claimdesk/internal/provider/domain"
	"github.com/smallbiznis/claimdesk/internal/providers/email"
	"github.com/smallbiznis/claimdesk/internal/review"
	reviewdomain "github.com/smallbiznis/claimdesk/internal/review/domain"
	"github.com/smallbiznis/claimdesk/internal/storage"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	authorization.Module,
	audit.Module,
	auth.Module,
	email.Module,
	storage.Module,
	employer.Module,
	provider.Module,
	policy.Module,
	claim.Module,
	review.Module,
	payment.Module,
	notification.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
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

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
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
	engine          *gin.Engine
	cfg             config.Config
	db              *gorm.DB
	log             *zap.Logger
	genID           *snowflake.Node
	authsvc         authdomain.Service
	authzSvc        authorization.Service
	auditSvc        auditdomain.Service
	claimSvc        claimdomain.Service
	reviewSvc       reviewdomain.Service
	paymentSvc      paymentdomain.Service
	policySvc       policydomain.Service
	employerSvc     employerdomain.Service
	providerSvc     providerdomain.Service
	notificationSvc notificationdomain.Service
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	DB              *gorm.DB
	Log             *zap.Logger
	GenID           *snowflake.Node
	Authsvc         authdomain.Service
	AuthzSvc        authorization.Service
	AuditSvc        auditdomain.Service
	ClaimSvc        claimdomain.Service
	ReviewSvc       reviewdomain.Service
	PaymentSvc      paymentdomain.Service
	PolicySvc       policydomain.Service
	EmployerSvc     employerdomain.Service
	ProviderSvc     providerdomain.Service
	NotificationSvc notificationdomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		db:              p.DB,
		log:             p.Log.Named("http.server"),
		genID:           p.GenID,
		authsvc:         p.Authsvc,
		authzSvc:        p.AuthzSvc,
		auditSvc:        p.AuditSvc,
		claimSvc:        p.ClaimSvc,
		reviewSvc:       p.ReviewSvc,
		paymentSvc:      p.PaymentSvc,
		policySvc:       p.PolicySvc,
		employerSvc:     p.EmployerSvc,
		providerSvc:     p.ProviderSvc,
		notificationSvc: p.NotificationSvc,
	}

	svc.registerAuthRoutes()
	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/auth")

	auth.POST("/login", s.Login)
	auth.POST("/logout", s.Logout)
	auth.GET("/me", s.Me)
	auth.POST("/change-password", s.AuthRequired(), s.ChangePassword)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	api.Use(s.AuthRequired())

	// -------- Users --------
	api.GET("/users", s.authorize(authorization.ObjectUser, authorization.ActionView), s.ListUsers)
	api.POST("/users", s.authorize(authorization.ObjectUser, authorization.ActionCreate), s.CreateUser)
	api.GET("/users/:id", s.authorize(authorization.ObjectUser, authorization.ActionView), s.GetUserByID)
	api.PATCH("/users/:id", s.authorize(authorization.ObjectUser, authorization.ActionUpdate), s.UpdateUser)
	api.DELETE("/users/:id", s.authorize(authorization.ObjectUser, authorization.ActionDelete), s.DeleteUser)

	// -------- Employers --------
	api.GET("/employers", s.authorize(authorization.ObjectEmployer, authorization.ActionView), s.ListEmployers)
	api.POST("/employers", s.authorize(authorization.ObjectEmployer, authorization.ActionCreate), s.CreateEmployer)
	api.GET("/employers/:id", s.authorize(authorization.ObjectEmployer, authorization.ActionView), s.GetEmployerByID)
	api.PATCH("/employers/:id", s.authorize(authorization.ObjectEmployer, authorization.ActionUpdate), s.UpdateEmployer)
	api.DELETE("/employers/:id", s.authorize(authorization.ObjectEmployer, authorization.ActionDelete), s.DeleteEmployer)

	// -------- Providers --------
	api.GET("/providers", s.authorize(authorization.ObjectProvider, authorization.ActionView), s.ListProviders)
	api.POST("/providers", s.authorize(authorization.ObjectProvider, authorization.ActionCreate), s.CreateProvider)
	api.GET("/providers/:id", s.authorize(authorization.ObjectProvider, authorization.ActionView), s.GetProviderByID)
	api.PATCH("/providers/:id", s.authorize(authorization.ObjectProvider, authorization.ActionUpdate), s.UpdateProvider)
	api.DELETE("/providers/:id", s.authorize(authorization.ObjectProvider, authorization.ActionDelete), s.DeleteProvider)

	// -------- Policies --------
	api.GET("/policies", s.authorize(authorization.ObjectPolicy, authorization.ActionView), s.ListPolicies)
	api.POST("/policies", s.authorize(authorization.ObjectPolicy, authorization.ActionCreate), s.CreatePolicy)
	api.GET("/policies/:id", s.authorize(authorization.ObjectPolicy, authorization.ActionView), s.GetPolicyByID)
	api.PATCH("/policies/:id", s.authorize(authorization.ObjectPolicy, authorization.ActionUpdate), s.UpdatePolicy)
	api.DELETE("/policies/:id", s.authorize(authorization.ObjectPolicy, authorization.ActionDelete), s.DeletePolicy)

	// -------- Claims --------
	api.GET("/claims", s.authorize(authorization.ObjectClaim, authorization.ActionView), s.ListClaims)
	api.POST("/claims", s.authorize(authorization.ObjectClaim, authorization.ActionCreate), s.CreateClaim)
	api.GET("/claims/:id", s.authorize(authorization.ObjectClaim, authorization.ActionView), s.GetClaimByID)
	api.PATCH("/claims/:id", s.authorize(authorization.ObjectClaim, authorization.ActionUpdate), s.UpdateClaim)
	api.GET("/claims/:id/attachments", s.authorize(authorization.ObjectClaim, authorization.ActionView), s.ListClaimAttachments)
	api.POST("/claims/:id/attachments", s.authorize(authorization.ObjectClaim, authorization.ActionUpdate), s.AddClaimAttachment)

	// -------- Reviews --------
	// Creation hangs off the claim; the service pins reviewer role to stage.
	api.POST("/claims/:id/reviews", s.authorize(authorization.ObjectReview, authorization.ActionCreate), s.CreateReview)
	api.GET("/reviews", s.authorize(authorization.ObjectReview, authorization.ActionView), s.ListReviews)
	api.GET("/reviews/:id", s.authorize(authorization.ObjectReview, authorization.ActionView), s.GetReviewByID)
	api.PATCH("/reviews/:id", s.authorize(authorization.ObjectReview, authorization.ActionUpdate), s.UpdateReview)
	api.GET("/reviews/:id/items", s.authorize(authorization.ObjectReviewItem, authorization.ActionView), s.ListReviewItems)
	api.POST("/reviews/:id/items", s.authorize(authorization.ObjectReviewItem, authorization.ActionCreate), s.AddReviewItem)
	api.PATCH("/reviews/:id/items/:itemId", s.authorize(authorization.ObjectReviewItem, authorization.ActionUpdate), s.UpdateReviewItem)

	// -------- Payments --------
	api.POST("/claims/:id/payments", s.authorize(authorization.ObjectPayment, authorization.ActionCreate), s.CreatePayment)
	api.GET("/payments", s.authorize(authorization.ObjectPayment, authorization.ActionView), s.ListPayments)
	api.GET("/payments/:id", s.authorize(authorization.ObjectPayment, authorization.ActionView), s.GetPaymentByID)
	api.PATCH("/payments/:id", s.authorize(authorization.ObjectPayment, authorization.ActionUpdate), s.UpdatePayment)

	// -------- Notifications --------
	api.GET("/notifications", s.authorize(authorization.ObjectNotification, authorization.ActionView), s.ListNotifications)
	api.POST("/notifications/:id/read", s.authorize(authorization.ObjectNotification, authorization.ActionUpdate), s.MarkNotificationRead)

	// -------- Audit logs --------
	api.GET("/audit-logs", s.authorize(authorization.ObjectAuditLog, authorization.ActionView), s.ListAuditLogs)
}
