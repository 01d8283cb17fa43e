package handler

import (
	"moneytracker/internal/adapter/http/middleware"
	redisStore "moneytracker/internal/adapter/storage/redis"
	"moneytracker/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc        ports.AuthService
	LedgerSvc      ports.LedgerService
	WalletSvc      ports.WalletService
	PersonSvc      ports.PersonService
	ReportingSvc   ports.ReportingService
	TokenSvc       ports.TokenService
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	AuditSvc       ports.AuditService // nil = audit logging disabled
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Audit logging (after response)
	if deps.AuditSvc != nil {
		r.Use(middleware.AuditLog(deps.AuditSvc))
	}

	// Health check (deep — verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	// API v1 routes
	v1 := r.Group("/api/v1")

	// --- Public routes (no auth) ---
	authHandler := NewAuthHandler(deps.AuthSvc)
	auth := v1.Group("/auth")
	{
		auth.POST("/register", rl("auth_register"), authHandler.Register)
		auth.POST("/login", rl("auth_login"), authHandler.Login)
	}

	// --- JWT-authenticated routes ---
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
	walletHandler := NewWalletHandler(deps.WalletSvc, deps.ReportingSvc)
	personHandler := NewPersonHandler(deps.PersonSvc)
	transactionHandler := NewTransactionHandler(deps.LedgerSvc, deps.ReportingSvc)

	wallets := v1.Group("/wallets", jwtAuth)
	{
		wallets.POST("", rl("api"), walletHandler.Create)
		wallets.GET("", rl("api"), walletHandler.List)
		wallets.GET("/balance", rl("api"), walletHandler.Balance)
	}

	people := v1.Group("/people", jwtAuth)
	{
		people.POST("", rl("api"), personHandler.Create)
		people.GET("", rl("api"), personHandler.List)
		people.GET("/:id", rl("api"), personHandler.Get)
		people.DELETE("/:id", rl("api"), personHandler.Delete)
	}

	transactions := v1.Group("/transactions", jwtAuth)
	{
		transactions.POST("", rl("transactions"), transactionHandler.Create)
		transactions.GET("", rl("api"), transactionHandler.List)
		transactions.POST("/:id/reverse", rl("transactions"), transactionHandler.Reverse)
	}

	return r
}
