package router

import (
	"time"

	"lunapos/internal/config"
	"lunapos/internal/handler"
	"lunapos/internal/middleware"
	"lunapos/internal/repository"
	"lunapos/internal/service"
	"lunapos/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, dispatcher *worker.Dispatcher) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	stockRepo := repository.NewStockRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	sessionRepo := repository.NewCashSessionRepository(db)
	expenseRepo := repository.NewExpenseRepository(db)
	methodRepo := repository.NewPaymentMethodRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	catalog := service.NewMethodCatalog(methodRepo, time.Duration(cfg.CatalogTTLSeconds)*time.Second, time.Now)
	stockSvc := service.NewStockService(stockRepo)
	sessionSvc := service.NewCashSessionService(sessionRepo)
	saleSvc := service.NewSaleService(saleRepo, stockSvc, sessionSvc, sessionRepo, catalog, dispatcher)
	receivableSvc := service.NewReceivableService(saleRepo, paymentRepo, sessionRepo, sessionSvc, catalog)
	expenseSvc := service.NewExpenseService(expenseRepo, sessionRepo, sessionSvc)
	reportSvc := service.NewReportService(saleRepo, paymentRepo, expenseRepo, catalog, cfg.WindowBufferDays)

	// ── Handlers ─────────────────────────────────────────────────────────────
	salesH := handler.NewSalesHandler(saleSvc)
	stockH := handler.NewStockHandler(stockSvc)
	receivablesH := handler.NewReceivablesHandler(receivableSvc)
	sessionsH := handler.NewCashSessionsHandler(sessionSvc)
	expensesH := handler.NewExpensesHandler(expenseSvc)
	reportsH := handler.NewReportsHandler(reportSvc)
	methodsH := handler.NewPaymentMethodsHandler(methodRepo, catalog)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Protected routes — tokens are issued by the external operator directory
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Roles: cashier, supervisor, admin — declared per-endpoint
		v1.POST("/sales", middleware.RequireRole("cashier", "supervisor", "admin"), salesH.Create)
		v1.GET("/sales", middleware.RequireRole("cashier", "supervisor", "admin"), salesH.List)
		v1.GET("/sales/:id", middleware.RequireRole("cashier", "supervisor", "admin"), salesH.Get)

		stock := v1.Group("/stock", middleware.RequireRole("supervisor", "admin"))
		{
			stock.POST("/credit", stockH.Credit)
			stock.POST("/transfer", stockH.Transfer)
			stock.GET("/movements", stockH.ListMovements)
		}

		recv := v1.Group("/receivables", middleware.RequireRole("cashier", "supervisor", "admin"))
		{
			recv.POST("/payments", receivablesH.RegisterPayment)
			recv.GET("", receivablesH.ListOutstanding)
			recv.GET("/:id/payments", receivablesH.ListPayments)
		}

		sessions := v1.Group("/cash-sessions")
		{
			sessions.POST("/open", middleware.RequireRole("cashier", "supervisor", "admin"), sessionsH.Open)
			sessions.POST("/:id/close", middleware.RequireRole("cashier", "supervisor", "admin"), sessionsH.Close)
			sessions.GET("/:id/summary", middleware.RequireRole("cashier", "supervisor", "admin"), sessionsH.Summary)
			sessions.GET("/active", middleware.RequireRole("cashier", "supervisor", "admin"), sessionsH.Active)
			sessions.GET("", middleware.RequireRole("supervisor", "admin"), sessionsH.List)
		}

		expenses := v1.Group("/expenses", middleware.RequireRole("supervisor", "admin"))
		{
			expenses.POST("", expensesH.Create)
			expenses.POST("/payments", expensesH.RegisterPayment)
			expenses.GET("", expensesH.List)
		}

		v1.GET("/reports/income-statement", middleware.RequireRole("supervisor", "admin"), reportsH.IncomeStatement)

		v1.GET("/payment-methods", middleware.RequireRole("cashier", "supervisor", "admin"), methodsH.List)
		v1.DELETE("/payment-methods/cache", middleware.RequireRole("admin"), methodsH.InvalidateCache)
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
