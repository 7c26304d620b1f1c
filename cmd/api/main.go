package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "storefront/api/swagger" // swagger docs
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/handler"
	"storefront/internal/lock"
	"storefront/internal/logger"
	"storefront/internal/middleware"
	"storefront/internal/ratelimit"
	"storefront/internal/repository"
	"storefront/internal/service"
	"storefront/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// @title           Wholesale Storefront API
// @version         1.0
// @description     Retailer catalog access, order intake and purchase order back-office.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewConnection(cfg.Database, zlog)
	if err != nil {
		zlog.Fatal("Database connection failed", zap.Error(err))
	}
	zlog.Info("Connected to PostgreSQL successfully")

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	pingCtx, cancelPing := context.WithTimeout(ctx, 5*time.Second)
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		cancelPing()
		zlog.Fatal("Redis connection failed", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
	}
	cancelPing()
	defer func() { _ = rdb.Close() }()

	// Set up WebSocket Hub
	wsHub := websocket.NewHub(zlog.Named("ws"))
	go wsHub.Run(ctx)

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	priorityRepo := repository.NewPriorityRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	productRepo := repository.NewProductRepository(db)
	retailerRepo := repository.NewRetailerRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	poRepo := repository.NewPurchaseOrderRepository(db)
	contactRepo := repository.NewContactRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	limiter := ratelimit.NewLimiter(ratelimit.NewRedisStore(rdb), ratelimit.Limits{
		Cooldown:    cfg.Contact.Cooldown,
		DailyCap:    cfg.Contact.DailyCap,
		LifetimeCap: cfg.Contact.LifetimeCap,
	})

	accessService := service.NewAccessService(retailerRepo, catalogRepo, productRepo, auditRepo,
		lock.NewRedisLocker(rdb), wsHub, zlog.Named("access"), service.AccessOptions{
			LockTTL:     cfg.Access.LockTTL,
			LockTimeout: cfg.Access.LockTimeout,
		})
	authService := service.NewAuthService(service.AuthConfig{
		PasswordHash: cfg.Admin.PasswordHash,
		Secret:       []byte(cfg.JWT.Secret),
		TokenTTL:     cfg.JWT.AccessTokenExpire,
	})
	priorityService := service.NewPriorityService(priorityRepo, retailerRepo, catalogRepo, auditRepo, txManager, accessService, zlog)
	catalogService := service.NewCatalogService(catalogRepo, priorityRepo, productRepo, auditRepo, txManager, accessService, zlog)
	retailerService := service.NewRetailerService(retailerRepo, priorityRepo, catalogRepo, auditRepo, txManager, accessService, zlog)
	productService := service.NewProductService(productRepo, auditRepo, txManager)
	orderService := service.NewOrderService(orderRepo, retailerRepo, productRepo, auditRepo, txManager, wsHub, zlog.Named("orders"))
	poService := service.NewPurchaseOrderService(poRepo, orderRepo, auditRepo, txManager, wsHub, zlog.Named("purchase_orders"))
	contactService := service.NewContactService(contactRepo, limiter, zlog.Named("contact"))
	auditService := service.NewAuditService(auditRepo)
	dashboardService := service.NewDashboardService(retailerRepo, catalogRepo, productRepo, orderRepo, poRepo, contactRepo)

	// Initialize Handlers
	secret := []byte(cfg.JWT.Secret)
	requireAdmin := middleware.RequireAdmin(secret)

	authHandler := handler.NewAuthHandler(authService, requireAdmin)
	accessHandler := handler.NewAccessHandler(accessService)
	priorityHandler := handler.NewPriorityHandler(priorityService)
	catalogHandler := handler.NewCatalogHandler(catalogService)
	retailerHandler := handler.NewRetailerHandler(retailerService)
	productHandler := handler.NewProductHandler(productService)
	orderHandler := handler.NewOrderHandler(orderService)
	poHandler := handler.NewPurchaseOrderHandler(poService)
	contactHandler := handler.NewContactHandler(contactService)
	auditHandler := handler.NewAuditHandler(auditService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)

	// Set up Gin Router
	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger(zlog.Named("http")))

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.Server.AllowedOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Request-ID"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, secret)
	})

	// API Routing
	public := router.Group("")
	admin := router.Group("/api/admin", requireAdmin)

	authHandler.RegisterRoutes(public)
	accessHandler.RegisterRoutes(public)
	orderHandler.RegisterRoutes(public)
	contactHandler.RegisterRoutes(public)

	accessHandler.RegisterAdminRoutes(admin)
	priorityHandler.RegisterRoutes(admin)
	catalogHandler.RegisterRoutes(admin)
	retailerHandler.RegisterRoutes(admin)
	productHandler.RegisterRoutes(admin)
	orderHandler.RegisterAdminRoutes(admin)
	poHandler.RegisterRoutes(admin)
	contactHandler.RegisterAdminRoutes(admin)
	auditHandler.RegisterRoutes(admin)
	dashboardHandler.RegisterRoutes(admin)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		zlog.Info("Server listening", zap.String("addr", srv.Addr), zap.String("mode", cfg.Server.Mode))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zlog.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("Server forced to shutdown", zap.Error(err))
	}
}
