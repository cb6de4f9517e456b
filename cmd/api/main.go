package main

import (
	_ "backend/api/swagger" // swagger docs
	"backend/internal/auth"
	"backend/internal/credential"
	"backend/internal/database"
	"backend/internal/handler"
	"backend/internal/repository"
	"backend/internal/service"
	"backend/internal/websocket"
	"context"
	"log"
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// @title           Company ERP API
// @version         1.0
// @description     Multi-tenant ERP backend: accounts, users, inventory and projects scoped per company.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	dbHost := getenv("DB_HOST", "localhost")
	dbPort := getenv("DB_PORT", "5432")
	dbUser := getenv("DB_USER", "postgres")
	dbPassword := getenv("DB_PASSWORD", "postgres")
	dbName := getenv("DB_NAME", "postgres")
	dbSslMode := getenv("DB_SSLMODE", "disable")

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "dev-secret-do-not-use-in-production"
		log.Println("WARNING: JWT_SECRET not set, using insecure development secret")
	}
	issuer := auth.NewTokenIssuer(
		[]byte(jwtSecret),
		getenv("JWT_ISSUER", "erp-api"),
		getenv("JWT_AUDIENCE", "erp-clients"),
	)

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	tokenRepo := repository.NewActivationTokenRepository(db)
	loginRepo := repository.NewExternalLoginRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)
	projectRepo := repository.NewProjectRepository(db)

	if err := roleRepo.EnsureDefaultRoles(context.Background()); err != nil {
		log.Fatalf("Failed to seed default roles: %v", err)
	}

	credentials := credential.NewProvider(credential.DefaultConfig(), userRepo, tokenRepo, loginRepo)

	accountService := service.NewAccountService(
		userRepo, companyRepo, roleRepo, auditRepo,
		credentials, issuer, txManager,
		getenv("APP_BASE_URL", "http://localhost:8080"),
	)
	googleService := service.NewGoogleAuthService(
		os.Getenv("GOOGLE_CLIENT_ID"),
		os.Getenv("GOOGLE_CLIENT_SECRET"),
		os.Getenv("GOOGLE_REDIRECT_URL"),
		userRepo, loginRepo, credentials, issuer,
	)
	inventoryService := service.NewInventoryService(inventoryRepo, wsHub)
	projectService := service.NewProjectService(projectRepo)
	auditService := service.NewAuditService(auditRepo)

	// Initialize Handlers
	companyHandler := handler.NewCompanyHandler(accountService, issuer)
	accountHandler := handler.NewAccountHandler(accountService, googleService, issuer)
	userHandler := handler.NewUserHandler(accountService, issuer)
	inventoryHandler := handler.NewInventoryHandler(inventoryService, issuer)
	projectHandler := handler.NewProjectHandler(projectService, issuer)
	auditHandler := handler.NewAuditHandler(auditService, issuer)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	allowedOrigins := getenv("CORS_ALLOWED_ORIGINS", "http://localhost:5173,http://127.0.0.1:5173")
	corsConfig.AllowOrigins = strings.Split(allowedOrigins, ",")
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, issuer)
	})

	// Register API Routes
	companyHandler.RegisterRoutes(router.Group(""))
	accountHandler.RegisterRoutes(router.Group(""))
	userHandler.RegisterRoutes(router.Group(""))
	inventoryHandler.RegisterRoutes(router.Group(""))
	projectHandler.RegisterRoutes(router.Group(""))
	auditHandler.RegisterRoutes(router.Group(""))

	port := getenv("PORT", "8080")

	log.Printf("Server listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
