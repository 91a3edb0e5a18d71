// @title Reportabaches API
// @version 1.0
// @description Citizen reports of urban infrastructure problems with photo evidence, duplicate detection, confirmations and resolutions
// @host localhost:8080
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer <token>"
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	docs "github.com/xyz-asif/reportabaches/docs"
	"github.com/xyz-asif/reportabaches/internal/config"
	"github.com/xyz-asif/reportabaches/internal/database"
	"github.com/xyz-asif/reportabaches/internal/features/auth"
	"github.com/xyz-asif/reportabaches/internal/features/reports"
	"github.com/xyz-asif/reportabaches/internal/features/users"
	"github.com/xyz-asif/reportabaches/internal/middleware"
	"github.com/xyz-asif/reportabaches/internal/pkg/blob"
	"github.com/xyz-asif/reportabaches/internal/pkg/cloudinary"
	"github.com/xyz-asif/reportabaches/internal/pkg/events"
	"github.com/xyz-asif/reportabaches/internal/pkg/logger"
	"github.com/xyz-asif/reportabaches/internal/pkg/ratelimit"
	"github.com/xyz-asif/reportabaches/internal/routes"
)

func main() {
	cfg := config.Load()

	logger.SetGlobalLevel(logger.ParseLevel(cfg.LogLevel))
	log := logger.New(logger.ParseLevel(cfg.LogLevel))

	docs.SwaggerInfo.Title = "Reportabaches API"
	docs.SwaggerInfo.Description = "Citizen reports of urban infrastructure problems"
	docs.SwaggerInfo.Version = "1.0"
	docs.SwaggerInfo.Host = "localhost:" + cfg.Port
	docs.SwaggerInfo.BasePath = "/api/v1"
	docs.SwaggerInfo.Schemes = []string{"http"}

	ctx := context.Background()

	app, err := auth.InitFirebase(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to initialize Firebase: %v", err)
	}
	verifier, err := auth.NewFirebaseVerifier(ctx, app)
	if err != nil {
		log.Fatal("Failed to create token verifier: %v", err)
	}

	deps := routes.Dependencies{Config: cfg, Log: log}

	// Storage backend
	switch cfg.StoreBackend {
	case config.StoreFirestore:
		fs, err := database.ConnectFirestore(ctx, app)
		if err != nil {
			log.Fatal("Failed to connect to Firestore: %v", err)
		}
		defer fs.Close()
		deps.Reports = reports.NewFirestoreRepository(fs.Client)
		deps.Users = users.NewFirestoreRepository(fs.Client)
		deps.Health = fs
	default:
		db, err := database.Connect(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			log.Fatal("Failed to connect to MongoDB: %v", err)
		}
		defer db.Disconnect(context.Background())
		deps.Reports = reports.NewMongoRepository(db.Database)
		deps.Users = users.NewMongoRepository(db.Database)
		deps.Health = db
	}
	log.Info("Store backend: %s", cfg.StoreBackend)

	// Photo backend
	switch cfg.BlobBackend {
	case config.BlobCloudinary:
		cld, err := cloudinary.NewService(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryUploadFolder)
		if err != nil {
			log.Fatal("Failed to initialize Cloudinary: %v", err)
		}
		deps.Blobs = cld
	default:
		store, err := blob.NewFirebaseStore(ctx, app, cfg.FirebaseStorageBucket)
		if err != nil {
			log.Fatal("Failed to initialize Firebase Storage: %v", err)
		}
		deps.Blobs = store
	}

	deps.Publisher = events.Nop{}
	if cfg.RabbitMQURL != "" {
		rmq, err := events.NewRabbitMQ(cfg.RabbitMQURL, log.Named("events"))
		if err != nil {
			log.Warn("RabbitMQ unavailable, events disabled: %v", err)
		} else {
			defer rmq.Close()
			deps.Publisher = rmq
		}
	}

	deps.Guests = auth.NewGuestIssuer(cfg.JWTSecret, time.Duration(cfg.GuestTokenTTLHours)*time.Hour)
	deps.Authenticator = auth.NewAuthenticator(verifier, deps.Guests)

	stop := make(chan struct{})
	deps.Limiter = ratelimit.New(cfg.RateLimitPerMinute, time.Minute)
	deps.Limiter.StartCleanup(5*time.Minute, stop)

	var sweeper *reports.PhotoSweeper
	if cfg.PhotoSweepMinutes > 0 {
		sweepEvery := time.Duration(cfg.PhotoSweepMinutes) * time.Minute
		sweeper = reports.NewPhotoSweeper(deps.Reports, sweepEvery, sweepEvery, log.Named("sweeper"))
		sweeper.Start()
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(log.Named("http"), middleware.DefaultLoggerConfig()))
	router.Use(middleware.CORS(cfg.FrontendURL))

	router.GET(
		"/swagger/*any",
		ginSwagger.WrapHandler(
			swaggerFiles.Handler,
			ginSwagger.URL("/swagger/doc.json"),
			ginSwagger.DeepLinking(true),
			ginSwagger.DefaultModelsExpandDepth(-1),
			ginSwagger.DocExpansion("none"),
			ginSwagger.PersistAuthorization(true),
		),
	)

	routes.SetupRoutes(router, deps)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	if sweeper != nil {
		sweeper.Stop()
	}
	close(stop)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server exited")
}
