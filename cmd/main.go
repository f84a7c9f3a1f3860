package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/vhducng/certprep/config"
	"github.com/vhducng/certprep/database"
	_ "github.com/vhducng/certprep/docs"
	"github.com/vhducng/certprep/internal/controller"
	"github.com/vhducng/certprep/internal/logger"
	"github.com/vhducng/certprep/internal/model"
	"github.com/vhducng/certprep/internal/repository"
	"github.com/vhducng/certprep/internal/service"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// @title Certification Practice Test API
// @version 1.0
// @description Generates multiple-choice practice tests for certification exams from a study guide URL and scores submissions against the stored answer key.
// @host localhost:3000
// @BasePath /
// @schemes http https
func main() {
	logger.Init()

	app := fx.New(
		// Core application components
		fx.Provide(
			config.NewConfig,
			database.NewDatabase,
			NewGinEngine,
		),

		// Repositories layer
		fx.Provide(
			repository.NewTestRepository,
			repository.NewSessionRepository,
		),

		// Services layer
		fx.Provide(
			service.NewContentExtractorService,
			service.NewTopicFinderService,
			service.NewSearchService,
			service.NewGeminiCompletionService,
			service.NewQuestionSynthesizerService,
			service.NewTestAssemblerService,
			service.NewScorerService,
			service.NewSubmissionService,
			service.NewTestQueryService,
		),

		// API controllers layer
		fx.Provide(
			controller.NewTestController,
			controller.NewSearchController,
		),

		fx.Invoke(RegisterRoutesAndStartServer),
		fx.Invoke(AutoMigrateDB),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")
}

func NewGinEngine() *gin.Engine {
	r := gin.New()

	// Request logging through zerolog instead of Gin's default logger.
	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.Info().
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Str("error_message", param.ErrorMessage).
			Msg("gin_request")
		return ""
	}))
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// RegisterRoutesAndStartServer configures API routes and manages the server lifecycle.
func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	testCtrl *controller.TestController,
	searchCtrl *controller.SearchController,
) {
	router.GET("/healthz", controller.Health)

	api := router.Group("/api")
	{
		api.GET("/search", searchCtrl.Search)
		api.POST("/generate-test", testCtrl.GenerateTest)
		api.GET("/tests", testCtrl.ListTests)
		api.GET("/test/:id", testCtrl.GetTest)
		api.GET("/test/:id/answers", testCtrl.GetTestAnswers)
		api.POST("/test/:id/submit", testCtrl.SubmitTest)
		api.GET("/test/:id/sessions", testCtrl.ListSessions)
	}

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("Practice test API server starting on port %s", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("Server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	})
}

func AutoMigrateDB(db *gorm.DB) error {
	log.Info().Msg("Running database migrations...")
	err := db.AutoMigrate(
		&model.PracticeTest{},
		&model.Question{},
		&model.SubmissionSession{},
	)
	if err != nil {
		log.Error().Err(err).Msg("Database migration failed")
		return err
	}
	log.Info().Msg("Database migration completed successfully")
	return nil
}
