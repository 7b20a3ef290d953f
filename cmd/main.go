package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/lshigami/Quizzine/config"
	"github.com/lshigami/Quizzine/database"
	_ "github.com/lshigami/Quizzine/docs" // Swagger docs - auto-generated
	"github.com/lshigami/Quizzine/internal/controller"
	"github.com/lshigami/Quizzine/internal/logger"
	"github.com/lshigami/Quizzine/internal/middleware"
	"github.com/lshigami/Quizzine/internal/model"
	"github.com/lshigami/Quizzine/internal/repository"
	"github.com/lshigami/Quizzine/internal/service"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// @title Quizzine API
// @version 1.0
// @description AI quiz generation, timed quiz sessions and learning analytics.
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger.Init()

	app := fx.New(
		// Core Application Components
		fx.Provide(
			config.NewConfig,
			database.NewDatabase,
			NewGinEngine,
		),

		// Repositories Layer
		fx.Provide(
			repository.NewUserRepository,
			repository.NewQuizRepository,
			repository.NewAttemptRepository,
		),

		// Services Layer
		fx.Provide(
			service.NewAuthService,
			service.NewGenerationService,
			service.NewDocumentService,
			service.NewQuizService,
			service.NewSessionService,
			service.NewStatsService,
		),

		// API Controllers Layer
		fx.Provide(
			controller.NewAuthController,
			controller.NewQuizController,
			controller.NewSessionController,
			controller.NewStatsController,
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
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.Info().
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Str("user_agent", param.Request.UserAgent()).
			Str("error_message", param.ErrorMessage).
			Msg("gin_request")
		return ""
	}))
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"}, // Be more specific in production
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Swagger UI at /swagger/index.html
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// RegisterRoutesAndStartServer configures API routes and manages server lifecycle.
func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	authCtrl *controller.AuthController,
	quizCtrl *controller.QuizController,
	sessionCtrl *controller.SessionController,
	statsCtrl *controller.StatsController,
) {
	api := router.Group("/api/v1")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", authCtrl.Register)
		authGroup.POST("/login", authCtrl.Login)
	}

	protected := api.Group("")
	protected.Use(middleware.RequireAuth(cfg))
	{
		protected.POST("/auth/logout", authCtrl.Logout)
		protected.GET("/me", authCtrl.GetProfile)
		protected.PUT("/me", authCtrl.UpdateProfile)

		protected.POST("/quizzes/generate", quizCtrl.GenerateQuiz)
		protected.POST("/quizzes/generate-from-document", quizCtrl.GenerateQuizFromDocument)
		protected.GET("/quizzes", quizCtrl.ListQuizzes)
		protected.GET("/quizzes/:quiz_id", quizCtrl.GetQuiz)

		protected.POST("/quizzes/:quiz_id/sessions", sessionCtrl.StartSession)
		protected.GET("/sessions/:session_id", sessionCtrl.GetSession)
		protected.POST("/sessions/:session_id/answers", sessionCtrl.SelectAnswer)
		protected.POST("/sessions/:session_id/navigate", sessionCtrl.Navigate)
		protected.POST("/sessions/:session_id/submit", sessionCtrl.Submit)
		protected.DELETE("/sessions/:session_id", sessionCtrl.CloseSession)

		protected.GET("/attempts", statsCtrl.History)
		protected.GET("/dashboard", statsCtrl.Dashboard)
		protected.GET("/analytics", statsCtrl.Analytics)
	}

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("Quizzine API server starting on port %s", cfg.Server.Port)
			log.Info().Msgf("Swagger UI available at http://localhost:%s/swagger/index.html", cfg.Server.Port)
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
		&model.User{},
		&model.Quiz{},
		&model.Question{},
		&model.QuizAttempt{},
	)
	if err != nil {
		log.Error().Err(err).Msg("Database migration failed")
		return err
	}
	log.Info().Msg("Database migration completed successfully.")
	return nil
}
