package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/lshigami/classroom/config"
	"github.com/lshigami/classroom/database"
	_ "github.com/lshigami/classroom/docs"
	"github.com/lshigami/classroom/internal/controller"
	"github.com/lshigami/classroom/internal/controller/student"
	"github.com/lshigami/classroom/internal/controller/teacher"
	"github.com/lshigami/classroom/internal/logger"
	"github.com/lshigami/classroom/internal/repository"
	"github.com/lshigami/classroom/internal/service"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
)

// @title Classroom Assessment API
// @version 1.0
// @description Problem authoring, AI-assisted problem generation, student submissions and grading for a school classroom.
// @description Every request carries the caller in the X-User-ID and X-User-Role headers.
// @contact.name API Support
// @contact.email support@example.com
// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
func main() {
	logger.Init()

	app := fx.New(
		fx.Provide(
			config.NewConfig,
			database.NewDatabase,
			NewGinEngine,
		),

		// Stores
		fx.Provide(
			repository.NewProblemRepository,
			repository.NewPoolRepository,
			repository.NewSubmissionRepository,
			repository.NewSnapshotRepository,
		),

		fx.Provide(
			service.NewPersistenceService,
			func(p service.PersistenceService) service.ChangeNotifier { return p },
			service.NewGeminiLLMService,
			service.NewProblemService,
			service.NewGradingService,
			service.NewSubmissionService,
			service.NewCatalogService,
		),

		fx.Provide(
			teacher.NewTeacherProblemController,
			student.NewStudentProblemController,
		),

		fx.Invoke(ApplyLogLevel),
		fx.Invoke(MigrateAndRestore),
		fx.Invoke(RegisterRoutesAndStartServer),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")

	stopCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := app.Stop(stopCtx); err != nil {
		log.Error().Err(err).Msg("Failed to stop application cleanly")
	}
}

func ApplyLogLevel(cfg *config.Config) {
	logger.SetLevel(cfg.LogLevel)
}

func NewGinEngine(cfg *config.Config) *gin.Engine {
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
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", controller.HeaderUserID, controller.HeaderUserRole},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: !allowsAny(cfg.Server.AllowedOrigins),
		MaxAge:           12 * time.Hour,
	}))

	// http://localhost:PORT/swagger/index.html
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/healthz", func(ctx *gin.Context) { ctx.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	return r
}

func allowsAny(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}

// MigrateAndRestore prepares the tables, loads the last saved state into the
// stores and ties the background writer to the app lifecycle.
func MigrateAndRestore(lc fx.Lifecycle, snapshots repository.SnapshotRepository, persistence service.PersistenceService) error {
	if err := snapshots.Migrate(); err != nil {
		log.Error().Err(err).Msg("Database migration failed")
		return err
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := persistence.Restore(ctx); err != nil {
				return err
			}
			return persistence.Start(ctx)
		},
		OnStop: persistence.Stop,
	})
	return nil
}

func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	teacherCtrl *teacher.TeacherProblemController,
	studentCtrl *student.StudentProblemController,
) {
	api := router.Group("/api/v1", controller.Identity())
	teacherCtrl.RegisterRoutes(api.Group("/teacher"))
	studentCtrl.RegisterRoutes(api.Group("/student"))

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("Classroom API server starting on port %s", cfg.Server.Port)
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
