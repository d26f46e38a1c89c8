package bootstrap

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/jarvisai/assistant-go/app/controllers"
	"github.com/jarvisai/assistant-go/app/router"
	"github.com/jarvisai/assistant-go/internal/config"
	"github.com/jarvisai/assistant-go/internal/di"
	"github.com/jarvisai/assistant-go/internal/logger"
	"github.com/jarvisai/assistant-go/internal/rag"
	"github.com/jarvisai/assistant-go/internal/services"
	"github.com/jarvisai/assistant-go/internal/utils"
)

// App encapsulates lifecycle resources that need to be cleaned up on shutdown.
type App struct {
	cleanupTasks []func() error
	cancel       context.CancelFunc
}

// Global app instance for controllers to access
var globalApp *App

// GetApp returns the global app instance
func GetApp() *App {
	return globalApp
}

// Init bootstraps configuration, logger, service wiring and other shared
// infrastructure components required by the Beego application.
func Init() (*App, error) {
	// Load environment variables from .env if present (non-fatal if missing).
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	// Initialize structured logger.
	if err := logger.InitLogger(); err != nil {
		return nil, err
	}

	// Load dynamic configuration.
	if err := config.LoadConfig(); err != nil {
		return nil, err
	}

	if err := utils.EnsureDirectories(config.AppConfig.Paths.UploadDir, config.AppConfig.Paths.DataDir); err != nil {
		return nil, err
	}
	for _, check := range utils.CheckEnvironment() {
		if !check.Ok {
			logger.Warn("Environment check", zap.String("name", check.Name), zap.String("message", check.Message))
		}
	}

	container := di.InitContainer()
	if err := di.RegisterProviders(container); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	app := &App{cancel: cancel}

	// Verify embedding and index dimensions agree before serving.
	if err := di.Invoke(func(ingestion *rag.Ingestion) {
		if err := ingestion.CheckDimensions(); err != nil {
			logger.Warn("Dimension check failed, ingestion will be refused", zap.Error(err))
		}
	}); err != nil {
		cancel()
		return nil, err
	}

	// Watch the data directory for new documents.
	if err := di.Invoke(func(watcher *services.WatcherService) error {
		if err := watcher.Start(ctx); err != nil {
			logger.Warn("Data directory watcher disabled", zap.Error(err))
			return nil
		}
		app.cleanupTasks = append(app.cleanupTasks, func() error {
			watcher.Stop()
			return nil
		})
		return nil
	}); err != nil {
		cancel()
		return nil, err
	}

	// Register routes with controllers built from the container.
	if err := di.Invoke(func(
		assistant *services.AssistantService,
		documents *services.DocumentService,
		metrics *services.MetricsService,
		sessions *services.SessionService,
		embedder rag.Embedder,
		store rag.VectorStore,
		synthesizer *rag.Synthesizer,
	) {
		router.Init(router.Controllers{
			Chat:      controllers.NewChatController(assistant),
			Documents: controllers.NewDocumentController(documents),
			Status:    controllers.NewStatusController(embedder, store, synthesizer, sessions),
			Metrics:   controllers.NewMetricsController(metrics),
		})
	}); err != nil {
		cancel()
		return nil, err
	}

	globalApp = app
	return app, nil
}

// Shutdown runs cleanup tasks in reverse registration order.
func (a *App) Shutdown() {
	a.cancel()
	for i := len(a.cleanupTasks) - 1; i >= 0; i-- {
		if err := a.cleanupTasks[i](); err != nil {
			logger.Error("Cleanup task failed", zap.Error(err))
		}
	}
	logger.Sync()
}
