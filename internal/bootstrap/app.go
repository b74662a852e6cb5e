package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"chatlens-backend/internal/analysis"
	"chatlens-backend/internal/llm"
	"chatlens-backend/internal/llm/gigachat"
	"chatlens-backend/internal/llm/ollama"
	"chatlens-backend/internal/llm/openai"
	"chatlens-backend/internal/messages"
	"chatlens-backend/internal/queue"
	"chatlens-backend/internal/schedules"
	"chatlens-backend/internal/shared/config"
	"chatlens-backend/internal/shared/server"
	"chatlens-backend/internal/shared/storage/db"
	"chatlens-backend/internal/shared/storage/object"
	localstore "chatlens-backend/internal/shared/storage/object/local"
	s3store "chatlens-backend/internal/shared/storage/object/s3"
	"chatlens-backend/internal/summaries"
	"chatlens-backend/internal/workerproc"
)

// App holds the wired dependencies of one process.
type App struct {
	Config          config.Config
	Router          *gin.Engine
	DB              *sql.DB
	Store           object.ObjectStore
	Queue           queue.Client
	Providers       *llm.Registry
	MessagesRepo    messages.Repo
	SchedulesRepo   schedules.Repo
	SummariesRepo   summaries.Repo
	AnalysisService *analysis.Service
	AnalysisHandler *analysis.Handler
	JobProcessor    workerproc.Processor
}

// Build prepares shared dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	queueClient, err := buildQueue(ctx)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:    cfg,
		DB:        sqlDB,
		Store:     store,
		Queue:     queueClient,
		Providers: buildProviders(cfg),
	}

	buildServices(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          app.Config,
		AnalysisHandler: app.AnalysisHandler,
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildQueue(ctx context.Context) (queue.Client, error) {
	if strings.TrimSpace(os.Getenv("CL_SQS_QUEUE_URL")) == "" {
		return nil, nil
	}
	return queue.NewSQSClient(ctx)
}

func buildProviders(cfg config.Config) *llm.Registry {
	registry := llm.NewRegistry()
	registry.Register(openai.New(cfg.OpenAIAPIKey, cfg.LLMModel))
	registry.Register(gigachat.New(cfg.GigaChatAuthKey, cfg.GigaChatScope, cfg.LLMModel))
	registry.Register(ollama.New(cfg.OllamaBaseURL, cfg.OllamaModel))
	return registry
}

func buildServices(app *App) {
	var (
		messagesRepo  messages.Repo
		schedulesRepo schedules.Repo
		summariesRepo summaries.Repo
	)
	if app.DB != nil {
		messagesRepo = &messages.PGRepo{DB: app.DB}
		schedulesRepo = &schedules.PGRepo{DB: app.DB}
		summariesRepo = &summaries.PGRepo{DB: app.DB}
	} else {
		messagesRepo = messages.NewMemoryRepo()
		schedulesRepo = schedules.NewMemoryRepo()
		summariesRepo = summaries.NewMemoryRepo()
	}

	svc := &analysis.Service{
		Providers:       app.Providers,
		Executor:        analysis.NewExecutor(),
		Messages:        messagesRepo,
		Schedules:       schedulesRepo,
		Summaries:       summariesRepo,
		Store:           app.Store,
		JobQueue:        app.Queue,
		RunLogDir:       app.Config.RunLogDir,
		ArchiveRunLogs:  app.Config.ArchiveRunLogs,
		DefaultProvider: app.Config.LLMProvider,
		DefaultModel:    app.Config.LLMModel,
	}

	app.MessagesRepo = messagesRepo
	app.SchedulesRepo = schedulesRepo
	app.SummariesRepo = summariesRepo
	app.AnalysisService = svc
	app.AnalysisHandler = analysis.NewHandler(svc, summariesRepo)
	// Jobs may run every pipeline step, so the deadline covers the worst case.
	jobTimeout := time.Duration(app.Config.StepTimeoutSecs) * time.Second * time.Duration(len(analysis.AllSteps()))
	app.JobProcessor = jobProcessor{service: svc, timeout: jobTimeout}
}

// jobProcessor adapts the analysis service to the worker's queue contract.
type jobProcessor struct {
	service *analysis.Service
	timeout time.Duration
}

func (p jobProcessor) ProcessJob(ctx context.Context, msg queue.Message) error {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	result, err := p.service.Run(ctx, analysis.RunParams{
		ChatID:   msg.ChatID,
		GroupID:  msg.GroupID,
		Date:     msg.Date,
		Preset:   msg.Preset,
		Steps:    msg.Steps,
		Provider: msg.Provider,
		Model:    msg.Model,
	})
	if err != nil {
		return err
	}
	if !result.Success {
		return fmt.Errorf("analysis failed: %s", result.Error)
	}
	return nil
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
