package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"workshop-backend/internal/document"
	"workshop-backend/internal/history"
	"workshop-backend/internal/llm"
	openai "workshop-backend/internal/llm/openai"
	"workshop-backend/internal/shared/config"
	"workshop-backend/internal/shared/server"
	"workshop-backend/internal/shared/storage/db"
	"workshop-backend/internal/workshop"
)

// App holds shared dependencies wired from configuration.
type App struct {
	Config   config.Config
	Router   *gin.Engine
	DB       *sql.DB
	Archive  history.Archive
	Template document.Template
	Content  llm.ContentClient
	Reply    llm.ReplyClient
	Manager  *workshop.Manager
	Handler  *workshop.Handler
}

// Build prepares shared dependencies and the HTTP router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	ctx := context.Background()

	tmpl, err := buildTemplate(cfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var archive history.Archive
	if sqlDB != nil {
		archive = &history.PGArchive{DB: sqlDB}
	} else {
		archive = history.NewMemoryArchive()
	}

	content, reply, err := buildClients(cfg)
	if err != nil {
		return nil, err
	}

	manager := workshop.NewManager(workshop.ManagerConfig{
		Template:          tmpl,
		Content:           content,
		Reply:             reply,
		Archive:           archive,
		GenerationTimeout: cfg.GenerationTimeout,
		ReplyTimeout:      cfg.ReplyTimeout,
		HistoryKeep:       cfg.HistoryKeep,
	})
	handler := workshop.NewHandler(manager)

	app := &App{
		Config:   cfg,
		DB:       sqlDB,
		Archive:  archive,
		Template: tmpl,
		Content:  content,
		Reply:    reply,
		Manager:  manager,
		Handler:  handler,
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:   cfg,
		Workshop: handler,
	})

	return app, nil
}

func buildTemplate(cfg config.Config) (document.Template, error) {
	if strings.TrimSpace(cfg.TemplateFile) == "" {
		return document.Default(), nil
	}
	tmpl, err := document.LoadTemplateFile(cfg.TemplateFile)
	if err != nil {
		return document.Template{}, fmt.Errorf("load template %s: %w", cfg.TemplateFile, err)
	}
	return tmpl, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory snapshot archive")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory snapshot archive: %v", err)
			return nil, nil
		}
		return nil, err
	}
	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: migrations failed; using in-memory snapshot archive: %v", err)
			return nil, nil
		}
		return nil, err
	}

	return sqlDB, nil
}

func buildClients(cfg config.Config) (llm.ContentClient, llm.ReplyClient, error) {
	if cfg.LLMProvider == "openai" && strings.TrimSpace(cfg.OpenAIAPIKey) != "" {
		client, err := openai.NewClient(cfg.OpenAIAPIKey, cfg.LLMModel)
		if err != nil {
			return nil, nil, err
		}
		return client, client, nil
	}
	canned := llm.Canned{}
	return canned, canned, nil
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
