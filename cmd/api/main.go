package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"imageprompt/internal/http/handlers"
	httpapi "imageprompt/internal/http/httpapi"
	"imageprompt/internal/imageprompt"
	"imageprompt/internal/infra"
	"imageprompt/internal/providers/coze"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	cozeClient, err := coze.NewClient(coze.Options{
		APIKey:         cfg.CozeAPIToken,
		WorkflowID:     cfg.CozeWorkflowID,
		BaseURL:        cfg.CozeBaseURL,
		RequestTimeout: cfg.CozeRequestTimeout,
		PollInterval:   cfg.CozePollInterval,
		MaxAttempts:    cfg.CozePollAttempts,
		Logger:         &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure coze client")
	}

	prompts, err := imageprompt.NewService(imageprompt.Options{
		Workflow:       cozeClient,
		MaxUploadBytes: cfg.MaxUploadBytes,
		Timeout:        cfg.PromptTimeout,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build prompt service")
	}

	app := handlers.NewApp(prompts, cfg.MaxUploadBytes)
	router := httpapi.NewRouter(app, cfg, logger)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().
			Str("workflow_id", cozeClient.WorkflowID()).
			Dur("poll_budget", cozeClient.PollBudget()).
			Msgf("API listening on %s", server.Addr())
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	// in-flight polls get their own budget to finish
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.PromptTimeout+5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
