package main

import (
	"context"
	"log"
	"os"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"

	"github.com/Tsiatosika/Todo-project/config"
	"github.com/Tsiatosika/Todo-project/modules/activity"
	"github.com/Tsiatosika/Todo-project/modules/api"
	cachemod "github.com/Tsiatosika/Todo-project/modules/cache"
	"github.com/Tsiatosika/Todo-project/modules/task"
	"github.com/Tsiatosika/Todo-project/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	level := mono.LogLevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = mono.LogLevelDebug
	case "warn":
		level = mono.LogLevelWarn
	case "error":
		level = mono.LogLevelError
	}

	// Create mono application
	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(cfg.ShutdownTimeout),
		mono.WithLogLevel(level),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	logger := app.Logger()

	// Order: independent modules first, then modules with dependencies
	activityModule := activity.NewModule(activity.DefaultCapacity, logger)

	var taskOpts []task.Option
	apiOpts := []api.Option{
		api.WithActivityFeed(activityModule.Entries),
		api.WithHealthCheck("activity", activityModule.Health),
	}
	if cfg.CacheEnabled() {
		cacheModule := cachemod.NewModule(cfg.RedisAddr, cfg.CachePrefix, cfg.CacheTTL, logger)
		taskOpts = append(taskOpts, task.WithListCache(task.NewRedisListCache(cacheModule.TaskList())))
		apiOpts = append(apiOpts, api.WithHealthCheck("cache", cacheModule.Health))
		app.Register(cacheModule)
	}

	taskModule := task.NewModule(task.Config{
		StoreURL: cfg.StoreURL,
		Bucket:   cfg.StoreBucket,
		Debug:    cfg.DBDebug,
	}, logger, taskOpts...)
	apiOpts = append(apiOpts, api.WithHealthCheck("task", taskModule.Health))
	apiModule := api.NewModule(cfg.Port, logger, apiOpts...)

	app.Register(activityModule) // Event consumer (subscribes to task events)
	app.Register(taskModule)     // Core domain (owns the store, emits events)
	app.Register(apiModule)      // Driving adapter (depends on task)

	// Start application
	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo(logger, cfg)

	// Graceful shutdown
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				logger.Info("Graceful shutdown initiated")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	logger.Info("Application exited", "code", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo(logger types.Logger, cfg *config.Config) {
	backend, _ := storage.Backend(cfg.StoreURL)
	logger.Info("Task API started",
		"port", cfg.Port,
		"store", backend,
		"store_url", storage.Redact(cfg.StoreURL),
		"cache", cfg.CacheEnabled())
	logger.Info("REST API endpoints",
		"endpoints", []string{
			"GET    /          - API description",
			"GET    /tasks     - List tasks, newest first",
			"POST   /tasks     - Create a task",
			"PUT    /tasks/:id - Update a task",
			"DELETE /tasks/:id - Delete a task",
			"GET    /activity  - Recent task activity",
			"GET    /health    - Health check",
		})
	logger.Info("Press Ctrl+C to shutdown gracefully")
}
