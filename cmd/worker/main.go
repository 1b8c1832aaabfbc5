// Command worker consumes background notification tasks.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/lena210296/ProjectBlog/internal/bootstrap"
	"github.com/lena210296/ProjectBlog/internal/cache"
	"github.com/lena210296/ProjectBlog/internal/config"
	"github.com/lena210296/ProjectBlog/internal/middleware"
	"github.com/lena210296/ProjectBlog/internal/observability"
	"github.com/lena210296/ProjectBlog/internal/tasks"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.TaskBroker == config.BrokerInline {
		log.Fatal("TASK_BROKER is inline; tasks run inside the web process and there is nothing to consume")
	}

	shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:  "projectblog-worker",
		Environment:  cfg.Env,
		Enabled:      cfg.TracingEnabled,
		Exporter:     cfg.TracingExporter,
		OTLPEndpoint: cfg.OTLPEndpoint,
		SamplerRatio: 1,
	})
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	cache.InitRedis(cfg.RedisURL)

	w := tasks.NewWorker(middleware.Logger)
	broker, err := bootstrap.NewBroker(cfg, cache.GetClient(), w)
	if err != nil {
		log.Fatalf("Failed to connect to task broker: %v", err)
	}
	defer func() { _ = broker.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := w.Run(ctx, broker.Consumer); err != nil && ctx.Err() == nil {
		log.Printf("Worker stopped with error: %v", err)
	}
}
