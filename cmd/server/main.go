// Command server runs the blog web application.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/lena210296/ProjectBlog/internal/config"
	"github.com/lena210296/ProjectBlog/internal/observability"
	"github.com/lena210296/ProjectBlog/internal/server"
)

const drainTimeout = 10 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	stopTracing, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    "projectblog",
		ServiceVersion: "1.0.0",
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   1,
	})
	if err != nil {
		log.Fatalf("tracing: %v", err)
	}

	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("startup: %v", err)
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-sigCtx.Done()

		ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("shutdown: %v", err)
		}
		if err := stopTracing(ctx); err != nil {
			log.Printf("tracing shutdown: %v", err)
		}
	}()

	if err := srv.Start(); err != nil {
		log.Fatalf("listen: %v", err)
	}
	<-stopped
}
