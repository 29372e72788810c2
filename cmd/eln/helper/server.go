package helper

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"k8s.io/klog/v2"

	"github.com/dsnakex/Dashboard-ELN/internal"
	"github.com/dsnakex/Dashboard-ELN/internal/handler"
	"github.com/dsnakex/Dashboard-ELN/pkg/config"
	"github.com/dsnakex/Dashboard-ELN/pkg/monitor"
)

// ServerRunner owns the HTTP listeners and their shutdown sequence.
type ServerRunner struct {
	backendConfig *config.Config
}

func NewServerRunner(backendConfig *config.Config) *ServerRunner {
	return &ServerRunner{
		backendConfig: backendConfig,
	}
}

var (
	readHeaderTimeout = 10 * time.Second
	cancelTimeout     = 10 * time.Second
)

// StartMetricsServer serves Prometheus metrics on its own listener so
// scrapes never compete with API traffic.
func (sr *ServerRunner) StartMetricsServer() {
	if sr.backendConfig.MetricsAddr == "" {
		return
	}
	engine := gin.New()
	engine.GET("/metrics", monitor.Handler())
	srv := &http.Server{
		Addr:              sr.backendConfig.MetricsAddr,
		Handler:           engine,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			klog.Fatalf("metrics listen: %s\n", err)
		}
	}()
}

// StartServer runs the API server until SIGINT or SIGTERM.
func (sr *ServerRunner) StartServer(registerConfig *handler.RegisterConfig) {
	klog.Info("starting server")
	backend := internal.Register(registerConfig)

	// reference: https://gin-gonic.com/en/docs/examples/graceful-restart-or-stop
	srv := &http.Server{
		Addr:              sr.backendConfig.ServerAddr,
		Handler:           backend.R,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			klog.Fatalf("listen: %s\n", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	klog.Info("Shutdown Gin Server ...")

	ctx, cancel := context.WithTimeout(context.Background(), cancelTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		klog.Info("Gin Server Shutdown:", err)
	}
	klog.Info("Gin Server exiting")
}
