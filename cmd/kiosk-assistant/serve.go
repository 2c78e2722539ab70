// cmd/kiosk-assistant/serve.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kiosk-dialog/internal/common/camunda"
	"kiosk-dialog/internal/common/logger"
	"kiosk-dialog/internal/common/observability"
	dialogreply "kiosk-dialog/internal/workers/dialog/dialog-reply"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dialog-reply Zeebe worker",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}
	log := newLogger(cfg)
	log.Info("Starting kiosk assistant worker...", map[string]interface{}{
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	obs := observability.New(cfg.App.Name, log)
	defer obs.Shutdown()

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	zeebe, err := camunda.NewClient(ctx, cfg.Camunda.BrokerAddress, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := zeebe.Close(); err != nil {
			log.Error("Error closing Zeebe client", map[string]interface{}{"error": err.Error()})
		}
	}()
	log.Info("Zeebe client connected successfully", map[string]interface{}{
		"broker": cfg.Camunda.BrokerAddress,
	})

	handler, err := dialogreply.NewHandler(dialogreply.HandlerOptions{
		AppConfig:     cfg,
		Responder:     a.tracker,
		Observability: obs,
		Logger:        log,
	})
	if err != nil {
		return err
	}

	if wcfg := handler.Config(); wcfg.Enabled {
		w := camunda.StartWorker(zeebe.GetClient(), camunda.WorkerOptions{
			TaskType:      dialogreply.TaskType,
			MaxJobsActive: wcfg.MaxJobsActive,
			Timeout:       wcfg.Timeout,
		}, handler.Handle, log)
		defer w.Stop()
	} else {
		log.Info("worker disabled", map[string]interface{}{"taskType": dialogreply.TaskType})
	}

	server := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: newServerMux(func(ctx context.Context) error {
			if err := zeebe.HealthCheck(ctx); err != nil {
				return err
			}
			return a.ping(ctx)
		}, log),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("Health/Metrics server listening", map[string]interface{}{"addr": server.Addr})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Health/Metrics server failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	<-ctx.Done()
	log.Info("Shutdown signal received, stopping worker...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Health/Metrics server shutdown failed", map[string]interface{}{"error": err.Error()})
	}

	log.Info("Kiosk assistant stopped gracefully", nil)
	return nil
}

// newServerMux serves /health, /ready and /metrics. ready reports whether
// the worker's dependencies answer.
func newServerMux(ready func(context.Context) error, log logger.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "healthy", "")
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		if err := ready(ctx); err != nil {
			log.Warn("readiness check failed", map[string]interface{}{"error": err.Error()})
			writeStatus(w, http.StatusServiceUnavailable, "not ready", err.Error())
			return
		}
		writeStatus(w, http.StatusOK, "ready", "")
	})
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func writeStatus(w http.ResponseWriter, code int, status, reason string) {
	body := map[string]string{
		"status": status,
		"time":   time.Now().Format(time.RFC3339),
	}
	if reason != "" {
		body["error"] = reason
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}
