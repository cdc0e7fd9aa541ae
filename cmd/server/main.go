package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"convoy/internal/configuration"
	configmetrics "convoy/internal/configuration/metrics"
	"convoy/internal/configuration/registry"
	"convoy/internal/configuration/resolver"
	"convoy/internal/configuration/resolver/tracer"
	"convoy/internal/configuration/subscription"
	deployhandler "convoy/internal/deploy/handler"
	deployservice "convoy/internal/deploy/service"
	"convoy/internal/engine/memory"
	"convoy/internal/lifecycle"
	lifecyclemetrics "convoy/internal/lifecycle/metrics"
	operationhandler "convoy/internal/operation/handler"
	"convoy/internal/platform/config"
	"convoy/internal/platform/logger"
	"convoy/pkg/platform/middleware/auth"
	"convoy/pkg/platform/middleware/request"
)

// DefinitionKeyDeploy is the process definition operators start deployments
// from. The demo engine deploys version 1 at boot.
const DefinitionKeyDeploy = "deploy"

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	log.Info("initializing convoy",
		"addr", cfg.Addr,
		"abort_timeout", cfg.AbortTimeout,
	)

	eng := memory.New()
	eng.Deploy(DefinitionKeyDeploy)

	controller := lifecycle.NewController(eng, log,
		lifecycle.WithMetrics(lifecyclemetrics.New()),
		lifecycle.WithAbortTimeout(cfg.AbortTimeout),
		lifecycle.WithResumePollInterval(cfg.ResumePollInterval))
	dispatcher := lifecycle.NewDispatcher(controller, log)

	cfgMetrics := configmetrics.New()
	resolverOpts := []resolver.Option{
		resolver.WithMetrics(cfgMetrics),
		resolver.WithTracer(tracer.NewOTel("convoy/resolver")),
	}
	if cfg.OrgName != "" && cfg.GlobalConfigSpace != "" {
		resolverOpts = append(resolverOpts, resolver.WithGlobalTarget(configuration.Target{
			Org:   cfg.OrgName,
			Space: cfg.GlobalConfigSpace,
		}))
	}
	references := resolver.NewReferencesResolver(registry.NewMemory(), log, resolverOpts...)
	subscriptions := subscription.NewFactory(log, subscription.WithMetrics(cfgMetrics))
	deploy := deployservice.NewService(references, subscriptions, log)

	validator := auth.NewHMACValidator(cfg.JWTSigningKey)

	router := chi.NewRouter()
	router.Use(request.RequestID)
	router.Use(request.Recovery(log))

	router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Handle("/metrics", promhttp.Handler())

	router.Group(func(r chi.Router) {
		r.Use(auth.Middleware(validator, log))
		operationhandler.New(controller, dispatcher, log).Register(r)
		deployhandler.New(deploy, log).Register(r)
	})

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	log.Info("starting http server", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown on SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	log.Info("shutting down server gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}
