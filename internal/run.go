package internal

import (
	"errors"
	"net/http"

	"github.com/go-strada/strada/pkg/hostrouter"
)

// Run starts a multi-domain HTTP server and blocks until shutdown.
// Use this for composing multiple Apps under different domain patterns.
// Schedulers configured on any of the apps start automatically before
// serving requests and stop gracefully during shutdown.
//
// Example:
//
//	api, _ := strada.New(
//	    strada.WithHandlers(handlers.NewAPIHandler()),
//	)
//
//	website, _ := strada.New(
//	    strada.WithHandlers(handlers.NewLandingHandler()),
//	)
//
//	err := strada.Run(
//	    strada.Domain("api.acme.com", api),
//	    strada.Domain("*.acme.com", website),
//	    strada.Address(":8080"),
//	    strada.Logger(slog),
//	)
func Run(opts ...RunOption) error {
	cfg := buildRunConfig(opts...)

	var handler http.Handler

	// Collect all apps for scheduler registration
	var allApps []*App

	if len(cfg.domains) > 0 {
		// Build host router from domain mappings
		routes := make(hostrouter.Routes)
		for pattern, app := range cfg.domains {
			routes[pattern] = app
			allApps = append(allApps, app)
		}

		// Determine fallback handler
		var fallback http.Handler = http.NotFoundHandler()
		if cfg.fallback != nil {
			fallback = cfg.fallback
			allApps = append(allApps, cfg.fallback)
		}

		handler = hostrouter.New(routes, fallback)
	} else if cfg.fallback != nil {
		// No domains, but fallback provided - use as main handler
		handler = cfg.fallback
		allApps = append(allApps, cfg.fallback)
	} else {
		return errors.New("strada.Run: no domains or fallback configured")
	}

	// Collect scheduler hooks from all apps
	startupHooks := cfg.startupHooks
	shutdownHooks := cfg.shutdownHooks

	for _, app := range allApps {
		startup, shutdown := app.schedulerHooks()
		startupHooks = append(startup, startupHooks...)
		shutdownHooks = append(shutdownHooks, shutdown...)
	}

	return runServer(runtimeConfig{
		handler:         handler,
		address:         cfg.address,
		logger:          cfg.logger,
		shutdownTimeout: cfg.shutdownTimeout,
		startupHooks:    startupHooks,
		shutdownHooks:   shutdownHooks,
		baseCtx:         cfg.baseCtx,
	})
}
