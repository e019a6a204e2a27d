package app

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"ets/pkg/api"
	"ets/pkg/banner"
)

// printBanner prints the startup banner and build info.
func (a *App) printBanner() {
	verStr := a.version
	if a.commit != "none" {
		verStr += " (" + a.commit + ")"
	}
	if a.buildDate != "unknown" {
		verStr += " @ " + a.buildDate
	}
	banner.Print(a.eff, verStr)
}

// setupRoutes attaches all HTTP routes to the router.
func (a *App) setupRoutes(r *mux.Router) {
	r.HandleFunc("/healthz", healthzHandler)
	r.HandleFunc("/readyz", a.readyzHandler)
	r.Handle("/metrics", promhttp.Handler())
	r.PathPrefix("/docs/").Handler(httpSwagger.Handler(httpSwagger.URL("/openapi.yaml")))
	r.Handle("/openapi.yaml", http.FileServer(http.Dir("./docs")))

	var options []api.Option
	if a.jnl.Ready() {
		options = append(options, api.WithJournalRoutes())
	}
	api.New(a.reg, options...).Register(r)

	r.HandleFunc("/", indexHandler)
}

// readyzHandler reports readiness: the journal must be open when configured.
func (a *App) readyzHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if a.eff.Config.Journal.Path != "" && !a.jnl.Ready() {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"status":"not ready"}`))
		return
	}
	ver := a.version
	if ver == "" {
		ver = "dev"
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok","version":"` + ver + `"}`))
}

// healthzHandler handles the /healthz endpoint.
func healthzHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// indexHandler lists the API surface for quick orientation.
func indexHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"endpoints":[` +
		`"PUT /api/v1/instance",` +
		`"GET /api/v1/instances",` +
		`"GET /api/v1/instance/{id}",` +
		`"DELETE /api/v1/instance/{id}",` +
		`"DELETE /api/v1/clients",` +
		`"POST /api/v1/instance/{id}/sendText",` +
		`"POST /api/v1/instance/{id}/getMessages",` +
		`"GET /api/v1/log",` +
		`"GET /healthz","GET /readyz","GET /metrics","GET /docs/"]}`))
}

// startHTTP builds the handler, starts the HTTP server in a goroutine and
// returns a channel that will contain any server error.
func (a *App) startHTTP(_ context.Context) <-chan error {
	router := mux.NewRouter()
	a.setupRoutes(router)

	rl := a.eff.Config.Security.RateLimit
	router.Use(
		api.LoggingMiddleware,
		api.MetricsMiddleware,
		api.RateLimitMiddleware(rl.RPS, rl.Burst),
	)

	a.srv = &http.Server{Addr: a.eff.Addr, Handler: router}

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.srv.ListenAndServe()
	}()
	return errCh
}
