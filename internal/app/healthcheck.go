package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vk/formulamap/internal/formula"
)

const shutdownTimeout = 5 * time.Second

// varView is the JSON rendering of a formula.Entry.
type varView struct {
	Name       string   `json:"name"`
	State      string   `json:"state"`
	Result     *float64 `json:"result,omitempty"`
	Error      string   `json:"error,omitempty"`
	Expression *string  `json:"expression,omitempty"`
}

func newVarView(e formula.Entry) varView {
	v := varView{Name: e.Name, State: e.Value.State().String()}
	if r, ok := e.Value.Result(); ok {
		v.Result = &r
	} else {
		v.Error = e.Value.Message()
	}
	if e.Defined {
		expression := e.Expression
		v.Expression = &expression
	}
	return v
}

// healthHandler reports that the server is up.
func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

// varsHandler writes every variable of the formula map as JSON.
func (a *App) varsHandler(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug("Vars endpoint hit.", "remote_addr", r.RemoteAddr)
	entries := a.formulas.Snapshot()
	views := make([]varView, 0, len(entries))
	for _, e := range entries {
		views = append(views, newVarView(e))
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(views); err != nil {
		a.logger.Error("Failed to encode vars response.", "error", err)
	}
}

// handler builds the HTTP routes served by the app.
func (a *App) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", a.healthHandler)
	mux.HandleFunc("GET /vars", a.varsHandler)
	mux.Handle("GET /metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
	return mux
}

// serve runs the HTTP server on ln until ctx is cancelled, then shuts it down
// gracefully.
func (a *App) serve(ctx context.Context, ln net.Listener) error {
	server := &http.Server{
		Handler:           a.handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("🩺 HTTP server starting", "address", fmt.Sprintf("http://%s", ln.Addr()))
		// Serve returns ErrServerClosed on graceful shutdown.
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	a.logger.Info("🩺 Shutting down HTTP server...")
	if err := server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("HTTP server shutdown failed", "error", err)
		return err
	}
	a.logger.Debug("HTTP server shut down gracefully.")
	return nil
}
