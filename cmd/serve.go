package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/uls-digital/migrate-cli/internal/model"
	"github.com/uls-digital/migrate-cli/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the run-status API server",
	Long:  "Serves read-only run history and ledger state over HTTP for migration dashboards.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "OPTIONS"},
		}))

		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Get("/runs", func(w http.ResponseWriter, req *http.Request) {
			filter := store.RunFilter{
				Status:   model.RunStatus(req.URL.Query().Get("status")),
				Operator: req.URL.Query().Get("operator"),
				Limit:    50,
			}
			runs, err := st.ListRuns(req.Context(), filter)
			if err != nil {
				zap.L().Error("list runs", zap.Error(err))
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "list runs failed"})
				return
			}
			writeJSON(w, http.StatusOK, runs)
		})

		r.Get("/runs/{id}", func(w http.ResponseWriter, req *http.Request) {
			run, err := st.GetRun(req.Context(), chi.URLParam(req, "id"))
			if err != nil {
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "run not found"})
				return
			}
			writeJSON(w, http.StatusOK, run)
		})

		r.Get("/inventory", func(w http.ResponseWriter, _ *http.Request) {
			ledger, err := loadLedger()
			if err != nil {
				zap.L().Error("load ledger", zap.Error(err))
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "load ledger failed"})
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"entries": ledger.Len()})
		})

		r.Get("/inventory/{id}", func(w http.ResponseWriter, req *http.Request) {
			ledger, err := loadLedger()
			if err != nil {
				zap.L().Error("load ledger", zap.Error(err))
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "load ledger failed"})
				return
			}
			entry, ok := ledger.Get(chi.URLParam(req, "id"))
			if !ok {
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "object not in ledger"})
				return
			}
			writeJSON(w, http.StatusOK, entry)
		})

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			zap.L().Info("status server listening", zap.Int("port", cfg.Server.Port))
			errCh <- srv.ListenAndServe()
		}()

		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		case err := <-errCh:
			if err != nil && err != http.ErrServerClosed {
				return eris.Wrap(err, "status server")
			}
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
