package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"worktime/config"
	"worktime/internal/auth"
	"worktime/internal/logger"
	"worktime/service"
	"worktime/web"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the JSON API",
	Long: `Start the HTTP server exposing time entries, tasks and admin reports.

Every /api route requires "Authorization: Bearer <token>" (see "worktime token").
Send "X-Timezone: <IANA zone>" to interpret and label wall-clock times in your
own zone; otherwise display.timezone from the configuration is used.`,
	Example: `
  # Start on the configured port
  worktime serve

  # Start on a custom port
  worktime serve --port 9090
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cfg, store, err := loadConfigAndStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		port := cfg.Server.Port
		if cmd.Flags().Changed("port") {
			port = servePort
		}

		server := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           newAPIHandler(cfg, store),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			errCh <- server.ListenAndServe()
		}()
		logger.Info("listening", zap.String("addr", server.Addr), zap.String("driver", cfg.Storage.Driver))

		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown server: %w", err)
			}
			err := <-errCh
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			logger.Info("server stopped")
			return nil
		}
	},
}

func newAPIHandler(cfg *config.Config, store service.Store) http.Handler {
	authz := service.RoleAuthorizer{Users: store}
	return web.NewServer(web.Services{
		Entries: service.NewTimeEntryService(store),
		Tasks:   service.NewTaskService(store, store, authz),
		Admin:   service.NewAdminService(store, store, authz),
	}, web.Options{
		Auth:           authConfig(cfg),
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Location:       cfg.Location(),
		Locale:         cfg.Locale(),
		Health:         store.Ping,
	})
}

func authConfig(cfg *config.Config) auth.Config {
	return auth.Config{Secret: cfg.Auth.JWTSecret, Issuer: cfg.Auth.Issuer, TTL: cfg.Auth.TokenTTL}
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVar(&servePort, "port", 8080, "HTTP port (overrides server.port)")
}
