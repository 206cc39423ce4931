package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	"github.com/spf13/cobra"

	"github.com/frahmantamala/salary-advance/internal/advance"
	"github.com/frahmantamala/salary-advance/internal/notification"
	"github.com/frahmantamala/salary-advance/internal/payment"
	"github.com/frahmantamala/salary-advance/internal/reimbursement"
	"github.com/frahmantamala/salary-advance/internal/transport"
	"github.com/frahmantamala/salary-advance/internal/transport/rest"
	"github.com/frahmantamala/salary-advance/internal/user"
	"github.com/frahmantamala/salary-advance/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

func startHTTPServer() {
	cfg, err := loadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	lg := logger.LoggerWrapper()

	app, err := newApp(context.Background(), cfg, lg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	router := chi.NewRouter()
	if err := setupRoutes(router, app); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to register routes: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	lg.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		lg.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			lg.Error("Server shutdown error", "error", err)
		}
		app.Close(ctx)
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			lg.Error("Server failed to start", "error", err)
			app.Close(context.Background())
			os.Exit(1)
		}
	}

	lg.Info("Server stopped")
}

func setupRoutes(router *chi.Mux, app *App) error {
	health := rest.NewHealthHandler(app.DB.DB)
	if app.Mongo != nil {
		health.WithCheck("mongo", app.mongoPing)
	}
	if app.Producer != nil {
		health.WithCheck("rabbitmq", app.Producer.Ping)
	}

	handlers := rest.Handlers{
		Health:        health,
		Advance:       advance.NewHandler(app.Advances),
		Payment:       payment.NewHandler(app.Initiator, app.Reconciler, app.Transactions),
		Webhook:       payment.NewWebhookHandler(transport.NewBaseHandler(app.Logger), app.Reconciler, app.Logger),
		Reimbursement: reimbursement.NewHandler(app.Reimbursements),
		Notification:  notification.NewHandler(app.Dispatcher, app.Inbox),
		User:          user.NewHandler(app.Users),
	}

	return rest.RegisterAllRoutes(router, handlers, rest.Options{
		AllowedOrigins: app.Config.Server.AllowedOrigins,
		OpenAPIPath:    app.Config.Server.OpenAPIPath,
	}, app.Logger)
}
