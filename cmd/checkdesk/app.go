package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/checkdesk/checkdesk/internal/db"
	"github.com/checkdesk/checkdesk/internal/handlers"
	"github.com/checkdesk/checkdesk/internal/logger"
	"github.com/checkdesk/checkdesk/internal/mailer"
	"github.com/checkdesk/checkdesk/internal/quickbooks"
	"github.com/checkdesk/checkdesk/internal/repository/postgres"
	"github.com/checkdesk/checkdesk/internal/service/auth"
	"github.com/checkdesk/checkdesk/internal/service/billing"
	"github.com/checkdesk/checkdesk/internal/service/catalog"
	"github.com/checkdesk/checkdesk/internal/service/checkin"
	"github.com/checkdesk/checkdesk/internal/service/customer"
)

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler

	processor *billing.Processor
	logger    logger.Logger
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	// Initialize logger
	logger, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	// Connect to the database and run migrations
	pool, err := db.ConnectAndMigrate(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
	}

	// Initialize repositories
	storage := postgres.NewStorage(pool)

	// Accounting service connection
	qbConfig := quickbooks.Config{
		ClientID:     c.QBClientID,
		ClientSecret: c.QBClientSecret,
		RedirectURI:  c.QBRedirectURI,
		Environment:  c.QBEnvironment,
	}
	tokenManager := quickbooks.NewTokenManager(qbConfig, &quickbooks.FileTokenStore{Path: c.QBTokenFile}, logger)
	qbClient := quickbooks.NewClient(qbConfig, tokenManager, logger)

	// Initialize services
	billingService := billing.NewService(qbClient, storage, logger)
	processor := billing.NewProcessor(billingService, storage, logger)

	var sender *mailer.Mailer
	if c.SMTPHost != "" {
		sender, err = mailer.New(mailer.Config{
			Host:     c.SMTPHost,
			Port:     c.SMTPPort,
			Username: c.SMTPUsername,
			Password: c.SMTPPassword,
			From:     c.MailFrom,
			BaseURL:  c.PublicBaseURL,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("error while creating mailer. Err: %w", err)
		}
	} else {
		logger.Warn("SMTP is not configured, QR passes will not be mailed")
	}

	authService, err := auth.NewService(auth.Config{SecretKey: c.SecretKey}, storage)
	if err != nil {
		return nil, fmt.Errorf("error while creating auth service. Err: %w", err)
	}
	customerService := customer.NewService(storage, senderOrNil(sender), logger)
	catalogService := catalog.NewService(storage, logger)
	checkInService := checkin.NewService(storage, billingService, logger)

	mux := handlers.NewRouter(
		authService,
		customerService,
		catalogService,
		checkInService,
		tokenManager,
		logger,
	)

	return &ServerApp{
		ListenAddr: c.ListenAddr,
		Handler:    mux,
		processor:  processor,
		logger:     logger,
	}, nil
}

// senderOrNil keeps a typed nil *Mailer from sneaking into the interface
func senderOrNil(m *mailer.Mailer) customer.PassSender {
	if m == nil {
		return nil
	}
	return m
}

// Run starts the billing processor and http server,
// closes both gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	processorStopped := s.processor.Process(srvCtx)

	httpServer := &http.Server{
		Addr:    s.ListenAddr,
		Handler: s.Handler,
	}

	idleConnsClosed := make(chan struct{})

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); err == context.DeadlineExceeded {
			s.logger.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		s.logger.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	slog.Info("Starting server", "address", s.ListenAddr)
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed
	<-processorStopped

	return err
}
