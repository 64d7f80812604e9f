package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/time/rate"

	"github.com/fennwick/pressroom/internal/authservice"
	"github.com/fennwick/pressroom/internal/common"
	"github.com/fennwick/pressroom/internal/imageservice"
	"github.com/fennwick/pressroom/internal/postservice"
	"github.com/fennwick/pressroom/internal/schemaservice"
	"github.com/fennwick/pressroom/internal/telemetryservice"
)

type application struct {
	config       *Config
	logger       *slog.Logger
	postService  *postservice.PostService
	imageService *imageservice.ImageService
	authService  *authservice.AuthService
	provisioner  *schemaservice.Provisioner
	broker       *common.MessageBroker
	loginLimiter *common.LoginLimiter
}

func main() {
	// Initialize the logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// Load the configuration
	cfg, err := loadConfig(".env")
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize the database. The pool carries app.email so the row level
	// security write policies pass for roles that do not bypass RLS.
	dsn := cfg.dsn()
	if cfg.AdminEmail != "" {
		dsn = common.DSNWithSessionEmail(dsn, cfg.AdminEmail)
	}
	db, err := common.ConnectDB(dsn, 10, 5, 15*time.Minute)
	if err != nil {
		logger.Error("failed to connect to the database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer common.CloseDB(db)

	// Initialize the message broker
	URI := fmt.Sprintf("amqp://%s:%s@%s:%s/", cfg.MQUser, cfg.MQPassword, cfg.MQHost, cfg.MQPort)
	broker, err := common.NewMessageBroker(URI)
	if err != nil {
		logger.Error("failed to connect to the message broker", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer broker.Close()

	err = common.SetupTelemetryExchange(broker)
	if err != nil {
		logger.Error("failed to setup the telemetry exchange", slog.String("error", err.Error()))
		os.Exit(1)
	}

	sink := telemetryservice.NewTelemetryService(broker, cfg.siteDomain(), cfg.telemetryEnabled(), logger)

	provisioner := schemaservice.NewProvisioner(cfg.dsn(), cfg.AdminEmail, logger)

	// Bring the schema up before serving so the session table exists for the
	// first login. The validate endpoint re-runs the same sequence on demand.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	msg, err := provisioner.EnsureSchema(ctx)
	cancel()
	if err != nil {
		logger.Error("failed to provision the schema", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info(msg)

	// Initialize the services
	app := &application{
		config:       cfg,
		logger:       logger,
		postService:  postservice.NewPostService(db, sink),
		imageService: imageservice.NewImageService(db, cfg.PublicBaseURL),
		authService:  authservice.NewAuthService(db, cfg.AdminEmail, cfg.AdminPasswordHash),
		provisioner:  provisioner,
		broker:       broker,
		loginLimiter: common.NewLoginLimiter(rate.Limit(0.5), 5, 15*time.Minute),
	}

	// Initialize the telemetry forwarder consumer
	forwarder := telemetryservice.NewForwarder(broker, cfg.TelemetryServerURL, logger)
	go forwarder.Run()
	defer forwarder.Close()

	// Start the HTTP server
	err = app.serve(cfg.Port)
	if err != nil {
		logger.Error("failed to start the server", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
