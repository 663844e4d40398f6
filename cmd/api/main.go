package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"campusevents/config"
	_ "campusevents/docs"
	"campusevents/internal/adapters/auth"
	"campusevents/internal/adapters/certificate"
	"campusevents/internal/adapters/email"
	httpdelivery "campusevents/internal/delivery/http"
	"campusevents/internal/delivery/http/controllers"
	"campusevents/internal/delivery/http/middleware"
	"campusevents/internal/domain"
	"campusevents/internal/repository/postgres"
	"campusevents/internal/repository/sqlite"
	"campusevents/internal/services"
)

// @title Campus Events API
// @version 1.0
// @description University event management: events, registrations with capacity enforcement, and participation certificates.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger := config.NewLogger()
	if err := run(logger); err != nil {
		logger.Error("server exited", "err", err)
		os.Exit(1)
	}
}

type repositories struct {
	events        domain.EventRepository
	registrations domain.RegistrationRepository
	users         domain.UserRepository
	roles         domain.RoleRepository
	db            io.Closer
}

func openRepositories(ctx context.Context, cfg *config.Config) (*repositories, error) {
	switch cfg.DBDriver {
	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.DBUrl)
		if err != nil {
			return nil, err
		}
		if err := sqlite.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate sqlite: %w", err)
		}
		return &repositories{
			events:        sqlite.NewEventRepository(db),
			registrations: sqlite.NewRegistrationRepository(db),
			users:         sqlite.NewUserRepository(db),
			roles:         sqlite.NewRoleRepository(db),
			db:            db,
		}, nil
	default:
		db, err := postgres.Open(ctx, cfg.DBUrl)
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		return &repositories{
			events:        postgres.NewEventRepository(db),
			registrations: postgres.NewRegistrationRepository(db),
			users:         postgres.NewUserRepository(db),
			roles:         postgres.NewRoleRepository(db),
			db:            db,
		}, nil
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	openCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	repos, err := openRepositories(openCtx, cfg)
	cancel()
	if err != nil {
		return err
	}
	defer repos.db.Close()
	logger.Info("database ready", "driver", cfg.DBDriver)

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFromAddress,
		FromName:    cfg.EmailFromName,
		SES: email.SESConfig{
			Region:             cfg.AWSRegion,
			AccessKeyID:        cfg.AWSAccessKeyID,
			SecretAccessKey:    cfg.AWSSecretAccessKey,
			InsecureSkipVerify: cfg.SESInsecureSkipVerify,
		},
	}, logger)
	if err != nil {
		return fmt.Errorf("create mailer: %w", err)
	}
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer(), logger)

	issuer := auth.NewJWTIssuer(cfg.JWTSecret)
	verifier := auth.NewJWTVerifier(cfg.JWTSecret)
	hasher := auth.NewBcryptHasher(auth.DefaultBcryptCost)

	guard := services.NewCapacityGuard(repos.events, repos.registrations, cfg.AdmissionMode, cfg.AllowPastRegistration)
	authService := services.NewAuthService(repos.users, repos.roles, hasher, issuer, cfg.TokenExpiry, logger, cfg.RequestTimeout)
	eventService := services.NewEventService(repos.events, repos.registrations, logger, cfg.RequestTimeout)
	registrationService := services.NewRegistrationService(guard, repos.events, repos.registrations, repos.users, emailService, logger, cfg.RequestTimeout)
	certificateService := services.NewCertificateService(repos.events, repos.registrations, repos.users, certificate.NewPDFRenderer(), cfg.CertificateIssuerName, cfg.RequestTimeout)
	adminService := services.NewAdminService(repos.users, emailService, logger, cfg.RequestTimeout)

	mux := httpdelivery.NewRouter(httpdelivery.Controllers{
		Auth:         controllers.NewAuthController(logger, authService, cfg.TokenExpiry, cfg.IsProduction()),
		Event:        controllers.NewEventController(logger, eventService),
		Registration: controllers.NewRegistrationController(logger, registrationService),
		Certificate:  controllers.NewCertificateController(logger, certificateService),
		Admin:        controllers.NewAdminController(logger, adminService),
	}, verifier, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           middleware.CORS(cfg.CORSAllowedOrigins, middleware.LoggingMiddleware(logger, mux)),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", srv.Addr, "env", cfg.Environment, "admission_mode", cfg.AdmissionMode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
