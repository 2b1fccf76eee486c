package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minio/minio-go/v7"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/postalcodeworx/backend/internal/config"
	"github.com/postalcodeworx/backend/internal/infra/anthropic"
	"github.com/postalcodeworx/backend/internal/infra/httpclient"
	s3infra "github.com/postalcodeworx/backend/internal/infra/s3"
	pgrepo "github.com/postalcodeworx/backend/internal/repo/postgres"
	redrepo "github.com/postalcodeworx/backend/internal/repo/redis"
	listingssvc "github.com/postalcodeworx/backend/internal/services/listings"
	"github.com/postalcodeworx/backend/internal/services/notify"
	"github.com/postalcodeworx/backend/internal/services/photos"
	"github.com/postalcodeworx/backend/internal/services/textmod"
	"github.com/postalcodeworx/backend/internal/services/vision"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	s3         *minio.Client
	httpRouter http.Handler
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	var pool *pgxpool.Pool
	if p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN); err != nil {
		log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
	} else {
		pool = p
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)

	listingRepo := pgrepo.NewListingRepo(pool)
	reportRepo := pgrepo.NewReportRepo(pool)
	contactRepo := pgrepo.NewContactRepo(pool)
	statsCache := redrepo.NewStatsCacheRepo(redisClient)

	var s3Client *minio.Client
	var photoStorage listingssvc.PhotoStorage
	var uploadsDir string
	switch cfg.Uploads.Backend {
	case "s3":
		if c, err := s3infra.NewClient(s3infra.Config{
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			UseSSL:    cfg.S3.UseSSL,
		}); err != nil {
			log.Warn("s3 init failed, continuing in degraded mode", zap.Error(err))
		} else {
			s3Client = c
		}
		photoStorage = photos.NewS3Storage(s3Client, cfg.S3.Bucket, cfg.Uploads.PublicBaseURL)
	default:
		local, err := photos.NewLocalStorage(cfg.Uploads.Dir, cfg.Uploads.PublicBaseURL)
		if err != nil {
			return nil, fmt.Errorf("init local photo storage: %w", err)
		}
		photoStorage = local
		uploadsDir = local.Dir()
	}

	var visionService *vision.Service
	var textModService *textmod.Service
	if cfg.Anthropic.APIKey != "" {
		client, err := anthropic.NewClient(anthropic.Config{
			APIKey:    cfg.Anthropic.APIKey,
			Model:     cfg.Anthropic.Model,
			MaxTokens: cfg.Anthropic.MaxTokens,
		}, httpclient.New(cfg.Anthropic.Timeout))
		if err != nil {
			return nil, fmt.Errorf("init anthropic client: %w", err)
		}
		visionService = vision.NewService(client, log)
		textModService = textmod.NewService(client, log)
	} else {
		log.Warn("anthropic api key not configured, image moderation will reject all uploads")
		visionService = vision.NewService(nil, log)
		textModService = textmod.NewService(nil, log)
	}

	var sender notify.Sender
	if cfg.Email.SendGridAPIKey != "" {
		sender = notify.NewSendGridSender(cfg.Email.SendGridAPIKey, cfg.Email.FromName, cfg.Email.FromAddress)
	} else {
		log.Warn("sendgrid api key not configured, emails will only be logged")
		sender = notify.NewLogSender(log)
	}

	listingService := listingssvc.NewService(listingssvc.Dependencies{
		Logger:     log,
		Tx:         pgrepo.TxRunner{Pool: pool},
		Listings:   listingRepo,
		Reports:    reportRepo,
		Contacts:   contactRepo,
		Vision:     visionService,
		TextMod:    textModService,
		Notifier:   notify.NewService(sender),
		Photos:     photoStorage,
		StatsCache: statsCache,
	}, listingssvc.Config{
		MaxUploadSize:              cfg.Uploads.MaxUploadSize,
		PostalPrefix:               cfg.Business.PostalPrefix,
		PostalCodeLength:           cfg.Business.PostalCodeLength,
		InitialConfidenceScore:     cfg.Business.InitialConfidenceScore,
		ConfidenceRemovalThreshold: cfg.Business.ConfidenceRemovalThreshold,
		ReportConfidencePenalty:    cfg.Business.ReportConfidencePenalty,
		PlatformFeePercentage:      cfg.Business.PlatformFeePercentage,
		StatsCacheTTL:              cfg.Business.StatsCacheTTL,
	})

	RegisterRoutes(r, Dependencies{
		ListingService: listingService,
		UploadsDir:     uploadsDir,
		Logger:         log,
		Config:         cfg,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		s3:         s3Client,
		httpRouter: r,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
