package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/classifieds-api/internal/application/ai"
	"github.com/classifieds-api/internal/application/social"
	"github.com/classifieds-api/internal/config"
	"github.com/classifieds-api/internal/infrastructure/dynamo"
	"github.com/classifieds-api/internal/infrastructure/gemini"
	"github.com/classifieds-api/internal/infrastructure/google"
	jwtinfra "github.com/classifieds-api/internal/infrastructure/jwt"
	"github.com/classifieds-api/internal/infrastructure/mail"
	"github.com/classifieds-api/internal/infrastructure/media"
	"github.com/classifieds-api/internal/infrastructure/sns"
	"github.com/classifieds-api/internal/logger"
	transporthttp "github.com/classifieds-api/internal/transport/http"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel, cfg.AppEnv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx := context.Background()

	awsCfg, err := dynamo.LoadAWSConfig(ctx, cfg)
	if err != nil {
		return err
	}
	dynamoClient := dynamo.NewClient(awsCfg, cfg.AWSEndpointURL)
	if cfg.Bootstrap {
		dynamo.Bootstrap(ctx, dynamoClient, cfg.DynamoTables)
	}

	jwtProvider, err := jwtinfra.NewProvider(cfg.JWTPrivateKeyPath, cfg.JWTPublicKeyPath, time.Duration(cfg.JWTExpiryDays)*24*time.Hour)
	if err != nil {
		return fmt.Errorf("jwt provider: %w", err)
	}

	var (
		store   transporthttp.MediaStore
		uploads http.FileSystem
	)
	switch cfg.Media.Backend {
	case "s3":
		store = media.NewS3(media.NewS3Client(awsCfg, cfg.AWSEndpointURL), cfg.Media.S3Bucket, cfg.Media.PublicBaseURL)
	default:
		local := media.NewLocal(afero.NewOsFs(), cfg.Media.UploadsDir, cfg.Media.PublicBaseURL)
		store, uploads = local, local.FileSystem()
	}

	// A missing API key leaves both models nil: content generation reports a
	// configuration error and image generation goes straight to the placeholder.
	var (
		textModel  ai.TextModel
		imageModel ai.ImageModel
	)
	if cfg.AI.APIKey != "" {
		client, err := gemini.New(ctx, gemini.Options{
			APIKey:       cfg.AI.APIKey,
			ContentModel: cfg.AI.ContentModel,
			ImageModel:   cfg.AI.ImageModel,
		})
		if err != nil {
			return fmt.Errorf("gemini client: %w", err)
		}
		textModel, imageModel = client, client
	} else {
		log.Warn("GEMINI_API_KEY not set, AI generation disabled")
	}

	httpClient := &http.Client{Timeout: cfg.NotifyTimeout}
	channels := social.PlatformWebhooks(cfg.WebhookBaseURL, httpClient)
	if cfg.SNSTopicARN != "" {
		pub := sns.NewTopicPublisher(sns.NewClient(awsCfg, cfg.AWSEndpointURL), cfg.SNSTopicARN)
		channels = append(channels, social.NewTopic("sns", pub))
	}
	notifier := social.NewNotifier(channels, cfg.NotifyTimeout, log.Named("social"))

	router := transporthttp.NewRouter(cfg, &transporthttp.Deps{
		UserRepo:         dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users),
		AdRepo:           dynamo.NewAdRepo(dynamoClient, cfg.DynamoTables.Ads),
		VerificationRepo: dynamo.NewVerificationRepo(dynamoClient, cfg.DynamoTables.VerificationTokens),
		Media:            store,
		Uploads:          uploads,
		Notifier:         notifier,
		Content:          ai.NewContentGenerator(textModel, cfg.AI.Timeout, log.Named("ai")),
		Image: ai.NewImageGenerator(ai.ImageGeneratorDeps{
			Model:          imageModel,
			Media:          store,
			PlaceholderURL: cfg.AI.PlaceholderURL,
			Timeout:        cfg.AI.Timeout,
			Log:            log.Named("ai"),
		}),
		Mailer: mail.NewMailer(mail.Options{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			From:     cfg.SMTPFrom,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
		}),
		Google:      google.NewVerifier(cfg.GoogleClientID),
		JWTProvider: jwtProvider,
		Log:         log,
	})

	srv := &http.Server{
		Addr:        fmt.Sprintf(":%s", cfg.AppPort),
		Handler:     router,
		ReadTimeout: 30 * time.Second,
		// AI routes may run for up to AI_TIMEOUT.
		WriteTimeout: cfg.AI.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.AppEnv), zap.String("media", cfg.Media.Backend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	if err := notifier.Wait(shutdownCtx); err != nil {
		log.Warn("social fan-out still running at exit", zap.Error(err))
	}
	log.Info("server stopped")
	return nil
}
