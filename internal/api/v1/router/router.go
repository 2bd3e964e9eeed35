package router

import (
	"context"
	"fmt"
	"net/http"

	"coursecatalog/internal/api/v1/dto"
	"coursecatalog/internal/api/v1/handler"
	"coursecatalog/internal/authz"
	"coursecatalog/internal/config"
	"coursecatalog/internal/identity"
	"coursecatalog/internal/metrics"
	"coursecatalog/internal/middleware"
	"coursecatalog/internal/pubsub"
	"coursecatalog/internal/repository"
	"coursecatalog/internal/service"
	"coursecatalog/internal/storage"
	"coursecatalog/internal/util"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
)

const userAgent = "coursecatalog"

// Services are the collaborators the HTTP layer dispatches to.
type Services struct {
	Courses  service.CourseService
	UserSync service.UserSyncService
	Verifier *identity.Verifier
	Sessions *util.TokenVerifier
	// Images is nil when course image uploads are disabled.
	Images *storage.ImageStore
}

// New builds the HTTP handler. Routes are served both at the root and under /api.
func New(cfg *config.Config, logger zerolog.Logger, svc Services) http.Handler {
	validate := dto.NewValidator()
	policy := authz.DefaultPolicy()

	courseHandler := handler.NewCourseHandler(svc.Courses, svc.Images, validate, logger)
	webhookHandler := handler.NewWebhookHandler(svc.Verifier, svc.UserSync, logger)

	authMiddleware := middleware.AuthMiddleware(svc.Sessions, logger)
	guard := func(action authz.Action) func(http.Handler) http.Handler {
		return middleware.RequirePermission(policy, action, logger)
	}

	mount := func(r chi.Router) {
		webhookHandler.RegisterRoutes(r)
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			courseHandler.RegisterRoutes(r, guard)
		})
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.LoggerMiddleware(logger))
	r.Use(middleware.HTTPMetrics)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", metrics.Handler())

	mount(r)
	r.Route("/api", mount)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.ClientURL},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})
	return c.Handler(r)
}

// Build wires the production dependencies behind New. The returned cleanup
// releases them and must be called after the server stops.
func Build(ctx context.Context, cfg *config.Config, logger zerolog.Logger, pool *pgxpool.Pool) (http.Handler, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var resolver service.SecretResolver
	if cfg.WebhookSecretIsResource() {
		sm, err := service.NewSecretManagerService(ctx, option.WithUserAgent(userAgent))
		if err != nil {
			return nil, nil, err
		}
		defer sm.Close()
		resolver = sm
	}
	webhookSecret, err := resolveWebhookSecret(ctx, cfg, resolver)
	if err != nil {
		return nil, nil, err
	}
	verifier, err := identity.NewVerifier(webhookSecret)
	if err != nil {
		return nil, nil, err
	}
	sessions, err := util.NewTokenVerifier(cfg.IdentityJWTKey)
	if err != nil {
		return nil, nil, fmt.Errorf("IDENTITY_JWT_KEY: %w", err)
	}

	var publisher pubsub.Publisher
	if cfg.PubSubUserEventsTopic != "" {
		p, err := pubsub.NewPublisher(ctx, cfg.GCPProjectID, option.WithUserAgent(userAgent))
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, func() { _ = p.Close() })
		publisher = p
		logger.Info().Str("topic", cfg.PubSubUserEventsTopic).Msg("User event notifications enabled")
	}

	var images *storage.ImageStore
	if cfg.ImageUploadsEnabled() {
		s3Client, err := storage.NewS3Client(ctx, cfg)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		images = storage.NewImageStore(s3.NewPresignClient(s3Client), cfg.S3Bucket, storage.PublicBaseURL(cfg))
		logger.Info().Str("bucket", cfg.S3Bucket).Msg("Course image uploads enabled")
	}

	courseRepo := repository.NewCourseRepo(pool, logger)
	userRepo := repository.NewUserRepo(pool)
	dlqRepo := repository.NewDLQRepository(pool)

	svc := Services{
		Courses:  service.NewCourseService(courseRepo, logger),
		UserSync: service.NewUserSyncService(userRepo, dlqRepo, publisher, cfg.PubSubUserEventsTopic, cfg.UsernameMaxAttempts, logger),
		Verifier: verifier,
		Sessions: sessions,
		Images:   images,
	}
	logger.Info().Msg("Router initialized")
	return New(cfg, logger, svc), cleanup, nil
}

// resolveWebhookSecret returns WEBHOOK_SECRET, looking it up through
// resolver when it names a Secret Manager resource.
func resolveWebhookSecret(ctx context.Context, cfg *config.Config, resolver service.SecretResolver) (string, error) {
	if !cfg.WebhookSecretIsResource() {
		return cfg.WebhookSecret, nil
	}
	if resolver == nil {
		return "", fmt.Errorf("WEBHOOK_SECRET names %s but no secret resolver is configured", cfg.WebhookSecret)
	}
	secret, err := resolver.ResolveSecret(ctx, cfg.WebhookSecret)
	if err != nil {
		return "", fmt.Errorf("resolving WEBHOOK_SECRET: %w", err)
	}
	return secret, nil
}
