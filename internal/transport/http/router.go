package http

import (
	"net/http"
	"strings"

	"github.com/classifieds-api/internal/application/account"
	"github.com/classifieds-api/internal/application/ad"
	"github.com/classifieds-api/internal/application/ai"
	"github.com/classifieds-api/internal/config"
	"github.com/classifieds-api/internal/logger"
	"github.com/classifieds-api/internal/transport/http/handler"
	appmiddleware "github.com/classifieds-api/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	log := logger.OrNop(deps.Log)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(appmiddleware.RequestLogger(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authMw := appmiddleware.Auth(deps.JWTProvider)

	// 5 requests/second, burst of 10, on credential and AI endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	adSvc := ad.NewService(ad.ServiceDeps{
		AdRepo:   deps.AdRepo,
		UserRepo: deps.UserRepo,
		Media:    deps.Media,
		Notifier: deps.Notifier,
		Log:      log.Named("ad"),
	})
	accountSvc := account.NewService(account.ServiceDeps{
		UserRepo:   deps.UserRepo,
		TokenRepo:  deps.VerificationRepo,
		Mailer:     deps.Mailer,
		JWT:        deps.JWTProvider,
		Google:     deps.Google,
		AppBaseURL: cfg.AppBaseURL,
		Log:        log.Named("account"),
	})

	healthH := handler.NewHealthHandler()
	adH := handler.NewAdHandler(adSvc, cfg.Media.MaxUploadBytes)
	accountH := handler.NewAccountHandler(accountSvc)
	content, image := deps.Content, deps.Image
	if content == nil {
		content = ai.NewContentGenerator(nil, 0, log.Named("ai"))
	}
	if image == nil {
		image = ai.NewImageGenerator(ai.ImageGeneratorDeps{Media: deps.Media, Log: log.Named("ai")})
	}
	aiH := handler.NewAIHandler(content, image)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.Get("/categories", healthH.Categories)
		r.Get("/ads", adH.List)
		r.Get("/ads/{id}", adH.Get)
		r.Post("/webhooks/{platform}", handler.Webhook)

		r.Group(func(r chi.Router) {
			r.Use(sensitiveRL.Limit)
			r.Post("/register", accountH.Register)
			r.Post("/verify-email", accountH.VerifyEmail)
			r.Post("/check-user", accountH.CheckUser)
			r.Post("/sessions/login", accountH.Login)
			r.Post("/sessions/google", accountH.Google)
		})

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Post("/ads", adH.Create)
			r.Delete("/ads/{id}", adH.Delete)
			r.With(sensitiveRL.Limit).Post("/ai/content", aiH.Content)
			r.With(sensitiveRL.Limit).Post("/ai/image", aiH.Image)
		})
	})

	if deps.Uploads != nil && strings.HasPrefix(cfg.Media.PublicBaseURL, "/") {
		prefix := strings.TrimRight(cfg.Media.PublicBaseURL, "/")
		r.Handle(prefix+"/*", http.StripPrefix(prefix+"/", http.FileServer(deps.Uploads)))
	}

	return r
}
