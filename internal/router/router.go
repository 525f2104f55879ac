package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"salesbot-backend/internal/handlers"
	"salesbot-backend/internal/middleware"
)

// New builds the route table. A nil limiter leaves /api unthrottled. The chat
// route is not throttled so a well-formed chat request always gets 200.
// trustProxy takes the client address from X-Forwarded-For / X-Real-IP, which
// is only safe behind a proxy that overwrites those headers.
func New(
	logger *zap.Logger,
	apiLimiter *middleware.RateLimiter,
	trustProxy bool,
	infoHandler *handlers.InfoHandler,
	chatHandler *handlers.ChatHandler,
	leadHandler *handlers.LeadHandler,
	contactHandler *handlers.ContactHandler,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	if trustProxy {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/", infoHandler.Root)
	r.Get("/health", infoHandler.Health)

	r.Route("/api", func(r chi.Router) {
		r.Post("/chat-gemini", chatHandler.Chat)

		r.Group(func(r chi.Router) {
			if apiLimiter != nil {
				r.Use(apiLimiter.Middleware)
			}
			r.Post("/send-to-discord", leadHandler.SendToDiscord)
			r.Post("/contact", contactHandler.Submit)
		})
	})

	return r
}
