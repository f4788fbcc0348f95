package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"stayhub/internal/auth"
	"stayhub/internal/config"
	"stayhub/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

// Services are the use cases the HTTP layer exposes.
type Services struct {
	Listings   *service.ListingService
	Booking    *service.BookingService
	Reconciler *service.Reconciler
	Reviews    *service.ReviewService
	Favorites  *service.FavoriteService
	Users      *service.UserService
	Admin      *service.AdminListingService
	Faqs       *service.FaqService
}

type Server struct {
	cfg     *config.Config
	svc     Services
	tokens  *auth.TokenManager
	limiter *rateLimiter
	logger  *zerolog.Logger
	server  *http.Server
}

func NewServer(cfg *config.Config, svc Services, tokens *auth.TokenManager, logger *zerolog.Logger) *Server {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	s := &Server{
		cfg:     cfg,
		svc:     svc,
		tokens:  tokens,
		limiter: newRateLimiter(cfg.RateLimit),
		logger:  logger,
	}

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           s.routes(),
		ReadHeaderTimeout: time.Duration(cfg.HTTP.ReadHeaderTimeout) * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}
	return s
}

func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// provider callbacks are authenticated by signature only
	r.Post("/payments/webhook", s.handleWebhook)

	if st := s.cfg.Storage; st.Driver == "local" && strings.HasPrefix(st.PublicURL, "/") {
		prefix := strings.TrimSuffix(st.PublicURL, "/") + "/"
		r.Handle(prefix+"*", http.StripPrefix(prefix, noDirListing(http.FileServer(http.Dir(st.LocalDir)))))
	}

	r.Group(func(r chi.Router) {
		r.Use(s.limiter.Middleware)
		r.Use(s.sessions)
		r.Use(s.authenticate)

		r.Get("/", s.handleHome)
		r.Post("/signup", s.handleSignup)
		r.Post("/login", s.handleLogin)

		r.Get("/listings", s.handleListListings)
		r.Get("/listings/{id}", s.handleGetListing)
		r.Get("/listings/{id}/reviews", s.handleListReviews)

		r.Get("/faqs", s.handleListFaqs)

		r.Group(func(r chi.Router) {
			r.Use(requireUser)

			r.Post("/listings/{id}/reviews", s.handleCreateReview)
			r.Put("/reviews/{id}", s.handleUpdateReview)
			r.Delete("/reviews/{id}", s.handleDeleteReview)

			r.Get("/favorites", s.handleListFavorites)
			r.Post("/listings/{id}/favorites", s.handleAddFavorite)
			r.Delete("/favorites/{id}", s.handleRemoveFavorite)

			r.Get("/users/me", s.handleGetProfile)
			r.Put("/users/me", s.handleUpdateProfile)

			r.Post("/listings/{id}/reservations/input", s.handleBookingInput)
			r.Get("/reservations/confirm", s.handleConfirm)
			r.Get("/reservations", s.handleListReservations)
		})

		r.Route("/admin/listings", func(r chi.Router) {
			r.Use(requireAdmin)
			r.Get("/", s.handleAdminList)
			r.Post("/", s.handleAdminCreate)
			r.Get("/{id}", s.handleAdminGet)
			r.Put("/{id}", s.handleAdminUpdate)
			r.Delete("/{id}", s.handleAdminDelete)
		})
	})

	c := cors.New(cors.Options{
		AllowedOrigins:   s.cfg.HTTP.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", requestIDHeader},
		ExposedHeaders:   []string{requestIDHeader},
		AllowCredentials: true,
	})
	return c.Handler(r)
}

func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func noDirListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
