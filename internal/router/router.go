package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	appLogger "github.com/FACorreiaa/wahkip/app/logger"
	"github.com/FACorreiaa/wahkip/app/tracer"
	_ "github.com/FACorreiaa/wahkip/docs"
	"github.com/FACorreiaa/wahkip/internal/api"
	"github.com/FACorreiaa/wahkip/internal/api/events"
	generativeAI "github.com/FACorreiaa/wahkip/internal/api/generative_ai"
	"github.com/FACorreiaa/wahkip/internal/api/helpers"
	"github.com/FACorreiaa/wahkip/internal/api/itinerary"
	"github.com/FACorreiaa/wahkip/internal/api/recommendations"
	userInterest "github.com/FACorreiaa/wahkip/internal/api/user_interests"
)

// DefaultItineraryPerMinute limits POST /itinerary per client IP.
const DefaultItineraryPerMinute = 10

// Config contains dependencies needed for the router setup
type Config struct {
	Logger                 *slog.Logger
	EventsHandler          *events.HandlerImpl
	ItineraryHandler       *itinerary.HandlerImpl
	RecommendationsHandler *recommendations.HandlerImpl
	InterestHandler        *userInterest.UserInterestHandler
	HelpersHandler         *helpers.HandlerImpl
	AIHandler              *generativeAI.HandlerImpl
	AllowedOrigins         []string
	ItineraryPerMinute     int
	RequestTimeout         time.Duration
}

// SetupRouter builds the full HTTP surface, server-wide middleware included.
func SetupRouter(cfg *Config) chi.Router {
	if cfg.ItineraryPerMinute <= 0 {
		cfg.ItineraryPerMinute = DefaultItineraryPerMinute
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 60 * time.Second
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(appLogger.StructuredLogger(cfg.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("pong"))
	})
	r.Handle("/metrics", tracer.MetricsHandler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "no-store")
			api.WriteJSONResponse(w, r, http.StatusOK, map[string]bool{"ok": true})
		})
		r.Get("/ai/status", cfg.AIHandler.Status)

		r.Get("/events", cfg.EventsHandler.ListEvents)
		r.Post("/events", cfg.EventsHandler.CreateEvent)

		r.Route("/itinerary", func(r chi.Router) {
			r.With(httprate.LimitByIP(cfg.ItineraryPerMinute, time.Minute)).
				Post("/", cfg.ItineraryHandler.GenerateItinerary)
			r.Get("/{id}", cfg.ItineraryHandler.GetItinerary)
		})

		r.Get("/recommendations", cfg.RecommendationsHandler.GetRecommendations)

		r.Post("/user/interactions", cfg.InterestHandler.RecordInteraction)
		r.Get("/user/interests", cfg.InterestHandler.GetInterestVector)

		r.Route("/helpers", func(r chi.Router) {
			r.Post("/register", cfg.HelpersHandler.RegisterHelper)
			r.Get("/search", cfg.HelpersHandler.SearchHelpers)
			r.Post("/reviews", cfg.HelpersHandler.CreateReview)
			r.Get("/reviews", cfg.HelpersHandler.ListReviews)
		})
	})

	return r
}
