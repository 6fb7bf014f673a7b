package container

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	database "github.com/FACorreiaa/wahkip/app/db"
	"github.com/FACorreiaa/wahkip/config"
	"github.com/FACorreiaa/wahkip/internal/api/events"
	generativeAI "github.com/FACorreiaa/wahkip/internal/api/generative_ai"
	"github.com/FACorreiaa/wahkip/internal/api/helpers"
	"github.com/FACorreiaa/wahkip/internal/api/itinerary"
	"github.com/FACorreiaa/wahkip/internal/api/recommendations"
	userInterest "github.com/FACorreiaa/wahkip/internal/api/user_interests"
)

// Container holds all application dependencies
type Container struct {
	Config                 *config.Config
	Logger                 *slog.Logger
	Pool                   *pgxpool.Pool
	ConnectionURL          string
	EventsHandler          *events.HandlerImpl
	ItineraryHandler       *itinerary.HandlerImpl
	RecommendationsHandler *recommendations.HandlerImpl
	InterestHandler        *userInterest.UserInterestHandler
	HelpersHandler         *helpers.HandlerImpl
	AIHandler              *generativeAI.HandlerImpl
}

// ProviderSettings maps configuration onto the provider registry settings.
func ProviderSettings(cfg *config.Config) generativeAI.Settings {
	breaker := generativeAI.DefaultBreakerConfig
	if cfg.AI.Breaker.MaxFailures > 0 {
		breaker.MaxFailures = cfg.AI.Breaker.MaxFailures
	}
	if cfg.AI.Breaker.OpenTimeout > 0 {
		breaker.OpenTimeout = cfg.AI.Breaker.OpenTimeout
	}
	return generativeAI.Settings{
		Primary:   cfg.AI.Primary,
		Secondary: cfg.AI.Secondary,
		OpenAI:    generativeAI.ProviderConfig{APIKey: cfg.AI.OpenAI.APIKey, Model: cfg.AI.OpenAI.Model},
		Gemini:    generativeAI.ProviderConfig{APIKey: cfg.AI.Gemini.APIKey, Model: cfg.AI.Gemini.Model},
		Anthropic: generativeAI.ProviderConfig{APIKey: cfg.AI.Anthropic.APIKey, Model: cfg.AI.Anthropic.Model},
		Breaker:   breaker,
	}
}

// NewContainer initializes and returns a new dependency container
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	dbConfig, err := database.NewDatabaseConfig(cfg, logger)
	if err != nil {
		logger.Error("Failed to generate database config", slog.Any("error", err))
		return nil, err
	}

	pool, err := database.Init(dbConfig.ConnectionURL, logger)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.Any("error", err))
		return nil, err
	}

	registry, err := generativeAI.NewRegistry(ctx, ProviderSettings(cfg), logger)
	if err != nil {
		pool.Close()
		logger.Error("Failed to initialize text-generation providers", slog.Any("error", err))
		return nil, err
	}
	for _, st := range registry.Status() {
		logger.Info("Provider registered",
			slog.String("provider", st.Name),
			slog.String("role", st.Role),
			slog.Bool("configured", st.Configured))
	}

	eventsRepo := events.NewPostgresEventsRepo(pool, logger)
	eventsService := events.NewEventsService(eventsRepo, cfg.Cache.EventsTTL, cfg.Cache.Cleanup, logger)

	userInterestRepo := userInterest.NewPostgresUserInterestRepo(pool, logger)
	userInterestService := userInterest.NewUserInterestService(userInterestRepo, logger)

	itineraryRepo := itinerary.NewPostgresItineraryRepo(pool, logger)
	itineraryService := itinerary.NewItineraryService(registry.Chain(), eventsService, itineraryRepo, itinerary.Options{
		Mode:    itinerary.ParseMode(cfg.AI.Mode),
		Timeout: cfg.AI.Timeout,
	}, logger)

	recommendationsService := recommendations.NewRecommendationsService(eventsService, userInterestService, logger)

	helpersRepo := helpers.NewPostgresHelpersRepo(pool, logger)
	helpersService := helpers.NewHelpersService(helpersRepo, logger)

	return &Container{
		Config:                 cfg,
		Logger:                 logger,
		Pool:                   pool,
		ConnectionURL:          dbConfig.ConnectionURL,
		EventsHandler:          events.NewHandlerImpl(eventsService, logger),
		ItineraryHandler:       itinerary.NewHandlerImpl(itineraryService, logger),
		RecommendationsHandler: recommendations.NewHandlerImpl(recommendationsService, logger),
		InterestHandler:        userInterest.NewUserInterestHandler(userInterestService, logger),
		HelpersHandler:         helpers.NewHandlerImpl(helpersService, logger),
		AIHandler:              generativeAI.NewHandlerImpl(registry, logger),
	}, nil
}

// Close releases all resources held by the container
func (c *Container) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
}

// WaitForDB waits for the database to be ready
func (c *Container) WaitForDB(ctx context.Context) bool {
	return database.WaitForDB(ctx, c.Pool, c.Logger)
}

// RunMigrations runs database migrations
func (c *Container) RunMigrations() error {
	return database.RunMigrations(c.ConnectionURL, c.Logger)
}
