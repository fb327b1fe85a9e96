package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/AnshRaj112/survey-backend/internal/config"
	"github.com/AnshRaj112/survey-backend/internal/database"
	"github.com/AnshRaj112/survey-backend/internal/handlers"
	"github.com/AnshRaj112/survey-backend/internal/logger"
	"github.com/AnshRaj112/survey-backend/internal/middleware"
	"github.com/AnshRaj112/survey-backend/internal/repository"
	"github.com/AnshRaj112/survey-backend/internal/routes"
	"github.com/AnshRaj112/survey-backend/internal/services"
)

func main() {
	// Load env
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		boot := logger.New("")
		boot.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(cfg.Environment)
	if envErr != nil {
		log.Info().Msg("No .env file found")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to MongoDB
	mongoClient, db, err := database.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer database.Disconnect(mongoClient)

	surveys := repository.NewSurveyRepo(db)
	responses := repository.NewResponseRepo(db)
	users := repository.NewUserRepo(db)
	feedback := repository.NewFeedbackRepo(db)
	ensureIndexes(ctx, log, users, responses)

	checks := map[string]handlers.Pinger{"mongo": database.Pinger{Client: mongoClient}}

	// Redis is optional: it backs rate limiting, the survey cache and
	// cross-instance live responses.
	var rdb *redis.Client
	if cfg.RedisEnabled() {
		rdb, err = database.ConnectRedis(ctx, cfg.RedisURI, log)
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, continuing without rate limiting and caching")
			rdb = nil
		} else {
			defer rdb.Close()
			checks["redis"] = handlers.PingFunc(func(ctx context.Context) error {
				return rdb.Ping(ctx).Err()
			})
		}
	}

	hub := services.NewResponseHub(rdb, log)
	go hub.Run(ctx)

	deps := handlers.Deps{
		Surveys:   surveys,
		Responses: responses,
		Users:     users,
		Feedback:  feedback,
		Hub:       hub,
		Checks:    checks,
		Logger:    log,
	}
	if rdb != nil {
		deps.Cache = services.NewSurveyCache(rdb, services.DefaultSurveyTTL)
	}

	if cfg.CloudinaryEnabled() {
		uploader, err := services.NewCloudinaryService(cfg.CloudinaryName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize Cloudinary, file uploads will not be available")
		} else {
			deps.Uploader = uploader
			log.Info().Msg("Cloudinary service initialized")
		}
	} else {
		log.Warn().Msg("Cloudinary credentials not found, file uploads will not be available")
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger(log))
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	if cfg.IsProduction() {
		for _, mw := range middleware.ProductionSecurity() {
			r.Use(mw)
		}
		log.Info().Msg("Production security enabled (security headers, login rate limiting)")
	}
	if rdb != nil {
		window := time.Duration(cfg.RateLimitWindowSeconds) * time.Second
		r.Use(middleware.NewRateLimiter(rdb, cfg.RateLimitMaxRequests, window, log).Handler)
	}

	routes.SetupRoutes(r, handlers.New(deps))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Environment).Msg("Survey backend running")
		serverErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Server stopped")
		}
	case <-ctx.Done():
		log.Info().Msg("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
}

// ensureIndexes logs failures instead of exiting; the API still works
// without them.
func ensureIndexes(ctx context.Context, log zerolog.Logger, users *repository.UserRepo, responses *repository.ResponseRepo) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := users.EnsureIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to ensure users indexes")
	}
	if err := responses.EnsureIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to ensure responses indexes")
	}
	log.Info().Msg("MongoDB indexes ensured")
}
