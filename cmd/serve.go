package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"match-backend/internal/cache"
	"match-backend/internal/config"
	"match-backend/internal/handlers"
	"match-backend/internal/metrics"
	"match-backend/internal/middleware"
	"match-backend/internal/repository"
	"match-backend/internal/services"
	"match-backend/internal/storage"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// NewServeCommand creates the serve command
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), rootOpts, migrate)
		},
	}

	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply the database schema before serving")

	return cmd
}

func runServe(ctx context.Context, opts *RootOptions, migrate bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}

	db, err := connectDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if migrate {
		if err := repository.Migrate(ctx, db); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
		log.Info().Msg("Database schema applied")
	}

	avatarCache := cache.NewRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	defer avatarCache.Close()

	objects, err := storage.NewS3Store(ctx, storage.S3Options{
		Region:        cfg.AWS.Region,
		Bucket:        cfg.AWS.S3Bucket,
		AccessKey:     cfg.AWS.AccessKey,
		SecretKey:     cfg.AWS.SecretKey,
		Endpoint:      cfg.AWS.Endpoint,
		PublicBaseURL: cfg.AWS.PublicBaseURL,
	})
	if err != nil {
		return fmt.Errorf("failed to create photo storage: %w", err)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	photoRepo := repository.NewPhotoRepository(db)
	swipeRepo := repository.NewSwipeRepository(db)
	pairRepo := repository.NewPairRepository(db)
	messageRepo := repository.NewMessageRepository(db)

	// Initialize services
	userService := services.NewUserService(userRepo, photoRepo, cfg.JWT.Secret, cfg.JWT.TTL())
	photoService := services.NewPhotoService(photoRepo, objects)
	candidateService := services.NewCandidateService(userRepo)
	swipeService := services.NewSwipeService(userRepo, swipeRepo, pairRepo)
	conversationService := services.NewConversationService(pairRepo, messageRepo)
	avatarService := services.NewAvatarService(services.AvatarOptions{
		Endpoint: cfg.Avatar.Endpoint,
		Headers:  cfg.Avatar.Headers,
		Timeout:  cfg.Avatar.Timeout,
		CacheTTL: cfg.Avatar.CacheTTL,
	}, avatarCache)

	router := newRouter(routerDeps{
		db:            db,
		tokens:        userService,
		users:         handlers.NewUserHandler(userService),
		photos:        handlers.NewPhotoHandler(photoService),
		matches:       handlers.NewMatchHandler(candidateService, swipeService),
		conversations: handlers.NewConversationHandler(conversationService),
		avatars:       handlers.NewAvatarHandler(avatarService),
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	setupLogger(cfg.Log.Level, cfg.Log.Format)
	return cfg, nil
}

func connectDB(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("invalid database config: %w", err)
	}
	if cfg.Database.MaxConns > 0 {
		poolCfg.MaxConns = cfg.Database.MaxConns
	}

	db, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	log.Info().Msg("Database connection established")

	return db, nil
}

type routerDeps struct {
	db            handlers.Pinger
	tokens        middleware.TokenValidator
	users         *handlers.UserHandler
	photos        *handlers.PhotoHandler
	matches       *handlers.MatchHandler
	conversations *handlers.ConversationHandler
	avatars       *handlers.AvatarHandler
}

func newRouter(d routerDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(corsMiddleware)
	r.Use(metrics.Middleware)

	r.Get("/healthz", handlers.Health(d.db))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Post("/register", d.users.Register)
		r.Post("/login", d.users.Login)
		r.Get("/avatar/{username}", d.avatars.GetProfilePicture)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(d.tokens))
			r.Get("/profile", d.users.GetProfile)
			r.Patch("/profile", d.users.UpdateProfile)
			r.Get("/profile/{id}", d.users.GetProfileByID)
			r.Get("/photos", d.photos.GetPhotos)
			r.Post("/photos", d.photos.UploadPhoto)
			r.Get("/candidates", d.matches.GetCandidates)
			r.Post("/swipes", d.matches.Swipe)
			r.Get("/pairs", d.conversations.ListPairs)
			r.Get("/pairs/{pair_id}/messages", d.conversations.GetMessages)
			r.Post("/pairs/{pair_id}/messages", d.conversations.SendMessage)
		})
	})

	return r
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
