// Package main is the entry point for the API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/vnestate/chatbot-platform/internal/auth"
	"github.com/vnestate/chatbot-platform/internal/chat"
	"github.com/vnestate/chatbot-platform/internal/config"
	"github.com/vnestate/chatbot-platform/internal/events"
	"github.com/vnestate/chatbot-platform/internal/handler"
	"github.com/vnestate/chatbot-platform/internal/intent"
	"github.com/vnestate/chatbot-platform/internal/llm"
	"github.com/vnestate/chatbot-platform/internal/media"
	"github.com/vnestate/chatbot-platform/internal/middleware"
	"github.com/vnestate/chatbot-platform/internal/model"
	"github.com/vnestate/chatbot-platform/internal/rag"
	"github.com/vnestate/chatbot-platform/internal/scrape"
	"github.com/vnestate/chatbot-platform/internal/store"
	"github.com/vnestate/chatbot-platform/pkg/logger"
	"github.com/vnestate/chatbot-platform/pkg/tracing"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	log.Info("starting API server")

	// Initialize tracing if enabled
	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "chatbot-platform", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Select storage backend: MongoDB when configured and reachable,
	// file-backed otherwise.
	sessions, users := buildStores(ctx, cfg, log)

	// Initialize LLM client
	llmClient, err := llm.NewClient(llm.Provider(cfg.DefaultLLM), llmAPIKey(cfg))
	if err != nil {
		log.Error("failed to create LLM client", zap.Error(err))
		os.Exit(1)
	}
	log.Info("LLM client ready", zap.String("provider", llmClient.Name()))

	// Media and retrieval backends
	imageGen, err := media.NewOpenAIImageGenerator(cfg.OpenAIAPIKey, cfg.ImageModel)
	if err != nil {
		log.Error("failed to create image generator", zap.Error(err))
		os.Exit(1)
	}
	speechSynth, err := media.NewOpenAISpeechSynthesizer(cfg.OpenAIAPIKey, cfg.TTSVoice, cfg.AudioDir)
	if err != nil {
		log.Error("failed to create speech synthesizer", zap.Error(err))
		os.Exit(1)
	}
	retriever, err := rag.NewQdrantRetriever(rag.Config{
		QdrantURL:      cfg.QdrantURL,
		QdrantAPIKey:   cfg.QdrantAPIKey,
		Collection:     cfg.QdrantCollection,
		OpenAIAPIKey:   cfg.OpenAIAPIKey,
		EmbeddingModel: cfg.EmbeddingModel,
	})
	if err != nil {
		log.Error("failed to create retriever", zap.Error(err))
		os.Exit(1)
	}

	// Register intent handlers. Order matters: earlier handlers win
	// keyword conflicts.
	registry := intent.NewRegistry()
	for _, h := range []intent.Handler{
		intent.NewGeneralChatHandler(llmClient, cfg.ChatModel),
		intent.NewImageHandler(imageGen),
		intent.NewAudioHandler(speechSynth, scrape.NewReadabilityFetcher()),
		intent.NewEstateHandler(retriever, llmClient, cfg.ChatModel, cfg.RetrievalTopK),
	} {
		if err := registry.Register(h); err != nil {
			log.Error("failed to register intent handler", zap.Error(err))
			os.Exit(1)
		}
	}
	classifier := intent.NewClassifier(registry, llmClient, cfg.ChatModel, log)

	// Optional turn audit stream
	var eventsClient *events.Client
	var publisher *events.Publisher
	if cfg.NATSURL != "" {
		eventsClient, err = events.Connect(ctx, events.Config{
			URL:   cfg.NATSURL,
			Token: cfg.NATSToken,
		}, log)
		if err != nil {
			log.Warn("failed to connect to NATS, turn events disabled", zap.Error(err))
		} else {
			defer eventsClient.Close()
			publisher, err = events.NewPublisher(ctx, eventsClient, log)
			if err != nil {
				log.Warn("failed to create turn event publisher", zap.Error(err))
				publisher = nil
			}
		}
	}

	// Initialize services
	authSvc := auth.NewService(users, cfg.JWTSecret, cfg.JWTExpiration, log)
	chatSvc := chat.NewService(sessions, classifier, registry, publisher, log)

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(eventsClient)
	authHandler := handler.NewAuthHandler(authSvc, log)
	chatHandler := handler.NewChatHandler(chatSvc, log)
	sessionHandler := handler.NewSessionHandler(chatSvc, log)
	adminHandler := handler.NewAdminHandler(authSvc, log)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(middleware.SecurityHeaders)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"Link", "X-Correlation-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	// Public auth routes
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWTSecret))
			r.Post("/password", authHandler.ChangePassword)
		})
	})

	// Authenticated API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWTSecret))
		r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

		r.Post("/chat", chatHandler.Chat)

		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", sessionHandler.List)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", sessionHandler.Get)
				r.Put("/", sessionHandler.Rename)
				r.Delete("/", sessionHandler.Delete)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole(string(model.RoleAdmin)))
			r.Get("/users", adminHandler.ListUsers)
			r.Put("/users/{id}", adminHandler.UpdateUser)
		})
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}

// buildStores connects to MongoDB when MONGODB_URI is set, falling back
// to the file-backed stores when it is absent or unreachable.
func buildStores(ctx context.Context, cfg *config.Config, log *logger.Logger) (store.SessionStore, store.UserStore) {
	if cfg.MongoURI != "" {
		mongo, err := store.NewMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err == nil {
			log.Info("using MongoDB storage", zap.String("database", cfg.MongoDatabase))
			return mongo.Sessions(), mongo.Users()
		}
		log.Warn("MongoDB unavailable, falling back to file storage", zap.Error(err))
	}

	sessions, err := store.NewFileSessionStore(cfg.SessionsFile)
	if err != nil {
		log.Error("failed to open session file store", zap.Error(err))
		os.Exit(1)
	}
	users, err := store.NewFileUserStore(cfg.UsersFile)
	if err != nil {
		log.Error("failed to open user file store", zap.Error(err))
		os.Exit(1)
	}
	log.Info("using file storage",
		zap.String("sessions", cfg.SessionsFile),
		zap.String("users", cfg.UsersFile),
	)
	return sessions, users
}

func llmAPIKey(cfg *config.Config) string {
	if llm.Provider(cfg.DefaultLLM) == llm.ProviderAnthropic {
		return cfg.AnthropicAPIKey
	}
	return cfg.OpenAIAPIKey
}
