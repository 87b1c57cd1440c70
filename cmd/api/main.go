package main

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	_ "github.com/urfu-enjoyers/campuslink/docs"
	"github.com/urfu-enjoyers/campuslink/internal/certificate"
	"github.com/urfu-enjoyers/campuslink/internal/config"
	"github.com/urfu-enjoyers/campuslink/internal/database"
	"github.com/urfu-enjoyers/campuslink/internal/joinrequest"
	"github.com/urfu-enjoyers/campuslink/internal/notify"
	"github.com/urfu-enjoyers/campuslink/internal/room"
	"github.com/urfu-enjoyers/campuslink/internal/user"
	mw "github.com/urfu-enjoyers/campuslink/pkg/middleware"
)

// @title        CampusLink API
// @version      1.0
// @description  Telegram mini-app backend: rooms, join requests and participation certificates.
// @BasePath     /api
func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Initialize database connection
	db, err := database.Open(cfg.DatabaseFile)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Connected to database", zap.String("file", cfg.DatabaseFile))

	if cfg.BotToken == "" {
		logger.Warn("BOT_TOKEN is not set; all authenticated requests will be rejected")
	}

	// Outbound Telegram notifications; degrade to noop when the bot cannot
	// be reached so startup never blocks on Telegram.
	var notifier joinrequest.Notifier = notify.Noop{}
	if cfg.BotToken != "" {
		tg, err := notify.NewTelegram(cfg.BotToken, cfg.WebAppURL, logger)
		if err != nil {
			logger.Warn("Telegram bot unavailable, notifications disabled", zap.Error(err))
		} else {
			notifier = tg
			go tg.Start(context.Background())
		}
	}

	// Certificate artifact renderer
	renderer, err := certificate.NewPDFRenderer(cfg.CertDir)
	if err != nil {
		logger.Fatal("Failed to prepare certificate directory", zap.Error(err))
	}

	// User feature (identity resolution + profile + portfolio)
	userRepo := user.NewRepository(db)
	userService := user.NewService(userRepo, cfg.BotToken, cfg.PublicURL)
	userHandler := user.NewHandler(userService)

	// Room feature (registry + membership)
	roomRepo := room.NewRepository(db)
	roomService := room.NewService(roomRepo)
	roomHandler := room.NewHandler(roomService)

	// Join-request feature (with room/user repos and notifier injected)
	joinRepo := joinrequest.NewRepository(db)
	joinService := joinrequest.NewService(joinRepo, roomRepo, userRepo, notifier, logger)
	joinHandler := joinrequest.NewHandler(joinService)

	// Certificate feature (with room repo and renderer injected)
	certRepo := certificate.NewRepository(db)
	certService := certificate.NewService(certRepo, roomRepo, renderer, cfg.PublicURL, logger)
	certHandler := certificate.NewHandler(certService, cfg.CertDir)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// API routes, all behind initData verification
	r.Route("/api", func(r chi.Router) {
		r.Use(mw.TelegramAuth(userService))

		r.Mount("/me", userHandler.Routes())

		rooms := roomHandler.Routes()
		rooms.Post("/{id}/join", joinHandler.Submit)
		rooms.Post("/{id}/requests/{requestID}", joinHandler.Decide)
		rooms.Post("/{id}/complete", certHandler.Complete)
		r.Mount("/rooms", rooms)
	})

	// Certificate artifacts are public by URL
	r.Mount("/certificates", certHandler.ArtifactRoutes())

	logger.Info("Server starting", zap.String("port", cfg.Port))
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}
