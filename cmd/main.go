package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/exso/CryptoBank/config"
	_ "github.com/exso/CryptoBank/docs"
	"github.com/exso/CryptoBank/internal/handler"
	"github.com/exso/CryptoBank/internal/model"
	"github.com/exso/CryptoBank/internal/repository"
	"github.com/exso/CryptoBank/internal/security"
	"github.com/exso/CryptoBank/internal/service"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	httpSwagger "github.com/swaggo/http-swagger"
)

// @title CryptoBank
// @version 1.0
// @description REST API банковского бэкенда: сессии, пользователи, счета, новости

// @host localhost:8080

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	db, err := config.SetupDatabase(cfg.DatabaseConfig.DSN)
	if err != nil {
		log.Fatalf("Не удалось подключиться к БД: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Ошибка при закрытии БД: %v", err)
		}
	}()

	redisClient, err := config.SetupRedis(&cfg.RedisConfig)
	if err != nil {
		log.Fatalf("Ошибка подключения к Redis: %v", err)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Printf("Ошибка при закрытии Redis: %v", err)
		}
	}()

	srv, router := config.SetupServer(cfg.ServerAddr)

	snapshotTTL, err := time.ParseDuration(cfg.JWT.AccessTokenTTL)
	if err != nil {
		log.Fatalf("Ошибка парсинга access_token_ttl: %v", err)
	}
	newsTTL, err := time.ParseDuration(cfg.News.CacheTTL)
	if err != nil {
		log.Fatalf("Ошибка парсинга news cache_ttl: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewTokenRepository(db)
	accountRepo := repository.NewAccountRepository(db)
	newsRepo := repository.NewNewsRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, snapshotTTL, newsTTL)

	jwtService, err := security.NewJWTService(&cfg.JWT)
	if err != nil {
		log.Fatalf("Ошибка конфигурации JWT: %v", err)
	}

	sessionService, err := service.NewSessionService(tokenRepo, jwtService, userRepo, cacheRepo, &cfg.JWT)
	if err != nil {
		log.Fatalf("Ошибка конфигурации сервиса сессий: %v", err)
	}
	authService := service.NewAuthenticationService(userRepo, sessionService)
	userService := service.NewUserService(userRepo, cacheRepo)
	accountService := service.NewAccountService(accountRepo, cfg.Accounts.MaxPerUser)
	newsService := service.NewNewsService(newsRepo, cacheRepo)

	sweeper, err := service.NewArchivalSweeper(tokenRepo, &cfg.RefreshToken)
	if err != nil {
		log.Fatalf("Ошибка конфигурации зачистки токенов: %v", err)
	}
	go sweeper.Run(ctx)

	authHandler := handler.NewAuthenticationHandler(authService, sessionService)
	userHandler := handler.NewUserHandler(userService)
	accountHandler := handler.NewAccountHandler(accountService)
	newsHandler := handler.NewNewsHandler(newsService)

	router.Get("/swagger/*", httpSwagger.WrapHandler)

	setupAuthRoutes(router, authHandler, jwtService)
	setupUserRoutes(router, userHandler, jwtService)
	setupAccountRoutes(router, accountHandler, jwtService)
	setupNewsRoutes(router, newsHandler)

	runServer(ctx, srv)
}

func setupAuthRoutes(r chi.Router, h *handler.AuthenticationHandler, jwtService *security.JWTService) {
	r.Route("/api/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(security.JWTMiddleware(jwtService))
			r.Get("/me", h.GetCurrentUser)
		})
		r.Group(func(r chi.Router) {
			r.Post("/", h.Login)
			// ротация и отзыв аутентифицируются самим refresh-секретом,
			// access-токен для них не нужен
			r.Post("/refresh", h.RefreshToken)
			r.Post("/revoke", h.RevokeToken)
		})
	})
}

func setupUserRoutes(r chi.Router, h *handler.UserHandler, jwtService *security.JWTService) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/register", h.RegisterUser)

		r.Group(func(r chi.Router) {
			r.Use(security.JWTMiddleware(jwtService))
			r.Get("/users/profile", h.GetProfile)
		})
	})
}

func setupAccountRoutes(r chi.Router, h *handler.AccountHandler, jwtService *security.JWTService) {
	r.Route("/api/accounts", func(r chi.Router) {
		r.Use(security.JWTMiddleware(jwtService))
		r.Post("/", h.CreateAccount)
		r.Get("/", h.ListAccounts)

		r.Group(func(r chi.Router) {
			r.Use(security.RequireRole(model.RoleAnalyst))
			r.Get("/reporting", h.GetReporting)
		})
	})
}

func setupNewsRoutes(r chi.Router, h *handler.NewsHandler) {
	r.Get("/api/news", h.GetNews)
}

func runServer(ctx context.Context, server *http.Server) {
	serverErrors := make(chan error, 1)
	go func() {
		log.Println("сервер запущен на " + server.Addr)
		serverErrors <- server.ListenAndServe()
	}()

	signalChannel := make(chan os.Signal, 1)
	signal.Notify(signalChannel, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil {
			log.Fatalf("ошибка работы сервера: %v", err)
		}
	case sig := <-signalChannel:
		log.Printf("получен сигнал %v остановки работы сервера ", sig)
	}

	shutDownCtx, shutDownCancel := context.WithTimeout(ctx, 5*time.Second)
	defer shutDownCancel()

	if err := server.Shutdown(shutDownCtx); err != nil {
		log.Printf("ошибка при остановке сервера: %v", err)
	} else {
		log.Println("Сервер успешно остановлен")
	}
}
