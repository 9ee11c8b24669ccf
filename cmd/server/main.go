package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/space-reservation/internal/config"
	"github.com/iliyamo/space-reservation/internal/database"
	"github.com/iliyamo/space-reservation/internal/handler"
	"github.com/iliyamo/space-reservation/internal/middleware"
	"github.com/iliyamo/space-reservation/internal/queue"
	"github.com/iliyamo/space-reservation/internal/repository"
	"github.com/iliyamo/space-reservation/internal/router"
	"github.com/iliyamo/space-reservation/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient() // nil when Redis is unreachable; caching and limiting degrade to no-ops

	reservationRepo := repository.NewReservationRepo(db)
	spaceRepo := repository.NewSpaceRepo(db, reservationRepo)
	typeRepo := repository.NewTypeRepo(db)
	userRepo := repository.NewUserRepo(db)
	tokenRepo := repository.NewTokenRepo(db)

	reservationSvc := service.NewReservationService(reservationRepo, spaceRepo, userRepo, queue.NewPublisher())
	spaceSvc := service.NewSpaceService(spaceRepo, typeRepo)

	authHandler := handler.NewAuthHandler(cfg, userRepo, tokenRepo)
	spaceHandler := handler.NewSpaceHandler(spaceSvc)
	typeHandler := handler.NewTypeHandler(typeRepo)
	reservationHandler := handler.NewReservationHandler(reservationSvc)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	cacheMW := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler, cfg.JWTSecret)
	router.RegisterCatalog(e, spaceHandler, typeHandler, cfg.JWTSecret, cacheMW)
	router.RegisterReservations(e, reservationHandler, cfg.JWTSecret)

	// Confirmation consumer writes notification lines under logs/.
	go func() {
		if err := queue.StartConfirmedConsumer(); err != nil {
			log.Printf("consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
