package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // loads .env files into the environment
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/reserva-salas/backend/internal/config"     // environment config loader
	"github.com/reserva-salas/backend/internal/database"   // MySQL pool and migrations
	"github.com/reserva-salas/backend/internal/handler"    // HTTP handlers
	"github.com/reserva-salas/backend/internal/middleware" // rate limiting and caching
	"github.com/reserva-salas/backend/internal/queue"      // RabbitMQ consumer
	"github.com/reserva-salas/backend/internal/repository" // DB repositories
	"github.com/reserva-salas/backend/internal/router"     // route registration
)

func main() {
	// .env is optional; real deployments set variables directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	salas := repository.NewSalaRepo(db)
	periodos := repository.NewPeriodoRepo(db)
	reservas := repository.NewReservaRepo(db)

	e := echo.New()
	e.HideBanner = true

	// Redis backs the rate limiter and the period catalog cache. Both
	// degrade gracefully: with no Redis the API runs unlimited and
	// uncached.
	rdb := config.NewRedisClient()
	var periodoCache echo.MiddlewareFunc
	if rdb != nil {
		rlCfg := config.LoadRateLimitConfig()
		if rlCfg.Enabled {
			e.Use(middleware.NewTokenBucket(rlCfg, rdb))
		}
		cacheCfg := config.LoadCacheConfig()
		if cacheCfg.Enabled {
			periodoCache = middleware.NewRedisCache(cacheCfg, rdb)
		}
	}

	router.Register(e, router.Deps{
		Auth:         handler.NewAuthHandler(cfg, users, tokens),
		Users:        handler.NewUserHandler(cfg, users),
		Salas:        handler.NewSalaHandler(salas),
		Periodos:     handler.NewPeriodoHandler(periodos, reservas),
		Reservas:     handler.NewReservaHandler(db, reservas, salas, periodos, users),
		JWTSecret:    cfg.JWTSecret,
		PeriodoCache: periodoCache,
	})

	// Background consumer for reserva.confirmada events. It keeps its
	// own reconnect loop; a broker outage never affects the API.
	go func() {
		if err := queue.StartReservaConsumer(); err != nil {
			log.Printf("queue consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
