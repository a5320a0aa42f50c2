package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"emote-pack-service/internal/broadcast"
	"emote-pack-service/internal/config"
	"emote-pack-service/internal/handler"
	"emote-pack-service/internal/itemdb"
	"emote-pack-service/internal/loader"
	"emote-pack-service/internal/middleware"
	"emote-pack-service/internal/registry"
	"emote-pack-service/internal/repository"
	"emote-pack-service/internal/router"
	"emote-pack-service/internal/service"
	"emote-pack-service/internal/session"
	"emote-pack-service/internal/timer"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting emote pack service...")

	// Load configuration
	cfg := config.MustLoad()
	log.Printf("Environment: %s", cfg.App.Environment)

	// MySQL connection (item names and, when selected, entitlements)
	mysqlDB, err := sql.Open("mysql", cfg.Database.DSN())
	if err != nil {
		log.Printf("Warning: MySQL connection failed: %v", err)
		mysqlDB = nil
	} else {
		mysqlDB.SetMaxOpenConns(10)
		mysqlDB.SetMaxIdleConns(5)
		mysqlDB.SetConnMaxLifetime(5 * time.Minute)

		if err := mysqlDB.Ping(); err != nil {
			log.Printf("Warning: MySQL ping failed: %v", err)
			mysqlDB.Close()
			mysqlDB = nil
		} else {
			log.Println("MySQL connection initialized")
		}
	}
	if mysqlDB != nil {
		defer mysqlDB.Close()
	}

	// Entitlement repository based on config
	var entitlementRepo repository.EntitlementRepository
	switch cfg.EntitlementDB.Type {
	case "sqlite":
		sqliteRepo, err := repository.NewSQLiteEntitlementRepository(cfg.EntitlementDB.Path)
		if err != nil {
			log.Fatalf("Failed to initialize SQLite: %v", err)
		}
		defer sqliteRepo.Close()
		entitlementRepo = sqliteRepo
		log.Println("SQLite entitlement repository initialized")
	default: // mysql
		if mysqlDB == nil {
			log.Fatalf("Entitlement storage is mysql but no MySQL connection is available")
		}
		entitlementRepo = repository.NewMySQLEntitlementRepository(mysqlDB)
		log.Println("MySQL entitlement repository initialized")
	}

	// Item name index (degrades to empty when MySQL is down)
	var itemRepo repository.ItemRepository
	if mysqlDB != nil {
		itemRepo = repository.NewMySQLItemRepository(mysqlDB)
	}
	itemIndex, err := itemdb.Load(context.Background(), itemRepo)
	if err != nil {
		log.Printf("Warning: item index load failed: %v", err)
		itemIndex = itemdb.NewIndex(nil)
	}

	// Session manager is the local activation fan-out target
	sessions := session.NewManager()

	// Redis activation bus (optional)
	var notifier registry.ActivationNotifier = sessions
	var activationBus *broadcast.RedisActivationBus

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		log.Printf("Warning: Redis connection failed: %v, activations stay node-local", err)
	} else {
		activationBus = broadcast.NewRedisActivationBus(redisClient, cfg.Redis.ActivationChannel, sessions)
		activationBus.Start()
		notifier = activationBus
		log.Println("Redis activation bus initialized")
	}
	cancelPing()

	// Definition registry and its sale activation timers
	sched := timer.NewWallScheduler()
	reg := registry.New(registry.Config{
		Items:        itemIndex,
		Notifier:     notifier,
		Scheduler:    sched,
		PollInterval: cfg.Emote.PollInterval,
		MaxAmount:    cfg.Emote.MaxMaterialAmount,
	})

	records, err := loader.LoadFile(cfg.Emote.DBPath)
	if err != nil {
		log.Fatalf("Failed to read emote db %s: %v", cfg.Emote.DBPath, err)
	}
	reg.Initialize(records)

	// Entitlement lifecycle service
	presenter := broadcast.NewShopPresenter(reg)
	entitlements := service.NewEntitlementService(entitlementRepo, presenter)

	// Handlers
	healthHandler := handler.New(cfg.App.Version)
	shopHandler := handler.NewShopHandler(reg)
	sessionHandler := handler.NewSessionHandler(sessions, entitlements)
	adminHandler := handler.NewAdminHandler(reg, sessions, cfg.Emote.DBPath, cfg.EntitlementDB.Type)

	r := router.New(router.Config{
		Handler:         healthHandler,
		ShopHandler:     shopHandler,
		SessionHandler:  sessionHandler,
		AdminHandler:    adminHandler,
		AdminMiddleware: middleware.NewAdminKeyMiddleware(cfg.App.AdminKey),
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Printf("Server listening on %s", cfg.Server.Address())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	// Flush every attached session before dropping state
	sessions.ForEach(func(s *session.Session) {
		if err := entitlements.Save(ctx, s); err != nil {
			log.Printf("Failed to save session %s: %v", s.ID, err)
		}
	})

	if activationBus != nil {
		activationBus.Stop()
	}
	reg.Shutdown()
	sched.Stop()

	log.Println("Server stopped")
}
