package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"detailpro-backend/cache"
	"detailpro-backend/config"
	"detailpro-backend/controllers"
	"detailpro-backend/routes"
	"detailpro-backend/services"
	"detailpro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg := config.LoadEnv()

	logger, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	if cfg.JWT.Secret == "" {
		if !cfg.IsDevelopment() {
			return errors.New("JWT_SECRET is required")
		}
		cfg.JWT.Secret = utils.GenerateJWTSecret()
		logger.Warn("JWT_SECRET not set, using a random secret; tokens will not survive a restart")
	}
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.ConnectDB(cfg.Database, logger)
	if err != nil {
		return err
	}

	var store cache.Store = cache.Nop{}
	if cfg.Redis.Enabled {
		rs, err := cache.NewRedisStore(context.Background(), cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      cfg.Redis.TTL,
		}, logger)
		if err != nil {
			logger.Warn("Redis unavailable, caching disabled", zap.Error(err))
		} else {
			store = rs
			defer rs.Close()
		}
	}

	var reminders *services.ReminderService
	if cfg.Twilio.Enabled() {
		reminders = services.NewReminderService(db, services.NewTwilioSender(cfg.Twilio), logger)
	} else {
		logger.Info("Twilio not configured, appointment reminders disabled")
	}

	ctl, err := controllers.New(db, store, logger, cfg.JWT, reminders)
	if err != nil {
		return err
	}

	var scheduler *cron.Cron
	if cfg.Jobs.Enabled {
		scheduler, err = services.StartScheduler(cfg.Jobs, reminders, ctl.Ledger(), logger)
		if err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
	}

	r := routes.SetupRouter(cfg, ctl, logger)
	if cfg.IsDevelopment() {
		printRoutes(r)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	logger.Info("Shutting down")
	if scheduler != nil {
		<-scheduler.Stop().Done()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

func printRoutes(r *gin.Engine) {
	for _, route := range r.Routes() {
		fmt.Printf("%-6s %s\n", route.Method, route.Path)
	}
}
