package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/kataras/iris/v12"
	"go.uber.org/zap"

	"github.com/example/shopbot/internal/bootstrap"
	"github.com/example/shopbot/internal/config"
	"github.com/example/shopbot/internal/datamodels/snapshot"
	"github.com/example/shopbot/internal/logger"
	"github.com/example/shopbot/internal/middleware"
	"github.com/example/shopbot/internal/persist"
	"github.com/example/shopbot/internal/seed"
	"github.com/example/shopbot/internal/server"
	"github.com/example/shopbot/internal/service"
)

const shutdownTimeout = 15 * time.Second

func main() {
	configDir := flag.String("config", ".", "directory containing config.yaml")
	flag.Parse()

	cfg, err := config.Load(*configDir)
	if err != nil {
		panic(err)
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	gw, closeGateway, err := bootstrap.OpenGateway(cfg, cfg.Store.Backend)
	if err != nil {
		log.Fatal("open store gateway", zap.String("backend", cfg.Store.Backend), zap.Error(err))
	}
	defer closeGateway()

	notifier, closeNotifier, err := bootstrap.OpenNotifier(cfg, log)
	if err != nil {
		log.Fatal("open notifier", zap.String("backend", cfg.Notify.Backend), zap.Error(err))
	}
	defer closeNotifier()

	monitor := service.NewMonitor()
	stores := bootstrap.NewStores()
	persister := persist.New(gw, log.Named("persist"), persist.Options{
		CheckpointInterval: cfg.Persist.CheckpointInterval,
		MaxRetries:         cfg.Persist.MaxRetries,
		RetryBackoff:       cfg.Persist.RetryBackoff,
		OnSaveError:        func(string, error) { monitor.RecordPersistError() },
	})
	stores.Register(persister)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := persister.LoadAll(ctx); err != nil {
		log.Fatal("load stores", zap.Error(err))
	}
	if seed.Apply(stores.Catalog, false) {
		log.Info("catalog empty, default catalog seeded")
		persister.MarkDirty(snapshot.Products, snapshot.Categories)
	}

	d := service.Deps{
		Stores:   stores.Service(),
		Store:    persister,
		Notifier: notifier,
		Monitor:  monitor,
		Locks:    service.NewUserLocks(),
		Clock:    service.SystemClock,
		Messages: service.NewMessages(cfg.Shop.Currency),
		Logger:   log.Named("service"),
	}
	users := service.NewUserService(d)
	svc := &server.Services{
		Users:    users,
		Products: service.NewProductService(stores.Catalog),
		Cart:     service.NewCartService(d, users),
		Checkout: service.NewCheckoutService(d, users, cfg.Shop.LowStockThreshold),
		Account:  service.NewAccountService(d, users, cfg.Shop.HistoryLimit),
		Support:  service.NewSupportService(d, users),
		Admin: service.NewAdminService(d, cfg.Shop.AdminID, cfg.Shop.TopN,
			middleware.NewTokenBucket(cfg.Broadcast.PerSecond, cfg.Broadcast.PerSecond)),
		Messages: d.Messages,
		Limiter:  middleware.NewTokenBucket(cfg.RateLimit.Capacity, cfg.RateLimit.RefillPerSecond),
		Logger:   log.Named("http"),
	}

	shop := server.NewApp(log)
	server.RegisterRoutes(shop, svc)
	admin := server.NewApp(log)
	server.RegisterAdminRoutes(admin, svc)

	if cfg.Shop.AdminID == "" {
		log.Warn("shop.admin_id not set, admin API and admin notifications are disabled")
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		persister.Run(ctx)
	}()

	serve := func(name string, app *iris.Application, addr string) {
		log.Info("http server listening", zap.String("server", name), zap.String("addr", addr))
		err := app.Listen(addr, iris.WithoutInterruptHandler, iris.WithoutServerError(iris.ErrServerClosed))
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server stopped", zap.String("server", name), zap.Error(err))
			stop()
		}
	}
	go serve("shop", shop, cfg.Server.Addr())
	go serve("admin", admin, cfg.AdminServer.Addr())

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	_ = shop.Shutdown(shutdownCtx)
	_ = admin.Shutdown(shutdownCtx)

	wg.Wait()
	if err := persister.Close(shutdownCtx); err != nil {
		log.Error("final checkpoint failed", zap.Error(err))
	}
}
