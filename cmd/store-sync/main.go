package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/example/shopbot/internal/bootstrap"
	"github.com/example/shopbot/internal/config"
	"github.com/example/shopbot/internal/datamodels/snapshot"
	"github.com/example/shopbot/internal/logger"
)

const checkInterval = 5 * time.Minute // 每5分钟同步一次

func main() {
	configDir := flag.String("config", ".", "directory containing config.yaml")
	from := flag.String("from", bootstrap.BackendFile, "source store backend")
	to := flag.String("to", bootstrap.BackendRedis, "target store backend")
	watch := flag.Bool("watch", false, "keep syncing every 5 minutes")
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

	if *from == *to {
		log.Fatal("source and target backend are the same", zap.String("backend", *from))
	}
	src, closeSrc, err := bootstrap.OpenGateway(cfg, *from)
	if err != nil {
		log.Fatal("open source", zap.String("backend", *from), zap.Error(err))
	}
	defer closeSrc()
	dst, closeDst, err := bootstrap.OpenGateway(cfg, *to)
	if err != nil {
		log.Fatal("open target", zap.String("backend", *to), zap.Error(err))
	}
	defer closeDst()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("store sync started", zap.String("from", *from), zap.String("to", *to), zap.Bool("watch", *watch))
	syncAll(ctx, log, src, dst)
	if !*watch {
		return
	}

	ticker := time.NewTicker(checkInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			syncAll(ctx, log, src, dst)
		}
	}
}

// syncAll 以源端为准，把有差异的 store 覆盖到目标端
func syncAll(ctx context.Context, log *zap.Logger, src, dst snapshot.Gateway) {
	var drift, synced int
	for _, name := range snapshot.Names {
		data, err := src.Load(ctx, name)
		if errors.Is(err, snapshot.ErrNotFound) {
			continue
		}
		if err != nil {
			log.Error("load source store", zap.String("store", name), zap.Error(err))
			continue
		}

		current, err := dst.Load(ctx, name)
		if err != nil && !errors.Is(err, snapshot.ErrNotFound) {
			log.Error("load target store", zap.String("store", name), zap.Error(err))
			continue
		}
		if bytes.Equal(bytes.TrimSpace(data), bytes.TrimSpace(current)) {
			continue
		}

		drift++
		log.Warn("store differs", zap.String("store", name), zap.Int("source_bytes", len(data)), zap.Int("target_bytes", len(current)))
		if err := dst.Save(ctx, name, data); err != nil {
			log.Error("sync store", zap.String("store", name), zap.Error(err))
			continue
		}
		synced++
	}
	log.Info("store sync done", zap.Int("drift", drift), zap.Int("synced", synced))
}
