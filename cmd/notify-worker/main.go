package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/example/shopbot/internal/config"
	"github.com/example/shopbot/internal/infra/mq"
	"github.com/example/shopbot/internal/logger"
	"github.com/example/shopbot/internal/notify"
)

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

	conn, err := mq.New(&cfg.RabbitMQ)
	if err != nil {
		log.Fatal("connect rabbitmq", zap.Error(err))
	}
	defer conn.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := notify.NewWorker(conn, cfg.RabbitMQ.Queue, notify.NewLogDeliverer(log.Named("deliver")), log.Named("worker"))
	if err := w.Run(ctx); err != nil {
		log.Error("notify worker stopped", zap.Error(err))
	}
}
