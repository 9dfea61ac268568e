package app

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bookvault/borrowing-service/config"
	"github.com/bookvault/borrowing-service/internal/handler"
	"github.com/bookvault/borrowing-service/internal/notifier"
	"github.com/bookvault/borrowing-service/internal/repository"
	"github.com/bookvault/borrowing-service/internal/server"
	"github.com/bookvault/borrowing-service/internal/service"
	"github.com/bookvault/borrowing-service/internal/stripe"
	"github.com/bookvault/borrowing-service/migrations"
	"github.com/bookvault/borrowing-service/pkg/kafka"
	"github.com/bookvault/borrowing-service/pkg/logger"
	"github.com/bookvault/borrowing-service/pkg/postgres"
)

func Run(cfg *config.Config) {
	log := logger.NewLogger(cfg.Log, "borrowing")
	db, err := postgres.NewPostgresDB(context.Background(), &cfg.Database, migrations.MigrationFiles)
	if err != nil {
		log.Fatal("db init", zap.Error(err))
	}
	repo, err := repository.NewRepository(db, log)
	if err != nil {
		log.Fatal("repo", zap.Error(err))
	}

	producer, err := kafka.NewProducer(cfg.Kafka)
	if err != nil {
		log.Fatal("kafka.NewProducer", zap.Error(err))
	}
	gateway := stripe.NewClient(cfg.Stripe)
	svc := service.NewService(repo, kafka.NewEnqueuer(producer), gateway,
		service.Config{DomainURL: cfg.DomainURL}, log)

	tg, err := notifier.NewTelegram(cfg.Telegram, log)
	if err != nil {
		log.Fatal("notifier.NewTelegram", zap.Error(err))
	}
	consumer, err := kafka.NewConsumer(cfg.Kafka, kafka.NotificationsConsumerGroup)
	if err != nil {
		log.Fatal("kafka.NewConsumer", zap.Error(err))
	}

	h := handler.New(svc, log)
	srv := server.NewServer(cfg.Server, h.NewRouter())
	log.Info("http server start ON: ",
		zap.String("addr",
			net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)))

	ctx, cancel := context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run()
	})
	g.Go(func() error {
		kafka.Consume(gctx, consumer, handler.NewConsumer(tg.Send, log), kafka.NotificationsTopic, log)
		return nil
	})

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	termSig := <-sig

	log.Debug("Graceful shutdown", zap.Any("signal", termSig))

	closeCtx, closeCancel := context.WithTimeout(context.Background(), time.Second*5)
	defer closeCancel()

	if err = srv.Stop(closeCtx); err != nil {
		log.Error("srv.Stop", zap.Error(err))
	}
	cancel()
	if err = g.Wait(); err != nil {
		log.Error("g.Wait", zap.Error(err))
	}
	if err = consumer.Close(); err != nil {
		log.Error("consumer.Close", zap.Error(err))
	}
	_ = producer.Close()
	db.Close()
	log.Info("Graceful shutdown finished")
}
