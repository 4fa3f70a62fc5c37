package app

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Astemirdum/smart-library/library/config"
	"github.com/Astemirdum/smart-library/library/internal/handler"
	"github.com/Astemirdum/smart-library/library/internal/penalty"
	"github.com/Astemirdum/smart-library/library/internal/repository"
	"github.com/Astemirdum/smart-library/library/internal/server"
	"github.com/Astemirdum/smart-library/library/internal/service"
	"github.com/Astemirdum/smart-library/library/internal/summary"
	"github.com/Astemirdum/smart-library/library/migrations"
	"github.com/Astemirdum/smart-library/pkg/auth"
	"github.com/Astemirdum/smart-library/pkg/kafka"
	"github.com/Astemirdum/smart-library/pkg/logger"
	"github.com/Astemirdum/smart-library/pkg/postgres"
	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

func Run(cfg config.Config) {
	log := logger.NewLogger(cfg.Log, "library")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.NewPostgresDB(ctx, &cfg.Database, migrations.MigrationFiles)
	if err != nil {
		log.Fatal("db init", zap.Error(err))
	}
	repo, err := repository.NewRepository(db, log)
	if err != nil {
		log.Fatal("repo", zap.Error(err))
	}

	tokens := auth.NewTokenManager(cfg.Auth)
	opts := []service.Option{
		service.WithSummarizer(summary.NewClient(cfg.AI, log)),
	}
	if cfg.AI.APIKey == "" {
		log.Warn("AI_API_KEY is not set, summaries are disabled")
	}

	var producer sarama.SyncProducer
	if cfg.Kafka.Enable {
		producer, err = kafka.NewProducer(cfg.Kafka)
		if err != nil {
			log.Fatal("kafka.NewProducer", zap.Error(err))
		}
		opts = append(opts, service.WithEnqueuer(kafka.NewEnqueuer(producer)))
	}
	svc := service.NewService(repo, penalty.NewCalculator(cfg.Loan), tokens, log, opts...)

	var consumer sarama.ConsumerGroup
	if cfg.Kafka.Enable {
		consumer, err = kafka.NewConsumer(cfg.Kafka, kafka.PointsConsumerGroup)
		if err != nil {
			log.Fatal("kafka.NewConsumer", zap.Error(err))
		}
		go kafka.Consume(ctx, consumer, handler.NewConsumer(svc.AwardPoints, log), log, kafka.IssueEventsTopic)
	}

	h := handler.New(svc, svc, tokens, log)
	srv := server.NewServer(cfg.Server, h.NewRouter())
	log.Info("http server start ON: ",
		zap.String("addr",
			net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)))
	go func() {
		if err := srv.Run(); err != nil {
			log.Error("server run", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	termSig := <-sig

	log.Debug("Graceful shutdown", zap.Any("signal", termSig))

	closeCtx, closeCancel := context.WithTimeout(context.Background(), time.Second*5)
	defer closeCancel()

	if err = srv.Stop(closeCtx); err != nil {
		log.DPanic("srv.Stop", zap.Error(err))
	}
	cancel()
	if consumer != nil {
		if err = consumer.Close(); err != nil {
			log.Error("consumer.Close", zap.Error(err))
		}
	}
	if producer != nil {
		if err = producer.Close(); err != nil {
			log.Error("producer.Close", zap.Error(err))
		}
	}
	db.Close()
	log.Info("Graceful shutdown finished")
}
