package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/streadway/amqp"
	"go.uber.org/zap"

	"github.com/unclebandit/quickreview-backend/internal/app"
	"github.com/unclebandit/quickreview-backend/internal/config"
	"github.com/unclebandit/quickreview-backend/internal/db"
	"github.com/unclebandit/quickreview-backend/internal/logger"
	"github.com/unclebandit/quickreview-backend/internal/queue"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()
	cfg, err := config.Load(ctx)
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.App.LogLevel, cfg.App.LogFile).Named("worker")
	defer func() { _ = log.Sync() }()

	conn, err := db.Connect(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal("database unavailable", zap.Error(err))
	}
	defer conn.Close()

	a, err := app.New(cfg, conn, log)
	if err != nil {
		log.Fatal("failed to build services", zap.Error(err))
	}

	// Connect to RabbitMQ
	mq, err := amqp.Dial(cfg.AMQP.URL)
	if err != nil {
		log.Fatal("failed to connect to RabbitMQ", zap.Error(err))
	}
	defer mq.Close()

	ch, err := mq.Channel()
	if err != nil {
		log.Fatal("failed to open a channel", zap.Error(err))
	}
	defer ch.Close()

	// One unacked delivery at a time keeps counter updates in arrival order.
	if err := ch.Qos(1, 0, false); err != nil {
		log.Fatal("failed to set QoS", zap.Error(err))
	}

	q, err := ch.QueueDeclare(
		cfg.AMQP.Queue, // name
		true,           // durable
		false,          // delete when unused
		false,          // exclusive
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		log.Fatal("failed to declare queue", zap.Error(err))
	}

	msgs, err := ch.Consume(
		q.Name,
		"",
		false, // autoAck = false, the worker acks after processing
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		log.Fatal("failed to register consumer", zap.Error(err))
	}

	log.Info("worker running, waiting for comment events", zap.String("queue", q.Name))
	queue.NewWorker(a.Queue, log).Start(ctx, msgs)
	log.Info("worker stopped")
}
