package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"feed_notifier/internal/config"
	"feed_notifier/internal/db"
	"feed_notifier/internal/fetcher"
	"feed_notifier/internal/logger"
	"feed_notifier/internal/metrics"
	"feed_notifier/internal/queue"
	"feed_notifier/internal/render"
	"feed_notifier/internal/server"
	"feed_notifier/internal/telegram"
	"feed_notifier/internal/worker"
)

const memoryQueueSize = 256

func main() {
	// Конфигурация читается до логгера: от неё зависят уровень и файл логов
	cfg, err := config.LoadConfig(os.Getenv("CONFIG_FILE"))
	if err != nil {
		logger.Log.Fatalf("Config load error: %v", err)
	}
	logger.Init(logger.Options{Debug: cfg.Log.Debug, File: cfg.Log.File})
	defer logger.Log.Info("Application stopped")

	if err := cfg.Validate(); err != nil {
		logger.Log.Fatalf("Invalid config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.New()

	// Журнал доставок (необязательный)
	var (
		journal worker.Journal
		store   server.DeliveryStore
	)
	if cfg.DatabaseURL != "" {
		database, err := db.NewDB(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Log.Fatalf("DB connection error: %v", err)
		}
		defer database.Close()

		if err := database.Migrate(ctx); err != nil {
			logger.Log.Fatalf("DB migration error: %v", err)
		}
		journal, store = database, database
	}

	bot, err := telegram.NewBot(cfg.BotToken)
	if err != nil {
		logger.Log.Fatalf("Telegram bot error: %v", err)
	}

	// Очередь доставки: RabbitMQ, если задан URL, иначе в памяти
	var (
		publisher queue.Publisher
		consumer  queue.Consumer
	)
	if cfg.RabbitMQ.URL != "" {
		producer, err := queue.NewProducer(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue)
		if err != nil {
			logger.Log.Fatalf("RabbitMQ producer error: %v", err)
		}
		defer producer.Close()

		amqpConsumer, err := queue.NewConsumer(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue, 1)
		if err != nil {
			logger.Log.Fatalf("RabbitMQ consumer error: %v", err)
		}
		publisher, consumer = producer, amqpConsumer
	} else {
		mem := queue.NewMemory(memoryQueueSize)
		publisher, consumer = mem, mem
	}

	// Один воркер, чтобы сообщения уходили в порядке постановки
	wrk := worker.NewWorker(bot, journal, m)
	if err := consumer.Consume(wrk.HandleTask); err != nil {
		logger.Log.Fatalf("Queue consume error: %v", err)
	}

	poller := fetcher.NewPoller(
		fetcher.NewFetcher(cfg.FetchTimeout()),
		render.NewRenderer(cfg.HeaderLabel),
		publisher,
		m,
		fetcher.Options{
			FeedURL:        cfg.FeedURL,
			ChatID:         cfg.ChatID.String(),
			Period:         cfg.UpdatePeriod(),
			FailureMessage: cfg.FailureMessage,
		},
	)

	// Опрос начинается по команде /start
	go bot.Listen(ctx, func(ctx context.Context, chatID int64) {
		if !poller.Start(ctx, bot.Replier(chatID)) {
			logger.Log.WithField("chat_id", chatID).Info("Poller is already running")
		}
	})

	var srv *http.Server
	if cfg.HTTPAddr != "" {
		srv = &http.Server{Addr: cfg.HTTPAddr, Handler: server.NewServer(store, m).Routes()}
		go func() {
			logger.Log.Infof("Starting HTTP server on %s", cfg.HTTPAddr)
			if err := srv.ListenAndServe(); err != http.ErrServerClosed {
				logger.Log.Errorf("Server error: %v", err)
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Log.WithField("signal", sig.String()).Info("Shutting down...")
	bot.Stop()
	cancel()

	if srv != nil {
		ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelShutdown()
		if err := srv.Shutdown(ctxShutdown); err != nil {
			logger.Log.Errorf("Forced shutdown: %v", err)
		}
	}

	consumer.Close()
}
