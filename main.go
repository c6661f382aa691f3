package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"crudapi/internal/config"
	"crudapi/internal/logging"
	"crudapi/internal/services"
	"crudapi/pkg/rabbitmq"

	"github.com/sirupsen/logrus"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load(nil)
	if err != nil {
		logrus.Fatalf("Invalid configuration: %v", err)
	}
	log := logging.NewLogger(cfg.AppName, cfg.Env)
	if cfg.UsesDefaultSecret() && !cfg.IsDevelopment() {
		log.Warn("JWT_SECRET is not set, tokens are signed with the default secret")
	}

	// run returns before exiting so its deferred cleanup always happens.
	if err := run(cfg, log); err != nil {
		log.WithError(err).Fatal("Server stopped with an error")
	}
}

func run(cfg *config.Config, log *logrus.Logger) error {
	// --- Domain events ---
	var publisher services.EventPublisher
	if cfg.RabbitMQEnabled {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Exchange: cfg.RabbitMQExchange}, log)
		if err != nil {
			return fmt.Errorf("failed to initialize RabbitMQ client: %w", err)
		}
		defer mqClient.Close()
		publisher = mqClient

		if cfg.RabbitMQConsumerQueue != "" {
			err = mqClient.ConsumeEvents(cfg.RabbitMQConsumerQueue, func(event rabbitmq.Event) error {
				log.WithFields(logrus.Fields{
					"event": event.Type,
					"id":    event.ID,
					"data":  string(event.Data),
				}).Info("received domain event")
				return nil
			})
			if err != nil {
				log.WithError(err).Error("Failed to start RabbitMQ consumer")
			}
		}
	}

	app, err := NewApp(cfg, log, publisher)
	if err != nil {
		return fmt.Errorf("failed to create app: %w", err)
	}
	defer app.Close()

	// --- Start HTTP Server ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	listenErr := make(chan error, 1)
	go func() {
		log.Infof("Server is running on %s", cfg.Port)
		listenErr <- app.Fiber.Listen(cfg.Port)
	}()

	select {
	case err := <-listenErr:
		if err != nil {
			return fmt.Errorf("server failed to start: %w", err)
		}
		return nil
	case <-quit:
	}

	log.Info("Shutting down server...")
	if err := app.Fiber.Shutdown(); err != nil {
		log.WithError(err).Error("Error during Fiber shutdown")
	}
	log.Info("Server gracefully stopped")
	return nil
}
