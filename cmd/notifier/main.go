package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"carebook/internal/events"
	"carebook/internal/notifier"
	"carebook/pkg/kafka"
	kafka_config "carebook/pkg/kafka/config"
	"carebook/pkg/logger"
)

const ServiceName = "carebook-notifier"

func main() {
	log := logger.New(logger.Config{
		Level:     logger.INFO,
		Format:    logger.JSON,
		AddSource: true,
		Service:   ServiceName,
	})

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		log.Fatal("Invalid Kafka configuration", "error", err)
	}

	appointments, err := kafka.NewConsumer(kafkaCfg, events.TopicAppointments, events.TopicAppointmentsDLQ)
	if err != nil {
		log.Fatal("Failed to create appointments consumer", "error", err)
	}
	feedback, err := kafka.NewConsumer(kafkaCfg, events.TopicFeedback, events.TopicFeedbackDLQ)
	if err != nil {
		log.Fatal("Failed to create feedback consumer", "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	worker := notifier.New(log)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := appointments.Run(ctx, worker.HandleAppointment); err != nil && ctx.Err() == nil {
			log.Error("Appointments consumer stopped", "error", err)
		}
	}()
	go func() {
		defer wg.Done()
		if err := feedback.Run(ctx, worker.HandleFeedback); err != nil && ctx.Err() == nil {
			log.Error("Feedback consumer stopped", "error", err)
		}
	}()

	log.Info("Notifier worker started", "brokers", kafkaCfg.Brokers)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	sig := <-shutdown
	log.Info("Shutdown signal received", "signal", sig)

	cancel()
	wg.Wait()

	if err := appointments.Close(); err != nil {
		log.Error("Failed to close appointments consumer", "error", err)
	}
	if err := feedback.Close(); err != nil {
		log.Error("Failed to close feedback consumer", "error", err)
	}

	log.Info("Notifier worker stopped")
}
