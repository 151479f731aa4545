package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/flightbooking/config"
	"github.com/Domenick1991/flightbooking/internal/breaker"
	"github.com/Domenick1991/flightbooking/internal/client"
	"github.com/Domenick1991/flightbooking/internal/email"
	"github.com/Domenick1991/flightbooking/internal/kafka"
	"github.com/Domenick1991/flightbooking/internal/repository"
	"github.com/Domenick1991/flightbooking/internal/service/booking"
	"github.com/jackc/pgx/v5/pgxpool"
	kafkaGo "github.com/segmentio/kafka-go"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	inventoryBreaker := breaker.New(breaker.Settings{
		Name:                "flight-inventory-reconcile",
		ConsecutiveFailures: cfg.Breaker.ConsecutiveFailures,
		Cooldown:            cfg.Breaker.Cooldown(),
		HalfOpenRequests:    cfg.Breaker.HalfOpenRequests,
	})
	inventoryClient := client.NewInventoryClient(cfg.Inventory.BaseURL, cfg.Inventory.Timeout(), inventoryBreaker)

	bookingRepo := repository.NewBookingRepository(pool)
	adjustmentRepo := repository.NewSeatAdjustmentRepository(pool)
	bookingService := booking.NewBookingService(
		bookingRepo,
		adjustmentRepo,
		inventoryClient,
		producer,
		cfg.Kafka.BookingEventsTopic,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
	)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	emailSender := email.NewSender()

	go func() {
		if err := consumer.Consume(ctx, func(ctx context.Context, msg kafkaGo.Message) error {
			var event kafka.BookingEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				log.Printf("decode event error: %v", err)
				return nil
			}
			return emailSender.Send(ctx, event)
		}); err != nil {
			log.Printf("consumer stopped: %v", err)
		}
	}()

	sweep := time.NewTicker(time.Duration(cfg.Worker.ReconcileSweepSeconds) * time.Second)
	defer sweep.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-sweep.C:
			applied, err := bookingService.ReconcileSeatAdjustments(ctx)
			if err != nil {
				log.Printf("reconcile seat adjustments error: %v", err)
				continue
			}
			if applied > 0 {
				log.Printf("reconciled %d seat adjustments", applied)
			}
		case s := <-sig:
			log.Printf("received signal %v, shutting down", s)
			return
		}
	}
}
