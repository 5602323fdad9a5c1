// cmd/worker/main.go
//
// Standalone consumer for the send_events queue. Run it next to the server
// when AMQP_URL is set; it persists send outcomes so the server process
// never blocks on Postgres writes.
package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/mailpilot/mailpilot-backend/internal/config"
	"github.com/mailpilot/mailpilot-backend/internal/db"
	"github.com/mailpilot/mailpilot-backend/internal/queue"
	"github.com/mailpilot/mailpilot-backend/internal/repository"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ No .env file found, relying on OS environment variables")
	}

	cfg := config.Load()
	if cfg.AMQPURL == "" {
		log.Fatal("AMQP_URL is required for the worker")
	}

	conn, err := db.Connect()
	if err != nil {
		log.Fatal("failed to connect to DB:", err)
	}
	campaignRepo := &repository.CampaignRepository{DB: conn}
	eventRepo := &repository.EventRepository{DB: conn}

	q, err := queue.NewAMQPQueue(cfg.AMQPURL)
	if err != nil {
		log.Fatal("Failed to connect to RabbitMQ:", err)
	}
	defer q.Close()

	queue.StartSendEventSubscriber(q, campaignRepo, eventRepo)

	log.Println("Worker running, waiting for send events...")
	select {}
}
