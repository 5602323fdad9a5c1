// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/mailpilot/mailpilot-backend/internal/ai"
	"github.com/mailpilot/mailpilot-backend/internal/campaign"
	"github.com/mailpilot/mailpilot-backend/internal/config"
	"github.com/mailpilot/mailpilot-backend/internal/db"
	"github.com/mailpilot/mailpilot-backend/internal/handler"
	"github.com/mailpilot/mailpilot-backend/internal/mailer"
	"github.com/mailpilot/mailpilot-backend/internal/queue"
	"github.com/mailpilot/mailpilot-backend/internal/repository"
	"github.com/mailpilot/mailpilot-backend/internal/web"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ No .env file found, relying on OS environment variables")
	}

	cfg := config.Load()

	// Postgres is optional: without it the campaign history endpoints
	// report setup_required but live campaigns still work.
	var campaignRepo repository.CampaignRepositoryInterface
	var eventRepo repository.EventRepositoryInterface
	conn, err := db.Connect()
	if err != nil {
		log.Println("⚠️ Running without Postgres:", err)
	} else {
		campaignRepo = &repository.CampaignRepository{DB: conn}
		eventRepo = &repository.EventRepository{DB: conn}
		log.Println("✅ Connected to database")
	}

	// Send events go through RabbitMQ when configured, otherwise the
	// in-process queue.
	var q queue.Queue
	if cfg.AMQPURL != "" {
		amqpQueue, err := queue.NewAMQPQueue(cfg.AMQPURL)
		if err != nil {
			log.Fatal("Failed to connect to RabbitMQ:", err)
		}
		defer amqpQueue.Close()
		q = amqpQueue
		log.Println("✅ Connected to RabbitMQ, events handled by worker")
	} else {
		memQueue := queue.NewInMemoryQueue()
		if campaignRepo != nil {
			queue.StartSendEventSubscriber(memQueue, campaignRepo, eventRepo)
		}
		q = memQueue
	}

	// AI and Gmail are optional until the user configures them; the
	// handlers answer setup_required in the meantime.
	assistant, err := ai.NewClient(cfg)
	if err != nil {
		log.Println("⚠️ AI features disabled:", err)
	}

	var sender mailer.Sender
	var mailbox handler.Inbox
	gmail, err := mailer.NewGmailSender(context.Background(), cfg.GmailCredentials, cfg.GmailToken)
	if err != nil {
		log.Println("⚠️ Gmail sending disabled:", err)
	} else {
		sender = gmail
		mailbox = gmail
		log.Println("✅ Gmail sender ready")
	}

	var events campaign.EventSink
	if campaignRepo != nil || cfg.AMQPURL != "" {
		events = q
	}
	runner := campaign.NewRunner(sender, events)

	aiHandler := &handler.AIHandler{}
	documentHandler := &handler.DocumentHandler{UploadDir: cfg.UploadDir}
	if assistant != nil {
		aiHandler.Assistant = assistant
		documentHandler.Assistant = assistant
	}
	uploadHandler := &handler.UploadHandler{}
	campaignHandler := &handler.CampaignHandler{
		Runner:          runner,
		Campaigns:       campaignRepo,
		DefaultInterval: time.Duration(cfg.IntervalSeconds) * time.Second,
	}
	emailHandler := &handler.EmailHandler{Sender: sender, Mailbox: mailbox}
	analyticsHandler := &handler.AnalyticsHandler{Campaigns: campaignRepo, Events: eventRepo}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/api/auth/status", emailHandler.AuthStatus)
	r.Post("/api/upload", uploadHandler.UploadCSV)

	r.Post("/api/ai/chat", aiHandler.Chat)
	r.Post("/api/ai/generate-email", aiHandler.GenerateEmail)
	r.Post("/api/ai/generate-personalized-email", aiHandler.GeneratePersonalizedEmail)
	r.Post("/api/ai/enhance-email", aiHandler.EnhanceEmail)
	r.Post("/api/ai/analyze-company", aiHandler.AnalyzeCompany)
	r.Post("/api/ai/suggest-improvements", aiHandler.SuggestImprovements)

	r.Post("/api/chatbot/upload-document", documentHandler.Upload)
	r.Post("/api/chatbot/parse-document", documentHandler.Parse)

	r.Post("/api/campaign/start", campaignHandler.Start)
	r.Post("/api/campaign/pause", campaignHandler.Pause)
	r.Post("/api/campaign/resume", campaignHandler.Resume)
	r.Post("/api/campaign/cancel", campaignHandler.Cancel)
	r.Get("/api/campaign/status", campaignHandler.Status)

	r.Post("/api/emails/send", emailHandler.Send)
	r.Get("/api/emails/fetch", emailHandler.Fetch)

	r.Get("/api/analytics/stats", analyticsHandler.Stats)
	r.Get("/api/analytics/campaigns", analyticsHandler.ListCampaigns)
	r.Get("/api/analytics/campaigns/{id}", analyticsHandler.CampaignDetails)

	r.Handle("/*", web.Handler())

	log.Println("🚀 Server running on :" + cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, r))
}
