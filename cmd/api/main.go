package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/traderefer/settlement/internal/infra/database"
	"github.com/traderefer/settlement/internal/infra/http/handlers"
	"github.com/traderefer/settlement/internal/infra/http/middleware"
	"github.com/traderefer/settlement/internal/infra/integration/stripepay"
	"github.com/traderefer/settlement/internal/infra/mail"
	"github.com/traderefer/settlement/internal/infra/queue"
	"github.com/traderefer/settlement/internal/infra/worker"
	"github.com/traderefer/settlement/internal/usecase"
)

func main() {
	godotenv.Load()

	db, err := database.NewDBConnection(os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	rabbitMQ, err := queue.NewRabbitMQ(
		os.Getenv("RABBITMQ_USER"), os.Getenv("RABBITMQ_PASS"),
		os.Getenv("RABBITMQ_HOST"), os.Getenv("RABBITMQ_PORT"),
	)
	if err != nil {
		log.Fatal(err)
	}
	defer rabbitMQ.Conn.Close()
	defer rabbitMQ.Ch.Close()

	// 1. Repositórios
	leadRepo := database.NewLeadRepository(db)
	businessRepo := database.NewBusinessRepository(db)
	earningRepo := database.NewEarningRepository(db)
	disputeRepo := database.NewDisputeRepository(db)

	// 2. Gateways e Adapters
	gateway := stripepay.NewClient(os.Getenv("STRIPE_SECRET_KEY"), os.Getenv("STRIPE_CURRENCY"))
	producer := queue.NewProducer(rabbitMQ.Conn, rabbitMQ.Ch)
	mailSender := mail.NewEmailSender(
		os.Getenv("MAIL_HOST"), 587, os.Getenv("MAIL_USER"), os.Getenv("MAIL_PASS"),
	)

	// 3. Workers
	commissionWorker := queue.NewWorker(rabbitMQ.Ch, earningRepo)
	go commissionWorker.Start(queue.QueueName)

	reconciliation := worker.NewIntentReconciliationWorker(leadRepo, gateway)
	go reconciliation.Start(context.Background())

	// 4. UseCases
	devBypass := os.Getenv("DEV_UNLOCK_BYPASS") == "true"
	unlockUC := usecase.NewUnlockLeadUseCase(leadRepo, businessRepo, gateway, mailSender, devBypass)
	onTheWayUC := usecase.NewMarkOnTheWayUseCase(leadRepo, businessRepo, mailSender)
	confirmUC := usecase.NewConfirmPinUseCase(leadRepo, producer)
	getUC := usecase.NewGetLeadUseCase(leadRepo)
	disputeUC := usecase.NewDisputeLeadUseCase(leadRepo, disputeRepo)

	// 5. Handlers
	leadHandler := handlers.NewLeadHandler(unlockUC, onTheWayUC, confirmUC, getUC, disputeUC)
	webhookHandler := handlers.NewWebhookHandler(unlockUC, os.Getenv("STRIPE_WEBHOOK_SECRET"))
	healthHandler := handlers.NewHealthHandler(db, rabbitMQ.Conn)

	// 6. Router
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:5173", "*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "X-Business-ID"},
	}))

	r.Post("/leads/{leadId}/unlock", leadHandler.HandleUnlock)
	r.Post("/leads/{leadId}/on-the-way", leadHandler.HandleOnTheWay)
	r.Post("/leads/{leadId}/confirm-pin", leadHandler.HandleConfirmPin)
	r.Post("/leads/{leadId}/dispute", leadHandler.HandleDispute)
	r.Get("/leads/{leadId}", leadHandler.HandleGet)
	r.Post("/webhooks/stripe", webhookHandler.Handle)
	r.Get("/health", healthHandler.Handle)
	r.Handle("/metrics", promhttp.Handler())

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("🔥 Settlement core rodando na porta :%s", port)
	http.ListenAndServe(":"+port, r)
}
