package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/spinshop/record-store-core/pkg/bulk"
	"github.com/spinshop/record-store-core/pkg/handlers"
	"github.com/spinshop/record-store-core/pkg/handlers/audit"
	"github.com/spinshop/record-store-core/pkg/handlers/bulkops"
	"github.com/spinshop/record-store-core/pkg/handlers/inventory"
	orderhandlers "github.com/spinshop/record-store-core/pkg/handlers/orders"
	"github.com/spinshop/record-store-core/pkg/handlers/paymentwebhook"
	"github.com/spinshop/record-store-core/pkg/handlers/undotokens"
	"github.com/spinshop/record-store-core/pkg/handlers/variants"
	"github.com/spinshop/record-store-core/pkg/ledger"
	"github.com/spinshop/record-store-core/pkg/middleware"
	"github.com/spinshop/record-store-core/pkg/notify"
	"github.com/spinshop/record-store-core/pkg/orders"
	"github.com/spinshop/record-store-core/pkg/scheduler"
	dydbstore "github.com/spinshop/record-store-core/pkg/storage/dynamodb"
	"github.com/spinshop/record-store-core/pkg/undo"
	"github.com/spinshop/record-store-core/pkg/webhooks"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// AWS Session
	cfg, err := config.LoadDefaultConfig(context.TODO())
	if err != nil {
		log.Fatalf("unable to load SDK config, %v", err)
	}

	tables := tablesFromEnv()

	dbClient := dynamodb.NewFromConfig(cfg)
	store := dydbstore.New(dbClient, tables)

	// SQS Client and Scheduler
	sqsQueueURL := os.Getenv("SQS_QUEUE_URL")
	if sqsQueueURL == "" {
		log.Fatal("SQS_QUEUE_URL environment variable not set")
	}
	sqsScheduler := scheduler.NewSQSScheduler(sqs.NewFromConfig(cfg), sqsQueueURL)

	webhookSecret := os.Getenv("STRIPE_WEBHOOK_SECRET")
	if webhookSecret == "" {
		log.Fatal("STRIPE_WEBHOOK_SECRET environment variable not set")
	}

	// Core components.
	notifier := &notify.SlogPublisher{Logger: logger}
	stockLedger := ledger.New(store, notifier)
	machine := orders.New(store, store, stockLedger, sqsScheduler, notifier)
	undoManager := undo.New(store, stockLedger, store, store)
	coordinator := bulk.New(store, store, machine, undoManager)
	processor := webhooks.New(store, machine)

	// Create a new Chi router
	router := chi.NewRouter()
	router.Use(middleware.NewStructuredLogger(logger))
	router.Use(chimiddleware.Recoverer)

	handlers.Routes(router, handlers.Handlers{
		Variants:  variants.New(store),
		Inventory: inventory.New(stockLedger, store, undoManager),
		Orders:    orderhandlers.New(machine, store),
		Bulk:      bulkops.New(coordinator),
		Undo:      undotokens.New(undoManager, store),
		Webhook:   paymentwebhook.New(processor, store, webhookSecret),
		Audit:     audit.New(store),
	})

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080" // Default port if not specified
	}

	log.Printf("Starting server on port %s", port)

	if err := http.ListenAndServe(":"+port, router); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// tablesFromEnv reads every table name from the environment and fails fast on
// a missing one.
func tablesFromEnv() dydbstore.Tables {
	tables := dydbstore.Tables{
		Variants:      os.Getenv("DYNAMODB_VARIANTS_TABLE_NAME"),
		Inventory:     os.Getenv("DYNAMODB_INVENTORY_TABLE_NAME"),
		Movements:     os.Getenv("DYNAMODB_MOVEMENTS_TABLE_NAME"),
		Reservations:  os.Getenv("DYNAMODB_RESERVATIONS_TABLE_NAME"),
		Orders:        os.Getenv("DYNAMODB_ORDERS_TABLE_NAME"),
		Audit:         os.Getenv("DYNAMODB_AUDIT_TABLE_NAME"),
		UndoTokens:    os.Getenv("DYNAMODB_UNDO_TOKENS_TABLE_NAME"),
		WebhookEvents: os.Getenv("DYNAMODB_WEBHOOK_EVENTS_TABLE_NAME"),
	}
	if tables.Variants == "" || tables.Inventory == "" || tables.Movements == "" ||
		tables.Reservations == "" || tables.Orders == "" || tables.Audit == "" ||
		tables.UndoTokens == "" || tables.WebhookEvents == "" {
		log.Fatal("One or more DynamoDB table name environment variables are not set")
	}
	return tables
}
