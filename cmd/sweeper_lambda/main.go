package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/joho/godotenv"

	"github.com/spinshop/record-store-core/pkg/scheduler"
	"github.com/spinshop/record-store-core/pkg/storage"
	dydbstore "github.com/spinshop/record-store-core/pkg/storage/dynamodb"
)

var store storage.Storage
var sqsScheduler scheduler.Scheduler

// Pending orders older than this are assumed to have lost their expiry
// message and are re-enqueued for immediate expiry.
const stalePendingThreshold = 30 * time.Minute

const purgeBatchLimit = 100

func init() {
	// Load environment variables for local testing.
	godotenv.Load()

	cfg, err := config.LoadDefaultConfig(context.TODO())
	if err != nil {
		log.Fatalf("unable to load SDK config, %v", err)
	}

	sqsQueueURL := os.Getenv("SQS_QUEUE_URL")
	if sqsQueueURL == "" {
		log.Fatal("SQS_QUEUE_URL environment variable not set")
	}
	sqsScheduler = scheduler.NewSQSScheduler(sqs.NewFromConfig(cfg), sqsQueueURL)

	store = dydbstore.New(dynamodb.NewFromConfig(cfg), tablesFromEnv())
}

// HandleRequest is triggered by an EventBridge Schedule. It re-enqueues
// pending orders whose expiry message was lost and purges expired undo tokens.
func HandleRequest(ctx context.Context) error {
	log.Println("Starting sweep for stale pending orders...")

	stale, err := store.GetStalePendingOrders(ctx, stalePendingThreshold)
	if err != nil {
		log.Printf("ERROR: failed to get stale pending orders: %v", err)
		return err
	}

	if len(stale) == 0 {
		log.Println("No stale pending orders found.")
	} else {
		log.Printf("Found %d stale pending orders. Re-enqueuing them...", len(stale))
		for _, order := range stale {
			if err := sqsScheduler.ScheduleExpiry(ctx, order.ID, 0); err != nil {
				log.Printf("ERROR: failed to re-enqueue order %s: %v", order.ID, err)
				// One failure should not stop the whole batch.
				continue
			}
			log.Printf("Re-enqueued order %s for expiry", order.ID)
		}
	}

	purged, err := store.PurgeExpiredUndoTokens(ctx, time.Now(), purgeBatchLimit)
	if err != nil {
		log.Printf("ERROR: failed to purge expired undo tokens: %v", err)
		return err
	}
	log.Printf("Purged %d expired undo tokens.", purged)

	log.Println("Sweep finished.")
	return nil
}

func main() {
	lambda.Start(HandleRequest)
}

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
