package main

import (
	"context"
	"encoding/json"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/joho/godotenv"

	"github.com/spinshop/record-store-core/pkg/ledger"
	"github.com/spinshop/record-store-core/pkg/orders"
	"github.com/spinshop/record-store-core/pkg/scheduler"
	dydbstore "github.com/spinshop/record-store-core/pkg/storage/dynamodb"
)

var machine *orders.StateMachine

func init() {
	// Load environment variables from .env file (useful for local testing).
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize dependencies once.
	cfg, err := config.LoadDefaultConfig(context.TODO())
	if err != nil {
		log.Fatalf("unable to load SDK config, %v", err)
	}

	store := dydbstore.New(dynamodb.NewFromConfig(cfg), tablesFromEnv())

	// The expiry lambda never creates orders, so it needs no scheduler.
	machine = orders.New(store, store, ledger.New(store, nil), nil, nil)
}

// HandleRequest expires the pending orders referenced by the queued messages.
func HandleRequest(ctx context.Context, sqsEvent events.SQSEvent) error {
	for _, message := range sqsEvent.Records {
		log.Printf("Processing message %s", message.MessageId)

		var expiry scheduler.ExpiryMessage
		if err := json.Unmarshal([]byte(message.Body), &expiry); err != nil {
			log.Printf("ERROR: failed to unmarshal expiry message %s: %v", message.MessageId, err)
			// Returning an error makes SQS retry the message.
			return err
		}

		if err := machine.ExpireAbandoned(ctx, expiry.OrderID); err != nil {
			log.Printf("ERROR: failed to expire order %s: %v", expiry.OrderID, err)
			return err
		}

		log.Printf("Expiry handled for order %s", expiry.OrderID)
	}

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
