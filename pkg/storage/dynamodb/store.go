package dynamodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/spinshop/record-store-core/pkg/models"
	"github.com/spinshop/record-store-core/pkg/storage"
)

// DynamoDBAPI defines the subset of the DynamoDB client used by the Store.
// Having an interface here lets tests substitute a mock client.
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

// Tables holds the names of the DynamoDB tables the store operates on.
type Tables struct {
	Variants      string
	Inventory     string
	Movements     string
	Reservations  string
	Orders        string
	Audit         string
	UndoTokens    string
	WebhookEvents string
}

// Store implements the Storage interface using AWS DynamoDB.
type Store struct {
	Client DynamoDBAPI
	Tables Tables
}

// New creates a new Store.
func New(client DynamoDBAPI, tables Tables) *Store {
	return &Store{
		Client: client,
		Tables: tables,
	}
}

// Make sure we conform to the interface
var _ storage.Storage = (*Store)(nil)

// Partition keys for the GSI1 listing indexes.
const (
	auditEntriesPK  = "AUDIT_ENTRIES"
	undoTokensPK    = "UNDO_TOKENS"
	webhookEventsPK = "WEBHOOK_EVENTS"
)

// gsi1Index is the name of the listing GSI shared by the append-only tables
// (gsi1pk HASH, created_at/expires_at/processed_at RANGE depending on table).
const gsi1Index = "gsi1pk-index"

// conditionFailed reports whether a single-item write was rejected by its
// condition expression.
func conditionFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}

// transactConditionFailed reports whether the transact item at idx was the one
// rejected by its condition expression.
func transactConditionFailed(err error, idx int) bool {
	var tce *types.TransactionCanceledException
	if !errors.As(err, &tce) {
		return false
	}
	if idx >= len(tce.CancellationReasons) {
		return false
	}
	reason := tce.CancellationReasons[idx]
	return reason.Code != nil && *reason.Code == "ConditionalCheckFailed"
}

// auditPut builds the transact item appending an audit entry. Every mutating
// operation includes one so the trail is written atomically with the change.
func (s *Store) auditPut(audit *models.AuditEntry) (types.TransactWriteItem, error) {
	audit.GSI1PK = auditEntriesPK
	auditAV, err := attributevalue.MarshalMap(audit)
	if err != nil {
		return types.TransactWriteItem{}, fmt.Errorf("failed to marshal audit entry: %w", err)
	}
	return types.TransactWriteItem{
		Put: &types.Put{
			TableName:           aws.String(s.Tables.Audit),
			Item:                auditAV,
			ConditionExpression: aws.String("attribute_not_exists(id)"),
		},
	}, nil
}
