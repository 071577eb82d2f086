package dynamodb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/spinshop/record-store-core/pkg/models"
	"github.com/spinshop/record-store-core/pkg/storage"
)

const stalePendingGSI = "status-created_at-index"

// CreateOrder persists a new pending order together with its audit entry.
func (s *Store) CreateOrder(ctx context.Context, order *models.Order, audit *models.AuditEntry) error {
	orderAV, err := attributevalue.MarshalMap(order)
	if err != nil {
		return fmt.Errorf("failed to marshal order: %w", err)
	}
	auditItem, err := s.auditPut(audit)
	if err != nil {
		return err
	}

	input := &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Put: &types.Put{
					TableName:           aws.String(s.Tables.Orders),
					Item:                orderAV,
					ConditionExpression: aws.String("attribute_not_exists(id)"),
				},
			},
			auditItem,
		},
	}

	if _, err := s.Client.TransactWriteItems(ctx, input); err != nil {
		return fmt.Errorf("failed to execute order creation transaction: %w", err)
	}

	return nil
}

// GetOrder retrieves an order from DynamoDB by its ID.
func (s *Store) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"id": orderID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order ID: %w", err)
	}

	result, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.Tables.Orders),
		Key:       key,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get order from DynamoDB: %w", err)
	}
	if result.Item == nil {
		return nil, storage.ErrOrderNotFound
	}

	var order models.Order
	if err := attributevalue.UnmarshalMap(result.Item, &order); err != nil {
		return nil, fmt.Errorf("failed to unmarshal order: %w", err)
	}

	return &order, nil
}

// ListOrders retrieves up to limit orders.
func (s *Store) ListOrders(ctx context.Context, limit int32) ([]models.Order, error) {
	result, err := s.Client.Scan(ctx, &dynamodb.ScanInput{
		TableName: aws.String(s.Tables.Orders),
		Limit:     aws.Int32(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan orders: %w", err)
	}

	var orders []models.Order
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &orders); err != nil {
		return nil, fmt.Errorf("failed to unmarshal orders: %w", err)
	}

	return orders, nil
}

// GetStalePendingOrders retrieves orders that have been pending for longer
// than maxAge, i.e. reservations whose delayed expiry message was lost.
func (s *Store) GetStalePendingOrders(ctx context.Context, maxAge time.Duration) ([]models.Order, error) {
	cutoffTime := time.Now().Add(-maxAge)
	cutoffTimeStr, err := cutoffTime.MarshalText()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal cutoff time: %w", err)
	}

	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.Orders),
		IndexName:              aws.String(stalePendingGSI),
		KeyConditionExpression: aws.String("#status = :status AND created_at < :cutoff"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status": &types.AttributeValueMemberS{Value: string(models.OrderPending)},
			":cutoff": &types.AttributeValueMemberS{Value: string(cutoffTimeStr)},
		},
	}

	result, err := s.Client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query for stale pending orders: %w", err)
	}

	var orders []models.Order
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &orders); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stale pending orders: %w", err)
	}

	return orders, nil
}

// TransitionOrder flips an order's status from the expected current value to
// the next one and writes the audit entry in the same transaction. The status
// pin serializes concurrent webhook- and staff-driven transitions on the same
// order: the loser gets ErrStatusConflict and must re-read.
func (s *Store) TransitionOrder(ctx context.Context, orderID string, from, to models.OrderStatus, update storage.OrderStatusUpdate, audit *models.AuditEntry) error {
	auditItem, err := s.auditPut(audit)
	if err != nil {
		return err
	}

	now := time.Now()
	nowAV, err := attributevalue.Marshal(now)
	if err != nil {
		return fmt.Errorf("failed to marshal timestamp for status update: %w", err)
	}

	updateExpr := "SET #status = :to, updated_at = :now"
	values := map[string]types.AttributeValue{
		":to":   &types.AttributeValueMemberS{Value: string(to)},
		":from": &types.AttributeValueMemberS{Value: string(from)},
		":now":  nowAV,
	}
	if update.ProviderRef != "" {
		updateExpr += ", provider_ref = :provider_ref"
		values[":provider_ref"] = &types.AttributeValueMemberS{Value: update.ProviderRef}
	}
	if update.PaymentStatus != "" {
		updateExpr += ", payment_status = :payment_status"
		values[":payment_status"] = &types.AttributeValueMemberS{Value: string(update.PaymentStatus)}
	}
	if update.CancelReason != "" {
		updateExpr += ", cancel_reason = :cancel_reason"
		values[":cancel_reason"] = &types.AttributeValueMemberS{Value: update.CancelReason}
	}

	input := &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Update: &types.Update{
					TableName: aws.String(s.Tables.Orders),
					Key: map[string]types.AttributeValue{
						"id": &types.AttributeValueMemberS{Value: orderID},
					},
					UpdateExpression:    aws.String(updateExpr),
					ConditionExpression: aws.String("attribute_exists(id) AND #status = :from"),
					ExpressionAttributeNames: map[string]string{
						"#status": "status",
					},
					ExpressionAttributeValues: values,
				},
			},
			auditItem,
		},
	}

	if _, err := s.Client.TransactWriteItems(ctx, input); err != nil {
		if transactConditionFailed(err, 0) {
			return storage.ErrStatusConflict
		}
		return fmt.Errorf("failed to execute status transition transaction: %w", err)
	}

	return nil
}
