package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/spinshop/record-store-core/pkg/models"
	"github.com/spinshop/record-store-core/pkg/storage"
)

// MarkEventSeen atomically records a provider event ID as seen. The
// conditional put is the whole idempotency mechanism: whichever delivery wins
// the race processes the event, every other delivery gets ErrDuplicateEvent.
func (s *Store) MarkEventSeen(ctx context.Context, event *models.WebhookEvent) error {
	event.GSI1PK = webhookEventsPK
	eventAV, err := attributevalue.MarshalMap(event)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook event: %w", err)
	}

	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.Tables.WebhookEvents),
		Item:                eventAV,
		ConditionExpression: aws.String("attribute_not_exists(event_id)"),
	})
	if err != nil {
		if conditionFailed(err) {
			return storage.ErrDuplicateEvent
		}
		return fmt.Errorf("failed to record webhook event: %w", err)
	}

	return nil
}

// RecordEventOutcome updates a seen event with its processing result.
func (s *Store) RecordEventOutcome(ctx context.Context, eventID string, outcome models.WebhookEventOutcome, failureReason string) error {
	updateExpr := "SET outcome = :outcome"
	values := map[string]types.AttributeValue{
		":outcome": &types.AttributeValueMemberS{Value: string(outcome)},
	}
	if failureReason != "" {
		updateExpr += ", failure_reason = :failure_reason"
		values[":failure_reason"] = &types.AttributeValueMemberS{Value: failureReason}
	}

	_, err := s.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.Tables.WebhookEvents),
		Key: map[string]types.AttributeValue{
			"event_id": &types.AttributeValueMemberS{Value: eventID},
		},
		UpdateExpression:          aws.String(updateExpr),
		ConditionExpression:       aws.String("attribute_exists(event_id)"),
		ExpressionAttributeValues: values,
	})
	if err != nil {
		return fmt.Errorf("failed to record webhook event outcome: %w", err)
	}

	return nil
}

// ListFailedWebhookEvents retrieves events whose mapped transition failed, for
// operator reconciliation.
func (s *Store) ListFailedWebhookEvents(ctx context.Context, limit int32) ([]models.WebhookEvent, error) {
	result, err := s.Client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.WebhookEvents),
		IndexName:              aws.String(gsi1Index),
		KeyConditionExpression: aws.String("gsi1pk = :pk"),
		FilterExpression:       aws.String("outcome = :failed"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":     &types.AttributeValueMemberS{Value: webhookEventsPK},
			":failed": &types.AttributeValueMemberS{Value: string(models.WebhookOutcomeFailed)},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query failed webhook events: %w", err)
	}

	var events []models.WebhookEvent
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &events); err != nil {
		return nil, fmt.Errorf("failed to unmarshal webhook events: %w", err)
	}

	return events, nil
}
