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

// CreateVariant creates a variant together with its zeroed inventory record.
// Both rows are written in one transaction so a variant can never exist
// without counters.
func (s *Store) CreateVariant(ctx context.Context, variant *models.Variant, lowStockThreshold int64) (*models.Variant, error) {
	variantAV, err := attributevalue.MarshalMap(variant)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal variant: %w", err)
	}

	record := models.InventoryRecord{
		VariantID:         variant.ID,
		OnHand:            0,
		Allocated:         0,
		LowStockThreshold: lowStockThreshold,
		Version:           1,
		UpdatedAt:         time.Now(),
	}
	recordAV, err := attributevalue.MarshalMap(record)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal inventory record: %w", err)
	}

	input := &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Put: &types.Put{
					TableName:           aws.String(s.Tables.Variants),
					Item:                variantAV,
					ConditionExpression: aws.String("attribute_not_exists(id)"),
				},
			},
			{
				Put: &types.Put{
					TableName:           aws.String(s.Tables.Inventory),
					Item:                recordAV,
					ConditionExpression: aws.String("attribute_not_exists(variant_id)"),
				},
			},
		},
	}

	if _, err := s.Client.TransactWriteItems(ctx, input); err != nil {
		return nil, fmt.Errorf("failed to execute variant creation transaction: %w", err)
	}

	return variant, nil
}

// GetVariant retrieves a variant from DynamoDB by its ID.
func (s *Store) GetVariant(ctx context.Context, variantID string) (*models.Variant, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"id": variantID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal variant ID: %w", err)
	}

	result, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.Tables.Variants),
		Key:       key,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get variant from DynamoDB: %w", err)
	}
	if result.Item == nil {
		return nil, storage.ErrVariantNotFound
	}

	var variant models.Variant
	if err := attributevalue.UnmarshalMap(result.Item, &variant); err != nil {
		return nil, fmt.Errorf("failed to unmarshal variant: %w", err)
	}

	return &variant, nil
}

// ListVariants retrieves all variants from the storage.
func (s *Store) ListVariants(ctx context.Context) ([]models.Variant, error) {
	result, err := s.Client.Scan(ctx, &dynamodb.ScanInput{
		TableName: aws.String(s.Tables.Variants),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan variants: %w", err)
	}

	var variants []models.Variant
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &variants); err != nil {
		return nil, fmt.Errorf("failed to unmarshal variants: %w", err)
	}

	return variants, nil
}

// SetVariantActive flips a variant's active flag, writing the audit entry in
// the same transaction.
func (s *Store) SetVariantActive(ctx context.Context, variantID string, active bool, audit *models.AuditEntry) error {
	auditItem, err := s.auditPut(audit)
	if err != nil {
		return err
	}

	input := &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Update: &types.Update{
					TableName: aws.String(s.Tables.Variants),
					Key: map[string]types.AttributeValue{
						"id": &types.AttributeValueMemberS{Value: variantID},
					},
					UpdateExpression:    aws.String("SET active = :active"),
					ConditionExpression: aws.String("attribute_exists(id)"),
					ExpressionAttributeValues: map[string]types.AttributeValue{
						":active": &types.AttributeValueMemberBOOL{Value: active},
					},
				},
			},
			auditItem,
		},
	}

	if _, err := s.Client.TransactWriteItems(ctx, input); err != nil {
		if transactConditionFailed(err, 0) {
			return storage.ErrVariantNotFound
		}
		return fmt.Errorf("failed to execute variant activation transaction: %w", err)
	}

	return nil
}
