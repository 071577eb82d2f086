package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/spinshop/record-store-core/pkg/models"
	"github.com/spinshop/record-store-core/pkg/storage"
)

const movementsByVariantGSI = "variant_id-created_at-index"

// maxOptimisticRetries bounds how often a mutation is retried after losing a
// version race on the inventory row. Invariant rejections are definitive and
// are never retried.
const maxOptimisticRetries = 3

// GetInventory retrieves the counters for a variant from DynamoDB.
func (s *Store) GetInventory(ctx context.Context, variantID string) (*models.InventoryRecord, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"variant_id": variantID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal variant ID: %w", err)
	}

	result, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.Tables.Inventory),
		Key:       key,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get inventory record from DynamoDB: %w", err)
	}
	if result.Item == nil {
		return nil, storage.ErrVariantNotFound
	}

	var record models.InventoryRecord
	if err := attributevalue.UnmarshalMap(result.Item, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal inventory record: %w", err)
	}

	return &record, nil
}

// GetMovement retrieves a single stock movement by its ID.
func (s *Store) GetMovement(ctx context.Context, movementID string) (*models.StockMovement, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"id": movementID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal movement ID: %w", err)
	}

	result, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.Tables.Movements),
		Key:       key,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get movement from DynamoDB: %w", err)
	}
	if result.Item == nil {
		return nil, fmt.Errorf("movement with ID %s not found", movementID)
	}

	var movement models.StockMovement
	if err := attributevalue.UnmarshalMap(result.Item, &movement); err != nil {
		return nil, fmt.Errorf("failed to unmarshal movement: %w", err)
	}

	return &movement, nil
}

// ListMovements retrieves the most recent movements for a variant.
func (s *Store) ListMovements(ctx context.Context, variantID string, limit int32) ([]models.StockMovement, error) {
	result, err := s.Client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.Movements),
		IndexName:              aws.String(movementsByVariantGSI),
		KeyConditionExpression: aws.String("variant_id = :variant_id"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":variant_id": &types.AttributeValueMemberS{Value: variantID},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query movements: %w", err)
	}

	var movements []models.StockMovement
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &movements); err != nil {
		return nil, fmt.Errorf("failed to unmarshal movements: %w", err)
	}

	return movements, nil
}

// GetReservation retrieves an order's reservation for a variant.
func (s *Store) GetReservation(ctx context.Context, orderID, variantID string) (*models.Reservation, error) {
	key, err := attributevalue.MarshalMap(map[string]string{
		"order_id":   orderID,
		"variant_id": variantID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal reservation key: %w", err)
	}

	result, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.Tables.Reservations),
		Key:       key,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation from DynamoDB: %w", err)
	}
	if result.Item == nil {
		return nil, storage.ErrReservationNotFound
	}

	var reservation models.Reservation
	if err := attributevalue.UnmarshalMap(result.Item, &reservation); err != nil {
		return nil, fmt.Errorf("failed to unmarshal reservation: %w", err)
	}

	return &reservation, nil
}

// inventoryUpdate builds the transact item mutating the counters for a variant.
// The version pin is what serializes concurrent mutations on the same variant;
// mutations on different variants never contend.
func (s *Store) inventoryUpdate(variantID, updateExpr string, version int64, values map[string]types.AttributeValue) types.TransactWriteItem {
	values[":version"] = &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", version)}
	values[":inc"] = &types.AttributeValueMemberN{Value: "1"}
	nowText, _ := time.Now().UTC().MarshalText()
	values[":now"] = &types.AttributeValueMemberS{Value: string(nowText)}

	return types.TransactWriteItem{
		Update: &types.Update{
			TableName: aws.String(s.Tables.Inventory),
			Key: map[string]types.AttributeValue{
				"variant_id": &types.AttributeValueMemberS{Value: variantID},
			},
			UpdateExpression:    aws.String(updateExpr + ", version = version + :inc, updated_at = :now"),
			ConditionExpression: aws.String("version = :version"),
			ExpressionAttributeValues: values,
		},
	}
}

// AppendMovement applies an on_hand-only movement (receipt, return,
// adjustment) together with its audit entry. Invariant checks happen against a
// fresh read and the write is pinned to the record version, so a concurrent
// mutation forces a re-read instead of a lost update.
func (s *Store) AppendMovement(ctx context.Context, movement *models.StockMovement, audit *models.AuditEntry) (*models.StockMovement, *models.InventoryRecord, error) {
	movementAV, err := attributevalue.MarshalMap(movement)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal movement: %w", err)
	}
	auditItem, err := s.auditPut(audit)
	if err != nil {
		return nil, nil, err
	}

	for attempt := 0; ; attempt++ {
		// 1. Read the current counters for the invariant check and version pin.
		record, err := s.GetInventory(ctx, movement.VariantID)
		if err != nil {
			return nil, nil, err
		}

		// 2. Reject, never clamp, a write that would break the invariants.
		newOnHand := record.OnHand + movement.Delta
		if newOnHand < 0 || newOnHand < record.Allocated {
			return nil, nil, storage.ErrInsufficientStock
		}

		// 3. Counter update, movement append and audit entry in one transaction.
		input := &dynamodb.TransactWriteItemsInput{
			TransactItems: []types.TransactWriteItem{
				s.inventoryUpdate(movement.VariantID, "SET on_hand = on_hand + :delta", record.Version, map[string]types.AttributeValue{
					":delta": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", movement.Delta)},
				}),
				{
					Put: &types.Put{
						TableName:           aws.String(s.Tables.Movements),
						Item:                movementAV,
						ConditionExpression: aws.String("attribute_not_exists(id)"),
					},
				},
				auditItem,
			},
		}

		_, err = s.Client.TransactWriteItems(ctx, input)
		if err == nil {
			record.OnHand = newOnHand
			record.Version++
			return movement, record, nil
		}

		// The movement ID is the idempotency key: a duplicate means the
		// original request already applied, so replay its result.
		if transactConditionFailed(err, 1) {
			existing, getErr := s.GetMovement(ctx, movement.ID)
			if getErr != nil {
				return nil, nil, fmt.Errorf("failed to load duplicate movement %s: %w", movement.ID, getErr)
			}
			slog.Log(ctx, slog.LevelDebug, "replaying duplicate movement", "movement_id", movement.ID)
			return existing, record, nil
		}

		if transactConditionFailed(err, 0) && attempt < maxOptimisticRetries {
			continue
		}
		return nil, nil, fmt.Errorf("failed to execute movement transaction: %w", err)
	}
}

// Reserve increases a variant's allocated count for an order, only if the
// resulting available count stays non-negative. This is the sole gate
// preventing overselling: under contention for the last unit, exactly one
// caller wins the version race and the loser re-reads to find nothing left.
func (s *Store) Reserve(ctx context.Context, reservation *models.Reservation, audit *models.AuditEntry) (*models.InventoryRecord, error) {
	reservationAV, err := attributevalue.MarshalMap(reservation)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal reservation: %w", err)
	}
	auditItem, err := s.auditPut(audit)
	if err != nil {
		return nil, err
	}

	for attempt := 0; ; attempt++ {
		record, err := s.GetInventory(ctx, reservation.VariantID)
		if err != nil {
			return nil, err
		}

		if record.Available() < reservation.Quantity {
			return nil, storage.ErrInsufficientStock
		}

		input := &dynamodb.TransactWriteItemsInput{
			TransactItems: []types.TransactWriteItem{
				s.inventoryUpdate(reservation.VariantID, "SET allocated = allocated + :quantity", record.Version, map[string]types.AttributeValue{
					":quantity": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", reservation.Quantity)},
				}),
				{
					Put: &types.Put{
						TableName:           aws.String(s.Tables.Reservations),
						Item:                reservationAV,
						ConditionExpression: aws.String("attribute_not_exists(order_id)"),
					},
				},
				auditItem,
			},
		}

		_, err = s.Client.TransactWriteItems(ctx, input)
		if err == nil {
			record.Allocated += reservation.Quantity
			record.Version++
			return record, nil
		}

		if transactConditionFailed(err, 0) && attempt < maxOptimisticRetries {
			continue
		}
		return nil, fmt.Errorf("failed to execute reservation transaction: %w", err)
	}
}

// CommitSale converts a held reservation into a sale: on_hand and allocated
// decrease together, the sale movement is appended and the audit entry written,
// all in one transaction. A partial update is impossible by construction.
func (s *Store) CommitSale(ctx context.Context, movement *models.StockMovement, audit *models.AuditEntry) (*models.InventoryRecord, error) {
	if movement.OrderID == "" {
		return nil, fmt.Errorf("sale movement requires an order reference")
	}
	quantity := -movement.Delta

	movementAV, err := attributevalue.MarshalMap(movement)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal sale movement: %w", err)
	}
	auditItem, err := s.auditPut(audit)
	if err != nil {
		return nil, err
	}

	for attempt := 0; ; attempt++ {
		// The reservation row is what proves the order's claim.
		reservation, err := s.GetReservation(ctx, movement.OrderID, movement.VariantID)
		if err != nil {
			return nil, err
		}
		if reservation.Status != models.ReservationHeld {
			return nil, storage.ErrReservationNotFound
		}
		if reservation.Quantity != quantity {
			return nil, fmt.Errorf("sale quantity %d does not match reserved quantity %d: %w", quantity, reservation.Quantity, storage.ErrReservationNotFound)
		}

		record, err := s.GetInventory(ctx, movement.VariantID)
		if err != nil {
			return nil, err
		}
		if record.OnHand < quantity || record.Allocated < quantity {
			return nil, fmt.Errorf("counters out of step with reservation for variant %s", movement.VariantID)
		}

		nowText, _ := time.Now().UTC().MarshalText()
		input := &dynamodb.TransactWriteItemsInput{
			TransactItems: []types.TransactWriteItem{
				s.inventoryUpdate(movement.VariantID, "SET on_hand = on_hand - :quantity, allocated = allocated - :quantity", record.Version, map[string]types.AttributeValue{
					":quantity": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", quantity)},
				}),
				{
					// Flip the reservation to committed; the status pin makes
					// a concurrent commit or release lose cleanly.
					Update: &types.Update{
						TableName: aws.String(s.Tables.Reservations),
						Key: map[string]types.AttributeValue{
							"order_id":   &types.AttributeValueMemberS{Value: movement.OrderID},
							"variant_id": &types.AttributeValueMemberS{Value: movement.VariantID},
						},
						UpdateExpression:    aws.String("SET #status = :committed, updated_at = :now"),
						ConditionExpression: aws.String("#status = :held"),
						ExpressionAttributeNames: map[string]string{
							"#status": "status",
						},
						ExpressionAttributeValues: map[string]types.AttributeValue{
							":committed": &types.AttributeValueMemberS{Value: string(models.ReservationCommitted)},
							":held":      &types.AttributeValueMemberS{Value: string(models.ReservationHeld)},
							":now":       &types.AttributeValueMemberS{Value: string(nowText)},
						},
					},
				},
				{
					Put: &types.Put{
						TableName:           aws.String(s.Tables.Movements),
						Item:                movementAV,
						ConditionExpression: aws.String("attribute_not_exists(id)"),
					},
				},
				auditItem,
			},
		}

		_, err = s.Client.TransactWriteItems(ctx, input)
		if err == nil {
			record.OnHand -= quantity
			record.Allocated -= quantity
			record.Version++
			return record, nil
		}

		if transactConditionFailed(err, 1) {
			// Lost the reservation-status race; the re-read reports what happened.
			return nil, storage.ErrReservationNotFound
		}
		if transactConditionFailed(err, 0) && attempt < maxOptimisticRetries {
			continue
		}
		return nil, fmt.Errorf("failed to execute sale transaction: %w", err)
	}
}

// ReleaseReservation decreases allocated without touching on_hand, used for
// cancellations, expiry and abandonment. Releasing a reservation that is
// absent, already released or already committed is a no-op, not an error.
func (s *Store) ReleaseReservation(ctx context.Context, orderID, variantID string, audit *models.AuditEntry) error {
	auditItem, err := s.auditPut(audit)
	if err != nil {
		return err
	}

	for attempt := 0; ; attempt++ {
		reservation, err := s.GetReservation(ctx, orderID, variantID)
		if err != nil {
			if errors.Is(err, storage.ErrReservationNotFound) {
				return nil
			}
			return err
		}
		if reservation.Status != models.ReservationHeld {
			return nil
		}

		record, err := s.GetInventory(ctx, variantID)
		if err != nil {
			return err
		}
		if record.Allocated < reservation.Quantity {
			return fmt.Errorf("counters out of step with reservation for variant %s", variantID)
		}

		nowText, _ := time.Now().UTC().MarshalText()
		input := &dynamodb.TransactWriteItemsInput{
			TransactItems: []types.TransactWriteItem{
				s.inventoryUpdate(variantID, "SET allocated = allocated - :quantity", record.Version, map[string]types.AttributeValue{
					":quantity": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", reservation.Quantity)},
				}),
				{
					Update: &types.Update{
						TableName: aws.String(s.Tables.Reservations),
						Key: map[string]types.AttributeValue{
							"order_id":   &types.AttributeValueMemberS{Value: orderID},
							"variant_id": &types.AttributeValueMemberS{Value: variantID},
						},
						UpdateExpression:    aws.String("SET #status = :released, updated_at = :now"),
						ConditionExpression: aws.String("#status = :held"),
						ExpressionAttributeNames: map[string]string{
							"#status": "status",
						},
						ExpressionAttributeValues: map[string]types.AttributeValue{
							":released": &types.AttributeValueMemberS{Value: string(models.ReservationReleased)},
							":held":     &types.AttributeValueMemberS{Value: string(models.ReservationHeld)},
							":now":      &types.AttributeValueMemberS{Value: string(nowText)},
						},
					},
				},
				auditItem,
			},
		}

		_, err = s.Client.TransactWriteItems(ctx, input)
		if err == nil {
			return nil
		}

		if transactConditionFailed(err, 1) {
			// Someone else released or committed it first.
			return nil
		}
		if transactConditionFailed(err, 0) && attempt < maxOptimisticRetries {
			continue
		}
		return fmt.Errorf("failed to execute release transaction: %w", err)
	}
}
