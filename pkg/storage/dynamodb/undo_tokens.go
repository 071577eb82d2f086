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

// PutUndoToken persists a freshly issued undo token.
func (s *Store) PutUndoToken(ctx context.Context, token *models.UndoToken) error {
	token.GSI1PK = undoTokensPK
	tokenAV, err := attributevalue.MarshalMap(token)
	if err != nil {
		return fmt.Errorf("failed to marshal undo token: %w", err)
	}

	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.Tables.UndoTokens),
		Item:                tokenAV,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		return fmt.Errorf("failed to put undo token: %w", err)
	}

	return nil
}

// GetUndoToken retrieves an undo token by its ID.
func (s *Store) GetUndoToken(ctx context.Context, tokenID string) (*models.UndoToken, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"id": tokenID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal token ID: %w", err)
	}

	result, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.Tables.UndoTokens),
		Key:       key,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get undo token from DynamoDB: %w", err)
	}
	if result.Item == nil {
		return nil, storage.ErrTokenNotFound
	}

	var token models.UndoToken
	if err := attributevalue.UnmarshalMap(result.Item, &token); err != nil {
		return nil, fmt.Errorf("failed to unmarshal undo token: %w", err)
	}

	return &token, nil
}

// MarkTokenUndone consumes an undo token. The condition makes the token
// one-shot: a second consume attempt fails with ErrAlreadyUndone no matter how
// the calls interleave.
func (s *Store) MarkTokenUndone(ctx context.Context, tokenID string, undoneAt time.Time) error {
	undoneAtAV, err := attributevalue.Marshal(undoneAt)
	if err != nil {
		return fmt.Errorf("failed to marshal undone timestamp: %w", err)
	}

	_, err = s.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.Tables.UndoTokens),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: tokenID},
		},
		UpdateExpression:    aws.String("SET undone_at = :undone_at"),
		ConditionExpression: aws.String("attribute_exists(id) AND attribute_not_exists(undone_at)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":undone_at": undoneAtAV,
		},
	})
	if err != nil {
		if conditionFailed(err) {
			// Distinguish a missing token from a consumed one.
			if _, getErr := s.GetUndoToken(ctx, tokenID); getErr != nil {
				return getErr
			}
			return storage.ErrAlreadyUndone
		}
		return fmt.Errorf("failed to mark undo token consumed: %w", err)
	}

	return nil
}

// PurgeExpiredUndoTokens deletes up to limit expired tokens. Storage hygiene
// only; expiry is always re-checked at undo time.
func (s *Store) PurgeExpiredUndoTokens(ctx context.Context, now time.Time, limit int32) (int, error) {
	nowText, err := now.MarshalText()
	if err != nil {
		return 0, fmt.Errorf("failed to marshal purge cutoff: %w", err)
	}

	result, err := s.Client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.UndoTokens),
		IndexName:              aws.String(gsi1Index),
		KeyConditionExpression: aws.String("gsi1pk = :pk AND expires_at < :now"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":  &types.AttributeValueMemberS{Value: undoTokensPK},
			":now": &types.AttributeValueMemberS{Value: string(nowText)},
		},
		Limit: aws.Int32(limit),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to query expired undo tokens: %w", err)
	}

	var tokens []models.UndoToken
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &tokens); err != nil {
		return 0, fmt.Errorf("failed to unmarshal expired undo tokens: %w", err)
	}

	purged := 0
	for _, token := range tokens {
		_, err := s.Client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName: aws.String(s.Tables.UndoTokens),
			Key: map[string]types.AttributeValue{
				"id": &types.AttributeValueMemberS{Value: token.ID},
			},
		})
		if err != nil {
			return purged, fmt.Errorf("failed to delete expired undo token %s: %w", token.ID, err)
		}
		purged++
	}

	return purged, nil
}
