package dynamodb_test

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/spinshop/record-store-core/pkg/models"
	"github.com/spinshop/record-store-core/pkg/storage"
	"github.com/spinshop/record-store-core/pkg/storage/dynamodb"
	"github.com/spinshop/record-store-core/pkg/storage/dynamodb/mocks"
)

func TestMarkTokenUndone(t *testing.T) {
	now := time.Now().UTC()

	t.Run("Success", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("UpdateItem", mock.Anything, mock.MatchedBy(func(in *awsdynamodb.UpdateItemInput) bool {
			return *in.TableName == "undo_tokens"
		})).Return(&awsdynamodb.UpdateItemOutput{}, nil)

		store := dynamodb.New(mockClient, testTables)
		assert.NoError(t, store.MarkTokenUndone(context.Background(), "tok-1", now))
	})

	t.Run("ConsumedTokenRejected", func(t *testing.T) {
		consumedAt := now.Add(-time.Minute)
		item, err := attributevalue.MarshalMap(models.UndoToken{
			ID:         "tok-1",
			ActionType: "stock_receipt",
			ExpiresAt:  now.Add(time.Hour),
			UndoneAt:   &consumedAt,
		})
		assert.NoError(t, err)

		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("UpdateItem", mock.Anything, mock.Anything).
			Return(nil, &types.ConditionalCheckFailedException{})
		mockClient.On("GetItem", mock.Anything, getItemFor("undo_tokens")).
			Return(&awsdynamodb.GetItemOutput{Item: item}, nil)

		store := dynamodb.New(mockClient, testTables)
		err = store.MarkTokenUndone(context.Background(), "tok-1", now)

		assert.ErrorIs(t, err, storage.ErrAlreadyUndone)
	})

	t.Run("MissingTokenRejected", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("UpdateItem", mock.Anything, mock.Anything).
			Return(nil, &types.ConditionalCheckFailedException{})
		mockClient.On("GetItem", mock.Anything, getItemFor("undo_tokens")).
			Return(&awsdynamodb.GetItemOutput{}, nil)

		store := dynamodb.New(mockClient, testTables)
		err := store.MarkTokenUndone(context.Background(), "tok-missing", now)

		assert.ErrorIs(t, err, storage.ErrTokenNotFound)
	})
}

func TestPurgeExpiredUndoTokens(t *testing.T) {
	now := time.Now().UTC()

	expired := func(id string) map[string]types.AttributeValue {
		item, err := attributevalue.MarshalMap(models.UndoToken{
			ID:         id,
			ActionType: "bulk_status",
			ExpiresAt:  now.Add(-time.Hour),
		})
		assert.NoError(t, err)
		return item
	}

	t.Run("DeletesEachExpiredToken", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("Query", mock.Anything, mock.Anything).
			Return(&awsdynamodb.QueryOutput{Items: []map[string]types.AttributeValue{expired("tok-1"), expired("tok-2")}}, nil)
		mockClient.On("DeleteItem", mock.Anything, mock.Anything).
			Return(&awsdynamodb.DeleteItemOutput{}, nil).Twice()

		store := dynamodb.New(mockClient, testTables)
		purged, err := store.PurgeExpiredUndoTokens(context.Background(), now, 100)

		assert.NoError(t, err)
		assert.Equal(t, 2, purged)
		mockClient.AssertExpectations(t)
	})

	t.Run("NothingToPurge", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("Query", mock.Anything, mock.Anything).
			Return(&awsdynamodb.QueryOutput{}, nil)

		store := dynamodb.New(mockClient, testTables)
		purged, err := store.PurgeExpiredUndoTokens(context.Background(), now, 100)

		assert.NoError(t, err)
		assert.Equal(t, 0, purged)
		mockClient.AssertNotCalled(t, "DeleteItem", mock.Anything, mock.Anything)
	})
}
