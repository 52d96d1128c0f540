package dynamo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-push-inbox/internal/pkg/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockDynamo struct{ mock.Mock }

func (m *mockDynamo) GetItem(ctx context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	args := m.Called(ctx, in)
	if out, _ := args.Get(0).(*dynamodb.GetItemOutput); out != nil {
		return out, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDynamo) PutItem(ctx context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	args := m.Called(ctx, in)
	return &dynamodb.PutItemOutput{}, args.Error(0)
}

func (m *mockDynamo) CreateTable(ctx context.Context, in *dynamodb.CreateTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error) {
	args := m.Called(ctx, in)
	return &dynamodb.CreateTableOutput{}, args.Error(0)
}

func TestKVRepo_SetItem_WritesStringValue(t *testing.T) {
	db := &mockDynamo{}
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	repo := NewKVRepo(db, "kv_store")
	repo.now = func() time.Time { return fixed }

	db.On("PutItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.PutItemInput) bool {
		key, _ := in.Item[fieldStorageKey].(*types.AttributeValueMemberS)
		val, _ := in.Item[fieldValue].(*types.AttributeValueMemberS)
		_, hasUpdated := in.Item[fieldUpdatedAt]
		return *in.TableName == "kv_store" && key != nil && key.Value == "app_notifications" &&
			val != nil && val.Value == `[]` && hasUpdated
	})).Return(nil)

	require.NoError(t, repo.SetItem(context.Background(), "app_notifications", []byte(`[]`)))
	db.AssertExpectations(t)
}

func TestKVRepo_GetItem_Missing(t *testing.T) {
	db := &mockDynamo{}
	db.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{}, nil)

	v, found, err := NewKVRepo(db, "kv_store").GetItem(context.Background(), "fcmToken")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, v)
}

func TestKVRepo_GetItem_Found(t *testing.T) {
	db := &mockDynamo{}
	db.On("GetItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.GetItemInput) bool {
		return *in.ConsistentRead
	})).Return(&dynamodb.GetItemOutput{Item: map[string]types.AttributeValue{
		fieldStorageKey: &types.AttributeValueMemberS{Value: "fcmToken"},
		fieldValue:      &types.AttributeValueMemberS{Value: "tok-1"},
	}}, nil)

	v, found, err := NewKVRepo(db, "kv_store").GetItem(context.Background(), "fcmToken")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "tok-1", string(v))
}

func TestKVRepo_GetItem_WrapsError(t *testing.T) {
	db := &mockDynamo{}
	boom := errors.New("throttled")
	db.On("GetItem", mock.Anything, mock.Anything).Return(nil, boom)

	_, _, err := NewKVRepo(db, "kv_store").GetItem(context.Background(), "k")
	assert.ErrorIs(t, err, boom)
}

func TestBootstrap_IgnoresExistingTable(t *testing.T) {
	db := &mockDynamo{}
	db.On("CreateTable", mock.Anything, mock.Anything).Return(&types.ResourceInUseException{})

	Bootstrap(context.Background(), db, "kv_store", logging.Discard())
	db.AssertNumberOfCalls(t, "CreateTable", 1)
}
