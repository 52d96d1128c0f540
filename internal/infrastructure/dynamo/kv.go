package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

type itemAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

type kvItem struct {
	Key       string    `dynamodbav:"storage_key"`
	Value     string    `dynamodbav:"value"`
	UpdatedAt time.Time `dynamodbav:"updated_at"`
}

// KVRepo stores each key as one item of the key-value table. The value is kept
// as a string attribute so the stored JSON stays readable in the console.
type KVRepo struct {
	client    itemAPI
	tableName string
	now       func() time.Time
}

func NewKVRepo(client itemAPI, tableName string) *KVRepo {
	return &KVRepo{client: client, tableName: tableName, now: time.Now}
}

func (r *KVRepo) GetItem(ctx context.Context, key string) ([]byte, bool, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            strKey(fieldStorageKey, key),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, false, fmt.Errorf("dynamo get %s: %w", key, err)
	}
	if out.Item == nil {
		return nil, false, nil
	}
	var it kvItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return nil, false, fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return []byte(it.Value), true, nil
}

func (r *KVRepo) SetItem(ctx context.Context, key string, value []byte) error {
	item, err := attributevalue.MarshalMap(kvItem{
		Key:       key,
		Value:     string(value),
		UpdatedAt: r.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("dynamo put %s: %w", key, err)
	}
	return nil
}
