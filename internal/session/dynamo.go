package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type dynamoAPI interface {
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DeleteItem(context.Context, *dynamodb.DeleteItemInput, ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

type kvItem struct {
	Key       string `dynamodbav:"key"`
	Value     string `dynamodbav:"value"`
	UpdatedAt string `dynamodbav:"updatedAt"`
	ExpiresAt int64  `dynamodbav:"expiresAt,omitempty"`
}

// DynamoKV stores values in a DynamoDB table keyed by "key", with
// "expiresAt" usable as the table TTL attribute.
type DynamoKV struct {
	client    dynamoAPI
	tableName string
	ttl       time.Duration
	now       func() time.Time
}

// NewDynamoKV builds a store over the given table.
func NewDynamoKV(client dynamoAPI, tableName string, ttl time.Duration) *DynamoKV {
	if client == nil {
		panic("session: dynamodb client cannot be nil")
	}
	if tableName == "" {
		panic("session: table name cannot be empty")
	}
	return &DynamoKV{client: client, tableName: tableName, ttl: ttl, now: time.Now}
}

func (d *DynamoKV) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(d.tableName),
		ConsistentRead: aws.Bool(true),
		Key: map[string]types.AttributeValue{
			"key": &types.AttributeValueMemberS{Value: key},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("session: dynamodb get: %w", err)
	}
	if out.Item == nil {
		return nil, ErrNotFound
	}
	var item kvItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("session: decode item: %w", err)
	}
	if item.ExpiresAt != 0 && item.ExpiresAt <= d.now().Unix() {
		return nil, ErrNotFound
	}
	return []byte(item.Value), nil
}

func (d *DynamoKV) Set(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return errors.New("session: key required")
	}
	now := d.now().UTC()
	item := kvItem{Key: key, Value: string(value), UpdatedAt: now.Format(time.RFC3339Nano)}
	if d.ttl > 0 {
		item.ExpiresAt = now.Add(d.ttl).Unix()
	}
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("session: encode item: %w", err)
	}
	if _, err := d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(d.tableName),
		Item:      av,
	}); err != nil {
		return fmt.Errorf("session: dynamodb put: %w", err)
	}
	return nil
}

func (d *DynamoKV) Delete(ctx context.Context, key string) error {
	if _, err := d.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(d.tableName),
		Key: map[string]types.AttributeValue{
			"key": &types.AttributeValueMemberS{Value: key},
		},
	}); err != nil {
		return fmt.Errorf("session: dynamodb delete: %w", err)
	}
	return nil
}

var _ KV = (*DynamoKV)(nil)
