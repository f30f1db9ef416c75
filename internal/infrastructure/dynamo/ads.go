package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/classifieds-api/internal/domain"
)

// AdRepo provides typed DynamoDB operations for the ads table.
// The feed-index GSI (feed + created_at) serves the newest-first listing.
type AdRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewAdRepo(client *dynamodb.Client, tableName string) *AdRepo {
	return &AdRepo{client: client, tableName: tableName}
}

func (r *AdRepo) Put(ctx context.Context, ad *domain.Ad) error {
	ad.Feed = feedPartition
	item, err := attributevalue.MarshalMap(ad)
	if err != nil {
		return fmt.Errorf("marshal ad: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *AdRepo) Get(ctx context.Context, adID string) (*domain.Ad, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("ad_id", adID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("ad not found: %w", domain.ErrNotFound)
	}
	var ad domain.Ad
	if err := attributevalue.UnmarshalMap(out.Item, &ad); err != nil {
		return nil, err
	}
	return &ad, nil
}

func (r *AdRepo) Delete(ctx context.Context, adID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("ad_id", adID),
	})
	return err
}

// ListFeed returns a newest-first page of ads.
// cursor is the opaque token returned by the previous page; empty starts from the top.
// Returns the items, a next cursor (empty string when no more pages), and any error.
func (r *AdRepo) ListFeed(ctx context.Context, limit int32, cursor string) ([]domain.Ad, string, error) {
	input := &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String("feed-index"),
		KeyConditionExpression:    aws.String("feed = :f"),
		ExpressionAttributeValues: map[string]types.AttributeValue{":f": &types.AttributeValueMemberS{Value: feedPartition}},
		ScanIndexForward:          aws.Bool(false),
		Limit:                     aws.Int32(limit),
	}
	if cursor != "" {
		key, err := decodeCursor(cursor)
		if err != nil {
			return nil, "", fmt.Errorf("invalid cursor: %w", domain.ErrValidation)
		}
		input.ExclusiveStartKey = key
	}
	out, err := r.client.Query(ctx, input)
	if err != nil {
		return nil, "", err
	}
	ads := []domain.Ad{}
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &ads); err != nil {
		return nil, "", err
	}
	next, err := encodeCursor(out.LastEvaluatedKey)
	if err != nil {
		return nil, "", err
	}
	return ads, next, nil
}
