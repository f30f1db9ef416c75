package dynamo

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/classifieds-api/internal/domain"
)

// VerificationRepo manages email verification tokens.
// PK: token, GSI user_id-index.
type VerificationRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewVerificationRepo(client *dynamodb.Client, tableName string) *VerificationRepo {
	return &VerificationRepo{client: client, tableName: tableName}
}

func (r *VerificationRepo) Put(ctx context.Context, v *domain.VerificationToken) error {
	item, err := attributevalue.MarshalMap(v)
	if err != nil {
		return fmt.Errorf("marshal verification token: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// Consume deletes the token and returns what it held. The delete is conditional
// on the item existing, so of several concurrent callers exactly one succeeds
// and the others get domain.ErrNotFound.
func (r *VerificationRepo) Consume(ctx context.Context, token string) (*domain.VerificationToken, error) {
	out, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                aws.String(r.tableName),
		Key:                      strKey("token", token),
		ConditionExpression:      aws.String("attribute_exists(#t)"),
		ExpressionAttributeNames: map[string]string{"#t": "token"},
		ReturnValues:             types.ReturnValueAllOld,
	})
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return nil, fmt.Errorf("verification token not found: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	var v domain.VerificationToken
	if err := attributevalue.UnmarshalMap(out.Attributes, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *VerificationRepo) Delete(ctx context.Context, token string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("token", token),
	})
	return err
}

// DeleteByUser removes every token issued to userID.
func (r *VerificationRepo) DeleteByUser(ctx context.Context, userID string) error {
	p := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String("user_id-index"),
		KeyConditionExpression:    aws.String("user_id = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{":uid": &types.AttributeValueMemberS{Value: userID}},
		ProjectionExpression:      aws.String("#t"),
		ExpressionAttributeNames:  map[string]string{"#t": "token"},
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("query tokens: %w", err)
		}
		for _, item := range page.Items {
			s, ok := item["token"].(*types.AttributeValueMemberS)
			if !ok {
				continue
			}
			if err := r.Delete(ctx, s.Value); err != nil {
				return fmt.Errorf("delete token: %w", err)
			}
		}
	}
	return nil
}
