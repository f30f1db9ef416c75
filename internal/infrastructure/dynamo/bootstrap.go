package dynamo

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/classifieds-api/internal/config"
	"go.uber.org/zap"
)

// index is a GSI keyed on hash, optionally ordered by sort.
type index struct {
	hash, sort string
}

type tableSpec struct {
	name    string
	key     string
	indexes []index
	ttl     string
}

// schema lists every table the API reads or writes. All key attributes are
// strings.
func schema(tables config.DynamoTables) []tableSpec {
	return []tableSpec{
		{name: tables.Users, key: "user_id", indexes: []index{{hash: "email"}}},
		{name: tables.Ads, key: "ad_id", indexes: []index{
			{hash: "feed", sort: "created_at"},
			{hash: "author_id", sort: "created_at"},
		}},
		{name: tables.VerificationTokens, key: "token", indexes: []index{{hash: "user_id"}}, ttl: "expires"},
	}
}

// Bootstrap creates any missing table. Tables that already exist are skipped.
func Bootstrap(ctx context.Context, client *dynamodb.Client, tables config.DynamoTables) {
	for _, tbl := range schema(tables) {
		createTable(ctx, client, tbl.input())
		if tbl.ttl != "" {
			enableTTL(ctx, client, tbl.name, tbl.ttl)
		}
	}
}

func (s tableSpec) input() *dynamodb.CreateTableInput {
	seen := map[string]bool{}
	var attrs []types.AttributeDefinition
	declare := func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		attrs = append(attrs, types.AttributeDefinition{
			AttributeName: aws.String(name), AttributeType: types.ScalarAttributeTypeS,
		})
	}

	declare(s.key)
	var gsis []types.GlobalSecondaryIndex
	for _, ix := range s.indexes {
		declare(ix.hash)
		declare(ix.sort)
		gsis = append(gsis, ix.descriptor())
	}

	return &dynamodb.CreateTableInput{
		TableName:              aws.String(s.name),
		BillingMode:            types.BillingModePayPerRequest,
		AttributeDefinitions:   attrs,
		KeySchema:              keySchema(s.key, ""),
		GlobalSecondaryIndexes: gsis,
	}
}

// descriptor names the index "<hash>-index", the name the repositories
// query by.
func (ix index) descriptor() types.GlobalSecondaryIndex {
	return types.GlobalSecondaryIndex{
		IndexName:  aws.String(ix.hash + "-index"),
		KeySchema:  keySchema(ix.hash, ix.sort),
		Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
	}
}

func keySchema(hash, sort string) []types.KeySchemaElement {
	ks := []types.KeySchemaElement{{AttributeName: aws.String(hash), KeyType: types.KeyTypeHash}}
	if sort != "" {
		ks = append(ks, types.KeySchemaElement{AttributeName: aws.String(sort), KeyType: types.KeyTypeRange})
	}
	return ks
}

func createTable(ctx context.Context, client *dynamodb.Client, input *dynamodb.CreateTableInput) {
	table := aws.ToString(input.TableName)
	if _, err := client.CreateTable(ctx, input); err != nil {
		var inUse *types.ResourceInUseException
		if !errors.As(err, &inUse) {
			zap.L().Warn("could not create table", zap.String("table", table), zap.Error(err))
		}
		return
	}
	zap.L().Info("created table", zap.String("table", table))
}

func enableTTL(ctx context.Context, client *dynamodb.Client, table, attr string) {
	_, err := client.UpdateTimeToLive(ctx, &dynamodb.UpdateTimeToLiveInput{
		TableName: aws.String(table),
		TimeToLiveSpecification: &types.TimeToLiveSpecification{
			Enabled:       aws.Bool(true),
			AttributeName: aws.String(attr),
		},
	})
	if err != nil {
		zap.L().Warn("could not enable TTL", zap.String("table", table), zap.Error(err))
	}
}
