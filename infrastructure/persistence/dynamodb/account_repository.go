// Package dynamodb implements the application's repositories on DynamoDB.
package dynamodb

import (
	"context"
	"fmt"

	"invitelinks-backend/application/ports"
	"invitelinks-backend/domain/invitelinks"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// AccountRepository fetches raw campaign, group and category records from an
// account's own table. The table name is the lowercased account identifier.
type AccountRepository struct {
	client API
	logger *zap.Logger
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(client API, logger *zap.Logger) ports.AccountRepository {
	return &AccountRepository{
		client: client,
		logger: logger,
	}
}

// Campaigns returns every campaign record in the account's table.
func (r *AccountRepository) Campaigns(ctx context.Context, account string) ([]invitelinks.Campaign, error) {
	items, err := queryPartition(ctx, r.client, invitelinks.NormalizeAccountTable(account), invitelinks.CampaignPK)
	if err != nil {
		return nil, fmt.Errorf("failed to query campaigns: %w", err)
	}

	var campaigns []invitelinks.Campaign
	if err := attributevalue.UnmarshalListOfMaps(items, &campaigns); err != nil {
		return nil, fmt.Errorf("failed to unmarshal campaigns: %w", err)
	}
	return campaigns, nil
}

// Groups returns every WhatsApp group record in the account's table.
func (r *AccountRepository) Groups(ctx context.Context, account string) ([]invitelinks.Group, error) {
	items, err := queryPartition(ctx, r.client, invitelinks.NormalizeAccountTable(account), invitelinks.GroupPK)
	if err != nil {
		return nil, fmt.Errorf("failed to query groups: %w", err)
	}

	var groups []invitelinks.Group
	if err := attributevalue.UnmarshalListOfMaps(items, &groups); err != nil {
		return nil, fmt.Errorf("failed to unmarshal groups: %w", err)
	}
	return groups, nil
}

// Categories returns every group-category record in the account's table.
func (r *AccountRepository) Categories(ctx context.Context, account string) ([]invitelinks.GroupCategory, error) {
	items, err := queryPartition(ctx, r.client, invitelinks.NormalizeAccountTable(account), invitelinks.CategoryPK)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}

	var categories []invitelinks.GroupCategory
	if err := attributevalue.UnmarshalListOfMaps(items, &categories); err != nil {
		return nil, fmt.Errorf("failed to unmarshal categories: %w", err)
	}
	return categories, nil
}

// queryPartition reads a whole partition, following pagination until the
// last page.
func queryPartition(ctx context.Context, client API, table, pk string) ([]map[string]types.AttributeValue, error) {
	var items []map[string]types.AttributeValue
	var startKey map[string]types.AttributeValue

	for {
		out, err := client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(table),
			KeyConditionExpression: aws.String("PK = :pk"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":pk": &types.AttributeValueMemberS{Value: pk},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, err
		}

		items = append(items, out.Items...)
		if len(out.LastEvaluatedKey) == 0 {
			return items, nil
		}
		startKey = out.LastEvaluatedKey
	}
}
