package dynamodb

import (
	"context"
	"fmt"

	"invitelinks-backend/application/ports"
	"invitelinks-backend/domain/invitelinks"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// AggregateRepository reads and writes invite-links aggregate records in the
// shared table and in per-account tables. Shared-table reads go through the
// process-wide cache; per-account tables are always queried live. When a
// mirror client is configured, every write is repeated against it using the
// same table addressing.
type AggregateRepository struct {
	client      API
	mirror      API // nil unless a secondary region is configured
	sharedTable string
	cache       ports.AggregateCache
	logger      *zap.Logger
}

// NewAggregateRepository creates a new AggregateRepository. mirror may be
// nil when no secondary region is configured.
func NewAggregateRepository(client, mirror API, sharedTable string, cache ports.AggregateCache, logger *zap.Logger) ports.AggregateRepository {
	return &AggregateRepository{
		client:      client,
		mirror:      mirror,
		sharedTable: sharedTable,
		cache:       cache,
		logger:      logger,
	}
}

// Existing returns the union of the account's aggregates across the
// locations the routing hint allows. A location that cannot be reached
// contributes an empty set with a warning rather than failing the account.
func (r *AggregateRepository) Existing(ctx context.Context, account string, hint invitelinks.RoutingHint) ([]ports.StoredAggregate, error) {
	var stored []ports.StoredAggregate

	if hint.Shared {
		shared, err := r.sharedAggregates(ctx, account)
		if err != nil {
			r.logger.Warn("Failed to read shared aggregates, treating as empty",
				zap.String("account", account),
				zap.Error(err),
			)
		}
		for _, agg := range shared {
			stored = append(stored, ports.StoredAggregate{
				Aggregate: agg,
				Location:  invitelinks.SharedStorage,
			})
		}
	}

	if hint.Account {
		own, err := r.accountAggregates(ctx, account)
		if err != nil {
			r.logger.Warn("Failed to read per-account aggregates, treating as empty",
				zap.String("account", account),
				zap.Error(err),
			)
		}
		for _, agg := range own {
			stored = append(stored, ports.StoredAggregate{
				Aggregate: agg,
				Location:  invitelinks.AccountStorage,
			})
		}
	}

	return stored, nil
}

// sharedAggregates returns the account's entries from the shared table,
// served from the cache when possible. The first call scans the whole
// aggregate partition to populate the cache; if that scan fails the cache is
// disabled and this and future calls query the account's entries directly.
func (r *AggregateRepository) sharedAggregates(ctx context.Context, account string) ([]invitelinks.Aggregate, error) {
	accountSK := invitelinks.AccountSK(account)

	if all, ok := r.cache.Snapshot(); ok {
		return filterByAccount(all, accountSK), nil
	}

	if !r.cache.Disabled() {
		all, err := r.scanSharedPartition(ctx)
		if err != nil {
			r.cache.Disable()
			r.logger.Warn("Initial shared partition scan failed", zap.Error(err))
		} else {
			r.cache.Populate(all)
			return filterByAccount(all, accountSK), nil
		}
	}

	return r.querySharedByAccount(ctx, accountSK)
}

// scanSharedPartition reads the entire aggregate partition of the shared
// table, following pagination.
func (r *AggregateRepository) scanSharedPartition(ctx context.Context) ([]invitelinks.Aggregate, error) {
	items, err := queryPartition(ctx, r.client, r.sharedTable, invitelinks.AggregatePK)
	if err != nil {
		return nil, fmt.Errorf("failed to scan shared aggregates: %w", err)
	}

	var aggregates []invitelinks.Aggregate
	if err := attributevalue.UnmarshalListOfMaps(items, &aggregates); err != nil {
		return nil, fmt.Errorf("failed to unmarshal shared aggregates: %w", err)
	}
	return aggregates, nil
}

// querySharedByAccount is the uncached fallback: a live partition query
// filtered to the account's entries.
func (r *AggregateRepository) querySharedByAccount(ctx context.Context, accountSK string) ([]invitelinks.Aggregate, error) {
	var items []map[string]types.AttributeValue
	var startKey map[string]types.AttributeValue

	for {
		out, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(r.sharedTable),
			KeyConditionExpression: aws.String("PK = :pk"),
			FilterExpression:       aws.String("AccountSK = :account"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":pk":      &types.AttributeValueMemberS{Value: invitelinks.AggregatePK},
				":account": &types.AttributeValueMemberS{Value: accountSK},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to query shared aggregates: %w", err)
		}

		items = append(items, out.Items...)
		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		startKey = out.LastEvaluatedKey
	}

	var aggregates []invitelinks.Aggregate
	if err := attributevalue.UnmarshalListOfMaps(items, &aggregates); err != nil {
		return nil, fmt.Errorf("failed to unmarshal shared aggregates: %w", err)
	}
	return aggregates, nil
}

// accountAggregates returns the aggregate partition of the account's own
// table, queried live.
func (r *AggregateRepository) accountAggregates(ctx context.Context, account string) ([]invitelinks.Aggregate, error) {
	items, err := queryPartition(ctx, r.client, invitelinks.NormalizeAccountTable(account), invitelinks.AggregatePK)
	if err != nil {
		return nil, fmt.Errorf("failed to query account aggregates: %w", err)
	}

	var aggregates []invitelinks.Aggregate
	if err := attributevalue.UnmarshalListOfMaps(items, &aggregates); err != nil {
		return nil, fmt.Errorf("failed to unmarshal account aggregates: %w", err)
	}
	return aggregates, nil
}

// Upsert applies a partial update by primary key. Campaign and Category are
// always written; every other attribute only when the payload carries it, so
// an unset attribute never clobbers the stored value. A successful write to
// the shared table is merged into the cache.
func (r *AggregateRepository) Upsert(ctx context.Context, account string, loc invitelinks.StorageLocation, update ports.AggregateUpdate) error {
	table := r.sharedTable
	if loc == invitelinks.AccountStorage {
		table = invitelinks.NormalizeAccountTable(account)
	}

	set := expression.Set(expression.Name("Campaign"), expression.Value(update.Campaign)).
		Set(expression.Name("Category"), expression.Value(update.Category))
	if update.AccountSK != nil {
		set = set.Set(expression.Name("AccountSK"), expression.Value(*update.AccountSK))
	}
	if update.Domain != nil {
		set = set.Set(expression.Name("Domain"), expression.Value(*update.Domain))
	}
	if update.InviteCodes != nil {
		set = set.Set(expression.Name("InviteCodes"), expression.Value(*update.InviteCodes))
	}
	if update.Updated != nil {
		set = set.Set(expression.Name("Updated"), expression.Value(*update.Updated))
	}

	expr, err := expression.NewBuilder().WithUpdate(set).Build()
	if err != nil {
		return fmt.Errorf("failed to build update expression: %w", err)
	}

	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(table),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: invitelinks.AggregatePK},
			"SK": &types.AttributeValueMemberS{Value: update.SK},
		},
		UpdateExpression:          expr.Update(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}

	if _, err := r.client.UpdateItem(ctx, input); err != nil {
		return fmt.Errorf("failed to update aggregate %s: %w", update.SK, err)
	}

	// Mirror failures do not fail the write; the primary region is the
	// source of truth for reads.
	if r.mirror != nil {
		if _, err := r.mirror.UpdateItem(ctx, input); err != nil {
			r.logger.Warn("Failed to mirror aggregate write",
				zap.String("table", table),
				zap.String("sk", update.SK),
				zap.Error(err),
			)
		}
	}

	if loc == invitelinks.SharedStorage {
		r.cache.MergeOnWrite(update)
	}

	r.logger.Debug("Aggregate updated",
		zap.String("table", table),
		zap.String("sk", update.SK),
		zap.String("location", loc.String()),
	)

	return nil
}

func filterByAccount(aggregates []invitelinks.Aggregate, accountSK string) []invitelinks.Aggregate {
	var matched []invitelinks.Aggregate
	for _, agg := range aggregates {
		if agg.AccountSK == accountSK {
			matched = append(matched, agg)
		}
	}
	return matched
}
