// Package dynamo persists score tables in DynamoDB so several routing
// instances can share the scores of one network snapshot.
//
// Table schema:
//   - Partition key: network (string), the snapshot the edge ids belong to
//   - Sort key: edge_id (number)
//   - Attribute: score (number)
//
// Create table with:
//
//	aws dynamodb create-table \
//	  --table-name roadnet-scores \
//	  --attribute-definitions AttributeName=network,AttributeType=S AttributeName=edge_id,AttributeType=N \
//	  --key-schema AttributeName=network,KeyType=HASH AttributeName=edge_id,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
package dynamo

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/hupe1980/roadnet/internal/conv"
	"github.com/hupe1980/roadnet/scores"
)

const (
	attrNetwork = "network"
	attrEdgeID  = "edge_id"
	attrScore   = "score"

	// batchSize is the BatchWriteItem request limit.
	batchSize = 25

	maxBatchAttempts = 5
)

// ErrUnprocessed is returned when DynamoDB keeps rejecting part of a batch.
var ErrUnprocessed = errors.New("dynamo: unprocessed items after retries")

// DDBClient is the subset of the DynamoDB API the store uses.
type DDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

// Store reads and writes the scores of one network.
type Store struct {
	client    DDBClient
	tableName string
	network   string
	backoff   time.Duration
}

// New creates a store for the scores of network in tableName.
func New(client DDBClient, tableName, network string) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		network:   network,
		backoff:   50 * time.Millisecond,
	}
}

func (s *Store) key(edgeID uint32) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrNetwork: &types.AttributeValueMemberS{Value: s.network},
		attrEdgeID:  &types.AttributeValueMemberN{Value: strconv.FormatUint(uint64(edgeID), 10)},
	}
}

func (s *Store) item(edgeID uint32, score float32) map[string]types.AttributeValue {
	item := s.key(edgeID)
	item[attrScore] = &types.AttributeValueMemberN{Value: strconv.FormatFloat(float64(score), 'g', -1, 32)}
	return item
}

func decodeItem(item map[string]types.AttributeValue) (uint32, float32, error) {
	idAttr, ok := item[attrEdgeID].(*types.AttributeValueMemberN)
	if !ok {
		return 0, 0, errors.New("invalid edge_id attribute in DynamoDB")
	}
	scoreAttr, ok := item[attrScore].(*types.AttributeValueMemberN)
	if !ok {
		return 0, 0, errors.New("invalid score attribute in DynamoDB")
	}

	id, err := strconv.ParseInt(idAttr.Value, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to parse edge id: %w", err)
	}
	edgeID, err := conv.Int64ToUint32(id)
	if err != nil {
		return 0, 0, err
	}
	score, err := strconv.ParseFloat(scoreAttr.Value, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to parse score: %w", err)
	}
	return edgeID, float32(score), nil
}

// Put stores the score of an edge.
func (s *Store) Put(ctx context.Context, edgeID uint32, score float32) error {
	_, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      s.item(edgeID, score),
	})
	if err != nil {
		return fmt.Errorf("failed to put score: %w", err)
	}
	return nil
}

// Get returns the score of an edge.
func (s *Store) Get(ctx context.Context, edgeID uint32) (float32, bool, error) {
	resp, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key:       s.key(edgeID),
	})
	if err != nil {
		return 0, false, fmt.Errorf("failed to get score: %w", err)
	}
	if len(resp.Item) == 0 {
		return 0, false, nil
	}
	_, score, err := decodeItem(resp.Item)
	if err != nil {
		return 0, false, err
	}
	return score, true, nil
}

// Delete removes the score of an edge. Deleting a missing score is not an error.
func (s *Store) Delete(ctx context.Context, edgeID uint32) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key:       s.key(edgeID),
	})
	if err != nil {
		return fmt.Errorf("failed to delete score: %w", err)
	}
	return nil
}

// Load returns every score of the network.
func (s *Store) Load(ctx context.Context) (map[uint32]float32, error) {
	values := make(map[uint32]float32)
	var start map[string]types.AttributeValue

	for {
		resp, err := s.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(s.tableName),
			KeyConditionExpression: aws.String("#n = :network"),
			ExpressionAttributeNames: map[string]string{
				"#n": attrNetwork,
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":network": &types.AttributeValueMemberS{Value: s.network},
			},
			ExclusiveStartKey: start,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to query DynamoDB: %w", err)
		}

		for _, item := range resp.Items {
			edgeID, score, err := decodeItem(item)
			if err != nil {
				return nil, err
			}
			values[edgeID] = score
		}

		if len(resp.LastEvaluatedKey) == 0 {
			return values, nil
		}
		start = resp.LastEvaluatedKey
	}
}

// Save writes values in batches. Existing scores of other edges are kept.
func (s *Store) Save(ctx context.Context, values map[uint32]float32) error {
	ids := slices.Sorted(maps.Keys(values))

	for chunk := range slices.Chunk(ids, batchSize) {
		requests := make([]types.WriteRequest, 0, len(chunk))
		for _, id := range chunk {
			requests = append(requests, types.WriteRequest{
				PutRequest: &types.PutRequest{Item: s.item(id, values[id])},
			})
		}
		if err := s.writeBatch(ctx, requests); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) writeBatch(ctx context.Context, requests []types.WriteRequest) error {
	backoff := s.backoff

	for attempt := 0; attempt < maxBatchAttempts; attempt++ {
		resp, err := s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{s.tableName: requests},
		})
		if err != nil {
			return fmt.Errorf("failed to write scores to DynamoDB: %w", err)
		}

		requests = resp.UnprocessedItems[s.tableName]
		if len(requests) == 0 {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return fmt.Errorf("%w: %d items", ErrUnprocessed, len(requests))
}

// Export saves the processed scores of t.
func (s *Store) Export(ctx context.Context, t *scores.Table) error {
	return s.Save(ctx, t.Values())
}

// Import replaces the processed scores of t with the stored ones.
func (s *Store) Import(ctx context.Context, t *scores.Table) error {
	values, err := s.Load(ctx)
	if err != nil {
		return err
	}
	t.Replace(values)
	return nil
}
