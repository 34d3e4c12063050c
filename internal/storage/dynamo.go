package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/hozaki45/NEXUS-ENA/internal/model"
)

// MetadataTable implements MetadataStore against a DynamoDB table with
// partition key data_source and sort key timestamp.
type MetadataTable struct {
	client *dynamodb.Client
	table  string
}

// NewMetadataTable creates a DynamoDB-backed metadata store.
func NewMetadataTable(client *dynamodb.Client, table string) *MetadataTable {
	return &MetadataTable{client: client, table: table}
}

// Put appends one collection record.
func (m *MetadataTable) Put(ctx context.Context, rec model.MetadataRecord) error {
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("marshal metadata record: %w", err)
	}

	_, err = m.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(m.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("put metadata record for %s: %w", rec.DataSource, err)
	}
	return nil
}

// QueryRecent returns up to limit records for one source, newest first.
func (m *MetadataTable) QueryRecent(ctx context.Context, source string, limit int) ([]model.MetadataRecord, error) {
	keyCond := expression.Key("data_source").Equal(expression.Value(source))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("build query expression: %w", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(m.table),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(false),
	}
	if limit > 0 {
		input.Limit = aws.Int32(int32(limit))
	}

	out, err := m.client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("query metadata for %s: %w", source, err)
	}
	return unmarshalRecords(out.Items)
}

// ScanSince returns records with a timestamp after cutoff, across all
// sources. The scan reads at most limit items when limit is positive.
func (m *MetadataTable) ScanSince(ctx context.Context, cutoff time.Time, limit int) ([]model.MetadataRecord, error) {
	filter := expression.Name("timestamp").GreaterThan(expression.Value(cutoff.UTC().Format(time.RFC3339)))
	expr, err := expression.NewBuilder().WithFilter(filter).Build()
	if err != nil {
		return nil, fmt.Errorf("build scan expression: %w", err)
	}

	input := &dynamodb.ScanInput{
		TableName:                 aws.String(m.table),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}
	if limit > 0 {
		input.Limit = aws.Int32(int32(limit))
	}

	out, err := m.client.Scan(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("scan metadata since %s: %w", cutoff.Format(time.RFC3339), err)
	}
	return unmarshalRecords(out.Items)
}

// HealthCheck verifies the table exists and is reachable.
func (m *MetadataTable) HealthCheck(ctx context.Context) error {
	_, err := m.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(m.table),
	})
	if err != nil {
		return fmt.Errorf("describe table %s: %w", m.table, err)
	}
	return nil
}

func unmarshalRecords(items []map[string]types.AttributeValue) ([]model.MetadataRecord, error) {
	records := make([]model.MetadataRecord, 0, len(items))
	for _, item := range items {
		var rec model.MetadataRecord
		if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
			return nil, fmt.Errorf("unmarshal metadata record: %w", err)
		}
		records = append(records, rec)
	}
	return records, nil
}
