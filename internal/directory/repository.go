package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/movementhq/booking-platform/pkg/logging"
)

// ErrNotFound indicates the requested professional does not exist.
var ErrNotFound = errors.New("directory: professional not found")

type dynamoAPI interface {
	Scan(context.Context, *dynamodb.ScanInput, ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	GetItem(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(context.Context, *dynamodb.DeleteItemInput, ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// Repository persists professionals to DynamoDB, keyed by slug.
type Repository struct {
	client    dynamoAPI
	tableName string
	logger    *logging.Logger
}

// NewRepository builds a repository backed by the provided DynamoDB client.
func NewRepository(client dynamoAPI, tableName string, logger *logging.Logger) *Repository {
	if client == nil {
		panic("directory: dynamodb client cannot be nil")
	}
	if tableName == "" {
		panic("directory: table name cannot be empty")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Repository{client: client, tableName: tableName, logger: logger}
}

// List returns every professional in the directory.
func (r *Repository) List(ctx context.Context) ([]*Professional, error) {
	var out []*Professional
	var startKey map[string]types.AttributeValue
	for {
		page, err := r.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(r.tableName),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("directory: failed to list professionals: %w", err)
		}
		for _, item := range page.Items {
			var rec record
			if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
				return nil, fmt.Errorf("directory: failed to decode professional: %w", err)
			}
			p, err := rec.resolve()
			if err != nil {
				r.logger.Warn("skipping malformed professional record", "slug", rec.Slug, "error", err)
				continue
			}
			out = append(out, p)
		}
		if page.LastEvaluatedKey == nil {
			break
		}
		startKey = page.LastEvaluatedKey
	}
	return out, nil
}

// Get fetches a professional by slug.
func (r *Repository) Get(ctx context.Context, slug string) (*Professional, error) {
	if slug == "" {
		return nil, errors.New("directory: slug required")
	}
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"slug": &types.AttributeValueMemberS{Value: slug},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("directory: failed to fetch professional %s: %w", slug, err)
	}
	if out.Item == nil {
		return nil, ErrNotFound
	}

	var rec record
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, fmt.Errorf("directory: failed to decode professional %s: %w", slug, err)
	}
	return rec.resolve()
}

// Put creates or replaces a professional. A missing slug is derived from the
// display name.
func (r *Repository) Put(ctx context.Context, p *Professional) (*Professional, error) {
	if p == nil {
		return nil, errors.New("directory: professional cannot be nil")
	}
	if p.Name == "" {
		return nil, errors.New("directory: professional name required")
	}
	if p.Slug == "" {
		p.Slug = Slugify(p.Name)
	}
	if p.Slug == "" {
		return nil, fmt.Errorf("directory: name %q yields an empty slug", p.Name)
	}
	if p.Kind == "" {
		p.Kind = KindPeriodic
	}

	item, err := attributevalue.MarshalMap(toRecord(p))
	if err != nil {
		return nil, fmt.Errorf("directory: failed to marshal professional: %w", err)
	}
	if _, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	}); err != nil {
		return nil, fmt.Errorf("directory: failed to persist professional %s: %w", p.Slug, err)
	}
	return p, nil
}

// Delete removes a professional. Appointments referencing it are left in place;
// history stays queryable through the cancellation lookup.
func (r *Repository) Delete(ctx context.Context, slug string) error {
	if slug == "" {
		return errors.New("directory: slug required")
	}
	if _, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"slug": &types.AttributeValueMemberS{Value: slug},
		},
	}); err != nil {
		return fmt.Errorf("directory: failed to delete professional %s: %w", slug, err)
	}
	return nil
}
