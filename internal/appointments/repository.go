package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/movementhq/booking-platform/pkg/logging"
)

var (
	// ErrNotFound indicates the requested appointment does not exist.
	ErrNotFound = errors.New("appointments: appointment not found")
	// ErrSlotClaimed indicates another writer already holds the slot claim.
	ErrSlotClaimed = errors.New("appointments: slot already claimed")
)

type dynamoAPI interface {
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	UpdateItem(context.Context, *dynamodb.UpdateItemInput, ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(context.Context, *dynamodb.DeleteItemInput, ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(context.Context, *dynamodb.QueryInput, ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// Indexes names the global secondary indexes of the appointments table.
type Indexes struct {
	Slot     string
	Document string
	Phone    string
}

// Repository persists appointments to DynamoDB.
type Repository struct {
	client    dynamoAPI
	tableName string
	indexes   Indexes
	logger    *logging.Logger
	now       func() time.Time
}

// NewRepository builds a repository backed by the provided DynamoDB client.
func NewRepository(client dynamoAPI, tableName string, indexes Indexes, logger *logging.Logger) *Repository {
	if client == nil {
		panic("appointments: dynamodb client cannot be nil")
	}
	if tableName == "" {
		panic("appointments: table name cannot be empty")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Repository{
		client:    client,
		tableName: tableName,
		indexes:   indexes,
		logger:    logger,
		now:       time.Now,
	}
}

// Create persists a new confirmed appointment and returns its id. It always
// writes a fresh record; the id condition guards against UUID reuse, not
// against slot races.
func (r *Repository) Create(ctx context.Context, appt *Appointment) (string, error) {
	if appt == nil {
		return "", errors.New("appointments: appointment cannot be nil")
	}
	appt.ID = uuid.NewString()
	appt.SlotKey = slotKey(appt.ProfessionalSlug, appt.Date)
	appt.Status = StatusConfirmed
	appt.CreatedAt = r.now().UTC().Format(time.RFC3339)

	item, err := attributevalue.MarshalMap(appt)
	if err != nil {
		return "", fmt.Errorf("appointments: failed to marshal appointment: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		return "", fmt.Errorf("appointments: failed to persist appointment: %w", err)
	}
	return appt.ID, nil
}

// Get fetches an appointment by id.
func (r *Repository) Get(ctx context.Context, id string) (*Appointment, error) {
	if id == "" {
		return nil, errors.New("appointments: id required")
	}
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("appointments: failed to fetch appointment %s: %w", id, err)
	}
	if out.Item == nil {
		return nil, ErrNotFound
	}

	var appt Appointment
	if err := attributevalue.UnmarshalMap(out.Item, &appt); err != nil {
		return nil, fmt.Errorf("appointments: failed to decode appointment %s: %w", id, err)
	}
	return &appt, nil
}

// ActiveForSlot lists the non-cancelled appointments of a professional on a
// date. Status filtering happens client-side, mirroring how readers treat the
// status attribute everywhere else.
func (r *Repository) ActiveForSlot(ctx context.Context, professional, date string) ([]*Appointment, error) {
	out, err := r.queryIndex(ctx, r.indexes.Slot, "slotKey", slotKey(professional, date))
	if err != nil {
		return nil, fmt.Errorf("appointments: failed to query slot %s %s: %w", professional, date, err)
	}
	return filterActive(out, ""), nil
}

// ReservedTimes returns the slot times taken by non-cancelled appointments for
// (professional, date). It satisfies the schedule resolver's source interface.
func (r *Repository) ReservedTimes(ctx context.Context, professional, date string) ([]string, error) {
	active, err := r.ActiveForSlot(ctx, professional, date)
	if err != nil {
		return nil, err
	}
	times := make([]string, 0, len(active))
	for _, appt := range active {
		times = append(times, appt.Time)
	}
	return times, nil
}

// IsSlotFree reports whether no non-cancelled appointment holds the exact
// (professional, date, time) triple.
func (r *Repository) IsSlotFree(ctx context.Context, professional, date, slotTime string) (bool, error) {
	active, err := r.ActiveForSlot(ctx, professional, date)
	if err != nil {
		return false, err
	}
	for _, appt := range active {
		if appt.Time == slotTime {
			return false, nil
		}
	}
	return true, nil
}

// FindActiveByDocument returns non-cancelled appointments for a national id
// with date >= fromDate, in store order.
func (r *Repository) FindActiveByDocument(ctx context.Context, document, fromDate string) ([]*Appointment, error) {
	out, err := r.queryIndex(ctx, r.indexes.Document, "document", document)
	if err != nil {
		return nil, fmt.Errorf("appointments: failed to query document %s: %w", document, err)
	}
	return filterActive(out, fromDate), nil
}

// FindActiveByPhone returns non-cancelled appointments for a normalized phone
// number with date >= fromDate, in store order.
func (r *Repository) FindActiveByPhone(ctx context.Context, phone, fromDate string) ([]*Appointment, error) {
	out, err := r.queryIndex(ctx, r.indexes.Phone, "phone", phone)
	if err != nil {
		return nil, fmt.Errorf("appointments: failed to query phone %s: %w", phone, err)
	}
	return filterActive(out, fromDate), nil
}

// MarkCancelled flips an appointment to cancelled and stamps the cancellation
// time. Business checks (already cancelled, date passed) belong to the caller.
func (r *Repository) MarkCancelled(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("appointments: id required")
	}
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		UpdateExpression: aws.String("SET #status = :status, cancelledAt = :cancelled"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status":    &types.AttributeValueMemberS{Value: string(StatusCancelled)},
			":cancelled": &types.AttributeValueMemberS{Value: r.now().UTC().Format(time.RFC3339)},
		},
		ConditionExpression: aws.String("attribute_exists(id)"),
	})
	if err != nil {
		if isConditionalFailure(err) {
			return ErrNotFound
		}
		return fmt.Errorf("appointments: failed to cancel appointment %s: %w", id, err)
	}
	return nil
}

// Delete removes an appointment permanently. Administrative use only; the
// booking flow never deletes.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("appointments: id required")
	}
	if _, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
	}); err != nil {
		return fmt.Errorf("appointments: failed to delete appointment %s: %w", id, err)
	}
	return nil
}

// ClaimSlot atomically creates a claim item for (professional, date, time).
// Returns ErrSlotClaimed when a concurrent writer got there first. This is the
// create-if-absent upgrade over the read-then-write guard.
func (r *Repository) ClaimSlot(ctx context.Context, professional, date, slotTime string) error {
	_, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item: map[string]types.AttributeValue{
			"id":        &types.AttributeValueMemberS{Value: claimID(professional, date, slotTime)},
			"createdAt": &types.AttributeValueMemberS{Value: r.now().UTC().Format(time.RFC3339)},
		},
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		if isConditionalFailure(err) {
			return ErrSlotClaimed
		}
		return fmt.Errorf("appointments: failed to claim slot: %w", err)
	}
	return nil
}

// ReleaseSlotClaim removes a claim, freeing the slot again. Used after a failed
// appointment write and by cancellation.
func (r *Repository) ReleaseSlotClaim(ctx context.Context, professional, date, slotTime string) error {
	if _, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: claimID(professional, date, slotTime)},
		},
	}); err != nil {
		return fmt.Errorf("appointments: failed to release slot claim: %w", err)
	}
	return nil
}

func claimID(professional, date, slotTime string) string {
	return "claim#" + professional + "#" + date + "#" + slotTime
}

func (r *Repository) queryIndex(ctx context.Context, index, keyName, keyValue string) ([]*Appointment, error) {
	var items []*Appointment
	var startKey map[string]types.AttributeValue
	for {
		page, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(r.tableName),
			IndexName:              aws.String(index),
			KeyConditionExpression: aws.String("#k = :v"),
			ExpressionAttributeNames: map[string]string{
				"#k": keyName,
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":v": &types.AttributeValueMemberS{Value: keyValue},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, err
		}
		for _, item := range page.Items {
			var appt Appointment
			if err := attributevalue.UnmarshalMap(item, &appt); err != nil {
				return nil, fmt.Errorf("failed to decode appointment item: %w", err)
			}
			items = append(items, &appt)
		}
		if page.LastEvaluatedKey == nil {
			break
		}
		startKey = page.LastEvaluatedKey
	}
	return items, nil
}

// filterActive keeps non-cancelled appointments, optionally dropping those
// dated before fromDate. ISO dates compare lexicographically.
func filterActive(appts []*Appointment, fromDate string) []*Appointment {
	out := make([]*Appointment, 0, len(appts))
	for _, appt := range appts {
		if !appt.Active() {
			continue
		}
		if fromDate != "" && appt.Date < fromDate {
			continue
		}
		out = append(out, appt)
	}
	return out
}

func isConditionalFailure(err error) bool {
	var cond *types.ConditionalCheckFailedException
	return errors.As(err, &cond)
}
