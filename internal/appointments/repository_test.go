package appointments

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/movementhq/booking-platform/pkg/logging"
)

type mockDynamo struct {
	putInput *dynamodb.PutItemInput
	putErr   error

	getOutput *dynamodb.GetItemOutput
	getErr    error

	updateInputs []*dynamodb.UpdateItemInput
	updateErr    error

	deleteInput *dynamodb.DeleteItemInput
	deleteErr   error

	queryOutputs []*dynamodb.QueryOutput
	queryInputs  []*dynamodb.QueryInput
	queryErr     error
}

func (m *mockDynamo) PutItem(ctx context.Context, input *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	m.putInput = input
	return &dynamodb.PutItemOutput{}, m.putErr
}

func (m *mockDynamo) GetItem(ctx context.Context, input *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.getOutput == nil {
		return &dynamodb.GetItemOutput{}, nil
	}
	return m.getOutput, nil
}

func (m *mockDynamo) UpdateItem(ctx context.Context, input *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	m.updateInputs = append(m.updateInputs, input)
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	return &dynamodb.UpdateItemOutput{}, nil
}

func (m *mockDynamo) DeleteItem(ctx context.Context, input *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	m.deleteInput = input
	return &dynamodb.DeleteItemOutput{}, m.deleteErr
}

func (m *mockDynamo) Query(ctx context.Context, input *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	m.queryInputs = append(m.queryInputs, input)
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	if len(m.queryOutputs) == 0 {
		return &dynamodb.QueryOutput{}, nil
	}
	out := m.queryOutputs[0]
	m.queryOutputs = m.queryOutputs[1:]
	return out, nil
}

func testIndexes() Indexes {
	return Indexes{Slot: "slot-index", Document: "document-index", Phone: "phone-index"}
}

func newTestRepository(mock *mockDynamo) *Repository {
	repo := NewRepository(mock, "appointments", testIndexes(), logging.Default())
	repo.now = func() time.Time {
		return time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	}
	return repo
}

func marshalAppointment(t *testing.T, appt *Appointment) map[string]types.AttributeValue {
	t.Helper()
	item, err := attributevalue.MarshalMap(appt)
	if err != nil {
		t.Fatalf("failed to marshal appointment: %v", err)
	}
	return item
}

func TestRepository_CreateSetsDefaults(t *testing.T) {
	mock := &mockDynamo{}
	repo := newTestRepository(mock)

	appt := &Appointment{
		ProfessionalSlug: "maria-lopez",
		Date:             "2025-06-11",
		Time:             "09:30",
		CustomerName:     "Ana Gómez",
		Phone:            "541155552222",
		Document:         "30123456",
	}

	id, err := repo.Create(context.Background(), appt)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if id == "" {
		t.Fatal("expected generated id")
	}
	if mock.putInput == nil {
		t.Fatal("expected PutItem to be called")
	}
	if expr := mock.putInput.ConditionExpression; expr == nil || *expr != "attribute_not_exists(id)" {
		t.Fatalf("expected id guard condition, got %v", expr)
	}

	var stored Appointment
	if err := attributevalue.UnmarshalMap(mock.putInput.Item, &stored); err != nil {
		t.Fatalf("failed to unmarshal stored item: %v", err)
	}
	if stored.Status != StatusConfirmed {
		t.Fatalf("expected confirmed status, got %s", stored.Status)
	}
	if stored.SlotKey != "maria-lopez#2025-06-11" {
		t.Fatalf("unexpected slot key %q", stored.SlotKey)
	}
	if stored.CreatedAt != "2025-06-10T12:00:00Z" {
		t.Fatalf("unexpected createdAt %q", stored.CreatedAt)
	}
}

func TestRepository_CreateNilAppointment(t *testing.T) {
	repo := newTestRepository(&mockDynamo{})
	if _, err := repo.Create(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil appointment")
	}
}

func TestRepository_GetNotFound(t *testing.T) {
	repo := newTestRepository(&mockDynamo{})
	if _, err := repo.Get(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRepository_ReservedTimesFiltersCancelled(t *testing.T) {
	active := marshalAppointment(t, &Appointment{
		ID: "a1", ProfessionalSlug: "maria-lopez", Date: "2025-06-11", Time: "09:30", Status: StatusConfirmed,
	})
	cancelled := marshalAppointment(t, &Appointment{
		ID: "a2", ProfessionalSlug: "maria-lopez", Date: "2025-06-11", Time: "10:00", Status: StatusCancelled,
	})
	mock := &mockDynamo{queryOutputs: []*dynamodb.QueryOutput{
		{Items: []map[string]types.AttributeValue{active, cancelled}},
	}}
	repo := newTestRepository(mock)

	times, err := repo.ReservedTimes(context.Background(), "maria-lopez", "2025-06-11")
	if err != nil {
		t.Fatalf("ReservedTimes returned error: %v", err)
	}
	if len(times) != 1 || times[0] != "09:30" {
		t.Fatalf("expected cancelled slot to be free, got %v", times)
	}

	if len(mock.queryInputs) != 1 {
		t.Fatalf("expected 1 query, got %d", len(mock.queryInputs))
	}
	query := mock.queryInputs[0]
	if *query.IndexName != "slot-index" {
		t.Fatalf("expected slot index, got %s", *query.IndexName)
	}
	key := query.ExpressionAttributeValues[":v"].(*types.AttributeValueMemberS)
	if key.Value != "maria-lopez#2025-06-11" {
		t.Fatalf("unexpected slot key %q", key.Value)
	}
}

func TestRepository_IsSlotFree(t *testing.T) {
	taken := marshalAppointment(t, &Appointment{
		ID: "a1", Date: "2025-06-11", Time: "09:30", Status: StatusConfirmed,
	})
	mock := &mockDynamo{queryOutputs: []*dynamodb.QueryOutput{
		{Items: []map[string]types.AttributeValue{taken}},
		{Items: []map[string]types.AttributeValue{taken}},
	}}
	repo := newTestRepository(mock)

	free, err := repo.IsSlotFree(context.Background(), "maria-lopez", "2025-06-11", "09:30")
	if err != nil {
		t.Fatalf("IsSlotFree returned error: %v", err)
	}
	if free {
		t.Fatal("expected occupied slot")
	}

	free, err = repo.IsSlotFree(context.Background(), "maria-lopez", "2025-06-11", "10:00")
	if err != nil {
		t.Fatalf("IsSlotFree returned error: %v", err)
	}
	if !free {
		t.Fatal("expected free slot")
	}
}

func TestRepository_FindActiveByDocumentDropsPastDates(t *testing.T) {
	past := marshalAppointment(t, &Appointment{
		ID: "a1", Date: "2025-06-01", Time: "09:00", Document: "30123456", Status: StatusConfirmed,
	})
	upcoming := marshalAppointment(t, &Appointment{
		ID: "a2", Date: "2025-06-15", Time: "09:00", Document: "30123456", Status: StatusConfirmed,
	})
	mock := &mockDynamo{queryOutputs: []*dynamodb.QueryOutput{
		{Items: []map[string]types.AttributeValue{past, upcoming}},
	}}
	repo := newTestRepository(mock)

	appts, err := repo.FindActiveByDocument(context.Background(), "30123456", "2025-06-10")
	if err != nil {
		t.Fatalf("FindActiveByDocument returned error: %v", err)
	}
	if len(appts) != 1 || appts[0].ID != "a2" {
		t.Fatalf("expected only the upcoming appointment, got %#v", appts)
	}
	if *mock.queryInputs[0].IndexName != "document-index" {
		t.Fatalf("expected document index, got %s", *mock.queryInputs[0].IndexName)
	}
}

func TestRepository_FindActiveByPhoneUsesPhoneIndex(t *testing.T) {
	mock := &mockDynamo{}
	repo := newTestRepository(mock)

	if _, err := repo.FindActiveByPhone(context.Background(), "541155552222", "2025-06-10"); err != nil {
		t.Fatalf("FindActiveByPhone returned error: %v", err)
	}
	if *mock.queryInputs[0].IndexName != "phone-index" {
		t.Fatalf("expected phone index, got %s", *mock.queryInputs[0].IndexName)
	}
}

func TestRepository_QueryPaginates(t *testing.T) {
	first := marshalAppointment(t, &Appointment{ID: "a1", Date: "2025-06-11", Status: StatusConfirmed})
	second := marshalAppointment(t, &Appointment{ID: "a2", Date: "2025-06-11", Status: StatusConfirmed})
	mock := &mockDynamo{queryOutputs: []*dynamodb.QueryOutput{
		{
			Items:            []map[string]types.AttributeValue{first},
			LastEvaluatedKey: map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: "a1"}},
		},
		{Items: []map[string]types.AttributeValue{second}},
	}}
	repo := newTestRepository(mock)

	appts, err := repo.ActiveForSlot(context.Background(), "maria-lopez", "2025-06-11")
	if err != nil {
		t.Fatalf("ActiveForSlot returned error: %v", err)
	}
	if len(appts) != 2 {
		t.Fatalf("expected 2 appointments across pages, got %d", len(appts))
	}
	if len(mock.queryInputs) != 2 {
		t.Fatalf("expected 2 query pages, got %d", len(mock.queryInputs))
	}
}

func TestRepository_MarkCancelled(t *testing.T) {
	mock := &mockDynamo{}
	repo := newTestRepository(mock)

	if err := repo.MarkCancelled(context.Background(), "a1"); err != nil {
		t.Fatalf("MarkCancelled returned error: %v", err)
	}
	if len(mock.updateInputs) != 1 {
		t.Fatalf("expected 1 update, got %d", len(mock.updateInputs))
	}

	update := mock.updateInputs[0]
	if *update.UpdateExpression != "SET #status = :status, cancelledAt = :cancelled" {
		t.Fatalf("unexpected update expression %q", *update.UpdateExpression)
	}
	if update.ExpressionAttributeNames["#status"] != "status" {
		t.Fatal("expected reserved attribute name mapping for status")
	}
	status := update.ExpressionAttributeValues[":status"].(*types.AttributeValueMemberS)
	if status.Value != string(StatusCancelled) {
		t.Fatalf("unexpected status value %q", status.Value)
	}
	stamped := update.ExpressionAttributeValues[":cancelled"].(*types.AttributeValueMemberS)
	if stamped.Value != "2025-06-10T12:00:00Z" {
		t.Fatalf("unexpected cancelledAt %q", stamped.Value)
	}
	if expr := update.ConditionExpression; expr == nil || *expr != "attribute_exists(id)" {
		t.Fatalf("expected existence condition, got %v", expr)
	}
}

func TestRepository_MarkCancelledMissingAppointment(t *testing.T) {
	mock := &mockDynamo{updateErr: &types.ConditionalCheckFailedException{}}
	repo := newTestRepository(mock)

	if err := repo.MarkCancelled(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRepository_ClaimSlot(t *testing.T) {
	mock := &mockDynamo{}
	repo := newTestRepository(mock)

	if err := repo.ClaimSlot(context.Background(), "maria-lopez", "2025-06-11", "09:30"); err != nil {
		t.Fatalf("ClaimSlot returned error: %v", err)
	}
	if expr := mock.putInput.ConditionExpression; expr == nil || *expr != "attribute_not_exists(id)" {
		t.Fatalf("expected create-if-absent condition, got %v", expr)
	}
	id := mock.putInput.Item["id"].(*types.AttributeValueMemberS)
	if id.Value != "claim#maria-lopez#2025-06-11#09:30" {
		t.Fatalf("unexpected claim id %q", id.Value)
	}
}

func TestRepository_ClaimSlotAlreadyTaken(t *testing.T) {
	mock := &mockDynamo{putErr: &types.ConditionalCheckFailedException{}}
	repo := newTestRepository(mock)

	err := repo.ClaimSlot(context.Background(), "maria-lopez", "2025-06-11", "09:30")
	if !errors.Is(err, ErrSlotClaimed) {
		t.Fatalf("expected ErrSlotClaimed, got %v", err)
	}
}

func TestRepository_ReleaseSlotClaim(t *testing.T) {
	mock := &mockDynamo{}
	repo := newTestRepository(mock)

	if err := repo.ReleaseSlotClaim(context.Background(), "maria-lopez", "2025-06-11", "09:30"); err != nil {
		t.Fatalf("ReleaseSlotClaim returned error: %v", err)
	}
	id := mock.deleteInput.Key["id"].(*types.AttributeValueMemberS)
	if id.Value != "claim#maria-lopez#2025-06-11#09:30" {
		t.Fatalf("unexpected claim id %q", id.Value)
	}
}

func TestFilterActive(t *testing.T) {
	appts := []*Appointment{
		{ID: "a1", Date: "2025-06-01", Status: StatusConfirmed},
		{ID: "a2", Date: "2025-06-15", Status: StatusCancelled},
		{ID: "a3", Date: "2025-06-15", Status: StatusConfirmed},
	}

	out := filterActive(appts, "")
	if len(out) != 2 {
		t.Fatalf("expected 2 active appointments, got %d", len(out))
	}

	out = filterActive(appts, "2025-06-10")
	if len(out) != 1 || out[0].ID != "a3" {
		t.Fatalf("expected only the upcoming active appointment, got %#v", out)
	}
}
