package expense

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spendlog/spendlog/internal/event_bus"
	"github.com/spendlog/spendlog/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var serviceNow = time.Date(2024, 3, 10, 18, 30, 0, 0, time.UTC)

func setupServiceTest(t *testing.T, policy DuplicatePolicy) (*ServiceImpl, *MemoryRepository, *event_bus.EventBus, *utils.MockClock) {
	repo := NewMemoryRepository()
	bus := event_bus.NewEventBus()
	clock := &utils.MockClock{FixedNow: serviceNow}
	service := NewService(NewStore(repo, bus), clock, policy, DefaultDuplicateWindow)
	return service, repo, bus, clock
}

func coffee() Candidate {
	return Candidate{Title: "Coffee", Amount: decimal.NewFromInt(50), Category: CategoryFood}
}

func TestService_Submit_StoresValidCandidate(t *testing.T) {
	// given
	service, repo, _, _ := setupServiceTest(t, DuplicatePolicyIgnore)

	// when
	submission, err := service.Submit(context.Background(), coffee())

	// then
	require.NoError(t, err)
	assert.False(t, submission.LikelyDuplicate)
	assert.Equal(t, int64(1), submission.Record.Id)
	assert.Equal(t, serviceNow, submission.Record.Timestamp.UTC())
	assert.Equal(t, 1, repo.Len())
}

func TestService_Submit_UsesCandidateTimestamp(t *testing.T) {
	service, _, _, _ := setupServiceTest(t, DuplicatePolicyIgnore)
	candidate := coffee()
	candidate.Timestamp = serviceNow.Add(-48 * time.Hour)

	submission, err := service.Submit(context.Background(), candidate)

	require.NoError(t, err)
	assert.Equal(t, candidate.Timestamp, submission.Record.Timestamp.UTC())
}

func TestService_Submit_RejectsInvalidWithoutWriting(t *testing.T) {
	tests := []struct {
		name      string
		candidate Candidate
	}{
		{"empty title", Candidate{Title: "", Amount: decimal.NewFromInt(10)}},
		{"zero amount", Candidate{Title: "X", Amount: decimal.Zero}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// given
			service, repo, bus, _ := setupServiceTest(t, DuplicatePolicyIgnore)
			published := 0
			bus.Subscribe(event_bus.ExpenseRecordedTopic, func(e event_bus.Event) error {
				published++
				return nil
			})

			// when
			_, err := service.Submit(context.Background(), tt.candidate)

			// then
			var validationErr *ValidationError
			assert.True(t, errors.As(err, &validationErr))
			assert.Equal(t, 0, repo.Len())
			assert.Equal(t, 0, published)
		})
	}
}

func TestService_Submit_IgnorePolicyInsertsDuplicate(t *testing.T) {
	// given
	service, repo, _, clock := setupServiceTest(t, DuplicatePolicyIgnore)
	_, err := service.Submit(context.Background(), coffee())
	require.NoError(t, err)
	clock.Advance(time.Hour)

	// when
	submission, err := service.Submit(context.Background(), coffee())

	// then
	require.NoError(t, err)
	assert.True(t, submission.LikelyDuplicate)
	assert.Equal(t, 2, repo.Len())
}

func TestService_Submit_DuplicateWindowBoundary(t *testing.T) {
	// given
	service, _, _, clock := setupServiceTest(t, DuplicatePolicyIgnore)
	_, err := service.Submit(context.Background(), coffee())
	require.NoError(t, err)

	// when
	clock.Advance(25 * time.Hour)
	submission, err := service.Submit(context.Background(), coffee())

	// then
	require.NoError(t, err)
	assert.False(t, submission.LikelyDuplicate)
}

func TestService_Submit_ConfirmPolicy(t *testing.T) {
	// given
	service, repo, _, clock := setupServiceTest(t, DuplicatePolicyConfirm)
	_, err := service.Submit(context.Background(), coffee())
	require.NoError(t, err)
	clock.Advance(time.Hour)

	// when
	_, err = service.Submit(context.Background(), coffee())

	// then
	var warning *DuplicateWarning
	require.True(t, errors.As(err, &warning))
	assert.Equal(t, 1, warning.Similar)
	assert.Equal(t, DefaultDuplicateWindow, warning.Window)
	assert.Equal(t, 1, repo.Len())

	// when confirmed
	confirmed := coffee()
	confirmed.ConfirmDuplicate = true
	submission, err := service.Submit(context.Background(), confirmed)

	// then
	require.NoError(t, err)
	assert.True(t, submission.LikelyDuplicate)
	assert.Equal(t, 2, repo.Len())
}

func TestService_Submit_BackdatedCandidateIgnoresLaterRecords(t *testing.T) {
	for _, policy := range []DuplicatePolicy{DuplicatePolicyIgnore, DuplicatePolicyConfirm} {
		t.Run(string(policy), func(t *testing.T) {
			// given
			service, repo, _, _ := setupServiceTest(t, policy)
			_, err := service.Submit(context.Background(), coffee())
			require.NoError(t, err)
			backdated := coffee()
			backdated.Timestamp = serviceNow.Add(-2 * time.Hour)

			// when
			submission, err := service.Submit(context.Background(), backdated)

			// then
			require.NoError(t, err)
			assert.False(t, submission.LikelyDuplicate)
			assert.Equal(t, 2, repo.Len())
		})
	}
}

func TestService_Submit_BackdatedCandidateMatchesEarlierRecord(t *testing.T) {
	// given
	service, repo, _, _ := setupServiceTest(t, DuplicatePolicyConfirm)
	earlier := coffee()
	earlier.Timestamp = serviceNow.Add(-3 * time.Hour)
	_, err := service.Submit(context.Background(), earlier)
	require.NoError(t, err)
	backdated := coffee()
	backdated.Timestamp = serviceNow.Add(-2 * time.Hour)

	// when
	_, err = service.Submit(context.Background(), backdated)

	// then
	var warning *DuplicateWarning
	require.True(t, errors.As(err, &warning))
	assert.Equal(t, 1, warning.Similar)
	assert.Equal(t, 1, repo.Len())
}

func TestService_Submit_StoreErrorIsNotRetried(t *testing.T) {
	// given
	service, repo, _, _ := setupServiceTest(t, DuplicatePolicyIgnore)
	repo.FailWith = errors.New("connection reset")

	// when
	_, err := service.Submit(context.Background(), coffee())

	// then
	var storeErr *StoreError
	require.True(t, errors.As(err, &storeErr))
	assert.Equal(t, "count similar", storeErr.Op)
}

func TestService_Submit_PublishesRecordedEvent(t *testing.T) {
	// given
	service, _, bus, _ := setupServiceTest(t, DuplicatePolicyIgnore)
	var received []event_bus.ExpenseRecorded
	event_bus.SubscribeTyped(bus, event_bus.ExpenseRecordedTopic, func(e event_bus.EventT[event_bus.ExpenseRecorded]) error {
		received = append(received, e.Data)
		return nil
	})

	// when
	submission, err := service.Submit(context.Background(), coffee())

	// then
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Equal(t, submission.Record, FromRecordedEvent(received[0]))
}

func TestService_Submit_SubscriberFailureDoesNotFailInsert(t *testing.T) {
	service, repo, bus, _ := setupServiceTest(t, DuplicatePolicyIgnore)
	bus.Subscribe(event_bus.ExpenseRecordedTopic, func(e event_bus.Event) error {
		return errors.New("subscriber broke")
	})

	_, err := service.Submit(context.Background(), coffee())

	assert.NoError(t, err)
	assert.Equal(t, 1, repo.Len())
}

func TestParseDuplicatePolicy(t *testing.T) {
	policy, err := ParseDuplicatePolicy("")
	require.NoError(t, err)
	assert.Equal(t, DuplicatePolicyIgnore, policy)

	policy, err = ParseDuplicatePolicy(" Confirm ")
	require.NoError(t, err)
	assert.Equal(t, DuplicatePolicyConfirm, policy)

	_, err = ParseDuplicatePolicy("reject")
	assert.Error(t, err)
}
