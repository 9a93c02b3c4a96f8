package event_bus

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTopic EventType = "test.topic"

func TestEventBus_DeliversInSubscriptionOrder(t *testing.T) {
	// given
	bus := NewEventBus()
	var order []int
	for i := 1; i <= 5; i++ {
		bus.Subscribe(testTopic, func(e Event) error {
			order = append(order, i)
			return nil
		})
	}

	// when
	err := bus.Publish(NewEvent(context.Background(), testTopic, nil))

	// then
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, order)
}

func TestEventBus_OnlyMatchingTopic(t *testing.T) {
	bus := NewEventBus()
	called := false
	bus.Subscribe("other", func(e Event) error {
		called = true
		return nil
	})

	require.NoError(t, bus.Publish(NewEvent(context.Background(), testTopic, nil)))

	assert.False(t, called)
}

func TestEventBus_Unsubscribe(t *testing.T) {
	bus := NewEventBus()
	calls := 0
	unsubscribe := bus.Subscribe(testTopic, func(e Event) error {
		calls++
		return nil
	})

	require.NoError(t, bus.Publish(NewEvent(context.Background(), testTopic, nil)))
	unsubscribe()
	unsubscribe()
	require.NoError(t, bus.Publish(NewEvent(context.Background(), testTopic, nil)))

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, bus.SubscriberCount(testTopic))
}

func TestEventBus_CollectsErrorsAndRecoversPanics(t *testing.T) {
	// given
	bus := NewEventBus()
	reached := false
	bus.Subscribe(testTopic, func(e Event) error {
		return errors.New("first failed")
	})
	bus.Subscribe(testTopic, func(e Event) error {
		panic("boom")
	})
	bus.Subscribe(testTopic, func(e Event) error {
		reached = true
		return nil
	})

	// when
	err := bus.Publish(NewEvent(context.Background(), testTopic, nil))

	// then
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 handler(s) failed")
	assert.Contains(t, err.Error(), "boom")
	assert.True(t, reached)
}

func TestEventBus_CancelledContext(t *testing.T) {
	bus := NewEventBus()
	called := false
	bus.Subscribe(testTopic, func(e Event) error {
		called = true
		return nil
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := bus.Publish(NewEvent(ctx, testTopic, nil))

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestEventBus_HandlerMayPublish(t *testing.T) {
	// given
	bus := NewEventBus()
	nested := false
	bus.Subscribe(testTopic, func(e Event) error {
		return bus.Publish(NewEvent(e.Context(), "nested", nil))
	})
	bus.Subscribe("nested", func(e Event) error {
		nested = true
		return nil
	})

	// when
	err := bus.Publish(NewEvent(context.Background(), testTopic, nil))

	// then
	require.NoError(t, err)
	assert.True(t, nested)
}

func TestSubscribeTyped(t *testing.T) {
	// given
	bus := NewEventBus()
	var received []ExpenseRecorded
	SubscribeTyped(bus, ExpenseRecordedTopic, func(e EventT[ExpenseRecorded]) error {
		received = append(received, e.Data)
		return nil
	})

	// when
	require.NoError(t, bus.Publish(NewEvent(context.Background(), ExpenseRecordedTopic, ExpenseRecorded{Id: 1, Title: "Coffee"})))
	require.NoError(t, bus.Publish(NewEvent(context.Background(), ExpenseRecordedTopic, "not an expense")))
	require.NoError(t, bus.Publish(NewEvent(context.Background(), ExpenseRecordedTopic, nil)))

	// then
	require.Len(t, received, 1)
	assert.Equal(t, "Coffee", received[0].Title)
}

func TestEventBus_ConcurrentPublishAndSubscribe(t *testing.T) {
	bus := NewEventBus()
	var mu sync.Mutex
	count := 0
	bus.Subscribe(testTopic, func(e Event) error {
		mu.Lock()
		count++
		mu.Unlock()
		return nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.NoError(t, bus.Publish(NewEvent(context.Background(), testTopic, nil)))
		}()
		go func() {
			defer wg.Done()
			unsubscribe := bus.Subscribe("other", func(e Event) error { return nil })
			unsubscribe()
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, count)
}
