package eventbus

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEvent struct {
	Name string
}

func newTestBus() EventBus {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return NewEventPublisher(log)
}

func TestPublish_MatchingSubscriber(t *testing.T) {
	bus := newTestBus()

	var got *testEvent
	bus.Subscribe(func(e *testEvent) {
		got = e
	})

	bus.Publish(&testEvent{Name: "batch-done"})

	require.NotNil(t, got)
	assert.Equal(t, "batch-done", got.Name)
}

func TestPublish_NoMatchDoesNotInvoke(t *testing.T) {
	bus := newTestBus()

	called := false
	bus.Subscribe(func(e *testEvent) {
		called = true
	})

	bus.Publish("just a string")

	assert.False(t, called)
}

func TestPublish_HandlerPanicIsRecovered(t *testing.T) {
	bus := newTestBus()

	bus.Subscribe(func(e *testEvent) {
		panic("boom")
	})

	assert.NotPanics(t, func() {
		bus.Publish(&testEvent{Name: "x"})
	})
}

func TestUnsubscribeAndClear(t *testing.T) {
	bus := newTestBus()

	handler := func(e *testEvent) {}
	bus.Subscribe(handler)
	require.Equal(t, 1, bus.SubscribersCount())

	bus.Unsubscribe(handler)
	assert.Equal(t, 0, bus.SubscribersCount())

	bus.Subscribe(handler)
	bus.Subscribe(func(s string) {})
	bus.Clear()
	assert.Equal(t, 0, bus.SubscribersCount())
}

func TestMatchSignature(t *testing.T) {
	assert.True(t, MatchSignature(func(e *testEvent) {}, []interface{}{&testEvent{}}))
	assert.False(t, MatchSignature(func(e *testEvent) {}, []interface{}{"nope"}))
	assert.False(t, MatchSignature(func(a, b *testEvent) {}, []interface{}{&testEvent{}}))
	assert.True(t, MatchSignature(func(e *testEvent) {}, []interface{}{nil}))
	assert.False(t, MatchSignature("not a func", []interface{}{&testEvent{}}))
}
