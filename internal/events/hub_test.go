package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	h := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-h.Done()
	})
	return h, cancel
}

func receive(t *testing.T, s *Subscriber) Event {
	t.Helper()
	select {
	case ev, ok := <-s.Send:
		require.True(t, ok, "subscriber closed")
		return ev
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}
	return Event{}
}

func TestPublishRoutesByTopic(t *testing.T) {
	h, _ := startHub(t)
	ctx := context.Background()

	matches := h.Subscribe(ctx, TopicMatches)
	all := h.Subscribe(ctx)
	require.NotNil(t, matches)
	require.NotNil(t, all)

	require.True(t, h.Publish(Event{Topic: TopicCourses, Action: ActionCreated, ID: "c1"}))
	require.True(t, h.Publish(Event{Topic: TopicMatches, Action: ActionUpdated, ID: "m1"}))

	assert.Equal(t, "c1", receive(t, all).ID)
	assert.Equal(t, "m1", receive(t, all).ID)
	assert.Equal(t, Event{Topic: TopicMatches, Action: ActionUpdated, ID: "m1"}, receive(t, matches))
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	h, _ := startHub(t)
	s := h.Subscribe(context.Background(), TopicTeams)

	h.Unsubscribe(s)
	h.Unsubscribe(s)

	_, ok := <-s.Send
	assert.False(t, ok)
	assert.Eventually(t, func() bool { return h.Len() == 0 }, time.Second, 10*time.Millisecond)
}

func TestSlowSubscriberIsDropped(t *testing.T) {
	h, _ := startHub(t)
	slow := h.Subscribe(context.Background(), TopicPlayers)

	// Fill the buffer and then some; the hub must not block.
	for i := 0; i < cap(slow.Send)+5; i++ {
		h.Publish(Event{Topic: TopicPlayers, Action: ActionUpdated, ID: "p"})
	}

	assert.Eventually(t, func() bool { return h.Len() == 0 }, time.Second, 10*time.Millisecond)
	n := 0
	for range slow.Send {
		n++
	}
	assert.Equal(t, cap(slow.Send), n)
}

func TestStopClosesSubscribers(t *testing.T) {
	h, cancel := startHub(t)
	s := h.Subscribe(context.Background())

	cancel()
	<-h.Done()

	_, ok := <-s.Send
	assert.False(t, ok)
	assert.False(t, h.Publish(Event{Topic: TopicCourses}))
	assert.Nil(t, h.Subscribe(context.Background()))
	h.Unsubscribe(s)
}

func TestEventJSON(t *testing.T) {
	ev := Event{Topic: TopicCourses, Action: ActionDeleted, ID: "abc"}
	assert.JSONEq(t, `{"topic":"courses","action":"deleted","id":"abc"}`, string(ev.JSON()))
}
