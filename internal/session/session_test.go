package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignInAndOut(t *testing.T) {
	w := NewWatcher()
	_, ok := w.Current()
	assert.False(t, ok)

	w.SignIn(Session{UserID: "u1", Email: "a@example.com"}, "tok")
	s, ok := w.Current()
	require.True(t, ok)
	assert.Equal(t, "u1", s.UserID)
	assert.Equal(t, "tok", w.Token())

	w.SignOut()
	_, ok = w.Current()
	assert.False(t, ok)
	assert.Empty(t, w.Token())
}

func TestExpiredSessionIsNotCurrent(t *testing.T) {
	w := NewWatcher()
	w.SignIn(Session{UserID: "u1", ExpiresAt: time.Now().Add(-time.Minute)}, "tok")

	_, ok := w.Current()
	assert.False(t, ok)
	assert.Empty(t, w.Token())
}

func TestSubscribeNotifiesUntilUnsubscribed(t *testing.T) {
	w := NewWatcher()
	var seen []bool
	unsubscribe := w.Subscribe(func(_ Session, signedIn bool) { seen = append(seen, signedIn) })

	w.SignIn(Session{UserID: "u1"}, "tok")
	w.SignOut()
	// A second sign-out changes nothing and is not reported.
	w.SignOut()
	assert.Equal(t, []bool{true, false}, seen)

	unsubscribe()
	unsubscribe()
	assert.Equal(t, 0, w.Listeners())

	w.SignIn(Session{UserID: "u2"}, "tok")
	assert.Len(t, seen, 2)
}

func TestListenerMayUnsubscribeItself(t *testing.T) {
	w := NewWatcher()
	calls := 0
	var unsubscribe func()
	unsubscribe = w.Subscribe(func(Session, bool) {
		calls++
		unsubscribe()
	})

	w.SignIn(Session{UserID: "u1"}, "tok")
	w.SignIn(Session{UserID: "u1"}, "tok")

	assert.Equal(t, 1, calls)
}
