// Package session holds the signed-in user's identity on the client side and lets other
// components react when it changes.
package session

import (
	"sync"
	"time"
)

// Session describes the signed-in user. The zero value means nobody is signed in.
type Session struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session has an expiry that has passed.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Listener is called with the new session and whether anyone is signed in.
type Listener func(s Session, signedIn bool)

// Watcher stores the current session and its bearer token and notifies listeners on
// every change. It is safe for concurrent use.
type Watcher struct {
	mu        sync.RWMutex
	current   Session
	token     string
	signedIn  bool
	nextID    int
	listeners map[int]Listener
}

// NewWatcher returns a Watcher with nobody signed in.
func NewWatcher() *Watcher {
	return &Watcher{listeners: make(map[int]Listener)}
}

// Current returns the session and whether it is live. An expired session reports false.
func (w *Watcher) Current() (Session, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if !w.signedIn || w.current.Expired(time.Now()) {
		return Session{}, false
	}
	return w.current, true
}

// Token returns the bearer token of the live session, or "".
func (w *Watcher) Token() string {
	if _, ok := w.Current(); !ok {
		return ""
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.token
}

// SignIn replaces the current session and notifies listeners.
func (w *Watcher) SignIn(s Session, token string) {
	w.mu.Lock()
	w.current, w.token, w.signedIn = s, token, true
	w.mu.Unlock()
	w.notify(s, true)
}

// SignOut clears the session. Listeners are only notified if someone was signed in.
func (w *Watcher) SignOut() {
	w.mu.Lock()
	was := w.signedIn
	w.current, w.token, w.signedIn = Session{}, "", false
	w.mu.Unlock()
	if was {
		w.notify(Session{}, false)
	}
}

// Subscribe registers fn and returns a function that removes it again. The returned
// function may be called any number of times.
func (w *Watcher) Subscribe(fn Listener) (unsubscribe func()) {
	w.mu.Lock()
	id := w.nextID
	w.nextID++
	w.listeners[id] = fn
	w.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			w.mu.Lock()
			delete(w.listeners, id)
			w.mu.Unlock()
		})
	}
}

// Listeners returns how many listeners are registered.
func (w *Watcher) Listeners() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.listeners)
}

func (w *Watcher) notify(s Session, signedIn bool) {
	// Copy under the lock so listeners can subscribe or unsubscribe while being called.
	w.mu.RLock()
	fns := make([]Listener, 0, len(w.listeners))
	for _, fn := range w.listeners {
		fns = append(fns, fn)
	}
	w.mu.RUnlock()

	for _, fn := range fns {
		fn(s, signedIn)
	}
}
