package client

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/trentd187/golf-match-tracker/internal/session"
)

// Store bundles the repositories behind one Client and keeps their caches tied to the
// session: signing out empties every cache so the next user never sees stale rows.
type Store struct {
	Courses *Courses
	Teams   *Teams
	Players *Players
	Matches *Matches

	unsubscribe func()
}

// NewStore builds the repositories. When watcher is non-nil the Store listens for
// sign-out until Close is called.
func NewStore(c *Client, watcher *session.Watcher) *Store {
	s := &Store{
		Courses: NewCourses(c),
		Teams:   NewTeams(c),
		Players: NewPlayers(c),
		Matches: NewMatches(c),
	}
	s.Matches.onRatings = s.Players.Invalidate
	if watcher != nil {
		s.unsubscribe = watcher.Subscribe(func(_ session.Session, signedIn bool) {
			if !signedIn {
				s.InvalidateAll()
			}
		})
	}
	return s
}

// RefreshAll refetches every collection concurrently and returns the first error.
func (s *Store) RefreshAll(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := s.Courses.Refresh(ctx)
		return err
	})
	g.Go(func() error {
		_, err := s.Teams.Refresh(ctx)
		return err
	})
	g.Go(func() error {
		_, err := s.Players.Refresh(ctx)
		return err
	})
	g.Go(func() error {
		_, err := s.Matches.Refresh(ctx)
		return err
	})
	return g.Wait()
}

func (s *Store) InvalidateAll() {
	s.Courses.Invalidate()
	s.Teams.Invalidate()
	s.Players.Invalidate()
	s.Matches.Invalidate()
}

// Close stops listening to the session watcher. It is safe to call more than once.
func (s *Store) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
}
