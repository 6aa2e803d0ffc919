// Package client is the signed-in Peep client: one Session owns the friend
// list, the alert presenter and every timer and feed opened on the user's
// behalf.
package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wtfmahe/PeeP/internal/alert"
	"github.com/wtfmahe/PeeP/internal/broadcast"
	"github.com/wtfmahe/PeeP/internal/friends"
	"github.com/wtfmahe/PeeP/internal/lifecycle"
	"github.com/wtfmahe/PeeP/internal/models"
	"github.com/wtfmahe/PeeP/internal/peep"
	"github.com/wtfmahe/PeeP/internal/realtime"
	"github.com/wtfmahe/PeeP/internal/repositories"
	"github.com/wtfmahe/PeeP/internal/sensor"
)

var (
	ErrNotFriend = fmt.Errorf("%w: not a friend", repositories.ErrNotFound)
	ErrClosed    = errors.New("session is closed")
)

// Backend is everything a session reads from or writes to the shared
// backend. *backend.Backend satisfies it.
type Backend interface {
	Profile(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	AcceptedFriends(ctx context.Context, userID uuid.UUID) ([]*models.Profile, error)
	StatusesFor(ctx context.Context, userIDs []uuid.UUID) ([]*models.UserStatus, error)
	UpsertStatus(ctx context.Context, status *models.UserStatus) error
	LatestStatus(ctx context.Context, userID uuid.UUID) (*models.UserStatus, error)
	AppendPeep(ctx context.Context, peep *models.PeepEvent) error
	Subscribe(ctx context.Context, filter realtime.Filter) (*realtime.Subscription, error)
}

type Options struct {
	Backend Backend
	Sensor  sensor.Sensor
	// Alerts defaults to a presenter logging to Logger.
	Alerts            *alert.Presenter
	InitialState      lifecycle.State
	BroadcastInterval time.Duration
	BroadcastOptions  []broadcast.Option
	Logger            *slog.Logger
}

type Session struct {
	userID uuid.UUID
	logger *slog.Logger

	friends     *friends.List
	alerts      *alert.Presenter
	sensor      sensor.Sensor
	backend     Backend
	loader      *friends.Loader
	statuses    *friends.Subscription
	notifier    *peep.Notifier
	peeper      *peep.Peeper
	broadcaster *broadcast.Broadcaster
	lifecycle   *lifecycle.Controller

	mu      sync.Mutex
	profile *models.Profile
	ctx     context.Context
	cancel  context.CancelFunc
	closed  bool
}

func NewSession(userID uuid.UUID, opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	alerts := opts.Alerts
	if alerts == nil {
		alerts = alert.NewPresenter(alert.DefaultDuration, alert.LogSink(logger))
	}

	list := friends.NewList()
	b := broadcast.New(opts.Sensor, opts.Backend, logger, opts.BroadcastInterval, opts.BroadcastOptions...)
	return &Session{
		userID:      userID,
		logger:      logger.With("user_id", userID),
		friends:     list,
		alerts:      alerts,
		sensor:      opts.Sensor,
		backend:     opts.Backend,
		loader:      friends.NewLoader(opts.Backend, list),
		statuses:    friends.NewSubscription(opts.Backend, list, logger),
		notifier:    peep.NewNotifier(opts.Backend, func(m string) { alerts.Show(m) }, logger),
		peeper:      peep.NewPeeper(opts.Sensor, opts.Backend),
		broadcaster: b,
		lifecycle:   lifecycle.NewController(b, opts.InitialState, logger),
	}
}

func (s *Session) UserID() uuid.UUID        { return s.userID }
func (s *Session) Friends() *friends.List   { return s.friends }
func (s *Session) Alerts() *alert.Presenter { return s.alerts }

func (s *Session) Profile() *models.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

// Open loads the profile and friends, then starts everything that runs for
// the life of the session. Feeds stay open until Close or until ctx ends.
// Opening an open session does nothing.
func (s *Session) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if s.cancel != nil {
		return nil
	}

	profile, err := s.backend.Profile(ctx, s.userID)
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}
	if err := s.loader.Refetch(ctx, s.userID); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := s.statuses.Subscribe(runCtx, s.friends.IDs()); err != nil {
		cancel()
		return fmt.Errorf("failed to subscribe to statuses: %w", err)
	}
	if err := s.notifier.Start(runCtx, s.userID); err != nil {
		s.statuses.Unsubscribe()
		cancel()
		return fmt.Errorf("failed to subscribe to peeps: %w", err)
	}

	s.profile = profile
	s.ctx, s.cancel = runCtx, cancel
	s.lifecycle.Mount(s.userID)
	s.logger.Info("session opened", "friends", s.friends.Len(), "state", s.lifecycle.State().String())
	return nil
}

// Close stops broadcasting and closes both feeds. It is safe to call more
// than once and on a session that never opened.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLocked()
}

func (s *Session) closeLocked() {
	if s.cancel == nil {
		return
	}
	s.lifecycle.Unmount()
	s.statuses.Unsubscribe()
	s.notifier.Stop()
	s.alerts.Dismiss()
	s.cancel()
	s.ctx, s.cancel = nil, nil
	s.logger.Info("session closed")
}

// SignOut closes the session and forgets everything it loaded. A signed-out
// session cannot be reopened.
func (s *Session) SignOut(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closeLocked()
	s.friends.Replace(nil)
	s.profile = nil
	s.closed = true
	return nil
}

// Peep looks at a friend's status. Success and failure both end in an alert;
// the error is returned as well so callers can offer the grant flow on
// sensor.ErrPermissionDenied.
func (s *Session) Peep(ctx context.Context, friendID uuid.UUID) (*peep.Result, error) {
	friend, ok := s.friends.Get(friendID)
	if !ok {
		s.alerts.Show(alert.Message(ErrNotFriend))
		return nil, ErrNotFriend
	}

	res, err := s.peeper.Peep(ctx, s.userID, friend.Profile)
	if err != nil {
		s.logger.Warn("peep failed", "friend_id", friendID, "error", err)
		s.alerts.Show(alert.Message(err))
		return nil, err
	}
	s.alerts.Show(res.Message())
	return res, nil
}

// FriendByUsername finds a loaded friend by username, ignoring case.
func (s *Session) FriendByUsername(username string) (models.FriendWithStatus, bool) {
	for _, f := range s.friends.Snapshot() {
		if strings.EqualFold(f.Username, username) {
			return f, true
		}
	}
	return models.FriendWithStatus{}, false
}

// Refresh refetches the friend list and resubscribes to the new friend set.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel == nil {
		return ErrClosed
	}
	if err := s.loader.Refetch(ctx, s.userID); err != nil {
		s.alerts.Show(alert.Message(err))
		return err
	}
	if err := s.statuses.Subscribe(s.ctx, s.friends.IDs()); err != nil {
		return fmt.Errorf("failed to subscribe to statuses: %w", err)
	}
	return nil
}

// GrantPermission opens the usage-access grant flow.
func (s *Session) GrantPermission(ctx context.Context) error {
	if err := s.sensor.RequestPermission(ctx); err != nil {
		s.alerts.Show(alert.Message(err))
		return err
	}
	return nil
}

func (s *Session) SetAppState(state lifecycle.State) {
	s.lifecycle.Transition(state)
}

// FollowAppState applies app-state changes from events until the channel
// closes or ctx is done.
func (s *Session) FollowAppState(ctx context.Context, events <-chan lifecycle.State) {
	s.lifecycle.Run(ctx, events)
}

func (s *Session) AppState() lifecycle.State {
	return s.lifecycle.State()
}

// Broadcasting reports whether the status loop is running.
func (s *Session) Broadcasting() bool {
	return s.broadcaster.Running()
}
