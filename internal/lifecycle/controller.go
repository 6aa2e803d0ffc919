// Package lifecycle ties status broadcasting to whether the client is in
// the foreground.
package lifecycle

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

type State int

const (
	Background State = iota
	Foreground
)

func (s State) String() string {
	if s == Foreground {
		return "foreground"
	}
	return "background"
}

// ParseState accepts the platform's app-state names. "inactive" counts as
// background.
func ParseState(name string) (State, bool) {
	switch name {
	case "active", "foreground", "fg":
		return Foreground, true
	case "background", "inactive", "bg":
		return Background, true
	}
	return Background, false
}

type Broadcaster interface {
	Start(userID uuid.UUID)
	Stop()
}

type Controller struct {
	broadcaster Broadcaster
	logger      *slog.Logger

	mu      sync.Mutex
	state   State
	userID  uuid.UUID
	mounted bool
}

func NewController(b Broadcaster, initial State, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{broadcaster: b, state: initial, logger: logger}
}

// Mount binds the controller to a signed-in user and starts broadcasting if
// the client is already in the foreground.
func (c *Controller) Mount(userID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.userID = userID
	c.mounted = true
	if c.state == Foreground {
		c.broadcaster.Start(userID)
	}
}

// Transition applies an app-state change. Only background to foreground and
// foreground to background do anything.
func (c *Controller) Transition(next State) {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev := c.state
	c.state = next
	if prev == next || !c.mounted {
		return
	}

	c.logger.Debug("app state changed", "from", prev.String(), "to", next.String())
	if next == Foreground {
		c.broadcaster.Start(c.userID)
	} else {
		c.broadcaster.Stop()
	}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Run applies states from events until the channel closes or ctx is done.
func (c *Controller) Run(ctx context.Context, events <-chan State) {
	for {
		select {
		case <-ctx.Done():
			return
		case s, ok := <-events:
			if !ok {
				return
			}
			c.Transition(s)
		}
	}
}

// Unmount stops broadcasting and detaches from the user.
func (c *Controller) Unmount() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.mounted {
		return
	}
	c.mounted = false
	c.broadcaster.Stop()
}
