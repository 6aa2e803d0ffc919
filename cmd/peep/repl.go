package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/wtfmahe/PeeP/internal/alert"
	"github.com/wtfmahe/PeeP/internal/apps"
	"github.com/wtfmahe/PeeP/internal/client"
	"github.com/wtfmahe/PeeP/internal/lifecycle"
	"github.com/wtfmahe/PeeP/internal/sensor"
)

const help = `commands:
  fg | bg            move the app to the foreground or background
  friends            list friends and what they are doing
  peep <user|id>     peep a friend
  refresh            reload the friend list
  grant              request usage access
  quit               sign out and exit`

func printSink(w io.Writer, logger *slog.Logger) alert.Sink {
	log := alert.LogSink(logger)
	return func(a alert.Alert) {
		fmt.Fprintf(w, "\a%s\n", a.Message)
		log(a)
	}
}

type console struct {
	session *client.Session
	states  chan<- lifecycle.State
	out     io.Writer
}

// repl reads commands until in is exhausted, ctx ends or the user quits.
// App-state commands are delivered to the session as lifecycle events.
func repl(ctx context.Context, session *client.Session, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	states := make(chan lifecycle.State)
	go session.FollowAppState(ctx, states)
	c := &console{session: session, states: states, out: out}

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	fmt.Fprintln(out, help)
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if quit := c.execute(ctx, line); quit {
				return session.SignOut(ctx)
			}
		}
	}
}

func (c *console) execute(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	switch cmd := strings.ToLower(fields[0]); cmd {
	case "quit", "exit":
		return true
	case "friends":
		printFriends(c.session, c.out)
	case "refresh":
		if err := c.session.Refresh(ctx); err == nil {
			printFriends(c.session, c.out)
		}
	case "grant":
		c.session.GrantPermission(ctx)
	case "peep":
		if len(fields) < 2 {
			fmt.Fprintln(c.out, "usage: peep <user|id>")
			return false
		}
		id, ok := resolveFriend(c.session, fields[1])
		if !ok {
			fmt.Fprintf(c.out, "no friend named %s\n", fields[1])
			return false
		}
		if _, err := c.session.Peep(ctx, id); errors.Is(err, sensor.ErrPermissionDenied) {
			fmt.Fprintln(c.out, "run `grant` to allow usage access")
		}
	default:
		state, ok := lifecycle.ParseState(cmd)
		if !ok {
			fmt.Fprintln(c.out, help)
			return false
		}
		select {
		case c.states <- state:
			fmt.Fprintf(c.out, "app is in the %s\n", state)
		case <-ctx.Done():
		}
	}
	return false
}

func resolveFriend(session *client.Session, arg string) (uuid.UUID, bool) {
	if id, err := uuid.Parse(arg); err == nil {
		return id, true
	}
	f, ok := session.FriendByUsername(arg)
	return f.ID, ok
}

func printFriends(session *client.Session, out io.Writer) {
	friends := session.Friends().Snapshot()
	if len(friends) == 0 {
		fmt.Fprintln(out, "no friends yet")
		return
	}
	for _, f := range friends {
		label := apps.OfflineLabel
		if f.Status != nil {
			label = f.Status.FriendlyName
		}
		fmt.Fprintf(out, "%-20s %s\n", f.Username, label)
	}
}
