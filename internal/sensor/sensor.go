// Package sensor reports which application is in the foreground. Reading it
// is gated by a user-grantable usage-access permission.
package sensor

import (
	"context"
	"errors"
	"strings"
)

// ErrPermissionDenied means usage access has not been granted.
var ErrPermissionDenied = errors.New("usage access not granted")

type Sensor interface {
	HasPermission(ctx context.Context) (bool, error)
	// RequestPermission sends the user to the platform's grant flow. It does
	// not wait for an answer.
	RequestPermission(ctx context.Context) error
	// ForegroundApp returns the foreground identifier; ok is false when the
	// platform has nothing to report.
	ForegroundApp(ctx context.Context) (app string, ok bool, err error)
}

// ExcludeSelf hides the client's own package and system chrome (launchers,
// system UI) so they are never reported as what the user is doing.
func ExcludeSelf(s Sensor, ownPackage string) Sensor {
	return &excluding{Sensor: s, own: ownPackage}
}

type excluding struct {
	Sensor
	own string
}

func (e *excluding) ForegroundApp(ctx context.Context) (string, bool, error) {
	app, ok, err := e.Sensor.ForegroundApp(ctx)
	if err != nil || !ok {
		return "", false, err
	}
	if !reportable(app, e.own) {
		return "", false, nil
	}
	return app, true, nil
}

func reportable(app, own string) bool {
	if app == "" || app == own {
		return false
	}
	return !strings.Contains(app, "launcher") && !strings.Contains(app, "systemui")
}
