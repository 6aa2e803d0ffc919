package sensor

import (
	"context"
	"sync"
)

// Stub is an in-memory Sensor whose answers are set by the caller.
type Stub struct {
	mu         sync.Mutex
	permission bool
	app        string
	err        error
	requests   int
	reads      int
}

func NewStub(permission bool, app string) *Stub {
	return &Stub{permission: permission, app: app}
}

func (s *Stub) HasPermission(context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.permission, nil
}

func (s *Stub) RequestPermission(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests++
	return nil
}

func (s *Stub) ForegroundApp(context.Context) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	if s.err != nil {
		return "", false, s.err
	}
	return s.app, s.app != "", nil
}

func (s *Stub) SetPermission(granted bool) {
	s.mu.Lock()
	s.permission = granted
	s.mu.Unlock()
}

func (s *Stub) SetApp(app string) {
	s.mu.Lock()
	s.app = app
	s.mu.Unlock()
}

func (s *Stub) SetError(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// Requests is how many times RequestPermission was called.
func (s *Stub) Requests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests
}

// Reads is how many times ForegroundApp was called.
func (s *Stub) Reads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads
}
