// Package realtime is the row-change feed: writers publish INSERT/UPDATE/
// DELETE notifications per table and subscribers receive the ones matching
// their filter.
package realtime

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

type EventType string

const (
	Insert   EventType = "INSERT"
	Update   EventType = "UPDATE"
	Delete   EventType = "DELETE"
	AnyEvent EventType = "*"
)

var ErrInvalidFilter = errors.New("invalid filter")

// Change is one committed row change.
type Change struct {
	Table           string          `json:"table"`
	Type            EventType       `json:"type"`
	Record          json.RawMessage `json:"record"`
	CommitTimestamp time.Time       `json:"commit_timestamp"`
}

// NewChange encodes record as the new row image.
func NewChange(table string, typ EventType, record any) (Change, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return Change{}, fmt.Errorf("failed to encode %s record: %w", table, err)
	}
	return Change{Table: table, Type: typ, Record: data, CommitTimestamp: time.Now().UTC()}, nil
}

// Decode unmarshals the row image into v.
func (c Change) Decode(v any) error {
	if err := json.Unmarshal(c.Record, v); err != nil {
		return fmt.Errorf("failed to decode %s record: %w", c.Table, err)
	}
	return nil
}

// Filter selects changes by table, event type and an optional equality
// predicate on one column. An empty Type matches every event.
type Filter struct {
	Table  string
	Type   EventType
	Column string
	Value  string
}

// ParseFilter builds a Filter from its wire form: a table, an event name and
// an optional "column=eq.value" predicate.
func ParseFilter(table, event, predicate string) (Filter, error) {
	if table == "" {
		return Filter{}, fmt.Errorf("%w: table is required", ErrInvalidFilter)
	}

	f := Filter{Table: table, Type: EventType(strings.ToUpper(event))}
	switch f.Type {
	case "", AnyEvent, Insert, Update, Delete:
	default:
		return Filter{}, fmt.Errorf("%w: unknown event %q", ErrInvalidFilter, event)
	}

	if predicate == "" {
		return f, nil
	}
	column, value, ok := strings.Cut(predicate, "=eq.")
	if !ok || column == "" {
		return Filter{}, fmt.Errorf("%w: predicate must look like column=eq.value", ErrInvalidFilter)
	}
	f.Column, f.Value = column, value
	return f, nil
}

func (f Filter) String() string {
	s := f.Table + ":" + string(f.eventType())
	if f.Column != "" {
		s += ":" + f.Column + "=eq." + f.Value
	}
	return s
}

func (f Filter) Match(c Change) bool {
	if c.Table != f.Table {
		return false
	}
	if t := f.eventType(); t != AnyEvent && t != c.Type {
		return false
	}
	if f.Column == "" {
		return true
	}

	var row map[string]any
	if err := json.Unmarshal(c.Record, &row); err != nil {
		return false
	}
	v, ok := row[f.Column]
	if !ok || v == nil {
		return false
	}
	return fmt.Sprint(v) == f.Value
}

func (f Filter) eventType() EventType {
	if f.Type == "" {
		return AnyEvent
	}
	return f.Type
}
