package war

import (
	"errors"
	"fmt"
)

var ErrInvalidRequest = errors.New("war: invalid request")

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("war: invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidRequest }

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Validate checks the roster invariants the model relies on. History
// entries naming unknown attackers or ranks are harmless and not checked.
func (r Request) Validate() error {
	names := make(map[string]bool, len(r.Attackers))
	ranks := make(map[int]string, len(r.Attackers))
	for i, a := range r.Attackers {
		field := fmt.Sprintf("attackers[%d]", i)
		if a.Name == "" {
			return invalid(field, "empty name")
		}
		if names[a.Name] {
			return invalid(field, "duplicate name %q", a.Name)
		}
		names[a.Name] = true
		if a.Rank <= 0 {
			return invalid(field, "rank %d must be positive", a.Rank)
		}
		if other, ok := ranks[a.Rank]; ok {
			return invalid(field, "rank %d already held by %q", a.Rank, other)
		}
		ranks[a.Rank] = a.Name
		if a.AttacksRemaining < 0 {
			return invalid(field, "negative attacks remaining %d", a.AttacksRemaining)
		}
	}

	targetRanks := make(map[int]bool, len(r.Targets))
	for i, t := range r.Targets {
		field := fmt.Sprintf("targets[%d]", i)
		if t.Rank <= 0 {
			return invalid(field, "rank %d must be positive", t.Rank)
		}
		if targetRanks[t.Rank] {
			return invalid(field, "duplicate rank %d", t.Rank)
		}
		targetRanks[t.Rank] = true
		if t.Captured < 0 {
			return invalid(field, "negative captured reward %d", t.Captured)
		}
	}
	return nil
}
