package application

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bnema/portainer-notifier/internal/domain"
)

// StackSnapshot is the classified and rendered state of one stack for a single cycle.
type StackSnapshot struct {
	Stack      domain.Stack
	Status     domain.StackStatus
	Style      domain.StatusStyle
	Running    int
	Total      int
	Containers []domain.Container
	Artifact   domain.StatusArtifact
}

type StackOutcome string

const (
	OutcomeCreated   StackOutcome = "created"
	OutcomeUpdated   StackOutcome = "updated"
	OutcomeRecreated StackOutcome = "recreated"
)

type StackFailure struct {
	StackID   domain.StackID
	StackName string
	Err       error
}

func (f StackFailure) Error() string {
	return fmt.Sprintf("stack %s (%s): %v", f.StackID, f.StackName, f.Err)
}

func (f StackFailure) Unwrap() error {
	return f.Err
}

// MarshalJSON writes the cause as its message, since error values carry no exported fields.
func (f StackFailure) MarshalJSON() ([]byte, error) {
	var cause string
	if f.Err != nil {
		cause = f.Err.Error()
	}

	return json.Marshal(struct {
		StackID   domain.StackID
		StackName string
		Err       string
	}{
		StackID:   f.StackID,
		StackName: f.StackName,
		Err:       cause,
	})
}

type CycleReport struct {
	ID        string
	StartedAt time.Time
	Duration  time.Duration
	Stacks    int
	Created   int
	Updated   int
	Recreated int
	Pruned    []domain.StackID
	Failures  []StackFailure
}

func (r *CycleReport) record(outcome StackOutcome) {
	switch outcome {
	case OutcomeCreated:
		r.Created++
	case OutcomeUpdated:
		r.Updated++
	case OutcomeRecreated:
		r.Recreated++
	}
}

// Err joins every per-stack failure, or returns nil when all stacks were reconciled.
func (r CycleReport) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}

	errs := make([]error, 0, len(r.Failures))
	for _, failure := range r.Failures {
		errs = append(errs, failure)
	}

	return errors.Join(errs...)
}
