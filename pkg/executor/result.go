package executor

import (
	"fmt"

	"github.com/arthur-debert/tidy/pkg/dedup"
	"github.com/arthur-debert/tidy/pkg/oplog"
)

// Status is the overall outcome of a request.
type Status string

const (
	// StatusOK covers full and partial success; partial results carry
	// a non-empty failure list.
	StatusOK Status = "ok"

	// StatusSimulated marks a dry run: the plan was computed and
	// recorded, nothing was applied.
	StatusSimulated Status = "simulated"
)

// PlannedAction describes one step a dry run would have taken.
type PlannedAction struct {
	Kind   string // "move", "copy", "trash", "delete", "mkdir", "archive", "extract"
	Source string
	Dest   string // empty for deletions
}

func (a PlannedAction) String() string {
	if a.Dest == "" {
		return fmt.Sprintf("%s %s", a.Kind, a.Source)
	}
	return fmt.Sprintf("%s %s -> %s", a.Kind, a.Source, a.Dest)
}

// FileFailure records one file that failed during apply. The batch
// carries on past it.
type FileFailure struct {
	Path string
	Err  string
}

// Result is the structured outcome returned for every request.
type Result struct {
	Status   Status
	Summary  string
	Paths    []string        // affected (or would-be-affected) paths
	Planned  []PlannedAction // populated for dry runs
	Failures []FileFailure
	Groups   []dedup.Group // populated by duplicate operations
	DryRun   bool
}

// outcome maps a result to the operation-log outcome.
func (r Result) outcome() oplog.Outcome {
	switch {
	case r.DryRun:
		return oplog.OutcomeSimulated
	case len(r.Failures) > 0:
		return oplog.OutcomePartial
	default:
		return oplog.OutcomeSuccess
	}
}
