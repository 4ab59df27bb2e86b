package pipeline

import "fmt"

// OutcomeKind classifies the per-item result of a stage.
type OutcomeKind string

// Outcome kinds.
const (
	OutcomeOK      OutcomeKind = "ok"
	OutcomeSkipped OutcomeKind = "skipped"
	OutcomeFailed  OutcomeKind = "failed"
)

// Outcome is the result of running one item through one stage.
type Outcome struct {
	Stage  string
	Title  string
	Kind   OutcomeKind
	Reason string
	Err    error
}

// Ok reports a successful item.
func Ok(stage, title string) Outcome {
	return Outcome{Stage: stage, Title: title, Kind: OutcomeOK}
}

// Skipped reports an item dropped for a normal reason (duplicate, filtered).
func Skipped(stage, title, reason string) Outcome {
	return Outcome{Stage: stage, Title: title, Kind: OutcomeSkipped, Reason: reason}
}

// Failed reports an item that hit an error. The run continues.
func Failed(stage, title string, err error) Outcome {
	return Outcome{Stage: stage, Title: title, Kind: OutcomeFailed, Err: err}
}

func (o Outcome) String() string {
	switch o.Kind {
	case OutcomeSkipped:
		return fmt.Sprintf("%s %s: skipped (%s)", o.Stage, o.Title, o.Reason)
	case OutcomeFailed:
		return fmt.Sprintf("%s %s: failed (%v)", o.Stage, o.Title, o.Err)
	default:
		return fmt.Sprintf("%s %s: ok", o.Stage, o.Title)
	}
}

// Tally folds outcomes into counts by kind.
func Tally(outcomes []Outcome) map[OutcomeKind]int {
	counts := map[OutcomeKind]int{}
	for _, o := range outcomes {
		counts[o.Kind]++
	}
	return counts
}
