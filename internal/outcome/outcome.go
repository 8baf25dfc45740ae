package outcome

import "fmt"

// Branch tells which path a pipeline step took.
type Branch int

const (
	OK Branch = iota
	Degraded
	Fatal
)

func (b Branch) String() string {
	switch b {
	case OK:
		return "ok"
	case Degraded:
		return "degraded"
	case Fatal:
		return "fatal"
	default:
		return fmt.Sprintf("branch(%d)", int(b))
	}
}

// Degradation reasons. Only Fatal results are shown to users; these only lower output quality.
const (
	FetchDegradation      = "fetch_degradation"
	ExtractionGap         = "extraction_gap"
	SummarizationFallback = "summarization_fallback"
	NoExtractableText     = "no_extractable_text"
	NoWebContent          = "no_web_content"
)

// Result carries a step's value together with the branch that produced it.
type Result[T any] struct {
	Value  T
	Branch Branch
	Reason string
	Err    error
}

func Ok[T any](v T) Result[T] { return Result[T]{Value: v, Branch: OK} }

func Degrade[T any](v T, reason string) Result[T] {
	return Result[T]{Value: v, Branch: Degraded, Reason: reason}
}

func Fail[T any](err error) Result[T] {
	var zero T
	reason := ""
	if err != nil {
		reason = err.Error()
	}
	return Result[T]{Value: zero, Branch: Fatal, Reason: reason, Err: err}
}

func (r Result[T]) IsFatal() bool { return r.Branch == Fatal }
