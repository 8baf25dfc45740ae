package outcome

import (
	"errors"
	"fmt"
)

// IngestionError is the only user-visible failure class: unreadable source or missing template.
type IngestionError struct {
	Stage string
	Err   error
}

func (e *IngestionError) Error() string {
	return fmt.Sprintf("ingestion failed at %s: %v", e.Stage, e.Err)
}

func (e *IngestionError) Unwrap() error { return e.Err }

// Ingestion wraps err as an IngestionError for the given stage.
func Ingestion(stage string, err error) error {
	if err == nil {
		return nil
	}
	return &IngestionError{Stage: stage, Err: err}
}

// IsIngestion reports whether err (or anything it wraps) is an IngestionError.
func IsIngestion(err error) bool {
	var ie *IngestionError
	return errors.As(err, &ie)
}

// ErrTemplateNotFound is returned when a template reference resolves to nothing.
var ErrTemplateNotFound = errors.New("template not found")
