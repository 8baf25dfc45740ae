package normalize

import (
	"errors"
	"fmt"

	"github.com/local/lessonplanner/internal/source"
)

var errNoPDFBackend = errors.New("no pdf backend configured")

func errUnknownKind(k source.Kind) error {
	return fmt.Errorf("unsupported source kind %s", k)
}
