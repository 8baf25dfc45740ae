package pdftext

import "fmt"

// Doc abstracts an opened PDF for text extraction. Page indices are 0-based.
type Doc interface {
	NumPage() int
	PageText(i int) (string, error)
	Close() error
}

// Opener turns raw PDF bytes into a Doc.
type Opener interface {
	Open(data []byte) (Doc, error)
}

const (
	BackendFitz   = "fitz"
	BackendNative = "native"
)

// OpenerFor returns the Opener for a configured backend name. Empty means fitz.
func OpenerFor(backend string) (Opener, error) {
	switch backend {
	case "", BackendFitz:
		return FitzOpener{}, nil
	case BackendNative:
		return NativeOpener{}, nil
	default:
		return nil, fmt.Errorf("unknown pdf backend %q", backend)
	}
}
