package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

var ErrNotFound = errors.New("object not found")

// maxTemplateBytes bounds templates fetched over HTTP.
const maxTemplateBytes = 32 << 20

// ObjectStore is the S3 subset the resolver needs.
type ObjectStore interface {
	Download(ctx context.Context, bucket, key string) ([]byte, error)
	Exists(ctx context.Context, bucket, key string) (bool, error)
}

// Resolver loads template bytes from a reference. Supported forms:
//   - file://path or a plain filesystem path
//   - http(s):// URLs
//   - s3://bucket/key
type Resolver struct {
	s3      ObjectStore
	http    *http.Client
	timeout time.Duration
}

// NewResolver returns a Resolver. s3 may be nil when no bucket access is configured.
func NewResolver(s3 ObjectStore, httpClient *http.Client, timeout time.Duration) *Resolver {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Resolver{s3: s3, http: httpClient, timeout: timeout}
}

// Load returns the referenced bytes. A missing object wraps ErrNotFound.
func (r *Resolver) Load(ctx context.Context, ref string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	switch {
	case strings.HasPrefix(ref, "s3://"):
		bucket, key, err := splitS3(ref)
		if err != nil {
			return nil, err
		}
		if r.s3 == nil {
			return nil, fmt.Errorf("s3 reference %s but no S3 client configured", ref)
		}
		return r.s3.Download(ctx, bucket, key)
	case strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://"):
		return r.fetchHTTP(ctx, ref)
	default:
		data, err := os.ReadFile(localPath(ref))
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", ref, ErrNotFound)
		}
		return data, err
	}
}

// Exists reports whether ref currently resolves to something. HTTP references are
// assumed to exist; they are checked when loaded.
func (r *Resolver) Exists(ctx context.Context, ref string) bool {
	if strings.TrimSpace(ref) == "" {
		return false
	}
	switch {
	case strings.HasPrefix(ref, "s3://"):
		bucket, key, err := splitS3(ref)
		if err != nil || r.s3 == nil {
			return false
		}
		ok, err := r.s3.Exists(ctx, bucket, key)
		return err == nil && ok
	case strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://"):
		return true
	default:
		st, err := os.Stat(localPath(ref))
		return err == nil && !st.IsDir()
	}
}

func (r *Resolver) fetchHTTP(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%s: %w", url, ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("http %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxTemplateBytes))
}

func localPath(ref string) string { return strings.TrimPrefix(ref, "file://") }

func splitS3(ref string) (bucket, key string, err error) {
	path := strings.TrimPrefix(ref, "s3://")
	slash := strings.Index(path, "/")
	if slash <= 0 || slash == len(path)-1 {
		return "", "", fmt.Errorf("invalid s3 url: %s", ref)
	}
	return path[:slash], path[slash+1:], nil
}
