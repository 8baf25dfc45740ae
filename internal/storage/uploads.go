package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const uploadPrefix = "tpl-"

// Uploader is the S3 write path used for shared template storage.
type Uploader interface {
	Upload(ctx context.Context, bucket, key string, data []byte) error
}

// Uploads keeps templates users send to the bot. With a bucket configured they go to
// S3 so every replica can load them; otherwise they are written under dir.
type Uploads struct {
	dir    string
	s3     Uploader
	bucket string
}

// NewUploads returns an upload store. dir defaults to <tmp>/lessonplanner-templates.
func NewUploads(dir string, s3 Uploader, bucket string) *Uploads {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "lessonplanner-templates")
	}
	return &Uploads{dir: dir, s3: s3, bucket: bucket}
}

func (u *Uploads) Dir() string { return u.dir }

// SaveTemplate stores data and returns a reference the Resolver can load.
func (u *Uploads) SaveTemplate(ctx context.Context, chatID int64, data []byte) (string, error) {
	name := fmt.Sprintf("%s%d-%s.docx", uploadPrefix, chatID, uuid.NewString()[:8])
	if u.s3 != nil && u.bucket != "" {
		key := "templates/" + name
		if err := u.s3.Upload(ctx, u.bucket, key, data); err != nil {
			return "", err
		}
		return fmt.Sprintf("s3://%s/%s", u.bucket, key), nil
	}
	if err := os.MkdirAll(u.dir, 0o755); err != nil {
		return "", err
	}
	p := filepath.Join(u.dir, name)
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return "", err
	}
	return "file://" + p, nil
}

// Cleanup removes local uploads older than maxAge and returns how many were removed.
// Sessions referencing them have expired by then.
func (u *Uploads) Cleanup(maxAge time.Duration) int {
	now := time.Now()
	removed := 0
	entries, err := os.ReadDir(u.dir)
	if err != nil {
		return 0
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), uploadPrefix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) >= maxAge {
			if os.Remove(filepath.Join(u.dir, e.Name())) == nil {
				removed++
			}
		}
	}
	if removed > 0 {
		log.Info().Int("removed", removed).Str("dir", u.dir).Msg("cleaned up uploaded templates")
	}
	return removed
}
