package fetcher

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/signwave/sign-video-service/internal/video"
)

// ObjectStore is the slice of the clip store the fetcher needs
type ObjectStore interface {
	Exists(ctx context.Context, object string) (bool, error)
	Download(ctx context.Context, object, dest string) error
}

// Normalizer turns a raw downloaded file into a uniform clip
type Normalizer interface {
	Normalize(inputPath, word string) (*video.Clip, error)
}

// Fetcher downloads a word's dictionary clip and normalizes it
type Fetcher struct {
	store   ObjectStore
	proc    Normalizer
	tempDir string
	prefix  string
	ext     string
}

// New creates a fetcher for clips stored as <prefix><word><ext>
func New(store ObjectStore, proc Normalizer, tempDir, prefix, ext string) *Fetcher {
	return &Fetcher{
		store:   store,
		proc:    proc,
		tempDir: tempDir,
		prefix:  prefix,
		ext:     ext,
	}
}

// Fetch downloads and normalizes the clip for a resolved word. ok=false
// covers both a missing blob and any download/decode failure — the caller
// drops the word and moves on. The downloaded temp file is removed on
// every exit path; the returned Clip does not depend on it.
func (f *Fetcher) Fetch(ctx context.Context, word string) (*video.Clip, bool) {
	object := f.prefix + word + f.ext

	exists, err := f.store.Exists(ctx, object)
	if err != nil {
		log.Printf("Error getting video clip for %s: %v", word, err)
		return nil, false
	}
	if !exists {
		log.Printf("No video found for: %s", word)
		return nil, false
	}

	downloadPath := filepath.Join(f.tempDir, fmt.Sprintf("download_%s%s", uuid.New().String(), f.ext))
	defer func() {
		if err := os.Remove(downloadPath); err != nil && !os.IsNotExist(err) {
			log.Printf("Failed to cleanup temp file %s: %v", downloadPath, err)
		}
	}()

	if err := f.store.Download(ctx, object, downloadPath); err != nil {
		log.Printf("Error getting video clip for %s: %v", word, err)
		return nil, false
	}

	clip, err := f.proc.Normalize(downloadPath, word)
	if err != nil {
		log.Printf("Error getting video clip for %s: %v", word, err)
		return nil, false
	}

	return clip, true
}
