package handlers

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/signwave/sign-video-service/internal/catalog"
	"github.com/signwave/sign-video-service/internal/storage"
	"github.com/signwave/sign-video-service/internal/types"
	"github.com/signwave/sign-video-service/internal/video"
)

// OutputFilename is the attachment name of every generated video
const OutputFilename = "merged_sentence.mp4"

// WordResolver maps an input word onto a catalog word, or absent
type WordResolver interface {
	Resolve(ctx context.Context, word string) (string, bool)
}

// ClipFetcher downloads and normalizes the clip for a resolved word
type ClipFetcher interface {
	Fetch(ctx context.Context, word string) (*video.Clip, bool)
}

// ClipAssembler concatenates clips into one encoded output file
type ClipAssembler interface {
	Assemble(clips []*video.Clip) (string, error)
}

// GenerateHandler serves GET /generate_video
type GenerateHandler struct {
	catalog   *catalog.Catalog
	resolver  WordResolver
	fetcher   ClipFetcher
	assembler ClipAssembler
	db        *storage.MetadataDB
}

// NewGenerateHandler creates the sentence-to-video handler. db may be nil;
// history recording is best-effort.
func NewGenerateHandler(
	cat *catalog.Catalog,
	resolver WordResolver,
	fetcher ClipFetcher,
	assembler ClipAssembler,
	db *storage.MetadataDB,
) *GenerateHandler {
	return &GenerateHandler{
		catalog:   cat,
		resolver:  resolver,
		fetcher:   fetcher,
		assembler: assembler,
		db:        db,
	}
}

// Handle turns a sentence into one concatenated sign-language video.
// Per-word and per-clip failures are dropped; the request only fails when
// a whole stage comes up empty.
func (h *GenerateHandler) Handle(c *fiber.Ctx) error {
	sentence := c.Query("sentence")
	if sentence == "" {
		return c.Status(400).JSON(fiber.Map{
			"error": "Missing 'sentence' parameter.",
		})
	}

	if !h.catalog.Ready() {
		return c.Status(503).JSON(fiber.Map{
			"error": "Server not fully initialized or Firebase not reachable.",
		})
	}

	log.Printf("Processing sentence: '%s'", sentence)
	requestID := uuid.New().String()
	ctx := c.Context()
	words := strings.Fields(strings.ToLower(sentence))

	// Resolve each word against the catalog; unmatched words are skipped
	var finalWords []string
	for _, word := range words {
		resolved, ok := h.resolver.Resolve(ctx, word)
		if !ok {
			log.Printf("Skipping '%s' (no video found)", word)
			continue
		}
		finalWords = append(finalWords, resolved)
	}
	if len(finalWords) == 0 {
		return c.Status(404).JSON(fiber.Map{
			"error": "Could not find sign videos for any word in the sentence.",
		})
	}

	log.Printf("Final words to fetch: %v", finalWords)

	// Download and normalize clips; failed fetches are dropped
	var clips []*video.Clip
	defer func() {
		for _, clip := range clips {
			if err := os.Remove(clip.Path); err != nil && !os.IsNotExist(err) {
				log.Printf("Failed to cleanup clip file %s: %v", clip.Path, err)
			}
		}
	}()
	for _, word := range finalWords {
		clip, ok := h.fetcher.Fetch(ctx, word)
		if !ok {
			continue
		}
		clips = append(clips, clip)
	}
	if len(clips) == 0 {
		return c.Status(500).JSON(fiber.Map{
			"error": "Failed to retrieve any video clips.",
		})
	}

	outputPath, err := h.assembler.Assemble(clips)
	if err != nil {
		log.Printf("Error during video merging or serving: %v", err)
		h.record(requestID, sentence, finalWords, clips, types.StatusFailed, err)
		return c.Status(500).JSON(fiber.Map{
			"error": fmt.Sprintf("An error occurred during video generation: %v", err),
		})
	}

	h.record(requestID, sentence, finalWords, clips, types.StatusCompleted, nil)

	return h.sendVideo(c, outputPath)
}

// sendVideo streams the encoded file and guarantees its removal. The file
// is unlinked while the descriptor is still open, so the data survives
// until the transfer finishes and the path is gone no matter how the
// transfer ends.
func (h *GenerateHandler) sendVideo(c *fiber.Ctx, outputPath string) error {
	f, err := os.Open(outputPath)
	if err != nil {
		os.Remove(outputPath)
		return c.Status(500).JSON(fiber.Map{
			"error": fmt.Sprintf("An error occurred during video generation: %v", err),
		})
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		os.Remove(outputPath)
		return c.Status(500).JSON(fiber.Map{
			"error": fmt.Sprintf("An error occurred during video generation: %v", err),
		})
	}

	if err := os.Remove(outputPath); err != nil {
		log.Printf("Failed to unlink output file %s: %v", outputPath, err)
	}

	c.Set(fiber.HeaderContentType, "video/mp4")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, OutputFilename))
	return c.SendStream(f, int(info.Size()))
}

// record saves the request outcome to the history database
func (h *GenerateHandler) record(id, sentence string, words []string, clips []*video.Clip, status string, cause error) {
	if h.db == nil {
		return
	}

	var duration float64
	for _, clip := range clips {
		duration += clip.Duration
	}

	rec := &types.GenerationRecord{
		ID:            id,
		Sentence:      sentence,
		ResolvedWords: strings.Join(words, " "),
		ClipCount:     len(clips),
		Duration:      duration,
		Status:        status,
		CreatedAt:     time.Now(),
	}
	if cause != nil {
		rec.Error = cause.Error()
	}

	if err := h.db.SaveGeneration(rec); err != nil {
		log.Printf("Database save failed: %v", err)
	}
}
