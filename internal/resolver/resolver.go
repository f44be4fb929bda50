package resolver

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/signwave/sign-video-service/internal/catalog"
)

// noMatch is the sentinel the model answers when no catalog word is close
// enough in meaning
const noMatch = "none"

// TextModel produces a single text completion for a prompt
type TextModel interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Resolver maps input words onto catalog words, either verbatim or through
// a model-suggested substitution
type Resolver struct {
	model   TextModel
	catalog *catalog.Catalog
}

// New creates a resolver. model may be nil, in which case every
// out-of-catalog word resolves to absent.
func New(model TextModel, cat *catalog.Catalog) *Resolver {
	return &Resolver{
		model:   model,
		catalog: cat,
	}
}

// Resolve returns the catalog word for the input word, or ok=false when no
// match exists. A verbatim catalog member is returned without consulting
// the model. Model failures degrade to absent — they never propagate.
func (r *Resolver) Resolve(ctx context.Context, word string) (string, bool) {
	word = strings.ToLower(word)
	if r.catalog.Contains(word) {
		return word, true
	}

	if r.model == nil {
		log.Printf("Skipping '%s': model not configured", word)
		return "", false
	}

	raw, err := r.model.GenerateText(ctx, buildPrompt(word, r.catalog.Words()))
	if err != nil {
		log.Printf("[Gemini error] %v", err)
		return "", false
	}

	suggested := strings.ToLower(strings.TrimSpace(raw))
	if suggested == "" || suggested == noMatch {
		return "", false
	}

	// The model must pick from the catalog; anything else is discarded
	if !r.catalog.Contains(suggested) {
		log.Printf("Discarding model suggestion %q for '%s': not in catalog", suggested, word)
		return "", false
	}

	return suggested, true
}

// buildPrompt asks the model for the closest-in-meaning catalog word
func buildPrompt(word string, words []string) string {
	return fmt.Sprintf(`You have these available words in a Firebase database: %s.
Given the word '%s', suggest a single word from the database
that is closest in meaning. If none exists, respond with 'NONE'.
Respond ONLY with the word or NONE.`, strings.Join(words, ", "), word)
}
