package catalog

import (
	"context"
	"log"
	"strings"
	"sync"
)

// Lister lists object names under a prefix in the clip store
type Lister interface {
	List(ctx context.Context, prefix string) ([]string, error)
}

// Catalog holds the set of words for which a sign clip exists in the store.
// It is populated exactly once per process behind a sync.Once barrier and
// never refreshed afterwards; a failed listing leaves it empty and the
// service degraded.
type Catalog struct {
	lister Lister
	prefix string
	ext    string

	once  sync.Once
	words []string
	index map[string]struct{}
}

// New creates an unloaded catalog for clips named <prefix><word><ext>
func New(lister Lister, prefix, ext string) *Catalog {
	return &Catalog{
		lister: lister,
		prefix: prefix,
		ext:    ext,
		index:  make(map[string]struct{}),
	}
}

// Load populates the catalog from the store. Safe to call more than once;
// only the first call lists the bucket. Listing failures are logged, not
// returned — callers observe them as an empty catalog.
func (c *Catalog) Load(ctx context.Context) {
	c.once.Do(func() {
		if c.lister == nil {
			log.Println("Catalog load skipped: clip store not available")
			return
		}

		names, err := c.lister.List(ctx, c.prefix)
		if err != nil {
			log.Printf("Error listing dictionary clips: %v", err)
			return
		}

		for _, name := range names {
			word, ok := c.wordFromObject(name)
			if !ok {
				continue
			}
			if _, seen := c.index[word]; seen {
				continue
			}
			c.index[word] = struct{}{}
			c.words = append(c.words, word)
		}

		log.Printf("Available words loaded: %d", len(c.words))
	})
}

// wordFromObject derives the catalog word from an object name like
// "Dictionary/hungry.mp4". The prefix folder placeholder and objects with
// other extensions are skipped.
func (c *Catalog) wordFromObject(name string) (string, bool) {
	if !strings.HasSuffix(name, c.ext) {
		return "", false
	}
	base := name
	if i := strings.LastIndex(base, "/"); i >= 0 {
		base = base[i+1:]
	}
	word := strings.ToLower(strings.TrimSuffix(base, c.ext))
	if word == "" {
		return "", false
	}
	return word, true
}

// Ready reports whether the catalog holds at least one word
func (c *Catalog) Ready() bool {
	return len(c.words) > 0
}

// Contains reports membership of the lowercased word
func (c *Catalog) Contains(word string) bool {
	_, ok := c.index[strings.ToLower(word)]
	return ok
}

// Words returns a copy of the catalog in load order
func (c *Catalog) Words() []string {
	words := make([]string, len(c.words))
	copy(words, c.words)
	return words
}
