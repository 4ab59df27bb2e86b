// Package dedup detects headlines already seen in the batch or in the content store.
package dedup

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/text/cases"

	"github.com/JakeFAU/renewables-newsroom/internal/pipeline"
)

// DefaultPrefixRunes is the compared title prefix length.
const DefaultPrefixRunes = 50

// Normalize folds case, collapses whitespace and keeps the first n runes.
func Normalize(title string, n int) string {
	if n <= 0 {
		n = DefaultPrefixRunes
	}
	return pipeline.Prefix(cases.Fold().String(pipeline.CollapseSpaces(title)), n)
}

// PrefixChecker is the slice of the content store the deduplicator needs.
type PrefixChecker interface {
	ExistsByTitlePrefix(ctx context.Context, prefix string) (bool, error)
}

// Deduplicator remembers accepted titles for one batch.
type Deduplicator struct {
	store     PrefixChecker
	logger    *zap.Logger
	prefixLen int

	mu   sync.Mutex
	seen map[string]struct{}
}

// New builds a Deduplicator. store may be nil to check only the batch.
func New(store PrefixChecker, prefixLen int, logger *zap.Logger) *Deduplicator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if prefixLen <= 0 {
		prefixLen = DefaultPrefixRunes
	}
	return &Deduplicator{
		store:     store,
		logger:    logger,
		prefixLen: prefixLen,
		seen:      make(map[string]struct{}),
	}
}

// Exists reports whether title duplicates an accepted title or a stored article.
// A store failure is logged and returned with false so the caller keeps the item.
func (d *Deduplicator) Exists(ctx context.Context, title string) (bool, error) {
	key := Normalize(title, d.prefixLen)
	d.mu.Lock()
	_, inBatch := d.seen[key]
	d.mu.Unlock()
	if inBatch {
		d.logger.Info("duplicate in batch", zap.String("title", title))
		return true, nil
	}
	if d.store == nil {
		return false, nil
	}
	found, err := d.store.ExistsByTitlePrefix(ctx, key)
	if err != nil {
		d.logger.Warn("dedup store check failed", zap.String("title", title), zap.Error(err))
		return false, fmt.Errorf("check stored titles: %w", err)
	}
	if found {
		d.logger.Info("duplicate in content store", zap.String("title", title))
	}
	return found, nil
}

// Accept records title as part of the batch.
func (d *Deduplicator) Accept(title string) {
	key := Normalize(title, d.prefixLen)
	d.mu.Lock()
	d.seen[key] = struct{}{}
	d.mu.Unlock()
}

// Seen returns how many titles were accepted.
func (d *Deduplicator) Seen() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}
