// Package uuid generates article and session identifiers from UUIDv7 values.
package uuid

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ArticlePrefix starts every processed article ID.
const ArticlePrefix = "noticia_"

// Generator creates UUIDv7-based identifiers.
type Generator struct{}

// New creates a Generator.
func New() *Generator {
	return &Generator{}
}

// NewID returns an article ID of the form noticia_<uuid7>.
func (Generator) NewID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate uuid7: %w", err)
	}
	return ArticlePrefix + id.String(), nil
}

// Short returns the first 8 hex characters of a fresh UUIDv7's random tail.
// The leading bytes of a v7 value are the timestamp, so they are skipped.
func (Generator) Short() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate uuid7: %w", err)
	}
	hex := strings.ReplaceAll(id.String(), "-", "")
	return hex[len(hex)-8:], nil
}
