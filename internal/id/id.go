// Package id provides unique identifier generation utilities.
package id

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// UUID generates a UUID v4 (random).
func UUID() string {
	return uuid.New().String()
}

// RequestID generates an identifier for correlating a client request with
// server logs.
func RequestID() string {
	return uuid.New().String()
}

// Short generates a short random hex ID (16 characters).
func Short() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// Style selects how a Generator produces identifiers.
type Style string

// Identifier styles.
const (
	// StyleSequence produces "1", "2", "3", ... like json-server.
	StyleSequence Style = "sequence"
	// StyleUUID produces UUID v4 strings.
	StyleUUID Style = "uuid"
	// StyleShort produces 16-character hex strings.
	StyleShort Style = "short"
)

// ParseStyle parses an identifier style name. Empty means StyleSequence.
func ParseStyle(s string) (Style, error) {
	switch Style(strings.ToLower(s)) {
	case "", StyleSequence:
		return StyleSequence, nil
	case StyleUUID:
		return StyleUUID, nil
	case StyleShort:
		return StyleShort, nil
	default:
		return "", fmt.Errorf("unknown id style %q (valid: sequence, uuid, short)", s)
	}
}

// Generator hands out identifiers for newly created records.
// It is safe for concurrent use.
type Generator struct {
	style Style

	mu   sync.Mutex
	next int64
}

// NewGenerator creates a Generator for the given style.
func NewGenerator(style Style) *Generator {
	if style == "" {
		style = StyleSequence
	}
	return &Generator{style: style, next: 1}
}

// Style returns the generator's identifier style.
func (g *Generator) Style() Style {
	return g.style
}

// Next returns a fresh identifier.
func (g *Generator) Next() string {
	switch g.style {
	case StyleUUID:
		return UUID()
	case StyleShort:
		return Short()
	default:
		g.mu.Lock()
		defer g.mu.Unlock()
		n := g.next
		g.next++
		return strconv.FormatInt(n, 10)
	}
}

// Observe records an identifier that was assigned elsewhere (seed data or a
// client-supplied id) so that sequence ids never collide with it.
func (g *Generator) Observe(existing string) {
	if g.style != StyleSequence {
		return
	}
	n, err := strconv.ParseInt(existing, 10, 64)
	if err != nil {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if n >= g.next {
		g.next = n + 1
	}
}

// Reset restarts a sequence at 1.
func (g *Generator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next = 1
}
