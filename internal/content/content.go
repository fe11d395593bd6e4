// Package content supplies the motivational quotes and habit suggestions the
// presenters show around check-ins. Content is optional: callers log and
// ignore failures.
package content

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/julianstephens/habithero/internal/logger"
	"github.com/julianstephens/habithero/internal/models"
)

// ErrNoContent is returned when a provider has nothing to offer.
var ErrNoContent = errors.New("no content available")

type Quote struct {
	Text   string `toml:"text"`
	Author string `toml:"author"`
}

func (q Quote) String() string {
	if q.Author == "" {
		return fmt.Sprintf("%q", q.Text)
	}
	return fmt.Sprintf("%q (%s)", q.Text, q.Author)
}

type Suggestion struct {
	Name      string           `toml:"name"`
	Category  models.Category  `toml:"category"`
	Frequency models.Frequency `toml:"frequency"`
}

type Provider interface {
	Quote() (Quote, error)
	Suggestions(category models.Category) ([]Suggestion, error)
}

// Static serves a fixed set of content.
type Static struct {
	Quotes []Quote       `toml:"quotes"`
	Ideas  []Suggestion  `toml:"suggestions"`
	pick   func(int) int `toml:"-"`
}

// Builtin returns the content shipped with the binary.
func Builtin() *Static {
	return &Static{Quotes: builtinQuotes, Ideas: builtinSuggestions}
}

// LoadFile reads quotes and suggestions from a TOML file.
func LoadFile(path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read content file: %w", err)
	}
	var s Static
	if _, err := toml.Decode(string(data), &s); err != nil {
		return nil, fmt.Errorf("failed to decode content file %s: %w", path, err)
	}
	for _, idea := range s.Ideas {
		if !idea.Category.Valid() || !idea.Frequency.Valid() {
			return nil, fmt.Errorf("content file %s: suggestion %q has an invalid category or frequency", path, idea.Name)
		}
	}
	return &s, nil
}

func (s *Static) Quote() (Quote, error) {
	if len(s.Quotes) == 0 {
		return Quote{}, ErrNoContent
	}
	pick := s.pick
	if pick == nil {
		pick = rand.IntN
	}
	return s.Quotes[pick(len(s.Quotes))], nil
}

// Suggestions returns the ideas for category, or all of them when category
// is empty.
func (s *Static) Suggestions(category models.Category) ([]Suggestion, error) {
	var out []Suggestion
	for _, idea := range s.Ideas {
		if category == "" || idea.Category == category {
			out = append(out, idea)
		}
	}
	if len(out) == 0 {
		return nil, ErrNoContent
	}
	return out, nil
}

// Layered asks each provider in turn and returns the first answer.
type Layered []Provider

func (l Layered) Quote() (Quote, error) {
	for _, p := range l {
		if q, err := p.Quote(); err == nil {
			return q, nil
		}
	}
	return Quote{}, ErrNoContent
}

func (l Layered) Suggestions(category models.Category) ([]Suggestion, error) {
	for _, p := range l {
		if s, err := p.Suggestions(category); err == nil {
			return s, nil
		}
	}
	return nil, ErrNoContent
}

// Open returns the content at path layered over the built-in content. A
// missing or broken file is logged and the built-in content is used alone.
func Open(path string, log logger.Logger) Provider {
	if path == "" {
		return Builtin()
	}
	custom, err := LoadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Warn("Failed to load custom content", "path", path, "error", err)
		}
		return Builtin()
	}
	return Layered{custom, Builtin()}
}

// QuoteOrEmpty returns a quote, or "" after logging the failure.
func QuoteOrEmpty(p Provider, log logger.Logger) string {
	if p == nil {
		return ""
	}
	q, err := p.Quote()
	if err != nil {
		log.Debug("No quote available", "error", err)
		return ""
	}
	return q.String()
}
