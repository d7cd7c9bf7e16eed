package llm

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"gopkg.in/yaml.v3"

	"github.com/sevigo/review-bot/internal/core"
)

//go:embed guidelines/*.yaml
var guidelineFiles embed.FS

// DefaultGuidelinesFile is the embedded guideline set used when none is configured.
const DefaultGuidelinesFile = "guidelines/java.yaml"

var ErrInvalidGuidelines = errors.New("invalid guideline set")

// GuidelineSet is the versioned, ordered list of review rules embedded in
// every prompt, together with the language it applies to.
type GuidelineSet struct {
	Version    int      `yaml:"version"`
	Language   string   `yaml:"language"`
	Extension  string   `yaml:"extension"`
	Preamble   string   `yaml:"preamble"`
	Guidelines []string `yaml:"guidelines"`
	Closing    string   `yaml:"closing"`
}

// ParseGuidelines decodes and validates a YAML guideline set.
func ParseGuidelines(data []byte) (*GuidelineSet, error) {
	var set GuidelineSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidGuidelines, err)
	}
	if set.Extension != "" && !strings.HasPrefix(set.Extension, ".") {
		set.Extension = "." + set.Extension
	}
	if set.Language == "" {
		if name, ok := LanguageForExtension(set.Extension); ok {
			set.Language = name
		}
	}
	if err := set.Validate(); err != nil {
		return nil, err
	}
	return &set, nil
}

// DefaultGuidelines returns the embedded guideline set.
func DefaultGuidelines() (*GuidelineSet, error) {
	data, err := guidelineFiles.ReadFile(DefaultGuidelinesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded guidelines: %w", err)
	}
	return ParseGuidelines(data)
}

// LoadGuidelines reads the guideline set at path, or the embedded default
// when path is empty.
func LoadGuidelines(path string) (*GuidelineSet, error) {
	if path == "" {
		return DefaultGuidelines()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read guidelines file: %w", err)
	}
	return ParseGuidelines(data)
}

// Validate checks that the set can produce a prompt.
func (g *GuidelineSet) Validate() error {
	switch {
	case g.Version <= 0:
		return fmt.Errorf("%w: version must be positive", ErrInvalidGuidelines)
	case g.Language == "":
		return fmt.Errorf("%w: language is required", ErrInvalidGuidelines)
	case len(g.Extension) < 2:
		return fmt.Errorf("%w: extension is required", ErrInvalidGuidelines)
	case strings.TrimSpace(g.Preamble) == "":
		return fmt.Errorf("%w: preamble is required", ErrInvalidGuidelines)
	case len(g.Guidelines) == 0:
		return fmt.Errorf("%w: at least one guideline is required", ErrInvalidGuidelines)
	}
	for i, rule := range g.Guidelines {
		if strings.TrimSpace(rule) == "" {
			return fmt.Errorf("%w: guideline %d is empty", ErrInvalidGuidelines, i+1)
		}
	}
	return nil
}

// CoreLanguage returns the language and extension the set applies to.
func (g *GuidelineSet) CoreLanguage() core.Language {
	return core.Language{Name: g.Language, Extension: g.Extension}
}

// GuidelineStore hands out the active guideline set. Replace swaps it
// atomically, so readers never observe a partially loaded set.
type GuidelineStore struct {
	current atomic.Pointer[GuidelineSet]
}

// NewGuidelineStore creates a store holding set.
func NewGuidelineStore(set *GuidelineSet) *GuidelineStore {
	s := &GuidelineStore{}
	s.current.Store(set)
	return s
}

// Current returns the active guideline set.
func (s *GuidelineStore) Current() *GuidelineSet {
	return s.current.Load()
}

// Replace makes set the active guideline set.
func (s *GuidelineStore) Replace(set *GuidelineSet) {
	s.current.Store(set)
}
