package llm

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"text/template"
)

//go:embed prompts/*.prompt
var promptFiles embed.FS

const promptExt = ".prompt"

type ModelProvider string
type PromptKey string

const (
	DefaultProvider  ModelProvider = "default"
	CodeReviewPrompt PromptKey     = "code_review"
)

var ErrInvalidPromptName = errors.New("prompt file must be named <key>_<provider>.prompt")

// PromptManager holds parsed prompt templates keyed by task and provider.
// A provider without its own file falls back to "default".
type PromptManager struct {
	templates map[PromptKey]map[ModelProvider]*template.Template
}

// NewPromptManager loads the prompts embedded in the binary.
func NewPromptManager() (*PromptManager, error) {
	return NewPromptManagerFromFS(promptFiles, "prompts")
}

// NewPromptManagerFromFS loads every .prompt file in dir of fsys. The code
// review default must be among them.
func NewPromptManagerFromFS(fsys fs.FS, dir string) (*PromptManager, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompts directory: %w", err)
	}

	pm := &PromptManager{templates: make(map[PromptKey]map[ModelProvider]*template.Template)}
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != promptExt {
			continue
		}
		if err := pm.load(fsys, path.Join(dir, entry.Name())); err != nil {
			return nil, err
		}
	}

	if _, err := pm.Get(CodeReviewPrompt, DefaultProvider); err != nil {
		return nil, err
	}
	return pm, nil
}

func (pm *PromptManager) load(fsys fs.FS, file string) error {
	key, provider, err := parsePromptName(path.Base(file))
	if err != nil {
		return err
	}

	content, err := fs.ReadFile(fsys, file)
	if err != nil {
		return fmt.Errorf("failed to read prompt %s: %w", file, err)
	}

	tmpl, err := template.New(string(key) + "_" + string(provider)).Option("missingkey=error").Parse(string(content))
	if err != nil {
		return fmt.Errorf("failed to parse prompt %s: %w", file, err)
	}

	if pm.templates[key] == nil {
		pm.templates[key] = make(map[ModelProvider]*template.Template)
	}
	pm.templates[key][provider] = tmpl
	return nil
}

// parsePromptName splits "code_review_openai.prompt" into its key
// ("code_review") and provider ("openai") at the last underscore.
func parsePromptName(name string) (PromptKey, ModelProvider, error) {
	base := strings.TrimSuffix(name, promptExt)
	i := strings.LastIndex(base, "_")
	if i <= 0 || i == len(base)-1 {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidPromptName, name)
	}
	return PromptKey(base[:i]), ModelProvider(base[i+1:]), nil
}

// Get returns the template for key and provider, or the key's default.
func (pm *PromptManager) Get(key PromptKey, provider ModelProvider) (*template.Template, error) {
	byProvider, ok := pm.templates[key]
	if !ok {
		return nil, fmt.Errorf("no prompts registered for %q", key)
	}
	if tmpl, ok := byProvider[provider]; ok {
		return tmpl, nil
	}
	if tmpl, ok := byProvider[DefaultProvider]; ok {
		return tmpl, nil
	}
	return nil, fmt.Errorf("no %q prompt for provider %q and no default", key, provider)
}

// Render executes the selected template with data.
func (pm *PromptManager) Render(key PromptKey, provider ModelProvider, data any) (string, error) {
	tmpl, err := pm.Get(key, provider)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s prompt: %w", key, err)
	}
	return buf.String(), nil
}
