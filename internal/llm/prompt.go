package llm

import (
	"fmt"

	"github.com/sevigo/review-bot/internal/core"
)

// PromptBuilder turns source files into review prompts. Snapshot freezes the
// active guideline set for one run.
type PromptBuilder struct {
	prompts    *PromptManager
	guidelines *GuidelineStore
	provider   ModelProvider
}

type numberedGuideline struct {
	Number int
	Text   string
}

type reviewPromptData struct {
	Preamble   string
	Language   string
	Guidelines []numberedGuideline
	Closing    string
	FileIndex  int
	Content    string
}

// NewPromptBuilder creates a PromptBuilder for the given provider's template.
func NewPromptBuilder(prompts *PromptManager, guidelines *GuidelineStore, provider ModelProvider) *PromptBuilder {
	if provider == "" {
		provider = DefaultProvider
	}
	return &PromptBuilder{prompts: prompts, guidelines: guidelines, provider: provider}
}

// Snapshot returns a Prompter bound to the guideline set active right now.
// Later reloads of the store do not affect it.
func (b *PromptBuilder) Snapshot() core.Prompter {
	return &RunPrompter{prompts: b.prompts, set: b.guidelines.Current(), provider: b.provider}
}

// RunPrompter renders prompts from one fixed guideline set.
type RunPrompter struct {
	prompts  *PromptManager
	set      *GuidelineSet
	provider ModelProvider
}

// Language reports the language of the frozen guideline set.
func (p *RunPrompter) Language() core.Language {
	return p.set.CoreLanguage()
}

// Build renders the review prompt for the file at the 1-based fileIndex.
// The content is embedded verbatim.
func (p *RunPrompter) Build(fileIndex int, fileContent string) (string, error) {
	numbered := make([]numberedGuideline, len(p.set.Guidelines))
	for i, text := range p.set.Guidelines {
		numbered[i] = numberedGuideline{Number: i + 1, Text: text}
	}

	prompt, err := p.prompts.Render(CodeReviewPrompt, p.provider, reviewPromptData{
		Preamble:   p.set.Preamble,
		Language:   p.set.Language,
		Guidelines: numbered,
		Closing:    p.set.Closing,
		FileIndex:  fileIndex,
		Content:    fileContent,
	})
	if err != nil {
		return "", fmt.Errorf("could not build prompt for file %d: %w", fileIndex, err)
	}
	return prompt, nil
}
