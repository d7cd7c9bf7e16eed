// Package render turns a review result into the documents returned to clients.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/sevigo/review-bot/internal/core"
	"github.com/sevigo/review-bot/internal/gitutil"
)

//go:embed templates/*.html
var templateFiles embed.FS

// HTMLContentType is the media type of the rendered feedback document.
const HTMLContentType = "text/html; charset=utf-8"

// HTMLRenderer renders review results as a standalone HTML page. Feedback is
// converted from Markdown; raw HTML inside the feedback is not passed through.
type HTMLRenderer struct {
	markdown goldmark.Markdown
	page     *template.Template
}

type pageData struct {
	RepoName string
	RepoURL  string
	Branch   string
	HeadSHA  string
	Language string
	Failed   []int
	Files    []fileData
}

type fileData struct {
	Index    int
	Label    string
	Name     string
	Feedback template.HTML
	Error    string
	Code     string
}

// NewHTMLRenderer parses the embedded page template.
func NewHTMLRenderer() (*HTMLRenderer, error) {
	page, err := template.ParseFS(templateFiles, "templates/feedback.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse feedback template: %w", err)
	}
	return &HTMLRenderer{
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
		),
		page: page,
	}, nil
}

// Markdown converts one feedback text to HTML.
func (r *HTMLRenderer) Markdown(source string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.markdown.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("failed to convert markdown: %w", err)
	}
	// goldmark escapes raw HTML unless WithUnsafe is set.
	return template.HTML(buf.String()), nil
}

// Render writes the feedback document for result to w.
func (r *HTMLRenderer) Render(w io.Writer, result *core.ReviewResult) error {
	data := pageData{
		RepoName: result.RepoName,
		RepoURL:  gitutil.Redact(result.RepoURL),
		Branch:   result.Branch,
		HeadSHA:  result.HeadSHA,
		Language: result.Language,
		Failed:   result.FailedIndexes(),
		Files:    make([]fileData, 0, len(result.Files)),
	}

	for _, f := range result.Files {
		item := fileData{
			Index: f.Index,
			Label: result.Label(f.Index),
			Name:  f.Name,
			Code:  f.Content,
		}
		if f.Failed() {
			item.Error = f.Err.Error()
		} else {
			feedback, err := r.Markdown(f.Feedback)
			if err != nil {
				return fmt.Errorf("file %d: %w", f.Index, err)
			}
			item.Feedback = feedback
		}
		data.Files = append(data.Files, item)
	}

	var buf bytes.Buffer
	if err := r.page.ExecuteTemplate(&buf, "feedback.html", data); err != nil {
		return fmt.Errorf("failed to render feedback document: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}
