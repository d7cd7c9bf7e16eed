package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sevigo/review-bot/internal/core"
	"github.com/sevigo/review-bot/internal/render"
	"github.com/sevigo/review-bot/internal/wire"
)

var (
	reviewBranch string
	reviewJSON   bool
	reviewOut    string
	reviewWidth  int
)

var (
	titleColor = color.New(color.FgCyan, color.Bold)
	labelColor = color.New(color.FgGreen, color.Bold)
	errorColor = color.New(color.FgRed)
	dimColor   = color.New(color.FgHiBlack)
)

var reviewCmd = &cobra.Command{
	Use:   "review <repo-url>",
	Short: "Review every source file of a repository",
	Long: `Clone a repository, generate feedback for each source file of the configured
language and print it to the terminal.

Examples:
  review-cli review https://github.com/owner/repo
  review-cli review --branch develop https://github.com/owner/repo
  review-cli review --json https://github.com/owner/repo > feedback.json
  review-cli review --out feedback.html https://github.com/owner/repo`,
	Args: cobra.ExactArgs(1),
	RunE: runReview,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	reviewCmd.Flags().StringVarP(&reviewBranch, "branch", "b", "", "branch to check out (default: review.branch)")
	reviewCmd.Flags().BoolVar(&reviewJSON, "json", false, "print the label to feedback mapping as JSON")
	reviewCmd.Flags().StringVarP(&reviewOut, "out", "o", "", "write the HTML feedback page to this file")
	reviewCmd.Flags().IntVar(&reviewWidth, "width", 100, "word wrap width for terminal output")
	rootCmd.AddCommand(reviewCmd)
}

func runReview(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, cleanup, err := wire.InitializeApp(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize app: %w\n\nTip: check that your config.yaml exists and is valid", err)
	}
	defer cleanup()

	out := cmd.OutOrStdout()
	if !reviewJSON {
		titleColor.Fprintln(out, "review-bot")
		dimColor.Fprintf(out, "   Target: %s\n\n", args[0])
	}

	result, err := app.Job.Run(ctx, &core.ReviewRequest{URL: args[0], Branch: reviewBranch})
	if err != nil {
		return err
	}

	switch {
	case reviewOut != "":
		return writeHTML(out, reviewOut, result, app.HTML)
	case reviewJSON:
		return render.JSON(out, result)
	default:
		md, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(reviewWidth),
		)
		if err != nil {
			return fmt.Errorf("failed to create markdown renderer: %w", err)
		}
		return printReview(out, result, md)
	}
}

func writeHTML(out io.Writer, path string, result *core.ReviewResult, html *render.HTMLRenderer) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := html.Render(f, result); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Fprintf(out, "Feedback written to %s\n", path)
	return nil
}

// markdownRenderer is satisfied by *glamour.TermRenderer.
type markdownRenderer interface {
	Render(in string) (string, error)
}

func printReview(w io.Writer, result *core.ReviewResult, md markdownRenderer) error {
	dimColor.Fprintf(w, "   Repository: %s  Branch: %s  Commit: %s\n", result.RepoName, result.Branch, shortSHA(result.HeadSHA))

	if len(result.Files) == 0 {
		fmt.Fprintf(w, "\nNo %s files were found in the repository.\n", result.Language)
		return nil
	}

	for _, f := range result.Files {
		fmt.Fprintln(w)
		labelColor.Fprintf(w, "%s", result.Label(f.Index))
		dimColor.Fprintf(w, "  %s\n", f.Name)

		if f.Failed() {
			errorColor.Fprintf(w, "   Feedback could not be generated: %v\n", f.Err)
			continue
		}

		rendered, err := md.Render(f.Feedback)
		if err != nil {
			// Fall back to the raw markdown.
			rendered = f.Feedback + "\n"
		}
		fmt.Fprint(w, rendered)
	}

	if failed := result.FailedIndexes(); len(failed) > 0 {
		parts := make([]string, len(failed))
		for i, idx := range failed {
			parts[i] = strconv.Itoa(idx)
		}
		fmt.Fprintln(w)
		errorColor.Fprintf(w, "Feedback could not be generated for file(s): %s\n", strings.Join(parts, ", "))
	}

	dimColor.Fprintf(w, "\nReviewed %d file(s) in %s\n", len(result.Files), result.FinishedAt.Sub(result.StartedAt).Round(time.Millisecond))
	return nil
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}

var _ markdownRenderer = (*glamour.TermRenderer)(nil)
