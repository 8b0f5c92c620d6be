package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/docpilot/docchat/internal/core/chat"
	"github.com/docpilot/docchat/internal/core/pdf"
)

var (
	askPDF   string
	askPages string
	askPlain bool
	askNew   bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask one question about selected PDF pages",
	Long: `Ask a question about the selected pages of a PDF and print the answer.

Without --pdf, the active session's document and page selection are used.
With --pdf, the file is attached to the session first.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askPDF, "pdf", "", "PDF file to attach before asking")
	askCmd.Flags().StringVar(&askPages, "pages", "", `Pages to send, e.g. "1-3,7"`)
	askCmd.Flags().BoolVar(&askPlain, "plain", false, "Print the raw answer without Markdown rendering")
	askCmd.Flags().BoolVar(&askNew, "new", false, "Start a new session for this question")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	rt, err := openRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.close()

	if askNew {
		if _, err := rt.sessions.Create(); err != nil {
			return err
		}
	}

	if askPDF != "" {
		data, err := os.ReadFile(askPDF)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", askPDF, err)
		}
		if err := rt.sessions.AttachPDF(filepath.Base(askPDF), data); err != nil {
			return err
		}
	}

	if askPages != "" {
		pages, err := pdf.ParseSelection(askPages)
		if err != nil {
			return err
		}
		if err := rt.sessions.SetSelection(pages); err != nil {
			return err
		}
	}

	question := strings.Join(args, " ")

	full, err := rt.orch.Ask(ctx, question, chat.Callbacks{
		OnProgress: func(done, total int) {
			fmt.Fprintf(os.Stderr, "\rRendering pages... %d/%d", done, total)
			if done == total {
				fmt.Fprintln(os.Stderr)
			}
		},
		OnFragment: func(fragment string) {
			if askPlain {
				fmt.Print(fragment)
			}
		},
	})
	if err != nil {
		if errors.Is(err, chat.ErrCredentials) {
			return fmt.Errorf("%w\nSet a key with: docchat config set-key <key> (or export GEMINI_API_KEY)", err)
		}
		return err
	}

	if askPlain {
		fmt.Println()
		return nil
	}
	return printMarkdown(full, rt.cfg.Theme)
}

// printMarkdown renders the answer for the terminal, falling back to raw
// text when the renderer cannot be built.
func printMarkdown(text, theme string) error {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(100)}
	if theme == "" || theme == "auto" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(theme))
	}

	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		fmt.Println(text)
		return nil
	}
	out, err := r.Render(text)
	if err != nil {
		fmt.Println(text)
		return nil
	}
	fmt.Print(out)
	return nil
}
