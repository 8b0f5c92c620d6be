package cli

import (
	"fmt"
	"log"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/docpilot/docchat/internal/core/speech"
	"github.com/docpilot/docchat/internal/interface/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive chat",
	Long:  "Launch an interactive terminal UI for chatting with PDF pages",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	rt, err := openRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.close()

	// Speech is best-effort; a missing engine only disables the keybinding.
	if speaker, err := rt.speaker(); err != nil {
		log.Printf("text-to-speech disabled: %v", err)
	} else {
		rt.state.Speaker = speaker
	}
	if capture := speech.NewExecCapture(rt.cfg.STTCommand); capture != nil {
		rt.state.Recognizer = speech.NewRecognizer(capture)
	}

	model := tui.New(rt.state, rt.sessions, rt.orch, rt.cfg.Theme)
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}
