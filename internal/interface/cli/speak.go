package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var speakCmd = &cobra.Command{
	Use:   "speak [text]",
	Short: "Read text aloud, or the active session's last answer",
	RunE:  runSpeak,
}

func init() {
	rootCmd.AddCommand(speakCmd)
}

func runSpeak(cmd *cobra.Command, args []string) error {
	rt, err := openRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.close()

	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" {
		sess := rt.state.ActiveSession()
		if sess == nil || len(sess.History) == 0 {
			return fmt.Errorf("nothing to speak: the active session has no answers yet")
		}
		text = sess.History[len(sess.History)-1].ModelResponse
	}

	speaker, err := rt.speaker()
	if err != nil {
		return err
	}

	done := make(chan struct{})
	speaker.OnDone = func() { close(done) }
	speaker.Speak(text)
	<-done
	return nil
}
