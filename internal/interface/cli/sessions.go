package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"github.com/spf13/cobra"

	"github.com/docpilot/docchat/internal/core/models"
	"github.com/docpilot/docchat/internal/core/pdf"
)

var sessionsSince string

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage saved conversations",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved sessions",
	RunE:  runSessionsList,
}

var sessionsNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Create a new session and make it active",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.close()

		sess, err := rt.sessions.Create()
		if err != nil {
			return err
		}
		fmt.Printf("Created session %s\n", sess.ID)
		return nil
	},
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a session and its stored PDF",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.close()

		if rt.state.FindSession(args[0]) == nil {
			return fmt.Errorf("no session with id %s", args[0])
		}
		active, err := rt.sessions.Delete(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Deleted %s; active session is now %s\n", args[0], active.ID)
		return nil
	},
}

func init() {
	sessionsListCmd.Flags().StringVar(&sessionsSince, "since", "", `Only sessions created since, e.g. "last week" or "2 days ago"`)
	sessionsCmd.AddCommand(sessionsListCmd, sessionsNewCmd, sessionsDeleteCmd)
	rootCmd.AddCommand(sessionsCmd)
}

func runSessionsList(cmd *cobra.Command, args []string) error {
	rt, err := openRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.close()

	var cutoff time.Time
	if sessionsSince != "" {
		cutoff, err = parseNaturalTime(sessionsSince)
		if err != nil {
			return err
		}
	}

	for _, sess := range rt.state.Sessions {
		created := sessionCreatedAt(sess)
		if !cutoff.IsZero() && created.Before(cutoff) {
			continue
		}

		marker := " "
		if sess.ID == rt.state.ActiveID {
			marker = "*"
		}

		line := fmt.Sprintf("%s %s  %-43s %s, %d turn(s)",
			marker, sess.ID, sess.Title, humanize.Time(created), len(sess.History))

		if sess.HasPDF() {
			line += fmt.Sprintf("  [%s", sess.PDFFileName)
			if size, ok, err := rt.blobs.Size(sess.BlobKey()); err == nil && ok {
				line += fmt.Sprintf(", %s", humanize.Bytes(uint64(size)))
			}
			if len(sess.SelectedPages) > 0 {
				line += fmt.Sprintf(", pages %s", pdf.FormatSelection(sess.SelectedPages))
			}
			line += "]"
		}
		fmt.Println(line)
	}
	return nil
}

// sessionCreatedAt recovers the creation time from the timestamp id.
func sessionCreatedAt(sess *models.ChatSession) time.Time {
	ms, err := strconv.ParseInt(sess.ID, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}

// parseNaturalTime understands expressions like "last week" or "2 days ago".
func parseNaturalTime(text string) (time.Time, error) {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)

	r, err := w.Parse(text, time.Now())
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %q: %w", text, err)
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("could not understand %q as a point in time", text)
	}
	return r.Time, nil
}
