package cmd

import (
	"context"

	"github.com/achernya/tvcapture/capture"
	"github.com/achernya/tvcapture/db"
	"github.com/achernya/tvcapture/tui"
	"github.com/spf13/cobra"

	tea "github.com/charmbracelet/bubbletea"
)

func init() {
	rootCmd.AddCommand(previewCmd)
	previewCmd.Flags().BoolVar(&noTui, "no-tui", false, "just show the picture, without live controls")
}

func previewEnded(e any) bool {
	s, ok := e.(capture.StateChanged)
	return ok && s.Role == db.RolePreview && s.State != capture.Running
}

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Watch the capture device with mplayer and retune it live",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := effectiveParams()
		if err != nil {
			return err
		}
		d, err := openDB()
		if err != nil {
			return err
		}
		s := newSession(d)
		if err := s.ctl.Preview(context.WithoutCancel(cmd.Context()), p); err != nil {
			return err
		}
		var model tea.Model
		if !noTui {
			model = tui.NewPreviewTui(s.ctl, p)
		}
		return s.watch(cmd.Context(), model, previewEnded)
	},
}
