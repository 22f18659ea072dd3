package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/achernya/tvcapture/capture"
	"github.com/achernya/tvcapture/db"
	"github.com/achernya/tvcapture/tui"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	tea "github.com/charmbracelet/bubbletea"
)

var (
	recordAt  string
	overwrite bool
	noTui     bool
)

var atLayouts = []string{
	time.RFC3339,
	time.DateTime,
	"2006-01-02 15:04",
	time.TimeOnly,
	"15:04",
}

// parseAt reads a start time. A bare time of day means the next time
// the clock shows it.
func parseAt(s string, now time.Time) (time.Time, error) {
	for _, layout := range atLayouts {
		t, err := time.ParseInLocation(layout, s, now.Location())
		if err != nil {
			continue
		}
		if layout == time.TimeOnly || layout == "15:04" {
			t = time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), t.Second(), 0, now.Location())
			if t.Before(now) {
				t = t.AddDate(0, 0, 1)
			}
		}
		return t, nil
	}
	return time.Time{}, fmt.Errorf("cannot understand start time %q", s)
}

func recordEnded(e any) bool {
	switch e := e.(type) {
	case capture.RecordingEnded, capture.ScheduleCancelled:
		return true
	case capture.Problem:
		// A scheduled start that could not launch.
		return e.Role == db.RoleRecorder
	}
	return false
}

func init() {
	rootCmd.AddCommand(recordCmd)
	recordCmd.Flags().StringVar(&recordAt, "at", "", "start at this time instead of now (15:04, 2006-01-02 15:04, RFC 3339)")
	recordCmd.Flags().BoolVarP(&overwrite, "yes", "y", false, "overwrite the output file if it exists")
	recordCmd.Flags().BoolVar(&noTui, "no-tui", false, "log progress instead of showing the status screen")
}

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record from the capture device, now or at a set time",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := effectiveParams()
		if err != nil {
			return err
		}
		var at time.Time
		if recordAt != "" {
			if at, err = parseAt(recordAt, time.Now()); err != nil {
				return err
			}
		}
		d, err := openDB()
		if err != nil {
			return err
		}
		s := newSession(d)
		// Processes outlive an interrupt long enough to be stopped
		// with SIGTERM by Shutdown.
		procCtx := context.WithoutCancel(cmd.Context())
		if at.IsZero() {
			file, err := s.ctl.Record(procCtx, p, overwrite)
			if errors.Is(err, capture.ErrFileExists) {
				return fmt.Errorf("%s: %w, pass --yes to overwrite", file, err)
			}
			if err != nil {
				return err
			}
			log.Info().Str("file", file).Msg("Recording")
		} else {
			if err := s.ctl.Schedule(procCtx, p, at); err != nil {
				return err
			}
		}

		var model tea.Model
		if !noTui {
			model = tui.NewRecordTui(s.ctl)
		}
		return s.watch(cmd.Context(), model, recordEnded)
	},
}
