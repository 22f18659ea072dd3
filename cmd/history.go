package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/achernya/tvcapture/db"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func init() {
	historyCmd.AddCommand(historyLogCmd)
	rootCmd.AddCommand(historyCmd)
}

var (
	historyCmd = &cobra.Command{
		Use:   "history",
		Short: "List past recordings and previews",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := openDB()
			if err != nil {
				return err
			}
			sessions, err := db.GetAllSessions(d)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TOKEN\tKIND\tSTATE\tCHANNEL\tSTARTED\tCOMMANDS\tFILE")
			for _, s := range sessions {
				started := "-"
				if s.StartedAt != nil {
					started = humanize.Time(*s.StartedAt)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%s\n", s.Token, s.Kind, s.State, s.Channel, started, s.Commands, s.OutputFile)
			}
			return w.Flush()
		},
	}
	historyLogCmd = &cobra.Command{
		Use:   "log [token]",
		Short: "Print the commands a session ran and what they printed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := openDB()
			if err != nil {
				return err
			}
			session, err := db.FindSession(d, args[0])
			if err != nil {
				return fmt.Errorf("no session %q: %w", args[0], err)
			}
			out := cmd.OutOrStdout()
			for _, l := range session.RawLog {
				fmt.Fprintf(out, "== %s: %s (pid %d, %s)\n", l.Role, strings.Join(l.Args, " "), l.Pid, l.Outcome)
				r, err := db.NewLogReader(d, l.ID)
				if err != nil {
					return err
				}
				if _, err := io.Copy(out, r); err != nil {
					return err
				}
			}
			return nil
		},
	}
)
