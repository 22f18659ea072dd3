package cmd

import (
	"fmt"
	"io"

	"github.com/achernya/tvcapture/mencoder"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(probeCmd)
}

func printChoices(w io.Writer, title string, choices []mencoder.Choice) {
	fmt.Fprintln(w, title)
	if len(choices) == 0 {
		fmt.Fprintln(w, "  (none reported)")
	}
	for _, c := range choices {
		fmt.Fprintf(w, "  %d = %s\n", c.ID, c.Name)
	}
}

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "List the norms and inputs the capture device offers",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := effectiveParams()
		if err != nil {
			return err
		}
		d, err := openDB()
		if err != nil {
			return err
		}
		m := mencoder.New(d, viper.GetString(mencoderBin), viper.GetString(mplayerBin))
		defer m.Close() //nolint:errcheck
		info, err := m.ProbeDevice(cmd.Context(), p)
		if err != nil {
			return err
		}
		printChoices(cmd.OutOrStdout(), "norms:", info.Norms)
		printChoices(cmd.OutOrStdout(), "inputs:", info.Inputs)
		return nil
	},
}
