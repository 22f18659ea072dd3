package cmd

import (
	"fmt"

	"github.com/achernya/tvcapture/mencoder"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rawCodecs bool

func init() {
	rootCmd.AddCommand(codecsCmd)
	codecsCmd.Flags().BoolVar(&rawCodecs, "raw", false, "print the listing as mencoder wrote it")
}

var codecsCmd = &cobra.Command{
	Use:       "codecs audio|video",
	Short:     "List the codecs mencoder can encode with",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{mencoder.AudioCodecs, mencoder.VideoCodecs},
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDB()
		if err != nil {
			return err
		}
		m := mencoder.New(d, viper.GetString(mencoderBin), viper.GetString(mplayerBin))
		defer m.Close() //nolint:errcheck
		codecs, err := m.ListCodecs(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if rawCodecs {
			fmt.Fprintln(cmd.OutOrStdout(), codecs.Text)
			return nil
		}
		for _, name := range codecs.Names {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}
