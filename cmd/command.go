package cmd

import (
	"fmt"
	"time"

	"github.com/achernya/tvcapture/filename"
	"github.com/achernya/tvcapture/mencoder"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(commandCmd)
}

var commandCmd = &cobra.Command{
	Use:   "command",
	Short: "Print the record and preview command lines without running them",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := effectiveParams()
		if err != nil {
			return err
		}
		file := filename.Make(p.OutputFile, p.ChannelText(), time.Now(), p.AppendSuffix)
		fmt.Fprintln(cmd.OutOrStdout(), mencoder.RecordCommand(viper.GetString(mencoderBin), p, file))
		fmt.Fprintln(cmd.OutOrStdout(), mencoder.PreviewCommand(viper.GetString(mplayerBin), p))
		return nil
	},
}
