package cmd

import (
	"github.com/BurntSushi/toml"
	"github.com/achernya/tvcapture/config"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	configCmd.AddCommand(configSaveCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

var (
	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Show or store the capture parameters",
	}
	configSaveCmd = &cobra.Command{
		Use:   "save",
		Short: "Store the effective parameters in the settings file",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := effectiveParams()
			if err != nil {
				return err
			}
			path := viper.GetString(configFile)
			if err := config.SaveParameters(path, p); err != nil {
				log.Error().Err(err).Str("file", path).Msg("could not save settings")
				return nil
			}
			log.Info().Str("file", path).Msg("Settings saved")
			return nil
		},
	}
	configShowCmd = &cobra.Command{
		Use:   "show",
		Short: "Print the effective parameters as they would be saved",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := effectiveParams()
			if err != nil {
				return err
			}
			doc := map[string]map[string]string{config.ParamsSection: p.Flatten()}
			return toml.NewEncoder(cmd.OutOrStdout()).Encode(doc)
		},
	}
)
