package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/achernya/tvcapture/config"
	"github.com/achernya/tvcapture/db"
	"github.com/achernya/tvcapture/logging"
	"github.com/achernya/tvcapture/params"
	"github.com/charmbracelet/fang"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gorm.io/gorm"
)

// Settings that are not capture parameters.
const (
	configFile  = "config"
	mencoderBin = "mencoder"
	mplayerBin  = "mplayer"
	dbdir       = "dbdir"
	logdir      = "logdir"
	verbose     = "verbose"
)

const dbFile = "tvcapture.sqlite"

var rootCmd = &cobra.Command{
	Use:   "tvcapture",
	Short: "tvcapture records and previews analog TV through mencoder and mplayer",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		initConfig()
		return nil
	},
	SilenceUsage: true,
}

func flagName(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}

func init() {
	f := rootCmd.PersistentFlags()
	f.String(configFile, config.DefaultPath(), "settings file")
	f.String(mencoderBin, "mencoder", "mencoder binary")
	f.String(mplayerBin, "mplayer", "mplayer binary")
	f.String(dbdir, config.DefaultDir(), "directory holding the session history")
	f.String(logdir, config.DefaultDir(), "directory holding the log file")
	f.BoolP(verbose, "v", false, "log debug output")
	for _, key := range []string{configFile, mencoderBin, mplayerBin, dbdir, logdir, verbose} {
		viper.BindPFlag(key, f.Lookup(key)) //nolint:errcheck
	}

	paramFlags(f)

	viper.SetEnvPrefix("tvcapture")
	viper.AutomaticEnv()
}

// paramFlags adds one flag per capture parameter, bound to the viper
// key of the same name.
func paramFlags(f *pflag.FlagSet) {
	defaults := params.Default().Flatten()
	for _, key := range params.Keys() {
		name := flagName(key)
		if params.IsBool(key) {
			f.Bool(name, defaults[key] == params.FormatBool(true), "capture parameter "+key)
		} else {
			f.String(name, defaults[key], "capture parameter "+key)
		}
		viper.BindPFlag(key, f.Lookup(name)) //nolint:errcheck
	}
}

// initConfig layers the settings file under flags and environment:
// stored values become viper defaults.
func initConfig() {
	path := viper.GetString(configFile)
	stored, err := config.Load(path, config.ParamsSection)
	if err != nil {
		log.Warn().Err(err).Msg("ignoring settings file")
	}
	for key, val := range stored {
		viper.SetDefault(key, val)
	}
	tools, err := config.Load(path, config.ToolsSection)
	if err == nil {
		for _, key := range []string{mencoderBin, mplayerBin, dbdir, logdir} {
			if val, ok := tools[key]; ok {
				viper.SetDefault(key, val)
			}
		}
	}
	logging.Init(viper.GetString(logdir), viper.GetBool(verbose)) //nolint:errcheck
}

// effectiveParams collects every parameter from flags, environment,
// settings file and defaults, in that order of precedence.
func effectiveParams() (*params.Parameters, error) {
	values := make(map[string]string)
	for _, key := range params.Keys() {
		values[key] = viper.GetString(key)
	}
	p := params.FromMap(values)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func openDB() (*gorm.DB, error) {
	dir := viper.GetString(dbdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return db.OpenDB(filepath.Join(dir, dbFile))
}

func Execute() {
	err := fang.Execute(context.Background(), rootCmd)
	logging.Close()
	if err != nil {
		os.Exit(1)
	}
}
