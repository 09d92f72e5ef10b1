package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ossyrian/wadlumper/internal/config"
	"github.com/ossyrian/wadlumper/internal/logging"
)

var (
	cfgFile  string
	cfg      *config.Config
	closeLog = func() error { return nil }
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:                "wadlumper",
	Short:              "Build, edit and inspect Quake WAD2 lump archives",
	SilenceUsage:       true,
	SilenceErrors:      true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error { return closeLog() },
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to config file")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (trace, debug, info, warn, error, fatal)")
	rootCmd.PersistentFlags().String("log-output-dir", "", "directory for JSON log files, written alongside the console log")

	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_output_dir", rootCmd.PersistentFlags().Lookup("log-output-dir"))

	rootCmd.AddCommand(listCmd, packCmd, extractCmd, verifyCmd)
}

// initConfig layers an optional TOML file and WADLUMPER_* variables under
// the command-line flags
func initConfig() {
	viper.SetDefault("lump_ext", ".lmp")
	viper.SetDefault("extract_dir", ".")

	viper.SetConfigType("toml")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		if dir, err := os.UserConfigDir(); err == nil {
			viper.AddConfigPath(filepath.Join(dir, "wadlumper"))
		}
		viper.AddConfigPath("/etc/wadlumper")
	}

	viper.SetEnvPrefix("WADLUMPER")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	err := viper.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	switch {
	case err == nil:
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	case cfgFile != "" || !errors.As(err, &notFound):
		// an explicit or malformed config file must not be ignored
		fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
		os.Exit(1)
	}
}

// setup loads the merged configuration and installs the logger before any
// subcommand runs
func setup(cmd *cobra.Command, args []string) error {
	cfg = &config.Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	c, err := logging.Setup(logging.Options{Level: cfg.LogLevel, Dir: cfg.LogOutputDir})
	if err != nil {
		return fmt.Errorf("could not set up logging: %w", err)
	}
	closeLog = c

	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		closeLog()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
