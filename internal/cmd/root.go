package cmd

import (
	"os"

	"github.com/dccn-tg/viewer-toolset/pkg/config"
	"github.com/dccn-tg/viewer-toolset/pkg/ctxlog"
	log "github.com/dccn-tg/viewer-toolset/pkg/logger"
	"github.com/spf13/cobra"
)

var verbose bool
var configFile string

var logCfg log.Configuration

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "config.yml", "`path` of the configuration YAML file.")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// initiate default logger
	logCfg = log.Configuration{
		EnableConsole:     true,
		ConsoleJSONFormat: false,
		ConsoleLevel:      log.Info,
	}
	log.NewLogger(logCfg, log.InstanceLogrusLogger)
}

// loadConfig loads configuration YAML file specified by `configFile`, and
// re-initializes the logger with its `logging` section.
func loadConfig() (config.Configuration, error) {
	conf, err := config.LoadConfig(configFile)
	if err != nil {
		return conf, err
	}

	lc := conf.Logging
	if verbose {
		lc.ConsoleLevel = log.Debug
	}
	if err := log.NewLogger(lc, log.InstanceLogrusLogger); err != nil {
		log.Warnf("cannot apply logging configuration: %s", err)
	}

	log.Debugf("loaded configuration: %s", configFile)
	return conf, nil
}

// ctxlogConfig derives the configuration of the request logger from the
// `logging` section.
func ctxlogConfig(lc log.Configuration, verbose bool) ctxlog.Config {
	c := ctxlog.Config{
		Level:  lc.ConsoleLevel,
		Format: "console",
	}
	if verbose {
		c.Level = log.Debug
	}
	if lc.ConsoleJSONFormat {
		c.Format = "json"
	}
	if lc.EnableConsole {
		c.OutputPaths = append(c.OutputPaths, "stderr")
	}
	if lc.EnableFile && lc.FileLocation != "" {
		c.OutputPaths = append(c.OutputPaths, lc.FileLocation)
		if !lc.EnableConsole && lc.FileJSONFormat {
			c.Format = "json"
		}
	}
	return c
}

var rootCmd = &cobra.Command{
	Use:   "viewercfg",
	Short: "Utility CLI for managing the runtime configuration of the DICOM-web viewer.",
	Long: `Utility CLI for managing the runtime configuration (window.config) of the
DICOM-web viewer: validate it, render app-config.js, publish it over HTTP,
probe the DICOM-web archives it refers to and keep track of its revisions.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// reset logger level based on command flag
		if cmd.Flags().Changed("verbose") {
			logCfg.ConsoleLevel = log.Debug
		}
		log.NewLogger(logCfg, log.InstanceLogrusLogger)
	},
}

// Execute is the main entry point of the viewercfg command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Errorf("%s", err)
		os.Exit(1)
	}
}
