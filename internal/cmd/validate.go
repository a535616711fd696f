package cmd

import (
	"fmt"
	"os"

	"github.com/dccn-tg/viewer-toolset/pkg/validate"
	"github.com/dccn-tg/viewer-toolset/pkg/viewer"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(validateCmd)
}

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate the viewer configuration",
	Long: `Validate the viewer configuration of an app-config.js or JSON file given as
argument, or the viewer section of the toolset configuration file.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {

		var cfg viewer.Config

		if len(args) == 1 {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			if cfg, err = viewer.Decode(data); err != nil {
				return err
			}
		} else {
			conf, err := loadConfig()
			if err != nil {
				return err
			}
			cfg = conf.Viewer
		}

		err := cfg.Validate()
		if err == nil {
			fmt.Printf("valid, digest %s\n", cfg.Digest())
			return nil
		}

		var verr validate.ValidationError
		if errors.As(err, &verr) {
			for _, e := range verr.Errors() {
				fmt.Fprintf(os.Stderr, "%s: %s\n", e.Field, e.Message)
			}
			return fmt.Errorf("%d violation(s) found", len(verr.Errors()))
		}
		return err
	},
}
