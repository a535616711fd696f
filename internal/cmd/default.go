package cmd

import (
	"os"

	"github.com/dccn-tg/viewer-toolset/pkg/viewer"
	"github.com/spf13/cobra"
)

var defaultFormat string

func init() {
	defaultCmd.Flags().StringVarP(&defaultFormat, "format", "f", formatJS, "output `format`: js, json or yaml")
	rootCmd.AddCommand(defaultCmd)
}

var defaultCmd = &cobra.Command{
	Use:   "default",
	Short: "Print the reference viewer configuration",
	Long:  ``,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeViewerConfig(os.Stdout, viewer.Default(), defaultFormat)
	},
}
