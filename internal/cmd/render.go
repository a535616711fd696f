package cmd

import (
	"os"

	log "github.com/dccn-tg/viewer-toolset/pkg/logger"
	"github.com/dccn-tg/viewer-toolset/pkg/store"
	"github.com/google/renameio/v2"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var renderOutput string
var renderFormat string

func init() {
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "app-config.js", "`path` of the rendered file, \"-\" for stdout")
	renderCmd.Flags().StringVarP(&renderFormat, "format", "f", formatJS, "output `format`: js, json or yaml")
	rootCmd.AddCommand(renderCmd)
}

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the validated viewer configuration",
	Long: `Render the viewer configuration of the toolset configuration file, by
default as the app-config.js script. The file is replaced atomically. When a
revision store is configured, the rendered configuration is recorded.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {

		conf, err := loadConfig()
		if err != nil {
			return err
		}

		cfg, err := conf.ViewerConfig()
		if err != nil {
			return err
		}

		if renderOutput == "-" {
			return writeViewerConfig(os.Stdout, cfg, renderFormat)
		}

		if err := writeAtomic(renderOutput, func(f *renameio.PendingFile) error {
			return writeViewerConfig(f, cfg, renderFormat)
		}); err != nil {
			return err
		}
		log.Infof("rendered %s, digest %s", renderOutput, cfg.Digest())

		if conf.Store.Path == "" {
			return nil
		}

		revs, err := store.OpenRevisions(conf.Store.Path)
		if err != nil {
			return err
		}
		defer revs.Close()

		rev, added, err := revs.Record(cfg)
		if err != nil {
			return err
		}
		if added {
			log.Infof("recorded revision %d", rev.Seq)
		} else {
			log.Debugf("configuration unchanged since revision %d", rev.Seq)
		}
		return nil
	},
}

// writeAtomic writes `path` through a pending file that replaces the target
// only when `write` succeeds.
func writeAtomic(path string, write func(*renameio.PendingFile) error) error {
	f, err := renameio.NewPendingFile(path, renameio.WithPermissions(0644))
	if err != nil {
		return errors.Wrapf(err, "cannot create pending file for %s", path)
	}
	defer f.Cleanup()

	if err := write(f); err != nil {
		return err
	}

	if err := f.CloseAtomicallyReplace(); err != nil {
		return errors.Wrapf(err, "cannot replace %s", path)
	}
	return nil
}
