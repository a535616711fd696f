package cmd

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/dccn-tg/viewer-toolset/pkg/store"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var historyFormat string

func init() {
	historyShowCmd.Flags().StringVarP(&historyFormat, "format", "f", formatJS, "output `format`: js, json or yaml")
	historyCmd.AddCommand(historyListCmd, historyShowCmd)
	rootCmd.AddCommand(historyCmd)
}

// openRevisions opens the revision store of the loaded configuration.
func openRevisions() (*store.Revisions, error) {
	conf, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if conf.Store.Path == "" {
		return nil, errors.New("no revision store configured (store.path)")
	}
	return store.OpenRevisions(conf.Store.Path)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect published revisions of the viewer configuration",
	Long:  ``,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded revisions",
	Long:  ``,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		revs, err := openRevisions()
		if err != nil {
			return err
		}
		defer revs.Close()

		list, err := revs.List()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "REVISION\tCREATED\tDIGEST\tDEFAULT SOURCE")
		for _, r := range list {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", r.Seq, r.CreatedAt.Format(time.RFC3339), shortDigest(r.Digest), r.Config.DefaultDataSourceName)
		}
		return w.Flush()
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show [revision]",
	Short: "Print the viewer configuration of a revision",
	Long:  ``,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		seq, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("revision not an integer: %s", args[0])
		}

		revs, err := openRevisions()
		if err != nil {
			return err
		}
		defer revs.Close()

		r, err := revs.Get(seq)
		if err != nil {
			return err
		}
		return writeViewerConfig(os.Stdout, r.Config, historyFormat)
	},
}

// shortDigest abbreviates a digest for tabular output.
func shortDigest(d string) string {
	if len(d) > 12 {
		return d[:12]
	}
	return d
}
