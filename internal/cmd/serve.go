package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dccn-tg/viewer-toolset/pkg/config"
	"github.com/dccn-tg/viewer-toolset/pkg/ctxlog"
	log "github.com/dccn-tg/viewer-toolset/pkg/logger"
	"github.com/dccn-tg/viewer-toolset/pkg/server"
	"github.com/dccn-tg/viewer-toolset/pkg/store"
	"github.com/spf13/cobra"
)

var serveListen string

func init() {
	serveCmd.Flags().StringVarP(&serveListen, "listen", "l", "", "network `address` to listen on, overriding server.listen")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Publish the viewer configuration over HTTP",
	Long: `Publish the viewer configuration as /app-config.js and /app-config.json.
The configuration file is watched; a modified viewer configuration is
published once it passes validation, otherwise the previous one keeps
being served.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {

		conf, err := loadConfig()
		if err != nil {
			return err
		}

		if err := ctxlog.BuildLogger(ctxlogConfig(conf.Logging, verbose)); err != nil {
			return err
		}

		opts := server.Options{CacheMaxAge: conf.Server.CacheMaxAge}

		if conf.Store.Path != "" {
			revs, err := store.OpenRevisions(conf.Store.Path)
			if err != nil {
				return err
			}
			defer revs.Close()
			opts.Revisions = revs
		}

		srv, err := server.New(conf.Viewer, opts)
		if err != nil {
			return err
		}

		if _, err := config.Watch(configFile, func(c config.Configuration, err error) {
			if err != nil {
				log.Errorf("cannot reload configuration: %s", err)
				return
			}
			changed, err := srv.Reload(c.Viewer)
			switch {
			case err != nil:
				log.Errorf("reloaded viewer configuration rejected: %s", err)
			case changed:
				log.Infof("reloaded viewer configuration, digest %s", c.Viewer.Digest())
			}
		}); err != nil {
			return err
		}

		addr := conf.Server.Listen
		if serveListen != "" {
			addr = serveListen
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		log.Infof("serving viewer configuration on %s", addr)
		return srv.Run(ctx, addr)
	},
}
