package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/dccn-tg/viewer-toolset/pkg/config"
	"github.com/dccn-tg/viewer-toolset/pkg/dicomweb"
	log "github.com/dccn-tg/viewer-toolset/pkg/logger"
	"github.com/spf13/cobra"
)

var probeTimeout time.Duration
var probeWorkers int

func init() {
	probeCmd.Flags().DurationVarP(&probeTimeout, "timeout", "t", 10*time.Second, "`timeout` of a single request")
	probeCmd.Flags().IntVarP(&probeWorkers, "nthreads", "n", 4, "`number` of concurrent probes")
	rootCmd.AddCommand(probeCmd)
}

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Probe the DICOM-web endpoints of all data sources",
	Long: `Probe the QIDO-RS, WADO-RS and WADO-URI endpoints of every data source of
the viewer configuration. Credentials from the archives section are sent
following the requestCredentials policy of each data source.`,
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

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		auth, err := archiveAuth(ctx, conf)
		if err != nil {
			return err
		}

		c := dicomweb.Client{
			Timeout:   probeTimeout,
			PublicURL: conf.Server.PublicURL,
			Auth:      auth,
			Workers:   probeWorkers,
		}

		results := c.Probe(ctx, cfg)

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SOURCE\tENDPOINT\tSTATUS\tLATENCY\tCREDENTIALS\tRESULT")

		nfailed := 0
		for _, r := range results {
			res := "ok"
			if r.Endpoint == dicomweb.EndpointQido && r.OK() {
				res = fmt.Sprintf("ok, %d study", len(r.Studies))
			}
			if !r.OK() {
				res = r.Err.Error()
				nfailed++
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%v\t%s\n",
				r.SourceName, r.Endpoint, r.Status, r.Latency.Round(time.Millisecond), r.Credentials, res)
		}
		w.Flush()

		if nfailed > 0 {
			return fmt.Errorf("%d of %d endpoints failed", nfailed, len(results))
		}
		return nil
	},
}

// archiveAuth converts the archives section into probe credentials.
func archiveAuth(ctx context.Context, conf config.Configuration) (map[string]*dicomweb.Auth, error) {
	auth := make(map[string]*dicomweb.Auth)

	for _, ds := range conf.Viewer.DataSources {
		a, ok := conf.Archive(ds.SourceName)
		if !ok {
			continue
		}

		a, err := a.Decrypt(conf.SecretKey)
		if err != nil {
			return nil, fmt.Errorf("archive %s: %s", ds.SourceName, err)
		}

		switch {
		case a.AuthURL != "":
			log.Debugf("archive %s: using OAuth2 client credentials of %s", ds.SourceName, a.ClientID)
			auth[ds.SourceName] = dicomweb.ClientCredentialsAuth(ctx, a.AuthURL, a.ClientID, a.ClientSecret, a.Scopes)
		case a.Username != "":
			log.Debugf("archive %s: using basic auth of %s", ds.SourceName, a.Username)
			auth[ds.SourceName] = dicomweb.BasicAuth(a.Username, a.Password)
		}
	}

	return auth, nil
}
