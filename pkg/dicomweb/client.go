// Package dicomweb probes the DICOM-web endpoints (QIDO-RS, WADO-RS and
// WADO-URI) declared by the data sources of a viewer configuration.
package dicomweb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dccn-tg/viewer-toolset/pkg/logger"
	"github.com/dccn-tg/viewer-toolset/pkg/viewer"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// Endpoint identifies one of the DICOM-web endpoints of a data source.
type Endpoint string

// Endpoints of a DICOM-web data source.
const (
	EndpointQido    Endpoint = "qido-rs"
	EndpointWado    Endpoint = "wado-rs"
	EndpointWadoURI Endpoint = "wado-uri"
)

const mediaTypeDicomJSON = "application/dicom+json"

// Auth holds the credentials of an archive. Either basic auth or an OAuth2
// token source is used, the token source taking precedence.
type Auth struct {
	Username    string
	Password    string
	TokenSource oauth2.TokenSource
}

// BasicAuth returns an Auth using HTTP basic authentication.
func BasicAuth(username, password string) *Auth {
	return &Auth{Username: username, Password: password}
}

// ClientCredentialsAuth returns an Auth retrieving bearer tokens with the
// OAuth2 client-credentials grant from `tokenURL`. Tokens are cached until
// they expire.
func ClientCredentialsAuth(ctx context.Context, tokenURL, clientID, clientSecret string, scopes []string) *Auth {
	cc := clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
		Scopes:       scopes,
	}
	return &Auth{TokenSource: cc.TokenSource(ctx)}
}

func (a *Auth) apply(req *http.Request) error {
	if a.TokenSource != nil {
		token, err := a.TokenSource.Token()
		if err != nil {
			return errors.Wrap(err, "cannot retrieve access token")
		}
		token.SetAuthHeader(req)
		return nil
	}
	if a.Username != "" {
		req.SetBasicAuth(a.Username, a.Password)
	}
	return nil
}

// Result is the outcome of probing one endpoint.
type Result struct {
	SourceName string
	Endpoint   Endpoint
	URL        string
	// Status is the HTTP status code, 0 if no response was received.
	Status int
	// Credentials tells whether credentials were sent along.
	Credentials bool
	Latency     time.Duration
	// Studies found by the QIDO-RS query.
	Studies []Study
	Err     error
}

// OK returns true if the endpoint responded as expected.
func (r Result) OK() bool {
	return r.Err == nil
}

// Client probes DICOM-web endpoints.
type Client struct {
	// HTTP is the underlying client; http.DefaultClient if nil.
	HTTP *http.Client
	// Timeout of a single request. Defaults to 10 seconds.
	Timeout time.Duration
	// PublicURL is the URL the viewer is served from. It decides whether
	// credentials are sent to endpoints of `same-origin` data sources.
	PublicURL string
	// Auth holds the archive credentials per sourceName.
	Auth map[string]*Auth
	// Workers is the number of concurrent probes. Defaults to 4.
	Workers int
}

type task struct {
	idx        int
	sourceName string
	endpoint   Endpoint
	url        string
	policy     viewer.RequestCredentials
	includeTag bool
}

// Probe checks every endpoint of every data source in `cfg`. Results are
// returned in declaration order: for each data source QIDO-RS, WADO-RS and
// WADO-URI.
func (c *Client) Probe(ctx context.Context, cfg viewer.Config) []Result {

	var tasks []task
	for _, ds := range cfg.DataSources {
		dc := ds.Configuration
		for _, t := range []task{
			{endpoint: EndpointQido, url: dc.QidoRoot, includeTag: dc.QidoSupportsIncludeField},
			{endpoint: EndpointWado, url: dc.WadoRoot},
			{endpoint: EndpointWadoURI, url: dc.WadoURIRoot},
		} {
			t.idx = len(tasks)
			t.sourceName = ds.SourceName
			t.policy = dc.RequestOptions.RequestCredentials
			tasks = append(tasks, t)
		}
	}

	results := make([]Result, len(tasks))

	nworkers := c.Workers
	if nworkers <= 0 {
		nworkers = 4
	}

	// filling up the internal work channel
	wchan := make(chan task, 2*nworkers)
	go func() {
		defer close(wchan)
		for _, t := range tasks {
			select {
			case wchan <- t:
			case <-ctx.Done():
				return
			}
		}
	}()

	var wg sync.WaitGroup
	wg.Add(nworkers)

	for i := 0; i < nworkers; i++ {
		go func() {
			defer wg.Done()
			for t := range wchan {
				results[t.idx] = c.probe(ctx, t)
			}
		}()
	}

	// wait for all workers to finish
	wg.Wait()

	// tasks not dispatched due to cancellation
	for i, t := range tasks {
		if results[i].Endpoint == "" {
			results[i] = Result{
				SourceName: t.sourceName,
				Endpoint:   t.endpoint,
				URL:        t.url,
				Err:        ctx.Err(),
			}
		}
	}

	return results
}

func (c *Client) probe(ctx context.Context, t task) Result {

	log := logger.WithFields(logger.Fields{
		"source":     "dicomweb",
		"sourceName": t.sourceName,
		"endpoint":   t.endpoint,
	})

	r := Result{
		SourceName: t.sourceName,
		Endpoint:   t.endpoint,
		URL:        t.url,
	}

	target := t.url
	if t.endpoint == EndpointQido {
		target = qidoStudiesURL(t.url, t.includeTag)
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		r.Err = errors.Wrap(err, "cannot create request")
		return r
	}
	if t.endpoint == EndpointQido {
		req.Header.Set("Accept", mediaTypeDicomJSON)
	}

	if auth, ok := c.Auth[t.sourceName]; ok && c.sendCredentials(t.policy, t.url) {
		if err := auth.apply(req); err != nil {
			r.Err = err
			return r
		}
		r.Credentials = true
	}

	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}

	start := time.Now()
	rsp, err := hc.Do(req)
	r.Latency = time.Since(start)
	if err != nil {
		r.Err = errors.Wrapf(err, "cannot reach %s", target)
		log.Errorf("%s", r.Err)
		return r
	}
	defer rsp.Body.Close()
	r.Status = rsp.StatusCode

	switch {
	case rsp.StatusCode >= 500:
		r.Err = fmt.Errorf("server error: %s", rsp.Status)
	case t.endpoint == EndpointQido:
		r.Studies, r.Err = decodeStudies(rsp)
	default:
		// any other answer proves the endpoint is served
		io.Copy(io.Discard, rsp.Body)
	}

	if r.Err != nil {
		log.Errorf("probe %s failed: %s", target, r.Err)
	} else {
		log.Debugf("probe %s: %d in %s", target, r.Status, r.Latency)
	}

	return r
}

// sendCredentials applies the credential policy of the viewer to a probe
// of `target`.
func (c *Client) sendCredentials(policy viewer.RequestCredentials, target string) bool {
	switch policy {
	case viewer.CredentialsInclude:
		return true
	case viewer.CredentialsSameOrigin:
		if c.PublicURL == "" {
			return false
		}
		return origin(c.PublicURL) == origin(target)
	default:
		return false
	}
}

func origin(s string) string {
	u, err := url.Parse(s)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host)
}

func qidoStudiesURL(root string, includeField bool) string {
	q := url.Values{}
	q.Set("limit", "1")
	if includeField {
		q.Set("includefield", TagStudyDescription)
	}
	return strings.TrimRight(root, "/") + "/studies?" + q.Encode()
}

// decodeStudies reads the studies of a QIDO-RS answer. Only a 200 answer
// carries studies; other statuses below 500 leave them nil.
func decodeStudies(rsp *http.Response) ([]Study, error) {
	switch rsp.StatusCode {
	case http.StatusNoContent:
		return []Study{}, nil
	case http.StatusOK:
	default:
		io.Copy(io.Discard, rsp.Body)
		return nil, nil
	}

	var datasets []Dataset
	if err := json.NewDecoder(rsp.Body).Decode(&datasets); err != nil {
		return nil, errors.Wrap(err, "invalid DICOM JSON response")
	}

	studies := make([]Study, 0, len(datasets))
	for _, d := range datasets {
		studies = append(studies, NewStudy(d))
	}
	return studies, nil
}
