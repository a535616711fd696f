package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/dccn-tg/viewer-toolset/pkg/config"
	"github.com/dccn-tg/viewer-toolset/pkg/ctxlog"
	log "github.com/dccn-tg/viewer-toolset/pkg/logger"
	ustr "github.com/dccn-tg/viewer-toolset/pkg/strings"
	"github.com/dccn-tg/viewer-toolset/pkg/viewer"
	"github.com/google/go-cmp/cmp"
	"github.com/google/renameio/v2"
	"gopkg.in/yaml.v3"
)

func TestWriteViewerConfigYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := writeViewerConfig(&buf, viewer.Default(), formatYAML); err != nil {
		t.Fatalf("%s", err)
	}
	t.Logf("yaml:\n%s", buf.String())

	var cfg viewer.Config
	if err := yaml.Unmarshal(buf.Bytes(), &cfg); err != nil {
		t.Fatalf("%s", err)
	}
	if diff := cmp.Diff(viewer.Default(), cfg.Normalize()); diff != "" {
		t.Errorf("yaml round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteViewerConfigUnknownFormat(t *testing.T) {
	if err := writeViewerConfig(&bytes.Buffer{}, viewer.Default(), "xml"); err == nil {
		t.Errorf("expect error on unknown format")
	}
}

func TestWriteAtomic(t *testing.T) {
	out := filepath.Join(t.TempDir(), "app-config.js")

	if err := writeAtomic(out, func(f *renameio.PendingFile) error {
		return writeViewerConfig(f, viewer.Default(), formatJS)
	}); err != nil {
		t.Fatalf("%s", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("%s", err)
	}
	cfg, err := viewer.Parse(data)
	if err != nil {
		t.Fatalf("%s", err)
	}
	if cfg.Digest() != viewer.Default().Digest() {
		t.Errorf("rendered file differs from default configuration")
	}

	// a failing write leaves the previous file in place
	if err := writeAtomic(out, func(f *renameio.PendingFile) error {
		return writeViewerConfig(f, viewer.Default(), "xml")
	}); err == nil {
		t.Errorf("expect error on failing write")
	}
	if after, _ := os.ReadFile(out); !bytes.Equal(after, data) {
		t.Errorf("failed write modified the target file")
	}
}

func TestArchiveAuth(t *testing.T) {
	key := "the-key-has-to-be-32-bytes-long!"
	enc, err := ustr.EncodeSecret([]byte("secret"), []byte(key))
	if err != nil {
		t.Fatalf("%s", err)
	}

	conf := config.Configuration{
		Viewer: viewer.Default(),
		Archives: map[string]config.ArchiveConfiguration{
			"dicomweb": {Username: "viewer", Password: enc},
		},
		SecretKey: key,
	}

	auth, err := archiveAuth(context.Background(), conf)
	if err != nil {
		t.Fatalf("%s", err)
	}

	a, ok := auth["dicomweb"]
	if !ok {
		t.Fatalf("no credentials for dicomweb")
	}
	if a.Username != "viewer" || a.Password != "secret" {
		t.Errorf("unexpected credentials: %+v", a)
	}

	conf.SecretKey = ""
	if _, err := archiveAuth(context.Background(), conf); err == nil {
		t.Errorf("expect error without secret key")
	}
}

func TestShortDigest(t *testing.T) {
	digest := viewer.Default().Digest()
	if got := shortDigest(digest); got != digest[:12] {
		t.Errorf("unexpected short digest: %s", got)
	}
	for _, d := range []string{"", "abc"} {
		if got := shortDigest(d); got != d {
			t.Errorf("short digest of %q: %q", d, got)
		}
	}
}

func TestCtxlogConfig(t *testing.T) {
	cases := []struct {
		name    string
		lc      log.Configuration
		verbose bool
		want    ctxlog.Config
	}{
		{
			name: "console",
			lc:   log.Configuration{EnableConsole: true, ConsoleLevel: log.Info},
			want: ctxlog.Config{Level: log.Info, Format: "console", OutputPaths: []string{"stderr"}},
		},
		{
			name:    "verbose",
			lc:      log.Configuration{EnableConsole: true, ConsoleLevel: log.Warn},
			verbose: true,
			want:    ctxlog.Config{Level: log.Debug, Format: "console", OutputPaths: []string{"stderr"}},
		},
		{
			name: "json file only",
			lc: log.Configuration{
				ConsoleLevel:   log.Info,
				EnableFile:     true,
				FileJSONFormat: true,
				FileLocation:   "/var/log/viewercfg/viewercfg.log",
			},
			want: ctxlog.Config{Level: log.Info, Format: "json", OutputPaths: []string{"/var/log/viewercfg/viewercfg.log"}},
		},
		{
			name: "console and file",
			lc: log.Configuration{
				EnableConsole: true,
				ConsoleLevel:  log.Debug,
				EnableFile:    true,
				FileLocation:  "viewercfg.log",
			},
			want: ctxlog.Config{Level: log.Debug, Format: "console", OutputPaths: []string{"stderr", "viewercfg.log"}},
		},
	}

	for _, c := range cases {
		if diff := cmp.Diff(c.want, ctxlogConfig(c.lc, c.verbose)); diff != "" {
			t.Errorf("[%s] mismatch (-want +got):\n%s", c.name, diff)
		}
	}
}

func TestCtxlogConfigBuilds(t *testing.T) {
	out := filepath.Join(t.TempDir(), "viewercfg.log")
	lc := log.Configuration{ConsoleLevel: log.Info, EnableFile: true, FileLocation: out}

	if err := ctxlog.BuildLogger(ctxlogConfig(lc, true)); err != nil {
		t.Fatalf("%s", err)
	}
	l := ctxlog.Logger(ctxlog.WithRqID(context.Background(), "rq-2"))
	l.Debug("request")
	l.Sync()

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("%s", err)
	}
	if !bytes.Contains(data, []byte("rq-2")) {
		t.Errorf("debug request log not written with verbose flag:\n%s", data)
	}
}
