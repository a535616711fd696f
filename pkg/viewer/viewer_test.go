package viewer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dccn-tg/viewer-toolset/pkg/validate"
	"github.com/google/go-cmp/cmp"
)

// appConfigJS is the deployed app-config.js the default configuration is
// derived from, rewritten in strict JSON.
const appConfigJS = `window.config = {
  "routerBasename": "/",
  "extensions": [],
  "modes": [],
  "showStudyList": true,
  "dataSources": [
    {
      "namespace": "@ohif/extension-default.dataSourcesModule.dicomweb",
      "sourceName": "dicomweb",
      "configuration": {
        "friendlyName": "DCM4CHEE DICOM Web",
        "name": "DCM4CHEE",
        "wadoUriRoot": "http://10.0.0.10:8080/dcm4chee-arc/aets/DCM4CHEE/wado",
        "qidoRoot": "http://10.0.0.10:8080/dcm4chee-arc/aets/DCM4CHEE/rs",
        "wadoRoot": "http://10.0.0.10:8080/dcm4chee-arc/aets/DCM4CHEE/rs",
        "qidoSupportsIncludeField": true,
        "imageRendering": "wadors",
        "thumbnailRendering": "wadors",
        "enableStudyLazyLoad": true,
        "supportsFuzzyMatching": true,
        "supportsReject": true,
        "requestOptions": {
          "requestCredentials": "omit"
        }
      }
    }
  ],
  "defaultDataSourceName": "dicomweb",
  "hotkeys": [],
  "cornerstoneExtensionConfig": {},
  "investigationalUseDialog": {
    "option": "never"
  }
};
`

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("default configuration invalid: %s", err)
	}

	ds, ok := Default().DefaultDataSource()
	if !ok {
		t.Fatal("default data source not found")
	}
	if ds.Configuration.Name != "DCM4CHEE" {
		t.Errorf("unexpected default data source: %+v", ds)
	}
}

func TestRenderJSMatchesDeployedConfig(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderJS(Default(), &buf); err != nil {
		t.Fatalf("%s", err)
	}
	if diff := cmp.Diff(appConfigJS, buf.String()); diff != "" {
		t.Errorf("rendered script mismatch (-want +got):\n%s", diff)
	}
}

func TestParseDeployedConfig(t *testing.T) {
	cfg, err := Parse([]byte(appConfigJS))
	if err != nil {
		t.Fatalf("%s", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("parsed configuration mismatch (-want +got):\n%s", diff)
	}
}

func TestRoundTrip(t *testing.T) {

	cfg := Default()
	cfg.Extensions = []string{"@ohif/extension-cornerstone"}
	cfg.Hotkeys = []Hotkey{
		{
			CommandName:    "setToolActive",
			CommandOptions: map[string]interface{}{"toolName": "Zoom", "level": float64(2)},
			Label:          "Zoom",
			Keys:           []string{"z"},
		},
	}
	cfg.CornerstoneExtensionConfig = map[string]interface{}{
		"tools": map[string]interface{}{"enabled": []interface{}{"Pan", "Zoom"}},
	}
	cfg.InvestigationalUseDialog = InvestigationalUseDialog{Option: DialogConfigure, Days: 30}

	renderers := map[string]func(Config, *bytes.Buffer) error{
		"js":   func(c Config, b *bytes.Buffer) error { return RenderJS(c, b) },
		"json": func(c Config, b *bytes.Buffer) error { return RenderJSON(c, b) },
	}

	for name, render := range renderers {
		var first bytes.Buffer
		if err := render(cfg, &first); err != nil {
			t.Fatalf("[%s] %s", name, err)
		}

		parsed, err := Parse(first.Bytes())
		if err != nil {
			t.Fatalf("[%s] %s", name, err)
		}

		if diff := cmp.Diff(cfg.Normalize(), parsed); diff != "" {
			t.Errorf("[%s] round trip mismatch (-want +got):\n%s", name, diff)
		}

		// a second render must be byte-identical
		var second bytes.Buffer
		if err := render(parsed, &second); err != nil {
			t.Fatalf("[%s] %s", name, err)
		}
		if first.String() != second.String() {
			t.Errorf("[%s] render is not idempotent", name)
		}

		if cfg.Digest() != parsed.Digest() {
			t.Errorf("[%s] digest changed after round trip", name)
		}
	}
}

func TestNormalizeRendersEmptyCollections(t *testing.T) {
	cfg := Default()
	cfg.Extensions = nil
	cfg.Hotkeys = nil
	cfg.CornerstoneExtensionConfig = nil

	var buf bytes.Buffer
	if err := RenderJSON(cfg, &buf); err != nil {
		t.Fatalf("%s", err)
	}
	if strings.Contains(buf.String(), "null") {
		t.Errorf("rendered configuration contains null:\n%s", buf.String())
	}
	if cfg.Digest() != Default().Digest() {
		t.Errorf("nil and empty collections should have the same digest")
	}
}

func TestValidateViolations(t *testing.T) {

	cases := []struct {
		name   string
		mutate func(c *Config)
		fields []string
	}{
		{
			name:   "default source mismatch",
			mutate: func(c *Config) { c.DefaultDataSourceName = "orthanc" },
			fields: []string{"defaultDataSourceName"},
		},
		{
			name: "duplicated source name",
			mutate: func(c *Config) {
				c.DataSources = append(c.DataSources, c.DataSources[0])
			},
			fields: []string{"dataSources"},
		},
		{
			name: "relative qido root",
			mutate: func(c *Config) {
				c.DataSources[0].Configuration.QidoRoot = "/dcm4chee-arc/aets/DCM4CHEE/rs"
			},
			fields: []string{"dataSources[0].configuration.qidoRoot"},
		},
		{
			name: "unsupported rendering",
			mutate: func(c *Config) {
				c.DataSources[0].Configuration.ImageRendering = "png"
				c.DataSources[0].Configuration.ThumbnailRendering = "jpeg"
			},
			fields: []string{
				"dataSources[0].configuration.imageRendering",
				"dataSources[0].configuration.thumbnailRendering",
			},
		},
		{
			name: "unknown credential policy",
			mutate: func(c *Config) {
				c.DataSources[0].Configuration.RequestOptions.RequestCredentials = "always"
			},
			fields: []string{"dataSources[0].configuration.requestOptions.requestCredentials"},
		},
		{
			name:   "no data source",
			mutate: func(c *Config) { c.DataSources = nil },
			fields: []string{"dataSources", "defaultDataSourceName"},
		},
		{
			name:   "empty namespace",
			mutate: func(c *Config) { c.DataSources[0].Namespace = "" },
			fields: []string{"dataSources[0].namespace"},
		},
		{
			name:   "empty source name",
			mutate: func(c *Config) { c.DataSources[0].SourceName = "" },
			fields: []string{"dataSources[0].sourceName", "defaultDataSourceName"},
		},
		{
			name:   "negative dialog days",
			mutate: func(c *Config) { c.InvestigationalUseDialog.Days = -1 },
			fields: []string{"investigationalUseDialog.days"},
		},
		{
			name:   "relative router basename",
			mutate: func(c *Config) { c.RouterBasename = "viewer" },
			fields: []string{"routerBasename"},
		},
		{
			name: "configure dialog without days",
			mutate: func(c *Config) {
				c.InvestigationalUseDialog.Option = DialogConfigure
			},
			fields: []string{"investigationalUseDialog.days"},
		},
	}

	for _, c := range cases {
		cfg := Default().Clone()
		c.mutate(&cfg)

		err := cfg.Validate()
		if err == nil {
			t.Errorf("[%s] expect validation error", c.name)
			continue
		}

		verr, ok := err.(validate.ValidationError)
		if !ok {
			t.Errorf("[%s] unexpected error type %T", c.name, err)
			continue
		}

		var got []string
		for _, e := range verr.Errors() {
			got = append(got, e.Field)
		}
		if diff := cmp.Diff(c.fields, got); diff != "" {
			t.Errorf("[%s] violated fields mismatch (-want +got):\n%s", c.name, diff)
		}
	}
}

func TestParseRejects(t *testing.T) {
	inputs := map[string]string{
		"unknown key":   `{"routerBasename": "/", "colour": "red"}`,
		"bad enum":      strings.Replace(appConfigJS, `"imageRendering": "wadors"`, `"imageRendering": "png"`, 1),
		"missing equal": `window.config {"routerBasename": "/"};`,
		"trailing data": `{"routerBasename": "/"} {}`,
	}

	for name, in := range inputs {
		if _, err := Parse([]byte(in)); err == nil {
			t.Errorf("[%s] expect parse error", name)
		}
	}
}

func TestCloneIsDeep(t *testing.T) {
	cfg := Default()
	cfg.CornerstoneExtensionConfig["tools"] = map[string]interface{}{"zoom": true}

	cp := cfg.Clone()
	cp.DataSources[0].SourceName = "changed"
	cp.CornerstoneExtensionConfig["tools"].(map[string]interface{})["zoom"] = false

	if cfg.DataSources[0].SourceName != "dicomweb" {
		t.Errorf("clone shares data sources")
	}
	if cfg.CornerstoneExtensionConfig["tools"].(map[string]interface{})["zoom"] != true {
		t.Errorf("clone shares nested maps")
	}
}

func TestParseEnums(t *testing.T) {
	if _, err := ParseImageRendering("wadouri"); err != nil {
		t.Errorf("%s", err)
	}
	if _, err := ParseThumbnailRendering("thumbnailDirect"); err != nil {
		t.Errorf("%s", err)
	}
	if _, err := ParseRequestCredentials("same-origin"); err != nil {
		t.Errorf("%s", err)
	}
	if _, err := ParseDialogOption("sometimes"); err == nil {
		t.Errorf("expect error for unknown dialog option")
	}
}
