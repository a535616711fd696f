package viewer

import (
	"fmt"
	"strings"

	"github.com/dccn-tg/viewer-toolset/pkg/validate"
)

var urlSchemes = []string{"http", "https"}

// Validate checks the structural rules of the configuration. All violations
// are reported together in a validate.ValidationError.
func (c Config) Validate() error {
	v := validate.New()

	if !strings.HasPrefix(c.RouterBasename, "/") {
		v.AddError("routerBasename", "must be a path starting with \"/\"", c.RouterBasename)
	}

	if len(c.DataSources) == 0 {
		v.AddError("dataSources", "at least one data source is required", nil)
	}

	names := make(map[string]int)
	for i, ds := range c.DataSources {
		validateDataSource(v, fmt.Sprintf("dataSources[%d]", i), ds)
		if ds.SourceName != "" {
			names[ds.SourceName]++
		}
	}

	reported := make(map[string]bool)
	for _, ds := range c.DataSources {
		if n := names[ds.SourceName]; n > 1 && !reported[ds.SourceName] {
			v.AddError("dataSources", fmt.Sprintf("sourceName %q declared %d times", ds.SourceName, n), ds.SourceName)
			reported[ds.SourceName] = true
		}
	}

	switch n := names[c.DefaultDataSourceName]; {
	case c.DefaultDataSourceName == "":
		v.AddError("defaultDataSourceName", "must not be empty", c.DefaultDataSourceName)
	case n == 0:
		v.AddError("defaultDataSourceName", "does not match any dataSources[].sourceName", c.DefaultDataSourceName)
	}

	for i, h := range c.Hotkeys {
		v.NotEmpty(fmt.Sprintf("hotkeys[%d].commandName", i), h.CommandName)
	}

	dialog := c.InvestigationalUseDialog
	v.OneOf("investigationalUseDialog.option", string(dialog.Option), toStrings(DialogOptions))
	if dialog.Days < 0 {
		v.AddError("investigationalUseDialog.days", "must not be negative", dialog.Days)
	}
	if dialog.Option == DialogConfigure && dialog.Days == 0 {
		v.AddError("investigationalUseDialog.days", "must be set when option is \"configure\"", dialog.Days)
	}

	return v.Err()
}

func validateDataSource(v *validate.Validator, field string, ds DataSource) {
	v.NotEmpty(field+".namespace", ds.Namespace)
	v.NotEmpty(field+".sourceName", ds.SourceName)

	c := ds.Configuration
	field += ".configuration"

	v.URL(field+".wadoUriRoot", c.WadoURIRoot, urlSchemes)
	v.URL(field+".qidoRoot", c.QidoRoot, urlSchemes)
	v.URL(field+".wadoRoot", c.WadoRoot, urlSchemes)

	v.OneOf(field+".imageRendering", string(c.ImageRendering), toStrings(ImageRenderings))
	v.OneOf(field+".thumbnailRendering", string(c.ThumbnailRendering), toStrings(ThumbnailRenderings))
	v.OneOf(field+".requestOptions.requestCredentials", string(c.RequestOptions.RequestCredentials), toStrings(RequestCredentialPolicies))
}
