// Package viewer models the runtime configuration (`window.config`) consumed
// by an OHIF-style DICOM-web viewer at startup.
//
// A Config is built once, validated, and then treated as immutable. Callers
// that need a modified configuration work on a Clone.
package viewer

// Config is the top-level viewer configuration. Field order follows the key
// order of the rendered `app-config.js`.
type Config struct {
	// RouterBasename is the base path of the viewer's client-side routing.
	RouterBasename string `json:"routerBasename" mapstructure:"routerBasename" yaml:"routerBasename"`
	// Extensions lists the enabled viewer extensions.
	Extensions []string `json:"extensions" mapstructure:"extensions" yaml:"extensions"`
	// Modes lists the enabled workflow modes.
	Modes []string `json:"modes" mapstructure:"modes" yaml:"modes"`
	// ShowStudyList toggles the study browser view.
	ShowStudyList bool `json:"showStudyList" mapstructure:"showStudyList" yaml:"showStudyList"`
	// DataSources are the backend endpoints, in order of declaration.
	DataSources []DataSource `json:"dataSources" mapstructure:"dataSources" yaml:"dataSources"`
	// DefaultDataSourceName must match the SourceName of one of the DataSources.
	DefaultDataSourceName string `json:"defaultDataSourceName" mapstructure:"defaultDataSourceName" yaml:"defaultDataSourceName"`
	// Hotkeys are keybinding overrides.
	Hotkeys []Hotkey `json:"hotkeys" mapstructure:"hotkeys" yaml:"hotkeys"`
	// CornerstoneExtensionConfig is passed as-is to the rendering extension.
	CornerstoneExtensionConfig map[string]interface{} `json:"cornerstoneExtensionConfig" mapstructure:"cornerstoneExtensionConfig" yaml:"cornerstoneExtensionConfig"`
	// InvestigationalUseDialog controls the investigational-use disclaimer.
	InvestigationalUseDialog InvestigationalUseDialog `json:"investigationalUseDialog" mapstructure:"investigationalUseDialog" yaml:"investigationalUseDialog"`
}

// DataSource declares one backend the viewer can query images from.
type DataSource struct {
	// Namespace is the identifier of the viewer module implementing the source,
	// e.g. `@ohif/extension-default.dataSourcesModule.dicomweb`.
	Namespace     string                  `json:"namespace" mapstructure:"namespace" yaml:"namespace"`
	SourceName    string                  `json:"sourceName" mapstructure:"sourceName" yaml:"sourceName"`
	Configuration DataSourceConfiguration `json:"configuration" mapstructure:"configuration" yaml:"configuration"`
}

// DataSourceConfiguration holds the endpoints and feature flags of a
// DICOM-web data source.
type DataSourceConfiguration struct {
	FriendlyName string `json:"friendlyName" mapstructure:"friendlyName" yaml:"friendlyName"`
	Name         string `json:"name" mapstructure:"name" yaml:"name"`

	// WadoURIRoot is the WADO-URI endpoint.
	WadoURIRoot string `json:"wadoUriRoot" mapstructure:"wadoUriRoot" yaml:"wadoUriRoot"`
	// QidoRoot is the QIDO-RS (query) endpoint.
	QidoRoot string `json:"qidoRoot" mapstructure:"qidoRoot" yaml:"qidoRoot"`
	// WadoRoot is the WADO-RS (retrieve) endpoint.
	WadoRoot string `json:"wadoRoot" mapstructure:"wadoRoot" yaml:"wadoRoot"`

	QidoSupportsIncludeField bool               `json:"qidoSupportsIncludeField" mapstructure:"qidoSupportsIncludeField" yaml:"qidoSupportsIncludeField"`
	ImageRendering           ImageRendering     `json:"imageRendering" mapstructure:"imageRendering" yaml:"imageRendering"`
	ThumbnailRendering       ThumbnailRendering `json:"thumbnailRendering" mapstructure:"thumbnailRendering" yaml:"thumbnailRendering"`
	EnableStudyLazyLoad      bool               `json:"enableStudyLazyLoad" mapstructure:"enableStudyLazyLoad" yaml:"enableStudyLazyLoad"`
	SupportsFuzzyMatching    bool               `json:"supportsFuzzyMatching" mapstructure:"supportsFuzzyMatching" yaml:"supportsFuzzyMatching"`
	SupportsReject           bool               `json:"supportsReject" mapstructure:"supportsReject" yaml:"supportsReject"`
	RequestOptions           RequestOptions     `json:"requestOptions" mapstructure:"requestOptions" yaml:"requestOptions"`
}

// RequestOptions are applied by the viewer to every outbound request of
// a data source.
type RequestOptions struct {
	RequestCredentials RequestCredentials `json:"requestCredentials" mapstructure:"requestCredentials" yaml:"requestCredentials"`
}

// Hotkey overrides the keybinding of a viewer command.
type Hotkey struct {
	CommandName    string                 `json:"commandName" mapstructure:"commandName" yaml:"commandName"`
	CommandOptions map[string]interface{} `json:"commandOptions,omitempty" mapstructure:"commandOptions" yaml:"commandOptions,omitempty"`
	Label          string                 `json:"label" mapstructure:"label" yaml:"label"`
	Keys           []string               `json:"keys" mapstructure:"keys" yaml:"keys"`
}

// InvestigationalUseDialog configures when the investigational-use
// disclaimer is shown.
type InvestigationalUseDialog struct {
	Option DialogOption `json:"option" mapstructure:"option" yaml:"option"`
	// Days between two displays; only used with DialogConfigure.
	Days int `json:"days,omitempty" mapstructure:"days" yaml:"days,omitempty"`
}

// DefaultDataSource returns the data source named by DefaultDataSourceName.
func (c Config) DefaultDataSource() (DataSource, bool) {
	for _, ds := range c.DataSources {
		if ds.SourceName == c.DefaultDataSourceName {
			return ds, true
		}
	}
	return DataSource{}, false
}

// DataSource returns the data source with the given `sourceName`.
func (c Config) DataSource(sourceName string) (DataSource, bool) {
	for _, ds := range c.DataSources {
		if ds.SourceName == sourceName {
			return ds, true
		}
	}
	return DataSource{}, false
}

// Normalize returns a copy of the configuration in which nil slices and
// maps are replaced by empty ones, so that it renders `[]` and `{}`
// instead of `null`.
func (c Config) Normalize() Config {
	n := c.Clone()
	if n.Extensions == nil {
		n.Extensions = []string{}
	}
	if n.Modes == nil {
		n.Modes = []string{}
	}
	if n.DataSources == nil {
		n.DataSources = []DataSource{}
	}
	if n.Hotkeys == nil {
		n.Hotkeys = []Hotkey{}
	}
	for i := range n.Hotkeys {
		if n.Hotkeys[i].Keys == nil {
			n.Hotkeys[i].Keys = []string{}
		}
	}
	if n.CornerstoneExtensionConfig == nil {
		n.CornerstoneExtensionConfig = map[string]interface{}{}
	}
	return n
}

// Clone returns a deep copy of the configuration.
func (c Config) Clone() Config {
	n := c
	n.Extensions = cloneStrings(c.Extensions)
	n.Modes = cloneStrings(c.Modes)
	if c.DataSources != nil {
		n.DataSources = make([]DataSource, len(c.DataSources))
		copy(n.DataSources, c.DataSources)
	}
	if c.Hotkeys != nil {
		n.Hotkeys = make([]Hotkey, len(c.Hotkeys))
		for i, h := range c.Hotkeys {
			h.Keys = cloneStrings(h.Keys)
			h.CommandOptions = cloneMap(h.CommandOptions)
			n.Hotkeys[i] = h
		}
	}
	n.CornerstoneExtensionConfig = cloneMap(c.CornerstoneExtensionConfig)
	return n
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append(make([]string, 0, len(s)), s...)
}

func cloneMap(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return nil
	}
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		return cloneMap(t)
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
